package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/robbyt/geminischema"
	"github.com/spf13/cobra"
)

// NormalizeCmd creates the normalize command.
func NormalizeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Normalize a JSON or YAML schema document",
		Long: `Reads a schema document from a file, or stdin when the file is "-" or
omitted, and prints the normalized schema.

Example:
  schemanorm normalize person.schema.json
  schemanorm normalize --output genai --output-format yaml person.yaml
  python -c 'print(Person.schema_json())' | schemanorm normalize -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, args, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.Flags().Int("max-depth", geminischema.DefaultMaxDepth, "Reject schemas nested deeper than this")
	cmd.Flags().Bool("strict-formats", false, "Keep format only where Gemini supports it")
	cmd.Flags().Bool("dereference", true, "Inline local $ref definitions before normalizing")
	cmd.Flags().String("input-format", "", "Input format: json or yaml (default: from file extension)")
	cmd.Flags().StringP("output", "o", OutputDocument, "Output shape: document (snake_case) or genai (genai.Schema)")
	cmd.Flags().StringP("output-format", "f", string(geminischema.FormatJSON), "Output format: json or yaml")

	return cmd
}

func runNormalize(cmd *cobra.Command, args []string, configPath string) error {
	cfg, err := LoadConfig(cmd, configPath)
	if err != nil {
		return err
	}

	path := "-"
	if len(args) > 0 {
		path = args[0]
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	format := cfg.InputFormat
	if format == "" {
		format = geminischema.FormatFromPath(path)
	}
	doc, err := geminischema.Decode(data, format)
	if err != nil {
		return err
	}

	if cfg.Dereference {
		doc, err = geminischema.Dereference(doc)
		if err != nil {
			return err
		}
	}

	normalizer := geminischema.NewNormalizer(geminischema.Options{
		MaxDepth:      cfg.MaxDepth,
		StrictFormats: cfg.StrictFormats,
		Logger:        slog.Default(),
	})
	node, err := normalizer.Normalize(doc)
	if err != nil {
		return err
	}
	slog.Default().Debug("schema normalized", "input", path, "output", cfg.Output)

	result := geminischema.Document(node)
	if cfg.Output == OutputGenai {
		// genai's JSON field names are the wire format; go through JSON so
		// YAML output uses them too.
		result, err = geminischema.FromGenai(geminischema.ToGenai(node))
		if err != nil {
			return err
		}
	}

	out, err := geminischema.Encode(result, cfg.OutputFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
