package commands

import (
	"fmt"
	"strings"

	"github.com/robbyt/geminischema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	OutputDocument = "document"
	OutputGenai    = "genai"
)

// Config holds the settings of the normalize command. Values come from, in
// increasing priority: defaults, the YAML config file, SCHEMANORM_*
// environment variables and command-line flags.
type Config struct {
	MaxDepth      int
	StrictFormats bool
	Dereference   bool
	InputFormat   geminischema.Format
	Output        string
	OutputFormat  geminischema.Format
}

var configKeys = []string{"max-depth", "strict-formats", "dereference", "input-format", "output", "output-format"}

// LoadConfig resolves the normalize settings for cmd. path may be empty.
func LoadConfig(cmd *cobra.Command, path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Enable environment variable overrides
	v.SetEnvPrefix("SCHEMANORM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-depth", geminischema.DefaultMaxDepth)
	v.SetDefault("dereference", true)
	v.SetDefault("output", OutputDocument)
	v.SetDefault("output-format", string(geminischema.FormatJSON))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	for _, key := range configKeys {
		if flag := cmd.Flags().Lookup(key); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
			}
		}
	}

	cfg := &Config{
		MaxDepth:      v.GetInt("max-depth"),
		StrictFormats: v.GetBool("strict-formats"),
		Dereference:   v.GetBool("dereference"),
		Output:        strings.ToLower(v.GetString("output")),
	}

	if in := v.GetString("input-format"); in != "" {
		f, err := geminischema.ParseFormat(in)
		if err != nil {
			return nil, fmt.Errorf("invalid input-format: %w", err)
		}
		cfg.InputFormat = f
	}

	out, err := geminischema.ParseFormat(v.GetString("output-format"))
	if err != nil {
		return nil, fmt.Errorf("invalid output-format: %w", err)
	}
	cfg.OutputFormat = out

	if cfg.Output != OutputDocument && cfg.Output != OutputGenai {
		return nil, fmt.Errorf("invalid output %q: must be %q or %q", cfg.Output, OutputDocument, OutputGenai)
	}
	if cfg.MaxDepth <= 0 {
		return nil, fmt.Errorf("max-depth must be positive, got %d", cfg.MaxDepth)
	}

	return cfg, nil
}
