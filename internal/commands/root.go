package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// RootCmd creates and returns the root command for the schemanorm CLI.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "schemanorm",
		Short: "Rewrite JSON Schema documents into schemas Gemini accepts",
		Long: `schemanorm converts JSON Schema, such as the output of Pydantic's
model_json_schema(), into the restricted schema dialect accepted by Gemini.

Nullable unions like {"anyOf": [{"type": "integer"}, {"type": "null"}]}
become {"type": "integer", "nullable": true}, keywords are renamed to
snake_case and unsupported keywords are dropped.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	return cmd
}
