package cmd

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spicery/pdxlua/pkg/lexer"
	"gopkg.in/yaml.v3"
)

var makeConfigFormat string

var makeConfigCmd = &cobra.Command{
	Use:   "make-config",
	Short: "Print the lexer configuration",
	Long: `Prints the default lexer configuration, or the effective one when
--config is given, in a form that --config accepts.

Examples:
  pdxlua make-config > lexer.yaml
  pdxlua make-config --format toml > lexer.toml`,
	Args: cobra.NoArgs,
	RunE: runMakeConfig,
}

func init() {
	rootCmd.AddCommand(makeConfigCmd)
	makeConfigCmd.Flags().StringVar(&makeConfigFormat, "format", "yaml", "Output format: yaml or toml")
}

func runMakeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadLexerConfig(cfgFile)
	if err != nil {
		return err
	}
	return writeConfig(cmd.OutOrStdout(), cfg, makeConfigFormat)
}

// writeConfig marshals cfg in the requested file format.
func writeConfig(w io.Writer, cfg *lexer.Config, format string) error {
	file := cfg.File()
	switch format {
	case "yaml":
		data, err := yaml.Marshal(file)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "toml":
		if err := toml.NewEncoder(w).Encode(file); err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format '%s' (want yaml or toml)", format)
	}
}
