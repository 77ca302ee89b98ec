package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spicery/pdxlua/pkg/grammar"
	"gopkg.in/yaml.v3"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a script into statements",
	Long: `Parses a pdxlua script with the built-in dialect grammar.

With --format json (the default) each statement is printed as one JSON
object per line; with --format yaml the statements form a single YAML
sequence. Statements completed before a parse error are still printed.

Examples:
  pdxlua parse --input script.lua
  pdxlua parse --format yaml --input script.lua
  pdxlua parse --verbose --input script.lua   # log rule selection`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	addIOFlags(parseCmd)
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "Output format: json or yaml")
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := checkFormat(parseFormat); err != nil {
		return err
	}
	src, err := readInput(cmd.InOrStdin(), inputFile)
	if err != nil {
		return err
	}
	cfg, err := loadLexerConfig(cfgFile)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), outputFile)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), verbose)
	stmts, parseErr := grammar.Parse(src, grammar.Dialect(), parseOptions(cfg, logger)...)
	logger.Debug("parsed", "statements", len(stmts))

	if err := writeStatements(out, stmts, parseFormat); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("failed to close output file '%s': %w", outputFile, err)
	}

	return sourceError(parseErr, src, inputFile)
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown format '%s' (want json or yaml)", format)
	}
}

// writeStatements writes JSON lines, or one YAML sequence.
func writeStatements(w io.Writer, stmts []*grammar.Statement, format string) error {
	if format == "yaml" {
		if len(stmts) == 0 {
			return nil
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stmts); err != nil {
			return fmt.Errorf("YAML encoding error: %w", err)
		}
		return enc.Close()
	}

	for _, stmt := range stmts {
		data, err := json.Marshal(stmt)
		if err != nil {
			return fmt.Errorf("JSON encoding error: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
	return nil
}
