package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spicery/pdxlua/pkg/grammar"
	"github.com/spicery/pdxlua/pkg/lexer"
)

const version = "0.1.0"

var (
	cfgFile    string
	verbose    bool
	inputFile  string
	outputFile string
	exit0      bool
)

var rootCmd = &cobra.Command{
	Use:   "pdxlua",
	Short: "Tokenizer and statement parser for pdxlua scripts",
	Long: `pdxlua reads pdxlua modding scripts and prints their tokens or parsed
statements.

Commands:
  tokens       - one JSON token object per line
  parse        - one statement per line as JSON, or a YAML document
  repl         - parse statements typed interactively
  make-config  - print the default lexer configuration

A custom lexer configuration (special characters, comment marker and extra
keyword spellings) can be supplied with --config as YAML or TOML.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML or TOML lexer configuration file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log parser decisions to stderr")
}

func printError(err error) {
	msg := err.Error()
	if strings.Contains(msg, "\n") {
		// Diagnostics already carry their own header.
		fmt.Fprint(os.Stderr, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}

// addIOFlags registers the input, output and exit0 flags shared by the
// batch commands.
func addIOFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inputFile, "input", "", "Input file (defaults to stdin)")
	cmd.Flags().StringVar(&outputFile, "output", "", "Output file (defaults to stdout)")
	cmd.Flags().BoolVar(&exit0, "exit0", false, "Exit with code 0 even on lexical or parse errors (suppress stderr)")
}

// newLogger writes text records to w without timestamps. Debug records are
// only shown with --verbose.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// readInput reads the whole of path, or of in when path is empty.
func readInput(in io.Reader, path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	return string(data), nil
}

// openOutput returns out, or a created file when path is set, with the
// function that closes it.
func openOutput(out io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return out, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file '%s': %w", path, err)
	}
	return file, file.Close, nil
}

// loadLexerConfig applies the file at path to the defaults, or returns the
// defaults when path is empty.
func loadLexerConfig(path string) (*lexer.Config, error) {
	if path == "" {
		return lexer.DefaultConfig(), nil
	}
	file, err := lexer.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := lexer.ApplyConfigToDefaults(file)
	if err != nil {
		return nil, fmt.Errorf("failed to apply config file '%s': %w", path, err)
	}
	return cfg, nil
}

// parseOptions builds the grammar options for one parse. With --verbose the
// parser's decisions are logged under a fresh parse id.
func parseOptions(cfg *lexer.Config, logger *slog.Logger) []grammar.Option {
	opts := []grammar.Option{grammar.WithLexerConfig(cfg)}
	if verbose {
		opts = append(opts, grammar.WithObserver(grammar.NewLogObserver(logger)))
	}
	return opts
}

// sourceError turns a lexical or parse error into a diagnostic, or drops it
// when --exit0 is set.
func sourceError(err error, src, name string) error {
	if err == nil || exit0 {
		return nil
	}
	return withSource(err, name, src)
}
