package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spicery/pdxlua/pkg/lexer"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Print the token stream as JSON lines",
	Long: `Tokenizes a pdxlua script and prints one JSON token object per line.
Tokens read before a lexical error are still printed.

Examples:
  pdxlua tokens --input script.lua
  pdxlua tokens --config lexer.toml < script.lua
  echo 'x = "hello world"' | pdxlua tokens`,
	Args: cobra.NoArgs,
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	addIOFlags(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
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

	tokens, lexErr := lexer.NewLexicalizerWithConfig(src, cfg).Tokenize()
	newLogger(cmd.ErrOrStderr(), verbose).Debug("tokenized", "tokens", len(tokens))

	// Output tokens even if there was an error
	if err := writeTokens(out, tokens); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("failed to close output file '%s': %w", outputFile, err)
	}

	return sourceError(lexErr, src, inputFile)
}

// writeTokens writes one JSON object per token.
func writeTokens(w io.Writer, tokens []lexer.Token) error {
	for _, tok := range tokens {
		data, err := json.Marshal(tok)
		if err != nil {
			return fmt.Errorf("JSON encoding error: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
	return nil
}
