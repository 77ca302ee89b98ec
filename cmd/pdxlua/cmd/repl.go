package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"github.com/spicery/pdxlua/pkg/grammar"
	"github.com/spicery/pdxlua/pkg/lexer"
)

const (
	historyFile = ".pdxlua_history"
	promptMain  = "pdx> "
	promptCont  = "...> "
)

var replFormat string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse statements typed interactively",
	Long: `Starts an interactive prompt. Each entry is parsed with the dialect
grammar and the resulting statements are printed. An incomplete statement or
string literal continues on the next line. Type :quit or press Ctrl-D to exit.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replFormat, "format", "json", "Output format: json or yaml")
}

// prompter is the part of liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func runRepl(cmd *cobra.Command, args []string) error {
	if err := checkFormat(replFormat); err != nil {
		return err
	}
	cfg, err := loadLexerConfig(cfgFile)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := &session{
		grammar: grammar.Dialect(),
		config:  cfg,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		format:  replFormat,
		history: ln.AppendHistory,
		options: func() []grammar.Option { return parseOptions(cfg, logger) },
	}
	s.run(ln)
	return nil
}

// session holds what the read loop needs between entries.
type session struct {
	grammar *grammar.Grammar
	config  *lexer.Config
	out     io.Writer
	errOut  io.Writer
	format  string
	history func(string)
	options func() []grammar.Option
}

func (s *session) run(p prompter) {
	for {
		src, ok := s.readByParseProbe(p)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}

		entry := strings.TrimSpace(src)
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, ":") {
			switch strings.ToLower(entry) {
			case ":quit", ":q":
				return
			default:
				fmt.Fprintln(s.errOut, "unknown command. Type :quit to exit.")
			}
			continue
		}

		if s.history != nil {
			s.history(src)
		}
		stmts, err := grammar.Parse(src, s.grammar, s.options()...)
		if werr := writeStatements(s.out, stmts, s.format); werr != nil {
			fmt.Fprintln(s.errOut, werr)
		}
		if err != nil {
			msg := withSource(err, "", src).Error()
			fmt.Fprint(s.errOut, msg)
			if !strings.HasSuffix(msg, "\n") {
				fmt.Fprintln(s.errOut)
			}
		}
	}
}

// readByParseProbe reads lines until they parse or fail for a reason other
// than running out of input. Continuation lines are joined with a space so
// that the entry stays on one logical line.
func (s *session) readByParseProbe(p prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops the pending entry.
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := grammar.Parse(src, s.grammar, grammar.WithLexerConfig(s.config))
		if incomplete(perr) {
			continue
		}
		return src, true
	}
}

// incomplete reports whether more input could make err go away.
func incomplete(err error) bool {
	return errors.Is(err, grammar.ErrUnexpectedEnd) || errors.Is(err, lexer.ErrUnterminatedString)
}
