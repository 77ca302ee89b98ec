package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spicery/pdxlua/pkg/grammar"
	"github.com/spicery/pdxlua/pkg/lexer"
)

// diagnostic is a lexical or parse error rendered against its source.
type diagnostic struct {
	err  error
	text string
}

func (d *diagnostic) Error() string { return d.text }
func (d *diagnostic) Unwrap() error { return d.err }

// withSource renders lexical and parse errors with a caret under the
// offending column. Other errors are returned unchanged.
func withSource(err error, name, src string) error {
	var lexErr *lexer.LexError
	var parseErr *grammar.ParseError
	switch {
	case errors.As(err, &lexErr):
		return &diagnostic{err: err, text: renderSnippet(src, "LEXICAL ERROR", name, lexErr.Pos, lexErr.Err.Error())}
	case errors.As(err, &parseErr):
		return &diagnostic{err: err, text: renderSnippet(src, "PARSE ERROR", name, parseErr.Pos, parseErr.Error())}
	default:
		return err
	}
}

// renderSnippet shows the offending line with one line of context either
// side. Positions outside the source are clamped.
func renderSnippet(src, header, name string, pos lexer.Position, msg string) string {
	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	line, col := pos.Line, pos.Col
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, strings.TrimSuffix(lines[line-1], "\r"))
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
