package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spicery/pdxlua/pkg/lexer"
)

var (
	// ErrOverlappingSignature means two rules in one pool cannot be told
	// apart within their signatures.
	ErrOverlappingSignature = errors.New("overlapping signature")
	ErrUnknownRule          = errors.New("unknown rule")
	ErrDuplicateRule        = errors.New("duplicate rule")
	ErrInvalidRule          = errors.New("invalid rule")
	ErrEmptyGrammar         = errors.New("grammar has no top-level rules")

	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEnd   = lexer.ErrUnexpectedEnd
)

// GrammarError reports a defect in how a grammar was assembled.
type GrammarError struct {
	Rules []string // the rules involved
	Index int      // signature position, for overlapping signatures
	Err   error
}

func (e *GrammarError) Error() string {
	if errors.Is(e.Err, ErrOverlappingSignature) {
		return fmt.Sprintf("%v: rules %s cannot be told apart at signature position %d",
			e.Err, strings.Join(e.Rules, ", "), e.Index)
	}
	return fmt.Sprintf("%v (in %s)", e.Err, strings.Join(e.Rules, ", "))
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

// ParseError reports input that the grammar cannot accept.
type ParseError struct {
	Token lexer.Token    // the offending token; zero at end of input
	Pos   lexer.Position // where the problem was found
	Rule  string         // the rule being matched, if one had been selected
	Err   error
}

func (e *ParseError) Error() string {
	var msg string
	switch {
	case errors.Is(e.Err, ErrUnexpectedEnd):
		msg = e.Err.Error()
		if e.Pos != (lexer.Position{}) {
			msg += fmt.Sprintf(" after line %d, column %d", e.Pos.Line, e.Pos.Col)
		}
	case e.Token.IsEOS():
		msg = fmt.Sprintf("unexpected end of line at line %d, column %d", e.Pos.Line, e.Pos.Col)
	default:
		msg = fmt.Sprintf("%v '%s' at line %d, column %d", e.Err, e.Token.Text, e.Pos.Line, e.Pos.Col)
	}
	if e.Rule != "" {
		msg += " while parsing " + e.Rule
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func unexpectedToken(tok lexer.Token, rule string) *ParseError {
	return &ParseError{Token: tok, Pos: tok.Pos, Rule: rule, Err: ErrUnexpectedToken}
}

func unexpectedEnd(rule string) *ParseError {
	return &ParseError{Rule: rule, Err: ErrUnexpectedEnd}
}
