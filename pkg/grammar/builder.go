package grammar

import (
	"errors"
	"io"

	"github.com/spicery/pdxlua/pkg/lexer"
)

// StatementBuilder reads one statement at a time from a token stream.
type StatementBuilder struct {
	grammar  *Grammar
	observer Observer
}

// NewStatementBuilder creates a builder for g.
func NewStatementBuilder(g *Grammar, opts ...Option) *StatementBuilder {
	o := buildOptions(opts)
	return &StatementBuilder{grammar: g, observer: o.observer}
}

// Build selects a rule for the tokens at the front of stream and consumes
// tokens until that rule is complete. The token that completed it is left
// in the stream.
//
// While several rules remain, each token is compared against the next
// signature position and saved. Once one rule remains the saved tokens are
// replayed into it, so a rule selected after k+1 tokens sees all of them.
func (b *StatementBuilder) Build(stream *lexer.TokenStream) (*Statement, error) {
	if err := b.grammar.Validate(); err != nil {
		return nil, err
	}

	sel := newSelector(b.grammar.Rules(), b.grammar, b.observer)
	var last lexer.Position
	for {
		tok, err := stream.Current()
		if errors.Is(err, io.EOF) {
			if err := sel.satiatedAtEnd(); err != nil {
				return nil, locate(err, last)
			}
			break
		}
		if err != nil {
			return nil, err
		}

		done, err := sel.satiated(tok)
		if err != nil {
			return nil, err
		}
		if done {
			if sel.consumed() == 0 {
				// The rule would be complete without taking anything.
				return nil, unexpectedToken(tok, "")
			}
			break
		}

		if err := sel.eat(tok); err != nil {
			return nil, err
		}
		last = tok.Pos
		stream.Advance()
	}

	if sel.consumed() == 0 {
		return nil, unexpectedEnd("")
	}
	return sel.statement(), nil
}

// locate gives an end-of-input error the position of the last token read.
func locate(err error, last lexer.Position) error {
	var perr *ParseError
	if errors.As(err, &perr) && perr.Pos == (lexer.Position{}) {
		perr.Pos = last
	}
	return err
}
