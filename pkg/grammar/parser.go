package grammar

import (
	"errors"
	"io"
	"iter"

	"github.com/spicery/pdxlua/pkg/lexer"
)

// Parser reads successive statements from source text.
type Parser struct {
	stream  *lexer.TokenStream
	builder *StatementBuilder
}

// NewParser creates a parser over src using grammar g.
func NewParser(src string, g *Grammar, opts ...Option) *Parser {
	o := buildOptions(opts)
	cfg := o.config
	if cfg == nil {
		cfg = lexer.DefaultConfig()
	}
	stream := lexer.NewTokenStream(lexer.NewLexicalizerWithConfig(src, cfg))
	return NewStreamParser(stream, g, opts...)
}

// NewStreamParser creates a parser over an existing token stream.
func NewStreamParser(stream *lexer.TokenStream, g *Grammar, opts ...Option) *Parser {
	return &Parser{stream: stream, builder: NewStatementBuilder(g, opts...)}
}

// Next returns the next statement, skipping blank lines before it. It
// returns io.EOF once only end-of-statement markers remain.
func (p *Parser) Next() (*Statement, error) {
	if _, err := p.stream.IgnoreEOS(); err != nil {
		if errors.Is(err, ErrUnexpectedEnd) {
			return nil, io.EOF
		}
		return nil, err
	}
	return p.builder.Build(p.stream)
}

// All returns the remaining statements as a pull sequence. Iteration stops
// after the first error.
func (p *Parser) All() iter.Seq2[*Statement, error] {
	return func(yield func(*Statement, error) bool) {
		for {
			stmt, err := p.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(stmt, err) || err != nil {
				return
			}
		}
	}
}

// Parse parses every statement in src. On error it returns the statements
// completed before it.
func Parse(src string, g *Grammar, opts ...Option) ([]*Statement, error) {
	var stmts []*Statement
	for stmt, err := range NewParser(src, g, opts...).All() {
		if err != nil {
			return stmts, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}
