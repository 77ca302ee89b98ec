package lexer

import (
	"errors"
	"io"
)

// TokenStream gives one token of lookahead over a Lexicalizer.
type TokenStream struct {
	lex     *Lexicalizer
	current Token
	cached  bool
	err     error
}

// NewTokenStream wraps a lexicalizer.
func NewTokenStream(lex *Lexicalizer) *TokenStream {
	return &TokenStream{lex: lex}
}

// Current returns the token under the cursor without consuming it. It
// returns io.EOF when the input is exhausted.
func (s *TokenStream) Current() (Token, error) {
	if s.cached {
		return s.current, nil
	}
	if s.err != nil {
		return Token{}, s.err
	}
	tok, err := s.lex.Next()
	if err != nil {
		s.err = err
		return Token{}, err
	}
	s.current, s.cached = tok, true
	return tok, nil
}

// Advance consumes the current token.
func (s *TokenStream) Advance() {
	if !s.cached {
		if _, err := s.Current(); err != nil {
			return
		}
	}
	s.cached = false
}

// IgnoreEOS skips a run of EndOfStatement tokens starting at the current
// token and returns the first token after it. It fails with
// ErrUnexpectedEnd if the input ends first.
func (s *TokenStream) IgnoreEOS() (Token, error) {
	for {
		tok, err := s.Current()
		if errors.Is(err, io.EOF) {
			return Token{}, ErrUnexpectedEnd
		}
		if err != nil {
			return Token{}, err
		}
		if !tok.IsEOS() {
			return tok, nil
		}
		s.Advance()
	}
}
