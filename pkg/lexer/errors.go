package lexer

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEnd reports that the input ended where a token was required.
var ErrUnexpectedEnd = errors.New("unexpected end of input")

// ErrUnterminatedString reports a string literal with no closing quote on its line.
var ErrUnterminatedString = errors.New("unterminated string literal")

// ErrNumberRange reports a number literal that does not fit in a float64.
var ErrNumberRange = errors.New("number literal out of range")

// LexError is a lexical error with the position of the offending text.
type LexError struct {
	Pos  Position
	Text string
	Err  error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error at line %d, column %d: %v", e.Pos.Line, e.Pos.Col, e.Err)
}

func (e *LexError) Unwrap() error {
	return e.Err
}
