package lexer

import (
	"errors"
	"io"
	"testing"
)

func TestTokenStreamCurrentIsStable(t *testing.T) {
	s := NewTokenStream(NewLexicalizer("a b"))

	first, err := s.Current()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	again, _ := s.Current()
	if first != again {
		t.Errorf("Expected Current to be idempotent, got %v then %v", first, again)
	}

	s.Advance()
	second, _ := s.Current()
	if second.Text != "b" {
		t.Errorf("Expected b after advancing, got %v", second)
	}

	s.Advance()
	if _, err := s.Current(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestTokenStreamAdvanceWithoutCurrent(t *testing.T) {
	s := NewTokenStream(NewLexicalizer("a b c"))
	s.Advance()
	s.Advance()
	tok, _ := s.Current()
	if tok.Text != "c" {
		t.Errorf("Expected c, got %v", tok)
	}
}

func TestTokenStreamIgnoreEOS(t *testing.T) {
	s := NewTokenStream(NewLexicalizer("\n\n  x"))
	tok, err := s.IgnoreEOS()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tok.Text != "x" || tok.Pos.Line != 3 {
		t.Errorf("Expected x on line 3, got %v at %s", tok, tok.Pos)
	}

	// Not consumed.
	if cur, _ := s.Current(); cur != tok {
		t.Errorf("Expected IgnoreEOS to leave %v current, got %v", tok, cur)
	}
}

func TestTokenStreamIgnoreEOSAtEnd(t *testing.T) {
	s := NewTokenStream(NewLexicalizer("x\n\n"))
	s.Advance()
	if _, err := s.IgnoreEOS(); !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("Expected ErrUnexpectedEnd, got %v", err)
	}
}

func TestTokenStreamPropagatesLexErrors(t *testing.T) {
	s := NewTokenStream(NewLexicalizer(`"open`))
	_, err := s.Current()
	if !errors.Is(err, ErrUnterminatedString) {
		t.Fatalf("Expected ErrUnterminatedString, got %v", err)
	}
	if _, err := s.IgnoreEOS(); !errors.Is(err, ErrUnterminatedString) {
		t.Errorf("Expected the lexical error from IgnoreEOS, got %v", err)
	}
}
