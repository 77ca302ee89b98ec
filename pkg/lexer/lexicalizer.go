package lexer

import (
	"errors"
	"io"
	"iter"
	"strings"
)

// Lexicalizer turns source text into tokens one line at a time. Tokens are
// produced lazily by Next; a single EndOfStatement token marks each line
// boundary.
type Lexicalizer struct {
	lines    []string
	line     int // index of the line the arranger holds
	arranger *Arranger
	config   *Config
	err      error // sticky lexical error
}

// NewLexicalizer creates a lexicalizer with the default configuration.
func NewLexicalizer(input string) *Lexicalizer {
	return NewLexicalizerWithConfig(input, DefaultConfig())
}

// NewLexicalizerWithConfig creates a lexicalizer with a custom configuration.
func NewLexicalizerWithConfig(input string, cfg *Config) *Lexicalizer {
	special := append([]string(nil), cfg.SpecialChars...)
	if cfg.Comment != "" {
		// The marker splits like a special character so that `x--note` still
		// ends at the comment.
		special = append(special, cfg.Comment)
	}

	l := &Lexicalizer{
		lines:    splitLines(input),
		arranger: NewArranger(special),
		config:   cfg,
	}
	if len(l.lines) > 0 {
		l.arranger.SetStack(SplitWords(l.lines[0]))
	}
	return l
}

// splitLines splits on LF, dropping a trailing CR from each line and the
// empty line after a final newline.
func splitLines(input string) []string {
	if input == "" {
		return nil
	}
	lines := strings.Split(input, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Next returns the next token, or io.EOF once the last line is exhausted.
func (l *Lexicalizer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	for {
		if l.arranger.Empty() {
			if l.line >= len(l.lines)-1 {
				return Token{}, io.EOF
			}
			eos := NewEOSToken(Position{Line: l.line + 1, Col: len(l.lines[l.line]) + 1})
			l.line++
			l.arranger.SetStack(SplitWords(l.lines[l.line]))
			return eos, nil
		}

		w, _ := l.arranger.Pop()
		arranged, err := l.arranger.Arrange(w)
		if err != nil {
			l.err = l.lexError(w, err)
			return Token{}, l.err
		}
		if arranged.Text == "" {
			continue
		}
		if l.config.Comment != "" && arranged.Text == l.config.Comment {
			l.arranger.Clear()
			continue
		}
		tok, err := l.classify(arranged)
		if err != nil {
			l.err = l.lexError(arranged, err)
			return Token{}, l.err
		}
		return tok, nil
	}
}

func (l *Lexicalizer) lexError(w Word, err error) error {
	return &LexError{
		Pos:  Position{Line: l.line + 1, Col: w.Col},
		Text: w.Text,
		Err:  err,
	}
}

// classify turns atomic text into a keyword, literal or name token.
func (l *Lexicalizer) classify(w Word) (Token, error) {
	pos := Position{Line: l.line + 1, Col: w.Col}
	if kw, ok := l.config.lookupKeyword(w.Text); ok {
		return NewKeywordToken(w.Text, kw, pos), nil
	}
	lit, ok, err := parseLiteral(w.Text)
	if err != nil {
		return Token{}, err
	}
	if ok {
		return NewLiteralToken(w.Text, lit, pos), nil
	}
	return NewNameToken(w.Text, pos), nil
}

// All returns the remaining tokens as a pull sequence. Iteration stops
// after the first error.
func (l *Lexicalizer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := l.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Tokenize drains the lexicalizer. On error it returns the tokens produced
// so far together with the error.
func (l *Lexicalizer) Tokenize() ([]Token, error) {
	var tokens []Token
	for tok, err := range l.All() {
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
