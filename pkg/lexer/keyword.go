package lexer

import "fmt"

// Keyword is the closed set of reserved words and punctuation.
type Keyword int

const (
	Equal Keyword = iota
	Plus
	Minus
	Multiply
	Divide
	LeftParen
	RightParen
	LeftBracket
	RightBracket
	LeftCurly
	RightCurly
	Comma
	Require
	Execute
	Do
	Then
	End
	Function
	If
	Else
	While
	For
	Return
	Pdx // dialect marker

	keywordCount
)

type keywordInfo struct {
	name     string // used in configuration files and JSON output
	spelling string // default source spelling
}

var keywordTable = [keywordCount]keywordInfo{
	Equal:        {"equal", "="},
	Plus:         {"plus", "+"},
	Minus:        {"minus", "-"},
	Multiply:     {"multiply", "*"},
	Divide:       {"divide", "/"},
	LeftParen:    {"left_paren", "("},
	RightParen:   {"right_paren", ")"},
	LeftBracket:  {"left_bracket", "["},
	RightBracket: {"right_bracket", "]"},
	LeftCurly:    {"left_curly", "{"},
	RightCurly:   {"right_curly", "}"},
	Comma:        {"comma", ","},
	Require:      {"require", "require"},
	Execute:      {"execute", "execute"},
	Do:           {"do", "do"},
	Then:         {"then", "then"},
	End:          {"end", "end"},
	Function:     {"function", "function"},
	If:           {"if", "if"},
	Else:         {"else", "else"},
	While:        {"while", "while"},
	For:          {"for", "for"},
	Return:       {"return", "return"},
	Pdx:          {"pdx", "pdx"},
}

// Keywords returns every keyword in declaration order.
func Keywords() []Keyword {
	out := make([]Keyword, keywordCount)
	for i := range out {
		out[i] = Keyword(i)
	}
	return out
}

// Valid reports whether k is a member of the keyword set.
func (k Keyword) Valid() bool {
	return k >= 0 && k < keywordCount
}

// String returns the default spelling of the keyword.
func (k Keyword) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Keyword(%d)", int(k))
	}
	return keywordTable[k].spelling
}

// Name returns the configuration name of the keyword, e.g. "left_paren".
func (k Keyword) Name() string {
	if !k.Valid() {
		return fmt.Sprintf("keyword_%d", int(k))
	}
	return keywordTable[k].name
}

// ParseKeyword looks a keyword up by its configuration name.
func ParseKeyword(name string) (Keyword, error) {
	for i, info := range keywordTable {
		if info.name == name {
			return Keyword(i), nil
		}
	}
	return 0, fmt.Errorf("unknown keyword '%s'", name)
}
