package lexer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the closed set of token classes.
type Kind int

const (
	KindKeyword Kind = iota
	KindName
	KindLiteral
	KindEndOfStatement
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindName:
		return "name"
	case KindLiteral:
		return "literal"
	case KindEndOfStatement:
		return "eos"
	default:
		return "unknown"
	}
}

// LiteralType represents the different types of literals that can be
// represented in the language.
type LiteralType int

const (
	StringLiteral LiteralType = iota
	NumberLiteral
	BooleanLiteral
	NilLiteral
)

// String returns a string representation of the literal type.
func (t LiteralType) String() string {
	switch t {
	case StringLiteral:
		return "string"
	case NumberLiteral:
		return "number"
	case BooleanLiteral:
		return "boolean"
	case NilLiteral:
		return "nil"
	default:
		return "unknown"
	}
}

// Literal holds the interpreted value of a literal token. Only the field
// selected by Type is meaningful.
type Literal struct {
	Type    LiteralType
	String  string
	Number  float64
	Boolean bool
}

// Equal reports whether two literals have the same type and value.
func (l Literal) Equal(other Literal) bool {
	if l.Type != other.Type {
		return false
	}
	switch l.Type {
	case StringLiteral:
		return l.String == other.String
	case NumberLiteral:
		return l.Number == other.Number
	case BooleanLiteral:
		return l.Boolean == other.Boolean
	default:
		return true
	}
}

// Value returns the literal as a plain Go value (nil for Nil).
func (l Literal) Value() any {
	switch l.Type {
	case StringLiteral:
		return l.String
	case NumberLiteral:
		return l.Number
	case BooleanLiteral:
		return l.Boolean
	default:
		return nil
	}
}

// Position represents a line and column position in the source file.
// Both are 1-based; columns count bytes.
type Position struct {
	Line int `json:"line" yaml:"line"`
	Col  int `json:"col" yaml:"col"`
}

// String returns "line:col".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p comes strictly before other.
func (p Position) Before(other Position) bool {
	return p.Line < other.Line || (p.Line == other.Line && p.Col < other.Col)
}

// Token represents a single token from the source text.
type Token struct {
	Kind    Kind
	Keyword Keyword // valid when Kind == KindKeyword
	Literal Literal // valid when Kind == KindLiteral
	Text    string  // source text after arrangement
	Pos     Position
}

// NewKeywordToken creates a keyword token.
func NewKeywordToken(text string, keyword Keyword, pos Position) Token {
	return Token{Kind: KindKeyword, Keyword: keyword, Text: text, Pos: pos}
}

// NewNameToken creates a name token.
func NewNameToken(text string, pos Position) Token {
	return Token{Kind: KindName, Text: text, Pos: pos}
}

// NewLiteralToken creates a literal token.
func NewLiteralToken(text string, literal Literal, pos Position) Token {
	return Token{Kind: KindLiteral, Literal: literal, Text: text, Pos: pos}
}

// NewEOSToken creates an end-of-statement token.
func NewEOSToken(pos Position) Token {
	return Token{Kind: KindEndOfStatement, Pos: pos}
}

// IsEOS reports whether the token marks a line boundary.
func (t Token) IsEOS() bool {
	return t.Kind == KindEndOfStatement
}

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(k Keyword) bool {
	return t.Kind == KindKeyword && t.Keyword == k
}

// Equal compares kind, payload and text. Positions are ignored.
func (t Token) Equal(other Token) bool {
	if t.Kind != other.Kind || t.Text != other.Text {
		return false
	}
	switch t.Kind {
	case KindKeyword:
		return t.Keyword == other.Keyword
	case KindLiteral:
		return t.Literal.Equal(other.Literal)
	default:
		return true
	}
}

// String returns a short description such as Name(x) or Keyword(=).
func (t Token) String() string {
	switch t.Kind {
	case KindKeyword:
		return fmt.Sprintf("Keyword(%s)", t.Keyword)
	case KindName:
		return fmt.Sprintf("Name(%s)", t.Text)
	case KindLiteral:
		if t.Literal.Type == StringLiteral {
			return fmt.Sprintf("Literal(%q)", t.Literal.String)
		}
		return fmt.Sprintf("Literal(%s)", t.Text)
	case KindEndOfStatement:
		return "EOS"
	default:
		return "?"
	}
}

type tokenDoc struct {
	Kind    string   `json:"kind" yaml:"kind"`
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Keyword string   `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Literal string   `json:"literal,omitempty" yaml:"literal,omitempty"`
	Value   any      `json:"value,omitempty" yaml:"value,omitempty"`
	Pos     Position `json:"pos" yaml:"pos,flow"`
}

func (t Token) doc() tokenDoc {
	out := tokenDoc{Kind: t.Kind.String(), Text: t.Text, Pos: t.Pos}
	switch t.Kind {
	case KindKeyword:
		out.Keyword = t.Keyword.Name()
	case KindLiteral:
		out.Literal = t.Literal.Type.String()
		out.Value = t.Literal.Value()
	}
	return out
}

// MarshalJSON writes the token as a flat object, one field per payload.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.doc())
}

// MarshalYAML mirrors MarshalJSON.
func (t Token) MarshalYAML() (any, error) {
	return t.doc(), nil
}

var numberRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseLiteral classifies text as a literal, reporting false when it is not
// one. A number too large for a float64 is an error.
func parseLiteral(s string) (Literal, bool, error) {
	switch {
	case len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`):
		return Literal{Type: StringLiteral, String: s[1 : len(s)-1]}, true, nil
	case s == "true":
		return Literal{Type: BooleanLiteral, Boolean: true}, true, nil
	case s == "false":
		return Literal{Type: BooleanLiteral, Boolean: false}, true, nil
	case s == "nil":
		return Literal{Type: NilLiteral}, true, nil
	case numberRegex.MatchString(s):
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Literal{}, false, ErrNumberRange
		}
		return Literal{Type: NumberLiteral, Number: n}, true, nil
	}
	return Literal{}, false, nil
}
