package grammar

import (
	"fmt"
	"strings"

	"github.com/spicery/pdxlua/pkg/lexer"
)

// CommandType represents the different kinds of grammar slot.
type CommandType int

const (
	NameCommand      CommandType = iota // any Name
	KeywordCommand                      // one specific Keyword
	GetCommand                          // a Name or Literal, bound under a field
	RepeatCommand                       // a sub-sequence cycled until it stops matching
	OrCommand                           // one of several sub-sequences
	StatementCommand                    // a nested statement drawn from a pool of rules
	IgnoreEOSCommand                    // any run of line ends, possibly none
)

// String returns a string representation of the command type.
func (t CommandType) String() string {
	switch t {
	case NameCommand:
		return "Name"
	case KeywordCommand:
		return "Keyword"
	case GetCommand:
		return "Get"
	case RepeatCommand:
		return "Repeat"
	case OrCommand:
		return "Or"
	case StatementCommand:
		return "Statement"
	case IgnoreEOSCommand:
		return "IgnoreEOS"
	default:
		return "Unknown"
	}
}

// Command is a single slot of a rule.
type Command struct {
	Type         CommandType
	Field        string        // binding name; Keyword slots bind only when set
	Keyword      lexer.Keyword // KeywordCommand only
	Body         []Command     // RepeatCommand only
	Alternatives [][]Command   // OrCommand only
	Rules        []string      // StatementCommand only
}

// accepts reports whether a leaf slot matches tok.
func (c Command) accepts(tok lexer.Token) bool {
	switch c.Type {
	case NameCommand:
		return tok.Kind == lexer.KindName
	case KeywordCommand:
		return tok.IsKeyword(c.Keyword)
	case GetCommand:
		return tok.Kind == lexer.KindName || tok.Kind == lexer.KindLiteral
	case IgnoreEOSCommand:
		return tok.IsEOS()
	default:
		return false
	}
}

// binds reports whether tokens consumed by the slot are recorded.
func (c Command) binds() bool {
	if c.Field == "" {
		return false
	}
	return c.Type == NameCommand || c.Type == GetCommand || c.Type == KeywordCommand
}

// String renders the command in the notation used by the dialect table,
// e.g. Name(fn) or Repeat[Get(arg) ,].
func (c Command) String() string {
	switch c.Type {
	case NameCommand:
		return fmt.Sprintf("Name(%s)", c.Field)
	case KeywordCommand:
		if c.Field != "" {
			return fmt.Sprintf("%s(%s)", c.Keyword, c.Field)
		}
		return c.Keyword.String()
	case GetCommand:
		return fmt.Sprintf("Get(%s)", c.Field)
	case RepeatCommand:
		return "Repeat[" + sequenceString(c.Body) + "]"
	case OrCommand:
		alts := make([]string, len(c.Alternatives))
		for i, alt := range c.Alternatives {
			alts[i] = "[" + sequenceString(alt) + "]"
		}
		return "Or[" + strings.Join(alts, " | ") + "]"
	case StatementCommand:
		return fmt.Sprintf("Statement(%s: %s)", c.Field, strings.Join(c.Rules, " | "))
	case IgnoreEOSCommand:
		return "EOS*"
	default:
		return "?"
	}
}

func sequenceString(seq []Command) string {
	parts := make([]string, len(seq))
	for i, c := range seq {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// TokenMatch is one element of a rule signature: either any Name or one
// specific Keyword.
type TokenMatch struct {
	Kind    lexer.Kind
	Keyword lexer.Keyword
}

// Matches reports whether tok fits the signature element.
func (m TokenMatch) Matches(tok lexer.Token) bool {
	if m.Kind == lexer.KindKeyword {
		return tok.IsKeyword(m.Keyword)
	}
	return tok.Kind == m.Kind
}

func (m TokenMatch) String() string {
	if m.Kind == lexer.KindKeyword {
		return fmt.Sprintf("Keyword(%s)", m.Keyword)
	}
	return "Name"
}
