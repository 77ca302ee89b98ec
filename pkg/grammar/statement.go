package grammar

import (
	"encoding/json"
	"sort"

	"github.com/spicery/pdxlua/pkg/lexer"
)

// Binding is one value bound under a field: either a token or a nested
// statement.
type Binding struct {
	Token     lexer.Token
	Statement *Statement
}

// IsStatement reports whether the binding holds a nested statement.
func (b Binding) IsStatement() bool {
	return b.Statement != nil
}

// Text returns the token text, or the nested rule name.
func (b Binding) Text() string {
	if b.Statement != nil {
		return b.Statement.Rule
	}
	return b.Token.Text
}

// MarshalJSON writes the nested statement or the token.
func (b Binding) MarshalJSON() ([]byte, error) {
	if b.Statement != nil {
		return json.Marshal(b.Statement)
	}
	return json.Marshal(b.Token)
}

// MarshalYAML mirrors MarshalJSON.
func (b Binding) MarshalYAML() (any, error) {
	if b.Statement != nil {
		return b.Statement, nil
	}
	return b.Token, nil
}

// Statement is the result of matching one rule.
type Statement struct {
	Rule   string               `json:"rule" yaml:"rule"`
	Pos    lexer.Position       `json:"pos" yaml:"pos,flow"`
	Fields map[string][]Binding `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Get returns everything bound under field.
func (s *Statement) Get(field string) []Binding {
	return s.Fields[field]
}

// Texts returns the text of every token bound under field, skipping nested
// statements.
func (s *Statement) Texts(field string) []string {
	var out []string
	for _, b := range s.Fields[field] {
		if !b.IsStatement() {
			out = append(out, b.Token.Text)
		}
	}
	return out
}

// Text returns the text of the first token bound under field, or "".
func (s *Statement) Text(field string) string {
	for _, b := range s.Fields[field] {
		if !b.IsStatement() {
			return b.Token.Text
		}
	}
	return ""
}

// Nested returns the first statement bound under field, or nil.
func (s *Statement) Nested(field string) *Statement {
	for _, b := range s.Fields[field] {
		if b.IsStatement() {
			return b.Statement
		}
	}
	return nil
}

// FieldNames returns the bound field names in sorted order.
func (s *Statement) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
