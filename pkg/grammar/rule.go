package grammar

import (
	"fmt"

	"github.com/spicery/pdxlua/pkg/lexer"
)

// Rule is a named, immutable sequence of commands. Parsing never mutates a
// Rule; per-parse state lives in a match.
type Rule struct {
	Name     string
	Commands []Command

	signature []TokenMatch
}

// Signature returns the fixed prefix of the rule used for disambiguation:
// its leading Name and Keyword slots.
func (r *Rule) Signature() []TokenMatch {
	return r.signature
}

// SignatureAt returns the signature element at position k. It reports false
// when k lands on or beyond the first slot that is not a Name or Keyword.
func (r *Rule) SignatureAt(k int) (TokenMatch, bool) {
	if k < 0 || k >= len(r.signature) {
		return TokenMatch{}, false
	}
	return r.signature[k], true
}

func (r *Rule) String() string {
	return r.Name + ": " + sequenceString(r.Commands)
}

func computeSignature(commands []Command) []TokenMatch {
	var sig []TokenMatch
	for _, c := range commands {
		switch c.Type {
		case NameCommand:
			sig = append(sig, TokenMatch{Kind: lexer.KindName})
		case KeywordCommand:
			sig = append(sig, TokenMatch{Kind: lexer.KindKeyword, Keyword: c.Keyword})
		default:
			return sig
		}
	}
	return sig
}

// RuleBuilder accumulates commands for a rule, or for a sub-sequence passed
// to AddRepeat and AddOr.
type RuleBuilder struct {
	name     string
	commands []Command
}

// NewRuleBuilder starts a rule with the given name.
func NewRuleBuilder(name string) *RuleBuilder {
	return &RuleBuilder{name: name}
}

// Seq starts an anonymous sub-sequence for AddRepeat or AddOr.
func Seq() *RuleBuilder {
	return &RuleBuilder{}
}

// AddName adds a slot matching any Name. A non-empty field binds it.
func (b *RuleBuilder) AddName(field string) *RuleBuilder {
	b.commands = append(b.commands, Command{Type: NameCommand, Field: field})
	return b
}

// AddKeyword adds a slot matching one keyword.
func (b *RuleBuilder) AddKeyword(kw lexer.Keyword) *RuleBuilder {
	b.commands = append(b.commands, Command{Type: KeywordCommand, Keyword: kw})
	return b
}

// AddKeywordAs adds a slot matching one keyword and binds it under field,
// for keywords whose text matters to the statement, such as operators.
func (b *RuleBuilder) AddKeywordAs(field string, kw lexer.Keyword) *RuleBuilder {
	b.commands = append(b.commands, Command{Type: KeywordCommand, Field: field, Keyword: kw})
	return b
}

// AddGet adds a slot matching a Name or Literal, bound under field.
func (b *RuleBuilder) AddGet(field string) *RuleBuilder {
	b.commands = append(b.commands, Command{Type: GetCommand, Field: field})
	return b
}

// AddSequence appends the commands of seq in place.
func (b *RuleBuilder) AddSequence(seq *RuleBuilder) *RuleBuilder {
	b.commands = append(b.commands, seq.commands...)
	return b
}

// AddIgnoreEOS adds a slot that skips line ends, so the rule can continue
// on the next line. It binds nothing and ends the signature.
func (b *RuleBuilder) AddIgnoreEOS() *RuleBuilder {
	b.commands = append(b.commands, Command{Type: IgnoreEOSCommand})
	return b
}

// AddRepeat adds a sub-sequence that cycles until a token fails to match.
func (b *RuleBuilder) AddRepeat(body *RuleBuilder) *RuleBuilder {
	b.commands = append(b.commands, Command{Type: RepeatCommand, Body: body.commands})
	return b
}

// AddOr adds a choice between sub-sequences. The first alternative whose
// first slot accepts the next token is taken.
func (b *RuleBuilder) AddOr(alternatives ...*RuleBuilder) *RuleBuilder {
	alts := make([][]Command, len(alternatives))
	for i, alt := range alternatives {
		alts[i] = alt.commands
	}
	b.commands = append(b.commands, Command{Type: OrCommand, Alternatives: alts})
	return b
}

// AddStatement adds a slot matching a complete statement of one of the named
// rules, bound under field.
func (b *RuleBuilder) AddStatement(field string, rules ...string) *RuleBuilder {
	b.commands = append(b.commands, Command{
		Type:  StatementCommand,
		Field: field,
		Rules: append([]string(nil), rules...),
	})
	return b
}

// Build validates the commands and returns the finished rule.
func (b *RuleBuilder) Build() (*Rule, error) {
	if b.name == "" {
		return nil, fmt.Errorf("%w: rule has no name", ErrInvalidRule)
	}
	if err := checkSequence(b.commands); err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrInvalidRule, b.name, err)
	}

	commands := append([]Command(nil), b.commands...)
	return &Rule{
		Name:      b.name,
		Commands:  commands,
		signature: computeSignature(commands),
	}, nil
}

// MustBuild is like Build but panics on error. It is meant for built-in
// grammars, which should never be invalid.
func (b *RuleBuilder) MustBuild() *Rule {
	r, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("Invalid built-in rule: %v", err))
	}
	return r
}

// checkSequence rejects sequences that could loop or stall without
// consuming a token.
func checkSequence(seq []Command) error {
	if len(seq) == 0 {
		return fmt.Errorf("empty sequence")
	}
	if seq[0].Type == IgnoreEOSCommand {
		return fmt.Errorf("sequence starts with a line-end skip")
	}
	for _, c := range seq {
		switch c.Type {
		case KeywordCommand:
			if !c.Keyword.Valid() {
				return fmt.Errorf("unknown keyword %d", int(c.Keyword))
			}
		case RepeatCommand:
			if len(c.Body) == 0 {
				return fmt.Errorf("empty repeat body")
			}
			if c.Body[0].Type == RepeatCommand {
				return fmt.Errorf("repeat body starts with a repeat")
			}
			if err := checkSequence(c.Body); err != nil {
				return err
			}
		case OrCommand:
			if len(c.Alternatives) == 0 {
				return fmt.Errorf("or without alternatives")
			}
			for _, alt := range c.Alternatives {
				if len(alt) == 0 {
					return fmt.Errorf("empty or alternative")
				}
				if alt[0].Type == RepeatCommand {
					return fmt.Errorf("or alternative starts with a repeat")
				}
				if err := checkSequence(alt); err != nil {
					return err
				}
			}
		case StatementCommand:
			if len(c.Rules) == 0 {
				return fmt.Errorf("statement slot '%s' names no rules", c.Field)
			}
		}
	}
	return nil
}
