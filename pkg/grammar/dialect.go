package grammar

import (
	"fmt"

	"github.com/spicery/pdxlua/pkg/lexer"
)

// Rule names of the pdxlua dialect.
const (
	RequireRule            = "REQUIRE"
	ExecuteRule            = "EXECUTE"
	PdxBlockRule           = "PDX_BLOCK"
	FunctionDefinitionRule = "FUNCTION_DEFINITION"
	FunctionCallRule       = "FUNCTION_CALL"
	AssignmentRule         = "ASSIGNMENT"
	IfRule                 = "IF"
	WhileRule              = "WHILE"
	ForRule                = "FOR"
	ElseRule               = "ELSE"
	ReturnRule             = "RETURN"
	BlockEndRule           = "BLOCK_END"
	TableRule              = "TABLE"
)

// argumentList matches `( a , b , ... )` with each argument bound under field.
// The list may break across lines after the opener, after a comma and
// before the closer.
func argumentList(field string) *RuleBuilder {
	return Seq().
		AddKeyword(lexer.LeftParen).
		AddIgnoreEOS().
		AddRepeat(Seq().AddGet(field).AddKeyword(lexer.Comma).AddIgnoreEOS()).
		AddIgnoreEOS().
		AddKeyword(lexer.RightParen)
}

var arithmetic = []lexer.Keyword{lexer.Plus, lexer.Minus, lexer.Multiply, lexer.Divide}

// operators returns one alternative per arithmetic keyword, each bound under
// field so that the field holds the expression's tokens in source order.
func operators(field string) []*RuleBuilder {
	alts := make([]*RuleBuilder, 0, len(arithmetic))
	for _, kw := range arithmetic {
		alts = append(alts, Seq().AddKeywordAs(field, kw))
	}
	return alts
}

// expressionPart matches one operand or operator of a free-form expression.
func expressionPart(field string) *RuleBuilder {
	alts := append([]*RuleBuilder{Seq().AddGet(field)}, operators(field)...)
	return Seq().AddOr(alts...)
}

func parameterList() *RuleBuilder {
	return Seq().
		AddKeyword(lexer.LeftParen).
		AddIgnoreEOS().
		AddRepeat(Seq().AddName("param").AddKeyword(lexer.Comma).AddIgnoreEOS()).
		AddIgnoreEOS().
		AddKeyword(lexer.RightParen)
}

// Dialect returns the grammar of the pdxlua modding-script dialect. Block
// bodies are not nested: openers (function, if, while, for, pdx) and `end`
// are separate statements. Argument, parameter and table lists may span
// lines; everything else ends at the line end.
func Dialect() *Grammar {
	g := NewGrammar()

	rules := []*RuleBuilder{
		NewRuleBuilder(RequireRule).AddKeyword(lexer.Require).AddGet("module"),
		NewRuleBuilder(ExecuteRule).AddKeyword(lexer.Execute).AddGet("target"),
		NewRuleBuilder(PdxBlockRule).AddKeyword(lexer.Pdx).AddName("name").AddKeyword(lexer.Do),
		NewRuleBuilder(FunctionDefinitionRule).
			AddKeyword(lexer.Function).
			AddName("name").
			AddSequence(parameterList()),
		NewRuleBuilder(FunctionCallRule).
			AddName("fn").
			AddSequence(argumentList("arg")),
		NewRuleBuilder(AssignmentRule).
			AddName("target").
			AddKeyword(lexer.Equal).
			AddOr(
				Seq().AddKeyword(lexer.Function).AddSequence(parameterList()),
				Seq().AddStatement("value", TableRule),
				Seq().AddGet("value").AddRepeat(Seq().AddOr(
					argumentList("arg"),
					Seq().AddOr(operators("value")...).AddGet("value"),
				)),
			),
		NewRuleBuilder(IfRule).
			AddKeyword(lexer.If).
			AddRepeat(expressionPart("condition")).
			AddKeyword(lexer.Then),
		NewRuleBuilder(WhileRule).
			AddKeyword(lexer.While).
			AddRepeat(expressionPart("condition")).
			AddKeyword(lexer.Do),
		NewRuleBuilder(ForRule).
			AddKeyword(lexer.For).
			AddName("var").
			AddKeyword(lexer.Equal).
			AddGet("from").
			AddKeyword(lexer.Comma).
			AddGet("to").
			AddKeyword(lexer.Do),
		NewRuleBuilder(ElseRule).AddKeyword(lexer.Else),
		NewRuleBuilder(ReturnRule).AddKeyword(lexer.Return).AddRepeat(expressionPart("value")),
		NewRuleBuilder(BlockEndRule).AddKeyword(lexer.End),
	}
	for _, b := range rules {
		mustAdd(g.AddRule(b.MustBuild()))
	}

	table := NewRuleBuilder(TableRule).
		AddKeyword(lexer.LeftCurly).
		AddIgnoreEOS().
		AddRepeat(Seq().
			AddName("key").
			AddKeyword(lexer.Equal).
			AddGet("value").
			AddKeyword(lexer.Comma).
			AddIgnoreEOS()).
		AddIgnoreEOS().
		AddKeyword(lexer.RightCurly)
	mustAdd(g.AddFragment(table.MustBuild()))

	// The built-in grammar should never be ambiguous, so we panic if it is
	if err := g.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid dialect grammar: %v", err))
	}
	return g
}

func mustAdd(err error) {
	if err != nil {
		panic(fmt.Sprintf("Invalid dialect grammar: %v", err))
	}
}
