package grammar

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/spicery/pdxlua/pkg/lexer"
)

func TestGrammarValidation(t *testing.T) {
	tests := []struct {
		name      string
		rules     []*RuleBuilder
		fragments []*RuleBuilder
		err       error
		rulesIn   []string // rules named by a GrammarError
		index     int
	}{
		{
			name: "Distinct first keyword",
			rules: []*RuleBuilder{
				NewRuleBuilder("A").AddKeyword(lexer.If),
				NewRuleBuilder("B").AddKeyword(lexer.While),
			},
		},
		{
			name: "Diverging at position one",
			rules: []*RuleBuilder{
				NewRuleBuilder("CALL").AddName("").AddKeyword(lexer.LeftParen).AddRepeat(Seq().AddGet("a")),
				NewRuleBuilder("ASSIGN").AddName("").AddKeyword(lexer.Equal).AddGet("v"),
			},
		},
		{
			name: "Both signatures end together",
			rules: []*RuleBuilder{
				NewRuleBuilder("A").AddName("").AddGet("x"),
				NewRuleBuilder("B").AddName("").AddGet("y"),
			},
			err:     ErrOverlappingSignature,
			rulesIn: []string{"A", "B"},
			index:   1,
		},
		{
			name: "One signature is a prefix of another",
			rules: []*RuleBuilder{
				NewRuleBuilder("C").AddKeyword(lexer.If),
				NewRuleBuilder("A").AddName("").AddKeyword(lexer.LeftParen),
				NewRuleBuilder("B").AddName("").AddKeyword(lexer.LeftParen).AddKeyword(lexer.RightParen),
			},
			err:     ErrOverlappingSignature,
			rulesIn: []string{"A", "B"},
			index:   2,
		},
		{
			name: "Overlap inside a statement slot pool",
			rules: []*RuleBuilder{
				NewRuleBuilder("HOLDER").AddKeyword(lexer.Return).AddStatement("v", "X", "Y"),
			},
			fragments: []*RuleBuilder{
				NewRuleBuilder("X").AddKeyword(lexer.LeftCurly).AddGet("a"),
				NewRuleBuilder("Y").AddKeyword(lexer.LeftCurly).AddGet("b"),
			},
			err:     ErrOverlappingSignature,
			rulesIn: []string{"X", "Y"},
			index:   1,
		},
		{
			name: "Unknown rule in statement slot",
			rules: []*RuleBuilder{
				NewRuleBuilder("HOLDER").AddKeyword(lexer.Return).AddStatement("v", "MISSING"),
			},
			err:     ErrUnknownRule,
			rulesIn: []string{"HOLDER"},
		},
		{
			name: "Fragments stay out of the top-level pool",
			rules: []*RuleBuilder{
				NewRuleBuilder("A").AddName("").AddGet("x"),
			},
			fragments: []*RuleBuilder{
				NewRuleBuilder("B").AddName("").AddGet("y"),
			},
		},
		{
			name: "No top-level rules",
			err:  ErrEmptyGrammar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrammar()
			for _, b := range tt.rules {
				if err := g.AddRule(b.MustBuild()); err != nil {
					t.Fatalf("Unexpected error adding rule: %v", err)
				}
			}
			for _, b := range tt.fragments {
				if err := g.AddFragment(b.MustBuild()); err != nil {
					t.Fatalf("Unexpected error adding fragment: %v", err)
				}
			}

			err := g.Validate()
			if tt.err == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected %v, got %v", tt.err, err)
			}

			var gerr *GrammarError
			if tt.rulesIn == nil {
				return
			}
			if !errors.As(err, &gerr) {
				t.Fatalf("Expected a GrammarError, got %T", err)
			}
			if !reflect.DeepEqual(gerr.Rules, tt.rulesIn) {
				t.Errorf("Expected rules %v, got %v", tt.rulesIn, gerr.Rules)
			}
			if gerr.Index != tt.index {
				t.Errorf("Expected index %d, got %d", tt.index, gerr.Index)
			}
		})
	}
}

func TestGrammarRejectsDuplicateNames(t *testing.T) {
	g := NewGrammar()
	if err := g.AddRule(NewRuleBuilder("A").AddKeyword(lexer.If).MustBuild()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	err := g.AddFragment(NewRuleBuilder("A").AddKeyword(lexer.While).MustBuild())
	if !errors.Is(err, ErrDuplicateRule) {
		t.Errorf("Expected ErrDuplicateRule, got %v", err)
	}
	if len(g.Rules()) != 1 {
		t.Errorf("Expected 1 top-level rule, got %d", len(g.Rules()))
	}
}

func TestValidateResetsAfterAddRule(t *testing.T) {
	g := NewGrammar()
	_ = g.AddRule(NewRuleBuilder("A").AddName("").AddGet("x").MustBuild())
	if err := g.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_ = g.AddRule(NewRuleBuilder("B").AddName("").AddGet("y").MustBuild())
	if err := g.Validate(); !errors.Is(err, ErrOverlappingSignature) {
		t.Errorf("Expected ErrOverlappingSignature after adding B, got %v", err)
	}
}

func TestGrammarErrorMessage(t *testing.T) {
	err := &GrammarError{Rules: []string{"A", "B"}, Index: 1, Err: ErrOverlappingSignature}
	expected := "overlapping signature: rules A, B cannot be told apart at signature position 1"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestDialectIsValid(t *testing.T) {
	g := Dialect()
	if err := g.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := g.Rule(TableRule); !ok {
		t.Errorf("Expected the %s fragment to be registered", TableRule)
	}
	for _, r := range g.Rules() {
		if r.Name == TableRule {
			t.Errorf("Expected %s to stay out of the top-level pool", TableRule)
		}
	}
}

func TestGrammarSharedWhileRegistering(t *testing.T) {
	g := Dialect()
	src := "t = { a = 1 , b = 2 , }\nfoo ( a ,\n  b )\n"

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := Parse(src, g); err != nil {
					errs <- err
					return
				}
			}
		}()
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				name := fmt.Sprintf("EXTRA_%d_%d", i, j)
				r := NewRuleBuilder(name).AddKeyword(lexer.LeftBracket).AddName("x").MustBuild()
				if err := g.AddFragment(r); err != nil {
					errs <- err
					return
				}
				g.Rule(name)
				g.Rules()
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, ok := g.Rule("EXTRA_3_19"); !ok {
		t.Errorf("Expected every fragment to be registered")
	}
}
