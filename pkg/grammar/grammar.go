package grammar

import (
	"fmt"
	"sync"
)

// Grammar is a set of named rules. Top-level rules form the candidate pool
// at the start of every statement; fragments are only reachable through
// Statement slots.
type Grammar struct {
	rules map[string]*Rule
	order []*Rule // every rule, in registration order
	top   []*Rule

	mu        sync.RWMutex
	validated bool
	err       error
}

// NewGrammar creates an empty grammar.
func NewGrammar() *Grammar {
	return &Grammar{rules: make(map[string]*Rule)}
}

// AddRule registers a top-level rule.
func (g *Grammar) AddRule(r *Rule) error {
	return g.register(r, true)
}

// AddFragment registers a rule that can only appear inside a Statement slot.
func (g *Grammar) AddFragment(r *Rule) error {
	return g.register(r, false)
}

func (g *Grammar) register(r *Rule, top bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.rules[r.Name]; exists {
		return &GrammarError{Rules: []string{r.Name}, Err: ErrDuplicateRule}
	}
	g.rules[r.Name] = r
	g.order = append(g.order, r)
	if top {
		g.top = append(g.top, r)
	}
	g.validated = false
	return nil
}

// Rule looks a rule up by name.
func (g *Grammar) Rule(name string) (*Rule, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rules[name]
	return r, ok
}

// Rules returns the top-level rules in registration order.
func (g *Grammar) Rules() []*Rule {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Rule(nil), g.top...)
}

// Validate checks that every Statement slot names known rules and that
// every candidate pool can be disambiguated within its signatures. The
// result is cached until another rule is added.
func (g *Grammar) Validate() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.validated {
		g.err = g.validate()
		g.validated = true
	}
	return g.err
}

func (g *Grammar) validate() error {
	if len(g.top) == 0 {
		return ErrEmptyGrammar
	}
	if err := checkPool(g.top, 0); err != nil {
		return err
	}

	for _, r := range g.order {
		if err := g.validateSequence(r, r.Commands); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grammar) validateSequence(owner *Rule, seq []Command) error {
	for _, c := range seq {
		switch c.Type {
		case RepeatCommand:
			if err := g.validateSequence(owner, c.Body); err != nil {
				return err
			}
		case OrCommand:
			for _, alt := range c.Alternatives {
				if err := g.validateSequence(owner, alt); err != nil {
					return err
				}
			}
		case StatementCommand:
			pool, err := g.pool(c.Rules)
			if err != nil {
				return &GrammarError{Rules: []string{owner.Name}, Err: err}
			}
			if err := checkPool(pool, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolve is pool for callers that do not hold the lock.
func (g *Grammar) resolve(names []string) ([]*Rule, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pool(names)
}

// pool resolves rule names to rules. The caller holds g.mu.
func (g *Grammar) pool(names []string) ([]*Rule, error) {
	pool := make([]*Rule, 0, len(names))
	for _, name := range names {
		r, ok := g.rules[name]
		if !ok {
			return nil, fmt.Errorf("%w '%s'", ErrUnknownRule, name)
		}
		pool = append(pool, r)
	}
	return pool, nil
}

// checkPool proves that rules can be narrowed to one by comparing signature
// elements from position k onwards. Rules sharing an element at k are
// compared again at k+1; any rule in such a group whose signature has
// already ended overlaps with the others.
func checkPool(rules []*Rule, k int) error {
	if len(rules) <= 1 {
		return nil
	}

	var keys []TokenMatch
	groups := make(map[TokenMatch][]*Rule)
	for _, r := range rules {
		m, ok := r.SignatureAt(k)
		if !ok {
			return &GrammarError{Rules: ruleNames(rules), Index: k, Err: ErrOverlappingSignature}
		}
		if _, seen := groups[m]; !seen {
			keys = append(keys, m)
		}
		groups[m] = append(groups[m], r)
	}

	for _, m := range keys {
		if err := checkPool(groups[m], k+1); err != nil {
			return err
		}
	}
	return nil
}

func ruleNames(rules []*Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}
