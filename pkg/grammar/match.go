package grammar

import "github.com/spicery/pdxlua/pkg/lexer"

// frame is a position inside one command sequence: the rule body, an
// entered Repeat body or a chosen Or alternative.
type frame struct {
	seq    []Command
	index  int
	repeat bool
}

// match drives one rule over a token sequence. It is created fresh for
// every parse attempt and discarded afterwards.
type match struct {
	rule     *Rule
	grammar  *Grammar
	observer Observer

	stack    []frame
	fields   map[string][]Binding
	pos      lexer.Position
	consumed int
	child    *selector // nested statement in progress
}

func newMatch(r *Rule, g *Grammar, obs Observer) *match {
	return &match{
		rule:     r,
		grammar:  g,
		observer: obs,
		stack:    []frame{{seq: r.Commands}},
		fields:   make(map[string][]Binding),
	}
}

// settle moves the position to the slot that will receive tok. Finished
// sequences are popped, Repeats and Ors are entered, and Repeats that do not
// match tok are left. When end is set, tok is ignored and nothing matches,
// so only trailing Repeats can be left behind. An empty stack afterwards
// means the rule is complete.
func (m *match) settle(tok lexer.Token, end bool) error {
	for len(m.stack) > 0 {
		top := &m.stack[len(m.stack)-1]
		if top.index == len(top.seq) {
			if top.repeat {
				top.index = 0
				continue
			}
			m.pop()
			continue
		}

		cmd := top.seq[top.index]
		switch cmd.Type {
		case RepeatCommand:
			m.stack = append(m.stack, frame{seq: cmd.Body, repeat: true})
			continue
		case OrCommand:
			if !end {
				if alt, ok := m.chooseAlternative(cmd, tok); ok {
					m.stack = append(m.stack, frame{seq: alt})
					continue
				}
			}
		case StatementCommand:
			if !end && m.grammar.startsStatement(cmd.Rules, tok) {
				return nil
			}
		case IgnoreEOSCommand:
			if !end && tok.IsEOS() {
				return nil
			}
			top.index++
			continue
		default:
			if !end && cmd.accepts(tok) {
				return nil
			}
		}

		// No match here.
		if !top.repeat {
			if end {
				return unexpectedEnd(m.rule.Name)
			}
			return unexpectedToken(tok, m.rule.Name)
		}
		if end {
			m.observer.RepeatEnded(m.rule.Name, lexer.Token{})
		} else {
			m.observer.RepeatEnded(m.rule.Name, tok)
		}
		m.pop()
	}
	return nil
}

// pop discards the top frame and steps the parent past the command that
// pushed it.
func (m *match) pop() {
	m.stack = m.stack[:len(m.stack)-1]
	if len(m.stack) > 0 {
		m.stack[len(m.stack)-1].index++
	}
}

func (m *match) chooseAlternative(cmd Command, tok lexer.Token) ([]Command, bool) {
	for _, alt := range cmd.Alternatives {
		if m.grammar.sequenceStarts(alt, tok, nil) {
			return alt, true
		}
	}
	return nil, false
}

// satiated reports whether the rule is complete given that tok comes next.
func (m *match) satiated(tok lexer.Token) (bool, error) {
	if m.child != nil {
		done, err := m.child.satiated(tok)
		if err != nil || !done {
			return false, err
		}
		m.finishChild()
	}
	if err := m.settle(tok, false); err != nil {
		return false, err
	}
	return len(m.stack) == 0, nil
}

// satiatedAtEnd completes the rule at end of input, or fails with
// UnexpectedEnd.
func (m *match) satiatedAtEnd() error {
	if m.child != nil {
		if err := m.child.satiatedAtEnd(); err != nil {
			return err
		}
		m.finishChild()
	}
	return m.settle(lexer.Token{}, true)
}

// eat consumes tok.
func (m *match) eat(tok lexer.Token) error {
	if m.child != nil {
		done, err := m.child.satiated(tok)
		if err != nil {
			return err
		}
		if !done {
			if err := m.child.eat(tok); err != nil {
				return err
			}
			m.consumed++
			return nil
		}
		m.finishChild()
	}

	if err := m.settle(tok, false); err != nil {
		return err
	}
	if len(m.stack) == 0 {
		return unexpectedToken(tok, m.rule.Name)
	}

	top := &m.stack[len(m.stack)-1]
	cmd := top.seq[top.index]
	if m.consumed == 0 {
		m.pos = tok.Pos
	}
	m.consumed++

	if cmd.Type == StatementCommand {
		pool, err := m.grammar.resolve(cmd.Rules)
		if err != nil {
			return err
		}
		m.child = newSelector(pool, m.grammar, m.observer)
		return m.child.eat(tok)
	}

	if cmd.Type == IgnoreEOSCommand {
		// Stays on the slot until a token other than EOS arrives.
		m.observer.Consumed(m.rule.Name, "", tok)
		return nil
	}

	if cmd.binds() {
		m.fields[cmd.Field] = append(m.fields[cmd.Field], Binding{Token: tok})
	}
	m.observer.Consumed(m.rule.Name, cmd.Field, tok)
	top.index++
	return nil
}

// finishChild binds the completed nested statement and steps past its slot.
func (m *match) finishChild() {
	stmt := m.child.statement()
	m.child = nil

	top := &m.stack[len(m.stack)-1]
	if field := top.seq[top.index].Field; field != "" {
		m.fields[field] = append(m.fields[field], Binding{Statement: stmt})
	}
	top.index++
}

func (m *match) statement() *Statement {
	stmt := &Statement{Rule: m.rule.Name, Pos: m.pos, Fields: m.fields}
	m.observer.Completed(stmt)
	return stmt
}

// selector narrows a pool of rules by signature, one token at a time, then
// hands the saved tokens and everything after them to the winner.
type selector struct {
	grammar  *Grammar
	observer Observer
	pool     []*Rule
	saved    []lexer.Token
	match    *match
}

func newSelector(pool []*Rule, g *Grammar, obs Observer) *selector {
	s := &selector{grammar: g, observer: obs, pool: pool}
	if len(pool) == 1 {
		s.observer.Selected(pool[0].Name, 0)
		s.match = newMatch(pool[0], g, obs)
	}
	return s
}

func (s *selector) eat(tok lexer.Token) error {
	if s.match != nil {
		return s.match.eat(tok)
	}

	k := len(s.saved)
	s.pool = trimPool(s.pool, k, tok)
	s.observer.Candidates(k, tok, ruleNames(s.pool))
	if len(s.pool) == 0 {
		return unexpectedToken(tok, "")
	}
	s.saved = append(s.saved, tok)
	if len(s.pool) > 1 {
		return nil
	}

	winner := s.pool[0]
	s.observer.Selected(winner.Name, len(s.saved))
	s.match = newMatch(winner, s.grammar, s.observer)
	for _, saved := range s.saved {
		if err := s.match.eat(saved); err != nil {
			return err
		}
	}
	return nil
}

func (s *selector) satiated(tok lexer.Token) (bool, error) {
	if s.match == nil {
		return false, nil
	}
	return s.match.satiated(tok)
}

func (s *selector) satiatedAtEnd() error {
	if s.match == nil {
		return unexpectedEnd("")
	}
	return s.match.satiatedAtEnd()
}

// consumed counts the tokens taken so far, including those awaiting replay.
func (s *selector) consumed() int {
	if s.match == nil {
		return len(s.saved)
	}
	return s.match.consumed
}

func (s *selector) statement() *Statement {
	return s.match.statement()
}

// trimPool keeps the rules whose signature element at k matches tok.
func trimPool(pool []*Rule, k int, tok lexer.Token) []*Rule {
	var kept []*Rule
	for _, r := range pool {
		if m, ok := r.SignatureAt(k); ok && m.Matches(tok) {
			kept = append(kept, r)
		}
	}
	return kept
}

// startsStatement reports whether tok can begin a statement of one of the
// named rules.
func (g *Grammar) startsStatement(names []string, tok lexer.Token) bool {
	return g.statementStarts(names, tok, make(map[string]bool))
}

func (g *Grammar) statementStarts(names []string, tok lexer.Token, visiting map[string]bool) bool {
	for _, name := range names {
		r, ok := g.Rule(name)
		if !ok || visiting[name] {
			continue
		}
		visiting[name] = true
		if g.sequenceStarts(r.Commands, tok, visiting) {
			return true
		}
	}
	return false
}

// sequenceStarts reports whether tok can be the first token consumed by
// seq. Leading Repeats may be skipped, so the commands after them count too.
func (g *Grammar) sequenceStarts(seq []Command, tok lexer.Token, visiting map[string]bool) bool {
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	for _, c := range seq {
		switch c.Type {
		case RepeatCommand:
			if g.sequenceStarts(c.Body, tok, visiting) {
				return true
			}
			continue
		case OrCommand:
			for _, alt := range c.Alternatives {
				if g.sequenceStarts(alt, tok, visiting) {
					return true
				}
			}
			return false
		case StatementCommand:
			return g.statementStarts(c.Rules, tok, visiting)
		case IgnoreEOSCommand:
			// A statement never starts with a line end.
			continue
		default:
			return c.accepts(tok)
		}
	}
	return false
}
