package parser

import (
	"fmt"
	"strings"
)

// Transform rewrites the node a rule produced. It must be pure and return a node
// with the same raw text and range as its input, typically built with WithChildren
// or Derive. Any other result fails the parse with InvalidTransform.
type Transform func(Node) Node

func identity(n Node) Node { return n }

// Rule is an ordered sequence of units together with its failure, recovery and
// transform policy.
type Rule struct {
	units     []Unit
	failure   *string
	recovery  *Symbol
	transform Transform
}

func NewRule(units ...Unit) Rule {
	return Rule{units: units, transform: identity}
}

// Throw returns a rule that always fails with a CustomThrow carrying msg.
func Throw(msg string) Rule {
	return NewRule().WithFailure(msg)
}

// WithFailure returns a copy of r that fails unconditionally with msg.
func (r Rule) WithFailure(msg string) Rule {
	r.failure = &msg
	return r
}

// WithRecovery returns a copy of r that, on failure, scans ahead for recovery and
// yields a Recover node spanning everything up to and including its match.
func (r Rule) WithRecovery(recovery Symbol) Rule {
	r.recovery = &recovery
	return r
}

// WithTransform returns a copy of r whose successful matches are passed through fn.
func (r Rule) WithTransform(fn Transform) Rule {
	if fn == nil {
		fn = identity
	}
	r.transform = fn
	return r
}

func (r Rule) Units() []Unit {
	return append([]Unit(nil), r.units...)
}

// Failure returns the unconditional failure message, if any.
func (r Rule) Failure() (string, bool) {
	if r.failure == nil {
		return "", false
	}
	return *r.failure, true
}

// Recovery returns the recovery symbol, if any.
func (r Rule) Recovery() (Symbol, bool) {
	if r.recovery == nil {
		return Symbol{}, false
	}
	return *r.recovery, true
}

func (r Rule) symbols() []Symbol {
	var out []Symbol
	for _, u := range r.units {
		out = append(out, u.symbols()...)
	}
	if r.recovery != nil {
		out = append(out, *r.recovery)
	}
	return out
}

func (r Rule) String() string {
	if r.failure != nil {
		return fmt.Sprintf("throw %q", *r.failure)
	}
	parts := make([]string, 0, len(r.units)+1)
	for _, u := range r.units {
		parts = append(parts, u.String())
	}
	if r.recovery != nil {
		parts = append(parts, "~> "+r.recovery.String())
	}
	return strings.Join(parts, " ")
}

func (r Rule) parse(scope Scope, source string, prev *Node) (out Node, err error) {
	defer scope.enterf("rule %s", r).exit(&out, &err)

	if r.failure != nil {
		err = newParseError(CustomThrow, follow(prev), "%s", *r.failure)
	} else if out, err = r.match(scope, source, prev); err == nil {
		return r.apply(out)
	}

	if r.recovery != nil && isRecoverable(err) {
		if n, ok := r.recovery.find(scope, source, prev); ok {
			return n, nil
		}
	}
	return Node{}, err
}

func (r Rule) match(scope Scope, source string, prev *Node) (Node, error) {
	var captures captureSet
	cursor := 0
	after := prev
	accept := func(m unitMatch, name string) {
		cursor += len(m.consumed.raw)
		captures.add(name, m.captured...)
		consumed := m.consumed
		after = &consumed
	}

	for _, u := range r.units {
		m, err := u.match(scope, source[cursor:], after)
		if err != nil {
			if u.optional && isSoft(err) {
				continue
			}
			return Node{}, err
		}
		accept(m, u.Name())
		for u.greedy && len(m.consumed.raw) > 0 {
			if m, err = u.match(scope, source[cursor:], after); err != nil {
				if isSoft(err) {
					break
				}
				return Node{}, err
			}
			accept(m, u.Name())
		}
	}
	return newNode(Match, source[:cursor], captures.freeze(), prev), nil
}

func (r Rule) apply(n Node) (Node, error) {
	if r.transform == nil {
		return n, nil
	}
	out := r.transform(n)
	if out.raw != n.raw || out.meta.Range != n.meta.Range {
		return Node{}, newParseError(InvalidTransform, n.meta.Range.Start,
			"transform of rule %s changed the matched span from %s%q to %s%q",
			r, n.meta.Range, n.raw, out.meta.Range, out.raw)
	}
	return out, nil
}
