package parser

import "strings"

// Unit is one step of a rule: a symbol, an optional separator consumed before it,
// and the repetition flags the owning rule applies.
type Unit struct {
	symbol         Symbol
	prefix         *Symbol
	prefixIncluded bool
	optional       bool
	greedy         bool
}

func NewUnit(symbol Symbol) Unit {
	return Unit{symbol: symbol}
}

// Optional returns a copy of u that the rule skips when it fails.
func (u Unit) Optional() Unit {
	u.optional = true
	return u
}

// Greedy returns a copy of u that the rule repeats until it fails.
func (u Unit) Greedy() Unit {
	u.greedy = true
	return u
}

// WithPrefix returns a copy of u that consumes prefix before its symbol. If included,
// the prefix match is captured along with the symbol's.
func (u Unit) WithPrefix(prefix Symbol, included bool) Unit {
	u.prefix = &prefix
	u.prefixIncluded = included
	return u
}

func (u Unit) Symbol() Symbol   { return u.symbol }
func (u Unit) Name() string     { return u.symbol.name }
func (u Unit) IsOptional() bool { return u.optional }
func (u Unit) IsGreedy() bool   { return u.greedy }

// Prefix returns the separator symbol, if any, and whether it is captured.
func (u Unit) Prefix() (prefix Symbol, included, ok bool) {
	if u.prefix == nil {
		return Symbol{}, false, false
	}
	return *u.prefix, u.prefixIncluded, true
}

func (u Unit) symbols() []Symbol {
	if u.prefix != nil {
		return []Symbol{*u.prefix, u.symbol}
	}
	return []Symbol{u.symbol}
}

func (u Unit) String() string {
	var sb strings.Builder
	if u.prefix != nil {
		sb.WriteString(u.prefix.String())
		if u.prefixIncluded {
			sb.WriteString("+")
		}
		sb.WriteString(" ")
	}
	sb.WriteString(u.symbol.String())
	switch {
	case u.optional && u.greedy:
		sb.WriteString("*")
	case u.optional:
		sb.WriteString("?")
	case u.greedy:
		sb.WriteString("+")
	}
	return sb.String()
}

type unitMatch struct {
	consumed Node   // spans the prefix and the symbol
	captured []Node // what the owning rule records under the unit's name
}

// match makes one attempt at u. A prefix pattern that matches no input counts as an
// absent separator rather than a failure.
func (u Unit) match(scope Scope, source string, prev *Node) (unitMatch, error) {
	var captured []Node
	after := prev
	skip := 0
	if u.prefix != nil {
		p, err := u.prefix.match(scope, source, prev)
		switch kind, _ := KindOf(err); {
		case err == nil:
			if u.prefixIncluded && u.symbol.name != "" {
				captured = append(captured, p)
			}
			after = &p
			skip = len(p.raw)
		case kind != EmptyMatch:
			return unitMatch{}, err
		}
	}
	primary, err := u.symbol.match(scope, source[skip:], after)
	if err != nil {
		return unitMatch{}, err
	}
	if u.symbol.name != "" {
		captured = append(captured, primary)
	}
	consumed := primary
	if skip > 0 {
		consumed = newNode(Match, source[:skip+len(primary.raw)], Captures{}, prev)
	}
	return unitMatch{consumed: consumed, captured: captured}, nil
}
