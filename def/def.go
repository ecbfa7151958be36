// Package def holds the plain-data form of a grammar: variant names mapped to rule
// descriptions. It is what grammar files, the builder and code generation exchange,
// and Compile turns it into a parser.Grammar.
package def

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arr-ai/descent/parser"
)

// SymbolType names a kind of symbol.
type SymbolType string

const (
	Literal   SymbolType = "Literal"
	Pattern   SymbolType = "Pattern"
	Reference SymbolType = "Reference"
)

// Grammar maps variant names to their rules, in order of preference.
type Grammar map[string][]Rule

type Rule struct {
	Units          []Unit  `json:"units" yaml:"units"`
	FailureMessage *string `json:"failureMessage" yaml:"failureMessage"`
	RecoveryUnit   *Symbol `json:"recoveryUnit" yaml:"recoveryUnit"`
	// Transform names an entry of the transform table passed to Compile.
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty"`
}

type Unit struct {
	Type     SymbolType `json:"type" yaml:"type"`
	Value    string     `json:"value" yaml:"value"`
	Name     *string    `json:"name" yaml:"name"`
	Optional bool       `json:"optional" yaml:"optional"`
	Greedy   bool       `json:"greedy" yaml:"greedy"`
	Prefix   *Prefix    `json:"prefix" yaml:"prefix"`
}

type Prefix struct {
	Type     SymbolType `json:"type" yaml:"type"`
	Value    string     `json:"value" yaml:"value"`
	Included bool       `json:"included" yaml:"included"`
}

type Symbol struct {
	Type  SymbolType `json:"type" yaml:"type"`
	Value string     `json:"value" yaml:"value"`
}

// Names returns the variant names in sorted order.
func (g Grammar) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransformNames lists the distinct transform names used by g's rules, sorted.
func (g Grammar) TransformNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, rules := range g {
		for _, r := range rules {
			if r.Transform != "" && !seen[r.Transform] {
				seen[r.Transform] = true
				names = append(names, r.Transform)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Compile builds a parser.Grammar from g. Rules naming a transform take it from
// transforms.
func Compile(g Grammar, transforms map[string]parser.Transform) (*parser.Grammar, error) {
	variants := make(map[string][]parser.Rule, len(g))
	for _, name := range g.Names() {
		rules := make([]parser.Rule, 0, len(g[name]))
		for i, r := range g[name] {
			rule, err := r.compile(transforms)
			if err != nil {
				return nil, fmt.Errorf("variant %q rule %d: %w", name, i, err)
			}
			rules = append(rules, rule)
		}
		variants[name] = rules
	}
	return parser.NewGrammar(variants)
}

func (r Rule) compile(transforms map[string]parser.Transform) (parser.Rule, error) {
	if r.FailureMessage != nil {
		if len(r.Units) > 0 {
			return parser.Rule{}, fmt.Errorf("failure rule %q must not have units", *r.FailureMessage)
		}
		return r.policy(parser.Throw(*r.FailureMessage), transforms)
	}
	units := make([]parser.Unit, 0, len(r.Units))
	for i, u := range r.Units {
		unit, err := u.compile()
		if err != nil {
			return parser.Rule{}, fmt.Errorf("unit %d: %w", i, err)
		}
		units = append(units, unit)
	}
	return r.policy(parser.NewRule(units...), transforms)
}

func (r Rule) policy(rule parser.Rule, transforms map[string]parser.Transform) (parser.Rule, error) {
	if r.RecoveryUnit != nil {
		sym, err := symbol(r.RecoveryUnit.Type, r.RecoveryUnit.Value)
		if err != nil {
			return parser.Rule{}, fmt.Errorf("recovery: %w", err)
		}
		rule = rule.WithRecovery(sym)
	}
	if r.Transform != "" {
		fn, has := transforms[r.Transform]
		if !has {
			return parser.Rule{}, fmt.Errorf("unknown transform %q", r.Transform)
		}
		rule = rule.WithTransform(fn)
	}
	return rule, nil
}

func (u Unit) compile() (parser.Unit, error) {
	sym, err := symbol(u.Type, u.Value)
	if err != nil {
		return parser.Unit{}, err
	}
	if u.Name != nil {
		sym = sym.Named(*u.Name)
	}
	unit := parser.NewUnit(sym)
	if u.Prefix != nil {
		prefix, err := symbol(u.Prefix.Type, u.Prefix.Value)
		if err != nil {
			return parser.Unit{}, fmt.Errorf("prefix: %w", err)
		}
		unit = unit.WithPrefix(prefix, u.Prefix.Included)
	}
	if u.Optional {
		unit = unit.Optional()
	}
	if u.Greedy {
		unit = unit.Greedy()
	}
	return unit, nil
}

func symbol(t SymbolType, value string) (parser.Symbol, error) {
	switch SymbolType(strings.ToLower(string(t))) {
	case "literal":
		return parser.Literal(value), nil
	case "pattern":
		return parser.Pattern(value)
	case "reference":
		return parser.Ref(value), nil
	}
	return parser.Symbol{}, fmt.Errorf("unknown symbol type %q", t)
}
