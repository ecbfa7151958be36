// Package builder assembles grammars with chained method calls.
//
//	g := builder.New()
//	g.Variant("greeting").Rule().Literal("Hallo Welt").Recover(builder.Lit(";"))
//	grammar, err := g.Build()
//
// A builder produces the same def.Grammar that grammar files decode to, plus a table
// of the transforms attached along the way.
package builder

import (
	"fmt"

	"github.com/arr-ai/descent/def"
	"github.com/arr-ai/descent/parser"
)

// Lit, Pat and Ref describe symbols for separators and recovery.
func Lit(text string) def.Symbol    { return def.Symbol{Type: def.Literal, Value: text} }
func Pat(expr string) def.Symbol    { return def.Symbol{Type: def.Pattern, Value: expr} }
func Ref(variant string) def.Symbol { return def.Symbol{Type: def.Reference, Value: variant} }

type Grammar struct {
	def        def.Grammar
	transforms map[string]parser.Transform
	separator  *def.Prefix
	err        error
}

func New() *Grammar {
	return &Grammar{
		def:        def.Grammar{},
		transforms: map[string]parser.Transform{},
	}
}

// Separator sets a prefix, typically whitespace, given to every unit added after
// this call. The separator is never captured.
func (g *Grammar) Separator(sym def.Symbol) *Grammar {
	g.separator = &def.Prefix{Type: sym.Type, Value: sym.Value}
	return g
}

// NoSeparator stops adding a prefix to subsequently added units.
func (g *Grammar) NoSeparator() *Grammar {
	g.separator = nil
	return g
}

// Variant returns a builder for the named variant, creating it if needed.
func (g *Grammar) Variant(name string) *Variant {
	if _, has := g.def[name]; !has {
		g.def[name] = []def.Rule{}
	}
	return &Variant{g: g, name: name}
}

// Definition returns the plain-data grammar built so far.
func (g *Grammar) Definition() def.Grammar {
	return g.def
}

// Transforms returns the transforms referenced by Definition.
func (g *Grammar) Transforms() map[string]parser.Transform {
	return g.transforms
}

func (g *Grammar) Build() (*parser.Grammar, error) {
	if g.err != nil {
		return nil, g.err
	}
	return def.Compile(g.def, g.transforms)
}

// MustBuild is like Build but panics on error.
func (g *Grammar) MustBuild() *parser.Grammar {
	p, err := g.Build()
	if err != nil {
		panic(err)
	}
	return p
}

func (g *Grammar) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

type Variant struct {
	g    *Grammar
	name string
}

// Rule appends an empty rule to the variant.
func (v *Variant) Rule() *Rule {
	v.g.def[v.name] = append(v.g.def[v.name], def.Rule{})
	return &Rule{v: v, index: len(v.g.def[v.name]) - 1}
}

// Throw appends a rule that always fails with msg.
func (v *Variant) Throw(msg string) *Rule {
	r := v.Rule()
	*r.rule() = def.Rule{FailureMessage: &msg}
	return r
}

type Rule struct {
	v     *Variant
	index int
}

func (r *Rule) rule() *def.Rule {
	return &r.v.g.def[r.v.name][r.index]
}

func (r *Rule) add(t def.SymbolType, value string) *Rule {
	rule := r.rule()
	if rule.FailureMessage != nil {
		r.v.g.fail(fmt.Errorf("variant %q rule %d: cannot add units to a throwing rule", r.v.name, r.index))
		return r
	}
	u := def.Unit{Type: t, Value: value}
	if sep := r.v.g.separator; sep != nil {
		prefix := *sep
		u.Prefix = &prefix
	}
	rule.Units = append(rule.Units, u)
	return r
}

func (r *Rule) last() *def.Unit {
	units := r.rule().Units
	if len(units) == 0 {
		r.v.g.fail(fmt.Errorf("variant %q rule %d: modifier applied before any unit", r.v.name, r.index))
		return &def.Unit{}
	}
	return &units[len(units)-1]
}

func (r *Rule) Literal(text string) *Rule { return r.add(def.Literal, text) }
func (r *Rule) Pattern(expr string) *Rule { return r.add(def.Pattern, expr) }
func (r *Rule) Ref(variant string) *Rule  { return r.add(def.Reference, variant) }

// Named captures the last unit under name.
func (r *Rule) Named(name string) *Rule {
	r.last().Name = &name
	return r
}

func (r *Rule) Optional() *Rule {
	r.last().Optional = true
	return r
}

func (r *Rule) Greedy() *Rule {
	r.last().Greedy = true
	return r
}

// Many makes the last unit optional and greedy: zero or more repetitions.
func (r *Rule) Many() *Rule {
	return r.Optional().Greedy()
}

// Prefix replaces the separator of the last unit.
func (r *Rule) Prefix(sym def.Symbol, included bool) *Rule {
	r.last().Prefix = &def.Prefix{Type: sym.Type, Value: sym.Value, Included: included}
	return r
}

// Tight removes the separator from the last unit.
func (r *Rule) Tight() *Rule {
	r.last().Prefix = nil
	return r
}

func (r *Rule) Recover(sym def.Symbol) *Rule {
	s := sym
	r.rule().RecoveryUnit = &s
	return r
}

// Transform attaches fn to the rule.
func (r *Rule) Transform(fn parser.Transform) *Rule {
	name := fmt.Sprintf("%s#%d", r.v.name, r.index)
	r.v.g.transforms[name] = fn
	r.rule().Transform = name
	return r
}

// Or starts the next alternative of the same variant.
func (r *Rule) Or() *Rule {
	return r.v.Rule()
}
