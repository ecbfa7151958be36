package parser

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Grammar is a validated set of named variants and the entry point for parsing.
// It is immutable and safe for concurrent use.
type Grammar struct {
	variants map[string]*Variant
	names    []string
	cycles   []string
}

// Options tune a single parse call.
type Options struct {
	// RequireFull makes the parse fail unless the root variant consumes all input.
	RequireFull bool
	// StepLimit caps the number of symbol match attempts. Zero means no limit.
	StepLimit int
	// Logger receives trace output. Defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// NewGrammar builds a grammar from named rule lists. Every reference, including those
// in prefixes and recovery symbols, must name a variant of the grammar.
func NewGrammar(variants map[string][]Rule) (*Grammar, error) {
	return NewGrammarWithLogger(variants, nil)
}

// NewGrammarWithLogger is like NewGrammar but warns about left-recursive cycles on
// logger instead of the logrus standard logger.
func NewGrammarWithLogger(variants map[string][]Rule, logger *logrus.Logger) (*Grammar, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	g := &Grammar{variants: make(map[string]*Variant, len(variants))}
	for name, rules := range variants {
		g.variants[name] = &Variant{name: name, rules: append([]Rule(nil), rules...)}
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)

	if err := g.validate(); err != nil {
		return nil, err
	}
	g.cycles = findCycles(g)
	for _, cycle := range g.cycles {
		logger.WithField("cycle", cycle).Warn("variant can re-enter itself without consuming input")
	}
	return g, nil
}

// MustGrammar is like NewGrammar but panics on a configuration error.
func MustGrammar(variants map[string][]Rule) *Grammar {
	g, err := NewGrammar(variants)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grammar) validate() error {
	v := &ConfigError{}
	for _, name := range g.names {
		variant := g.variants[name]
		if len(variant.rules) == 0 {
			v.errs = append(v.errs, fmt.Errorf("variant %q has no rules", name))
		}
		for i, rule := range variant.rules {
			for _, sym := range rule.symbols() {
				switch sym.kind {
				case ReferenceSymbol:
					if _, has := g.variants[sym.value]; !has {
						v.errs = append(v.errs,
							fmt.Errorf("variant %q rule %d: reference to undefined variant %q", name, i, sym.value))
					}
				case LiteralSymbol:
					if sym.value == "" {
						v.errs = append(v.errs, fmt.Errorf("variant %q rule %d: empty literal", name, i))
					}
				case PatternSymbol:
					if sym.re == nil {
						v.errs = append(v.errs, fmt.Errorf("variant %q rule %d: uncompiled pattern /%s/", name, i, sym.value))
					}
				}
			}
		}
	}
	if len(v.errs) > 0 {
		return v
	}
	return nil
}

// Names returns the variant names in sorted order.
func (g *Grammar) Names() []string {
	return append([]string(nil), g.names...)
}

func (g *Grammar) Variant(name string) (*Variant, bool) {
	v, has := g.variants[name]
	return v, has
}

// Cycles lists reference chains through which a variant may re-enter itself before
// consuming input. Such chains fail at parse time with RecursionDetected.
func (g *Grammar) Cycles() []string {
	out := make([]string, len(g.cycles))
	copy(out, g.cycles)
	return out
}

func (g *Grammar) String() string {
	var out string
	for _, name := range g.names {
		out += g.variants[name].String() + "\n"
	}
	return out
}

// Parse parses source starting at the root variant.
func (g *Grammar) Parse(source, root string, requireFull bool) (Node, error) {
	return g.ParseWithOptions(source, root, Options{RequireFull: requireFull})
}

func (g *Grammar) ParseWithOptions(source, root string, opts Options) (Node, error) {
	v, has := g.variants[root]
	if !has {
		return Node{}, configErrorf("unknown root variant %q", root)
	}

	scope := newScope(g, &budget{limit: opts.StepLimit, logger: opts.Logger})
	node, err := v.parse(scope, source, nil)
	if err == nil && opts.RequireFull && node.raw != source {
		err = newParseError(Mismatch, len(node.raw),
			"expected end of input, found %s", excerpt(source[len(node.raw):]))
	}
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.locate(source)
		}
		return Node{}, err
	}
	return node, nil
}
