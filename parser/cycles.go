package parser

import (
	"sort"
	"strings"

	"github.com/arr-ai/frozen"
)

/*
A variant is in danger of unproductive recursion when one of its rules can reach a
reference to a variant before any required unit has consumed input, and following
such references leads back to where it started. Obvious ones:

	a -> a;
	a -> "("? a;
	a -> b; b -> a;

Required literals and patterns always consume (a pattern that matches nothing is a
failure), so they end the danger zone of a rule. A required reference is assumed to
consume and ends it too.
*/
func findCycles(g *Grammar) []string {
	dangers := map[string]frozen.Set[string]{}
	for _, name := range g.names {
		td := frozen.NewSet[string]()
		for _, r := range g.variants[name].rules {
			td = td.Union(ruleDangers(r))
		}
		dangers[name] = td
	}

	found := frozen.NewSet[string]()
	for _, name := range g.names {
		for _, path := range walkDangers(name, dangers, frozen.NewSet[string](), nil) {
			found = found.With(strings.Join(path, " > "))
		}
	}

	return sortedSet(found)
}

// ruleDangers returns the variants r can enter before consuming input.
func ruleDangers(r Rule) frozen.Set[string] {
	result := frozen.NewSet[string]()
	if r.failure != nil {
		return result
	}
	for _, u := range r.units {
		if u.prefix != nil && u.prefix.kind == LiteralSymbol && !u.optional {
			return result
		}
		if u.prefix != nil && u.prefix.kind == ReferenceSymbol {
			result = result.With(u.prefix.value)
			if !u.optional {
				return result
			}
		}
		if u.symbol.kind == ReferenceSymbol {
			result = result.With(u.symbol.value)
		}
		if !u.optional {
			return result
		}
	}
	return result
}

// walkDangers follows danger edges from name and returns every path that closes a
// cycle back to its first element.
func walkDangers(name string, dangers map[string]frozen.Set[string], seen frozen.Set[string], current []string) [][]string {
	current = append(current[:len(current):len(current)], name)
	if seen.Has(name) {
		if current[0] == name {
			return [][]string{current}
		}
		return nil
	}
	seen = seen.With(name)

	var paths [][]string
	for _, next := range sortedSet(dangers[name]) {
		paths = append(paths, walkDangers(next, dangers, seen, current)...)
	}
	return paths
}

func sortedSet(s frozen.Set[string]) []string {
	out := make([]string, 0, s.Count())
	out = append(out, s.Elements()...)
	sort.Strings(out)
	return out
}
