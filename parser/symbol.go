package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arr-ai/descent/errors"
)

// SymbolKind selects how a Symbol matches.
type SymbolKind int

const (
	// LiteralSymbol matches exact text.
	LiteralSymbol SymbolKind = iota
	// PatternSymbol matches a regular expression anchored at the cursor.
	PatternSymbol
	// ReferenceSymbol matches a variant of the grammar.
	ReferenceSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case LiteralSymbol:
		return "Literal"
	case PatternSymbol:
		return "Pattern"
	case ReferenceSymbol:
		return "Reference"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is an atomic matcher: a literal, a pattern or a reference to a variant,
// optionally carrying the name its match is captured under.
type Symbol struct {
	kind  SymbolKind
	value string
	name  string
	re    *regexp.Regexp
}

// Literal returns a symbol that matches text exactly.
func Literal(text string) Symbol {
	return Symbol{kind: LiteralSymbol, value: text}
}

// Pattern returns a symbol that matches expr at the cursor.
func Pattern(expr string) (Symbol, error) {
	re, err := regexp.Compile(`(?m)\A(?:` + expr + `)`)
	if err != nil {
		return Symbol{}, configErrorf("pattern /%s/ is not valid: %v", expr, err)
	}
	return Symbol{kind: PatternSymbol, value: expr, re: re}, nil
}

// MustPattern is like Pattern but panics if expr does not compile.
func MustPattern(expr string) Symbol {
	s, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// Ref returns a symbol that matches the named variant.
func Ref(variant string) Symbol {
	return Symbol{kind: ReferenceSymbol, value: variant}
}

// Named returns a copy of s that is captured under name.
func (s Symbol) Named(name string) Symbol {
	s.name = name
	return s
}

func (s Symbol) Kind() SymbolKind { return s.kind }
func (s Symbol) Value() string    { return s.value }
func (s Symbol) Name() string     { return s.name }

func (s Symbol) String() string {
	var term string
	switch s.kind {
	case LiteralSymbol:
		term = fmt.Sprintf("%q", s.value)
	case PatternSymbol:
		term = "/" + s.value + "/"
	default:
		term = s.value
	}
	if s.name != "" {
		return s.name + "=" + term
	}
	return term
}

// match attempts s once at the start of source. A match is chained after prev.
func (s Symbol) match(scope Scope, source string, prev *Node) (Node, error) {
	offset := follow(prev)
	if err := scope.step(offset); err != nil {
		return Node{}, err
	}
	switch s.kind {
	case LiteralSymbol:
		if strings.HasPrefix(source, s.value) {
			return newNode(Match, s.value, Captures{}, prev), nil
		}
		return Node{}, newParseError(Mismatch, offset, "expected %q, found %s", s.value, excerpt(source))
	case PatternSymbol:
		loc := s.re.FindStringIndex(source)
		switch {
		case loc == nil:
			return Node{}, newParseError(Mismatch, offset, "expected /%s/, found %s", s.value, excerpt(source))
		case loc[1] == 0:
			return Node{}, newParseError(EmptyMatch, offset, "/%s/ matched no input", s.value)
		}
		return newNode(Match, source[:loc[1]], Captures{}, prev), nil
	case ReferenceSymbol:
		v, has := scope.grammar().variants[s.value]
		if !has {
			panic(errors.Inconceivable)
		}
		return v.parse(scope, source, prev)
	}
	panic(errors.Inconceivable)
}

// find scans forward through source for the first offset at which s matches and
// returns a Recover node spanning the skipped text and the match. It gives up at the
// end of input, on an empty match, and on any failure that is not soft, except that
// recursion detected at the failure position itself only skips that offset.
func (s Symbol) find(scope Scope, source string, prev *Node) (Node, bool) {
	for i := 0; i < len(source); i++ {
		m, err := s.match(scope, source[i:], prev)
		if err == nil {
			return newNode(Recover, source[:i+len(m.raw)], Captures{}, prev), true
		}
		switch kind, _ := KindOf(err); {
		case kind == Mismatch, kind == VariantExhausted:
		case kind == RecursionDetected && i == 0:
		default:
			return Node{}, false
		}
	}
	return Node{}, false
}
