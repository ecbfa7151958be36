package parser

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arr-ai/descent/meta"
)

func unit(s Symbol) Unit { return NewUnit(s) }

func seq(units ...Unit) Rule { return NewRule(units...) }

func lits(texts ...string) Rule {
	units := make([]Unit, 0, len(texts))
	for _, t := range texts {
		units = append(units, NewUnit(Literal(t)))
	}
	return NewRule(units...)
}

func assertKind(t *testing.T, expected ErrorKind, err error) bool {
	t.Helper()
	kind, ok := KindOf(err)
	return assert.True(t, ok, "not a parse error: %v", err) && assert.Equal(t, expected, kind, "%v", err)
}

// assertChained checks that every capture sits inside its parent at the position
// its raw text occupies.
func assertChained(t *testing.T, n Node) {
	t.Helper()
	r := n.Range()
	assert.Equal(t, len(n.Raw()), r.Len())
	for _, name := range n.Children().Names() {
		for _, c := range n.All(name) {
			cr := c.Range()
			if assert.True(t, cr.Start >= r.Start && cr.End <= r.End, "%s %s outside %s", name, cr, r) {
				assert.Equal(t, n.Raw()[cr.Start-r.Start:cr.End-r.Start+1], c.Raw())
			}
			assertChained(t, c)
		}
	}
}

func TestRecoveryScenario(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"greeting": {lits("Hallo Welt").WithRecovery(Literal(";"))},
	})
	n, err := g.Parse("Hello World;", "greeting", false)
	require.NoError(t, err)
	assert.Equal(t, Recover, n.Kind())
	assert.Equal(t, "Hello World;", n.Raw())
	assert.Equal(t, meta.Range{Start: 0, End: 11}, n.Range())
}

func TestRequireFullConsumption(t *testing.T) {
	g := MustGrammar(map[string][]Rule{"greeting": {lits("Hello")}})

	n, err := g.Parse("Hello World", "greeting", false)
	require.NoError(t, err)
	assert.Equal(t, "Hello", n.Raw())

	_, err = g.Parse("Hello World", "greeting", true)
	require.Error(t, err)
	assertKind(t, Mismatch, err)
	pe := err.(*ParseError)
	assert.Equal(t, 5, pe.Offset)
	assert.Equal(t, meta.Location{Line: 1, Col: 6}, pe.Location)
	assert.Contains(t, pe.Error(), "expected end of input")
}

func TestNamedMultiCapture(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"digits": {seq(unit(MustPattern(`[0-9]`).Named("d")).Greedy())},
	})
	n, err := g.Parse("123", "digits", true)
	require.NoError(t, err)
	ds := n.All("d")
	require.Len(t, ds, 3)
	for i, d := range ds {
		assert.Equal(t, Match, d.Kind())
		assert.Equal(t, meta.Range{Start: i, End: i}, d.Range())
		assert.Equal(t, string("123"[i]), d.Raw())
	}
	assertChained(t, n)
}

func TestRecursionGuard(t *testing.T) {
	for _, test := range []struct {
		name    string
		grammar map[string][]Rule
		input   string
	}{
		{
			name:    "self",
			grammar: map[string][]Rule{"V": {seq(unit(Ref("V")))}},
			input:   "x",
		},
		{
			name:    "self on empty input",
			grammar: map[string][]Rule{"V": {seq(unit(Ref("V")))}},
			input:   "",
		},
		{
			name: "optional prefix",
			grammar: map[string][]Rule{
				"V": {seq(unit(Literal("(")).Optional(), unit(Ref("V")))},
			},
			input: "x",
		},
		{
			name: "mutual",
			grammar: map[string][]Rule{
				"a": {seq(unit(Ref("b")))},
				"b": {seq(unit(Ref("a")))},
			},
			input: "x",
		},
		{
			name: "left recursion past alternation",
			grammar: map[string][]Rule{
				"expr": {
					seq(unit(Ref("expr")), unit(Literal("+")), unit(Ref("num"))),
					seq(unit(Ref("num"))),
				},
				"num": {seq(unit(MustPattern(`\d+`)))},
			},
			input: "1+2",
		},
	} {
		test := test
		t.Run(test.name, func(t *testing.T) {
			g := MustGrammar(test.grammar)
			root := g.Names()[0]
			_, err := g.Parse(test.input, root, false)
			require.Error(t, err)
			assertKind(t, RecursionDetected, err)
		})
	}
}

func TestRecursionGuardAllowsProgress(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"list": {
			seq(unit(Literal("a").Named("item")), unit(Ref("list").Named("rest"))),
			lits("a"),
		},
	})
	n, err := g.Parse("aaa", "list", true)
	require.NoError(t, err)
	assert.Equal(t, "aaa", n.Raw())
	rest, ok := n.One("rest")
	require.True(t, ok)
	assert.Equal(t, meta.Range{Start: 1, End: 2}, rest.Range())
	assertChained(t, n)
}

func TestOrderedChoice(t *testing.T) {
	g := MustGrammar(map[string][]Rule{"v": {lits("ab"), lits("abc")}})

	n, err := g.Parse("abc", "v", false)
	require.NoError(t, err)
	assert.Equal(t, "ab", n.Raw())

	_, err = g.Parse("abc", "v", true)
	assertKind(t, Mismatch, err)

	n, err = g.Parse("abd", "v", false)
	require.NoError(t, err)
	assert.Equal(t, "ab", n.Raw())
}

func TestOrderedChoiceFallsThrough(t *testing.T) {
	g := MustGrammar(map[string][]Rule{"v": {lits("a", "x"), lits("a", "b")}})
	n, err := g.Parse("ab", "v", true)
	require.NoError(t, err)
	assert.Equal(t, "ab", n.Raw())
}

func TestOptionalNonConsumption(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {seq(
			unit(Literal("a").Named("a")),
			unit(Literal("bb").Named("b")).Optional(),
			unit(Literal("c").Named("c")),
		)},
	})

	n, err := g.Parse("ac", "v", true)
	require.NoError(t, err)
	assert.False(t, n.Children().Has("b"))
	c, _ := n.One("c")
	assert.Equal(t, meta.Range{Start: 1, End: 1}, c.Range())

	// A partial match of the optional unit leaks nothing.
	_, err = g.Parse("abc", "v", false)
	assertKind(t, VariantExhausted, err)

	n, err = g.Parse("abbc", "v", true)
	require.NoError(t, err)
	assert.Len(t, n.All("b"), 1)
	assertChained(t, n)
}

func TestGreedyIsMaximal(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {seq(unit(Literal("a").Named("a")).Greedy(), unit(Literal("b")))},
		"w": {seq(unit(Literal("a")).Greedy().Optional(), unit(Literal("b")))},
	})

	n, err := g.Parse("aaab", "v", true)
	require.NoError(t, err)
	assert.Len(t, n.All("a"), 3)

	_, err = g.Parse("b", "v", false)
	assertKind(t, VariantExhausted, err)

	n, err = g.Parse("b", "w", true)
	require.NoError(t, err)
	assert.Equal(t, "b", n.Raw())
}

func TestGreedyStopsWithoutProgress(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v":     {seq(unit(Ref("maybe").Named("m")).Greedy())},
		"maybe": {seq(unit(Literal("x")).Optional())},
	})
	n, err := g.Parse("y", "v", false)
	require.NoError(t, err)
	assert.Equal(t, "", n.Raw())
	assert.Len(t, n.All("m"), 1)
	assert.Equal(t, -1, n.Range().End)
}

func TestCustomThrowIsFatalWithinVariant(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {Throw("no trailing commas"), lits("a")},
	})
	_, err := g.Parse("a", "v", false)
	require.Error(t, err)
	assertKind(t, CustomThrow, err)
	assert.Equal(t, "no trailing commas", err.(*ParseError).Msg)
	assert.Equal(t, "v", err.(*ParseError).Variant)
}

func TestCustomThrowPropagatesThroughReferences(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"outer": {seq(unit(Ref("inner"))), lits("x")},
		"inner": {lits("y"), Throw("committed")},
	})
	_, err := g.Parse("x", "outer", false)
	assertKind(t, CustomThrow, err)
	assert.Equal(t, "inner", err.(*ParseError).Variant)

	n, err := g.Parse("y", "outer", true)
	require.NoError(t, err)
	assert.Equal(t, "y", n.Raw())
}

func TestCustomThrowSkipsOptionalUnits(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v":     {seq(unit(Literal("a")), unit(Ref("fails")).Optional())},
		"fails": {Throw("stop")},
	})
	_, err := g.Parse("a", "v", false)
	assertKind(t, CustomThrow, err)
}

func TestCustomThrowIsRecoverable(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"stmt":  {seq(unit(Ref("inner"))).WithRecovery(Literal(";"))},
		"inner": {Throw("bad statement")},
		"own":   {Throw("bad").WithRecovery(Literal(";"))},
	})
	for _, root := range []string{"stmt", "own"} {
		n, err := g.Parse("abc; rest", root, false)
		require.NoError(t, err, root)
		assert.Equal(t, Recover, n.Kind())
		assert.Equal(t, "abc;", n.Raw())
	}
}

func TestRecoveryUsesOriginalPosition(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"prog": {seq(unit(Ref("stmt").Named("s")).Greedy())},
		"stmt": {lits("ok", ";").WithRecovery(Literal(";"))},
	})
	n, err := g.Parse("ok;bad stuff;ok;", "prog", true)
	require.NoError(t, err)
	stmts := n.All("s")
	require.Len(t, stmts, 3)
	assert.Equal(t, []Kind{Match, Recover, Match}, []Kind{stmts[0].Kind(), stmts[1].Kind(), stmts[2].Kind()})
	assert.Equal(t, "bad stuff;", stmts[1].Raw())
	assert.Equal(t, meta.Range{Start: 3, End: 12}, stmts[1].Range())
	assertChained(t, n)
}

func TestRecoveryFailsPropagatesOriginalError(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {lits("a", "b").WithRecovery(Literal(";"))},
		"w": {lits("a", "b").WithRecovery(MustPattern(`x*`))},
	})
	_, err := g.Parse("ac", "v", false)
	assertKind(t, VariantExhausted, err)
	assert.Equal(t, 1, err.(*ParseError).Furthest)

	// An empty recovery match stops the scan instead of looping.
	_, err = g.Parse("ac", "w", false)
	assertKind(t, VariantExhausted, err)
}

func TestRecoveryReferencingOwnVariant(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {lits("x").WithRecovery(Ref("v"))},
	})
	n, err := g.Parse("yx", "v", true)
	require.NoError(t, err)
	assert.Equal(t, Recover, n.Kind())
	assert.Equal(t, "yx", n.Raw())

	_, err = g.Parse("yy", "v", false)
	assertKind(t, VariantExhausted, err)
}

func TestVariantExhausted(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {seq(unit(Literal("z")), unit(Ref("w")))},
		"w": {lits("a", "b"), lits("a", "c")},
	})
	_, err := g.Parse("zad", "v", false)
	require.Error(t, err)
	assertKind(t, VariantExhausted, err)
	pe := err.(*ParseError)
	assert.Equal(t, "v", pe.Variant)
	assert.Equal(t, 0, pe.Offset)
	assert.Equal(t, 2, pe.Furthest)
	require.Len(t, pe.Children(), 1)

	inner := pe.Children()[0].(*ParseError)
	assert.Equal(t, "w", inner.Variant)
	assert.Equal(t, 1, inner.Offset)
	assert.Len(t, inner.Children(), 2)
	assert.Equal(t, meta.Location{Line: 1, Col: 2}, inner.Location)

	msg := err.Error()
	assert.Contains(t, msg, "variant(v)")
	assert.Contains(t, msg, "variant(w)")
	assert.Contains(t, msg, `expected "c"`)
}

func TestEmptyMatch(t *testing.T) {
	s := MustPattern(`a*`)
	_, err := s.match(Scope{}, "bbb", nil)
	assertKind(t, EmptyMatch, err)

	n, err := s.match(Scope{}, "aab", nil)
	require.NoError(t, err)
	assert.Equal(t, "aa", n.Raw())

	g := MustGrammar(map[string][]Rule{
		"v": {seq(unit(s)), lits("b")},
		"w": {seq(unit(s).Optional(), unit(Literal("b")))},
	})
	n, err = g.Parse("b", "v", true)
	require.NoError(t, err)
	assert.Equal(t, "b", n.Raw())

	n, err = g.Parse("b", "w", true)
	require.NoError(t, err)
	assert.Equal(t, "b", n.Raw())
}

func TestPrefix(t *testing.T) {
	ws := MustPattern(`\s*`)
	for _, test := range []struct {
		name     string
		included bool
		input    string
		captured []meta.Range
	}{
		{name: "excluded", included: false, input: "a  b", captured: []meta.Range{{Start: 3, End: 3}}},
		{name: "included", included: true, input: "a  b", captured: []meta.Range{{Start: 1, End: 2}, {Start: 3, End: 3}}},
		{name: "absent", included: true, input: "ab", captured: []meta.Range{{Start: 1, End: 1}}},
	} {
		test := test
		t.Run(test.name, func(t *testing.T) {
			g := MustGrammar(map[string][]Rule{
				"v": {seq(unit(Literal("a")), unit(Literal("b").Named("b")).WithPrefix(ws, test.included))},
			})
			n, err := g.Parse(test.input, "v", true)
			require.NoError(t, err)
			var ranges []meta.Range
			for _, b := range n.All("b") {
				ranges = append(ranges, b.Range())
			}
			assert.Equal(t, test.captured, ranges)
			assertChained(t, n)
		})
	}
}

func TestPrefixMismatchFailsUnit(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {seq(unit(Literal("a")), unit(Literal("b")).WithPrefix(Literal(","), false))},
	})
	_, err := g.Parse("ab", "v", false)
	assertKind(t, VariantExhausted, err)

	n, err := g.Parse("a,b", "v", true)
	require.NoError(t, err)
	assert.Equal(t, "a,b", n.Raw())
}

func TestTransform(t *testing.T) {
	upper := func(n Node) Node {
		d, _ := n.One("d")
		return n.WithChildren(NewCaptures("digit", d))
	}
	g := MustGrammar(map[string][]Rule{
		"v": {seq(unit(MustPattern(`\d`).Named("d"))).WithTransform(upper)},
	})
	n, err := g.Parse("7", "v", true)
	require.NoError(t, err)
	assert.False(t, n.Children().Has("d"))
	d, ok := n.One("digit")
	require.True(t, ok)
	assert.Equal(t, "7", d.Raw())
}

func TestTransformMustKeepSpan(t *testing.T) {
	inner := func(n Node) Node {
		c, _ := n.One("inner")
		return c
	}
	g := MustGrammar(map[string][]Rule{
		"group": {seq(
			unit(Literal("(")),
			unit(MustPattern(`[a-z]+`).Named("inner")),
			unit(Literal(")")),
		).WithTransform(inner).WithRecovery(Literal(")"))},
		"opt": {seq(unit(Ref("group")).Optional(), unit(Literal("x")).Optional())},
	})

	var err error
	require.NotPanics(t, func() { _, err = g.Parse("(abc)", "group", true) })
	require.Error(t, err)
	assertKind(t, InvalidTransform, err)
	assert.Equal(t, 0, err.(*ParseError).Offset)
	assert.Contains(t, err.Error(), `changed the matched span from [0,4]"(abc)" to [1,3]"abc"`)

	// Neither optional units nor recovery hide it.
	_, err = g.Parse("(abc)x", "opt", true)
	assertKind(t, InvalidTransform, err)
}

func TestConfigErrors(t *testing.T) {
	for _, test := range []struct {
		name    string
		grammar map[string][]Rule
		msg     string
	}{
		{
			name:    "undefined reference",
			grammar: map[string][]Rule{"a": {seq(unit(Ref("b")))}},
			msg:     `undefined variant "b"`,
		},
		{
			name:    "undefined prefix reference",
			grammar: map[string][]Rule{"a": {seq(unit(Literal("x")).WithPrefix(Ref("ws"), false))}},
			msg:     `undefined variant "ws"`,
		},
		{
			name:    "undefined recovery reference",
			grammar: map[string][]Rule{"a": {lits("x").WithRecovery(Ref("sync"))}},
			msg:     `undefined variant "sync"`,
		},
		{
			name:    "empty literal",
			grammar: map[string][]Rule{"a": {lits("")}},
			msg:     "empty literal",
		},
		{
			name:    "no rules",
			grammar: map[string][]Rule{"a": {}},
			msg:     "no rules",
		},
	} {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := NewGrammar(test.grammar)
			require.Error(t, err)
			assert.IsType(t, &ConfigError{}, err)
			assert.Contains(t, err.Error(), test.msg)
		})
	}
}

func TestConfigErrorCollectsAll(t *testing.T) {
	_, err := NewGrammar(map[string][]Rule{
		"a": {seq(unit(Ref("x")))},
		"b": {seq(unit(Ref("y")))},
	})
	require.Error(t, err)
	assert.Len(t, err.(*ConfigError).Errors(), 2)
}

func TestInvalidPattern(t *testing.T) {
	_, err := Pattern(`[`)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
	assert.Panics(t, func() { MustPattern(`(`) })
}

func TestUnknownRoot(t *testing.T) {
	g := MustGrammar(map[string][]Rule{"a": {lits("a")}})
	_, err := g.Parse("a", "nope", false)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
	_, ok := KindOf(err)
	assert.False(t, ok)
}

func TestStepLimit(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"v": {seq(unit(Literal("a")).Greedy())},
	})
	_, err := g.ParseWithOptions(strings.Repeat("a", 10), "v", Options{StepLimit: 3})
	require.Error(t, err)
	assertKind(t, StepLimitExceeded, err)
	assert.Equal(t, 3, err.(*ParseError).Offset)

	n, err := g.ParseWithOptions(strings.Repeat("a", 10), "v", Options{StepLimit: 11, RequireFull: true})
	require.NoError(t, err)
	assert.Equal(t, 10, len(n.Raw()))
}

func TestDeterministicAndConcurrent(t *testing.T) {
	g := MustGrammar(map[string][]Rule{
		"list": {seq(unit(Ref("item").Named("item")), unit(Ref("more").Named("more")).Greedy().Optional())},
		"more": {seq(unit(Literal(",")), unit(Ref("item").Named("item")))},
		"item": {seq(unit(MustPattern(`[a-z]+`))), seq(unit(Ref("list")))},
	})
	input := "alpha,beta,gamma,delta"
	expected, err := g.Parse(input, "list", true)
	require.NoError(t, err)

	var wg sync.WaitGroup
	nodes := make([]Node, 16)
	results := make([]string, 16)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := g.Parse(input, "list", true)
			if err != nil {
				results[i] = err.Error()
				return
			}
			nodes[i] = n
			results[i] = n.String()
		}()
	}
	wg.Wait()
	for i, r := range results {
		assert.Equal(t, expected.String(), r)
		AssertEqualNodes(t, expected, nodes[i])
	}
}
