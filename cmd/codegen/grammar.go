package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arr-ai/descent/def"
)

const (
	noScope int = iota
	bracesScope
	squigglyScope
	mapScope
)

// GoNode is a Go expression under construction: a head, its children inside the
// scope's brackets, and trailing method calls.
type GoNode struct {
	name     string
	children []GoNode
	scope    int
	calls    []string
}

func (g GoNode) String() string {
	x := map[int]struct {
		open  string
		close string
	}{
		noScope:       {"", ""},
		mapScope:      {":", ""},
		bracesScope:   {"(", ")"},
		squigglyScope: {"{", "}"},
	}[g.scope]
	children := make([]string, 0, len(g.children))
	for _, c := range g.children {
		children = append(children, c.String())
	}
	return strings.Join([]string{g.name, x.open, strings.Join(children, ",\n"), x.close, strings.Join(g.calls, "")}, "")
}

func (g *GoNode) Add(n GoNode) {
	g.children = append(g.children, n)
}

func (g *GoNode) Call(format string, args ...interface{}) {
	g.calls = append(g.calls, fmt.Sprintf("."+format, args...))
}

func safeString(src string) string {
	r := strings.NewReplacer("`", "`+\"`\"+`")
	return r.Replace(src)
}

func stringNode(format string, args ...interface{}) GoNode {
	return GoNode{name: fmt.Sprintf(format, args...)}
}

func walkSymbol(t def.SymbolType, value string) GoNode {
	switch strings.ToLower(string(t)) {
	case "literal":
		return stringNode("parser.Literal(%s)", strconv.Quote(value))
	case "pattern":
		return stringNode("parser.MustPattern(`%s`)", safeString(value))
	case "reference":
		return stringNode("parser.Ref(%s)", strconv.Quote(value))
	}
	panic(fmt.Errorf("unexpected symbol type: %q", t))
}

func walkUnit(u def.Unit) GoNode {
	sym := walkSymbol(u.Type, u.Value)
	if u.Name != nil {
		sym.Call("Named(%s)", strconv.Quote(*u.Name))
	}
	node := GoNode{name: "parser.NewUnit", scope: bracesScope, children: []GoNode{sym}}
	if u.Prefix != nil {
		node.Call("WithPrefix(%s, %t)", walkSymbol(u.Prefix.Type, u.Prefix.Value).String(), u.Prefix.Included)
	}
	if u.Optional {
		node.Call("Optional()")
	}
	if u.Greedy {
		node.Call("Greedy()")
	}
	return node
}

func walkRule(r def.Rule) GoNode {
	var node GoNode
	if r.FailureMessage != nil {
		node = stringNode("parser.Throw(%s)", strconv.Quote(*r.FailureMessage))
	} else {
		node = GoNode{name: "parser.NewRule", scope: bracesScope}
		for _, u := range r.Units {
			node.Add(walkUnit(u))
		}
	}
	if r.RecoveryUnit != nil {
		node.Call("WithRecovery(%s)", walkSymbol(r.RecoveryUnit.Type, r.RecoveryUnit.Value).String())
	}
	if r.Transform != "" {
		node.Call("WithTransform(transforms[%s])", strconv.Quote(r.Transform))
	}
	return node
}

// MakeGrammar renders g as a map[string][]parser.Rule literal, variants in name order.
func MakeGrammar(g def.Grammar) *GoNode {
	root := GoNode{name: "map[string][]parser.Rule", scope: squigglyScope}
	for _, name := range g.Names() {
		rules := GoNode{scope: squigglyScope}
		for _, r := range g[name] {
			rules.Add(walkRule(r))
		}
		root.Add(GoNode{
			name:     strconv.Quote(name),
			children: []GoNode{rules},
			scope:    mapScope,
		})
	}
	return &root
}
