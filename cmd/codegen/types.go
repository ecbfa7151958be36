package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arr-ai/frozen"

	"github.com/arr-ai/descent/def"
)

// capture describes what a variant's rules record under one name. When every unit
// with that name references the same variant, getters return that variant's type.
type capture struct {
	name string
	refs frozen.Set[string]
	// plain is set when some unit with this name is a literal or pattern.
	plain bool
}

func (c capture) returnType() string {
	if c.plain || c.refs.Count() != 1 {
		return "parser.Node"
	}
	return GoTypeName(c.refs.Elements()[0])
}

func captures(rules []def.Rule) []capture {
	byName := map[string]capture{}
	for _, r := range rules {
		for _, u := range r.Units {
			if u.Name == nil {
				continue
			}
			c, has := byName[*u.Name]
			if !has {
				c = capture{name: *u.Name, refs: frozen.NewSet[string]()}
			}
			if strings.EqualFold(string(u.Type), string(def.Reference)) {
				c.refs = c.refs.With(u.Value)
			} else {
				c.plain = true
			}
			byName[*u.Name] = c
		}
	}
	out := make([]capture, 0, len(byName))
	for _, c := range byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// NodeType renders a typed wrapper for the nodes of one variant with getters for its
// captures.
type NodeType struct {
	Variant string
	Rules   []def.Rule
}

func (t NodeType) String() string {
	typeName := GoTypeName(t.Variant)
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s is a match of the %s variant.\n", typeName, t.Variant)
	fmt.Fprintf(&sb, "type %s struct{ parser.Node }\n", typeName)
	for _, c := range captures(t.Rules) {
		getter := GoName(c.name)
		ret := c.returnType()
		if ret == "parser.Node" {
			fmt.Fprintf(&sb, "\nfunc (n %s) All%s() []parser.Node { return n.All(%q) }\n", typeName, getter, c.name)
			fmt.Fprintf(&sb, "\nfunc (n %s) One%s() (parser.Node, bool) { return n.One(%q) }\n", typeName, getter, c.name)
			continue
		}
		fmt.Fprintf(&sb, `
func (n %[1]s) All%[2]s() []%[3]s {
	nodes := n.All(%[4]q)
	out := make([]%[3]s, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, %[3]s{node})
	}
	return out
}

func (n %[1]s) One%[2]s() (%[3]s, bool) {
	node, ok := n.One(%[4]q)
	return %[3]s{node}, ok
}
`, typeName, getter, ret, c.name)
	}
	return sb.String()
}

// MakeTypes returns a NodeType for every variant of g, in name order.
func MakeTypes(g def.Grammar) []NodeType {
	out := make([]NodeType, 0, len(g))
	for _, name := range g.Names() {
		out = append(out, NodeType{Variant: name, Rules: g[name]})
	}
	return out
}
