package parser

import (
	"fmt"
	"strings"

	"github.com/arr-ai/descent/meta"
)

// Kind tells how a Node came to be.
type Kind int

const (
	// Match nodes are produced by a successful symbol or rule match.
	Match Kind = iota
	// Recover nodes are produced by a rule's recovery scan.
	Recover
)

func (k Kind) String() string {
	switch k {
	case Match:
		return "MATCH"
	case Recover:
		return "RECOVER"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "MATCH":
		return Match, nil
	case "RECOVER":
		return Recover, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// Node is an immutable, positioned parse result.
type Node struct {
	kind     Kind
	raw      string
	children Captures
	meta     meta.Meta
}

func newNode(kind Kind, raw string, children Captures, prev *Node) Node {
	var pm *meta.Meta
	if prev != nil {
		pm = &prev.meta
	}
	return Node{kind: kind, raw: raw, children: children, meta: meta.New(raw, pm)}
}

// follow returns the offset at which a node following prev starts.
func follow(prev *Node) int {
	if prev == nil {
		return 0
	}
	return prev.meta.Range.Next()
}

func (n Node) Kind() Kind              { return n.kind }
func (n Node) Raw() string             { return n.raw }
func (n Node) Children() Captures      { return n.children }
func (n Node) Range() meta.Range       { return n.meta.Range }
func (n Node) Meta() meta.Meta         { return n.meta }
func (n Node) Location() meta.Location { return n.meta.Start }

// All returns every node captured under name, in match order.
func (n Node) All(name string) []Node {
	return n.children.All(name)
}

// One returns the first node captured under name.
func (n Node) One(name string) (Node, bool) {
	return n.children.One(name)
}

// WithChildren returns a copy of n with its captures replaced.
func (n Node) WithChildren(children Captures) Node {
	n.children = children
	return n
}

// Derive returns a new Match node covering raw[i:j] of n, positioned within n.
// It panics if i and j are not a valid slice of n.Raw().
func (n Node) Derive(i, j int, children Captures) Node {
	return Node{
		kind:     Match,
		raw:      n.raw[i:j],
		children: children,
		meta:     n.meta.Slice(n.raw, i, j),
	}
}

func (n Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n Node) write(sb *strings.Builder) {
	fmt.Fprintf(sb, "%s%s%q", n.kind, n.meta.Range, n.raw)
	if n.children.Len() == 0 {
		return
	}
	sb.WriteString("{")
	for i, name := range n.children.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s: [", name)
		for j, child := range n.children.nodes[name] {
			if j > 0 {
				sb.WriteString(", ")
			}
			child.write(sb)
		}
		sb.WriteString("]")
	}
	sb.WriteString("}")
}

// Captures is an immutable ordered multimap from capture names to nodes. Names keep
// the order in which they were first captured; repeated captures append.
type Captures struct {
	names []string
	nodes map[string][]Node
}

// NewCaptures returns a Captures holding nodes under name.
func NewCaptures(name string, nodes ...Node) Captures {
	return Captures{}.With(name, nodes...)
}

// With returns a copy of c with nodes appended under name.
func (c Captures) With(name string, nodes ...Node) Captures {
	out := Captures{
		names: make([]string, len(c.names), len(c.names)+1),
		nodes: make(map[string][]Node, len(c.nodes)+1),
	}
	copy(out.names, c.names)
	for k, v := range c.nodes {
		out.nodes[k] = v
	}
	if _, has := out.nodes[name]; !has {
		out.names = append(out.names, name)
	}
	merged := make([]Node, 0, len(out.nodes[name])+len(nodes))
	out.nodes[name] = append(append(merged, out.nodes[name]...), nodes...)
	return out
}

// Names returns the capture names in first-capture order.
func (c Captures) Names() []string {
	return append([]string(nil), c.names...)
}

func (c Captures) Len() int {
	return len(c.names)
}

func (c Captures) Has(name string) bool {
	_, has := c.nodes[name]
	return has
}

func (c Captures) All(name string) []Node {
	return append([]Node(nil), c.nodes[name]...)
}

func (c Captures) One(name string) (Node, bool) {
	if nodes := c.nodes[name]; len(nodes) > 0 {
		return nodes[0], true
	}
	return Node{}, false
}

// captureSet accumulates captures for a single rule attempt before it is frozen into
// a Captures value.
type captureSet struct {
	names []string
	nodes map[string][]Node
}

func (s *captureSet) add(name string, nodes ...Node) {
	if len(nodes) == 0 {
		return
	}
	if s.nodes == nil {
		s.nodes = map[string][]Node{}
	}
	if _, has := s.nodes[name]; !has {
		s.names = append(s.names, name)
	}
	s.nodes[name] = append(s.nodes[name], nodes...)
}

func (s *captureSet) freeze() Captures {
	c := Captures{names: s.names, nodes: s.nodes}
	*s = captureSet{}
	return c
}
