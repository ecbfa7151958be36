package parser

import (
	"fmt"

	"github.com/arr-ai/descent/gotree"
)

// TreeView renders n and its captures as an indented tree, one node per line.
func (n Node) TreeView(name string) string {
	return n.tree(name).Print()
}

func (n Node) tree(name string) gotree.Tree {
	label := fmt.Sprintf("%s %s %s", n.kind, n.meta.Range, quoted(n.raw))
	if name != "" {
		label = name + ": " + label
	}
	tree := gotree.New(label)
	for _, child := range n.children.names {
		for _, c := range n.children.nodes[child] {
			tree.AddTree(c.tree(child))
		}
	}
	return tree
}
