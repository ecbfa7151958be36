// Package gotree builds and prints text trees.
package gotree

import "strings"

const (
	emptySpace   = "    "
	middleItem   = "├── "
	continueItem = "│   "
	lastItem     = "└── "
)

type (
	tree struct {
		text  string
		items []Tree
	}

	// Tree is a labelled node with ordered children.
	Tree interface {
		Add(text string) Tree
		AddTree(tree Tree)
		Items() []Tree
		Text() string
		Print() string
	}
)

// New returns a tree with a single root labelled text.
func New(text string) Tree {
	return &tree{text: text}
}

// Add appends a new child labelled text and returns it.
func (t *tree) Add(text string) Tree {
	n := New(text)
	t.items = append(t.items, n)
	return n
}

func (t *tree) AddTree(tree Tree) {
	t.items = append(t.items, tree)
}

func (t *tree) Text() string {
	return t.text
}

func (t *tree) Items() []Tree {
	return t.items
}

// Print renders the tree, one label per line, without a trailing newline.
// Multi-line labels stay aligned under their branch.
func (t *tree) Print() string {
	lines := strings.Split(t.text, "\n")
	printItems(&lines, t.items, "")
	return strings.Join(lines, "\n")
}

func printItems(lines *[]string, items []Tree, indent string) {
	for i, item := range items {
		last := i == len(items)-1
		head, tail := middleItem, continueItem
		if last {
			head, tail = lastItem, emptySpace
		}
		for j, text := range strings.Split(item.Text(), "\n") {
			if j == 0 {
				*lines = append(*lines, indent+head+text)
			} else {
				*lines = append(*lines, indent+tail+text)
			}
		}
		printItems(lines, item.Items(), indent+tail)
	}
}
