// Package expr is an integer calculator grammar.
//
// Sums and products are matched as flat chains and folded into left-associative
// binary nodes by a rule transform, so "1-2-3" evaluates as (1-2)-3.
package expr

import (
	"fmt"
	"strconv"

	"github.com/arr-ai/descent/builder"
	"github.com/arr-ai/descent/parser"
)

// Root is the variant that matches a complete expression.
const Root = "input"

var grammar = build()

func build() *parser.Grammar {
	g := builder.New().Separator(builder.Pat(`\s*`))
	g.Variant(Root).Rule().
		Ref("sum").Named("expr").
		Pattern(`\s+`).Tight().Optional()
	chain(g, "sum", "product", `[+-]`)
	chain(g, "product", "factor", `[*/%]`)
	g.Variant("factor").
		Rule().Pattern(`\d+`).Named("number").
		Or().Literal("(").Ref("sum").Named("group").Literal(")").
		Or().Literal("-").Ref("factor").Named("neg")
	g.Variant("factor").Throw("expected a number, '(' or '-'")
	return g.MustBuild()
}

// chain defines name as operand (op operand)*.
func chain(g *builder.Grammar, name, operand, ops string) {
	step := name + "_step"
	g.Variant(name).Rule().
		Ref(operand).Named("first").
		Ref(step).Named("step").Many().
		Transform(foldLeft)
	g.Variant(step).Rule().
		Pattern(ops).Named("op").
		Ref(operand).Named("operand")
}

// foldLeft rewrites first (op operand)* into nested lhs/op/rhs captures. A chain
// without operators keeps only its operand.
func foldLeft(n parser.Node) parser.Node {
	acc, _ := n.One("first")
	steps := n.All("step")
	if len(steps) == 0 {
		return n.WithChildren(parser.NewCaptures("operand", acc))
	}
	start := acc.Range().Start - n.Range().Start
	var children parser.Captures
	for _, s := range steps {
		op, _ := s.One("op")
		rhs, _ := s.One("operand")
		children = parser.NewCaptures("lhs", acc).With("op", op).With("rhs", rhs)
		acc = n.Derive(start, s.Range().End-n.Range().Start+1, children)
	}
	return n.WithChildren(children)
}

// Grammar returns the calculator grammar.
func Grammar() *parser.Grammar {
	return grammar
}

// Parse parses a complete expression.
func Parse(source string) (parser.Node, error) {
	return grammar.Parse(source, Root, true)
}

// Evaluate parses and evaluates source.
func Evaluate(source string) (int, error) {
	n, err := Parse(source)
	if err != nil {
		return 0, err
	}
	return Eval(n)
}

// Eval computes the value of a node produced by this grammar.
func Eval(n parser.Node) (int, error) {
	c := n.Children()
	switch {
	case c.Has("expr"):
		e, _ := c.One("expr")
		return Eval(e)
	case c.Has("operand"):
		o, _ := c.One("operand")
		return Eval(o)
	case c.Has("number"):
		num, _ := c.One("number")
		return strconv.Atoi(num.Raw())
	case c.Has("group"):
		inner, _ := c.One("group")
		return Eval(inner)
	case c.Has("neg"):
		inner, _ := c.One("neg")
		v, err := Eval(inner)
		return -v, err
	case c.Has("op"):
		return binary(n)
	}
	return 0, fmt.Errorf("%s: not an expression node", n.Range())
}

func binary(n parser.Node) (int, error) {
	lhs, _ := n.One("lhs")
	rhs, _ := n.One("rhs")
	op, _ := n.One("op")
	a, err := Eval(lhs)
	if err != nil {
		return 0, err
	}
	b, err := Eval(rhs)
	if err != nil {
		return 0, err
	}
	switch op.Raw() {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/", "%":
		if b == 0 {
			loc := op.Location()
			return 0, fmt.Errorf("%d:%d: division by zero", loc.Line, loc.Col)
		}
		if op.Raw() == "/" {
			return a / b, nil
		}
		return a % b, nil
	}
	return 0, fmt.Errorf("unknown operator %q", op.Raw())
}
