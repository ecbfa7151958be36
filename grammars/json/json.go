// Package json is a JSON grammar with authored diagnostics for common mistakes such
// as trailing commas, missing colons and unclosed containers.
package json

import (
	gojson "encoding/json"
	"fmt"
	"strconv"

	"github.com/arr-ai/descent/builder"
	"github.com/arr-ai/descent/parser"
)

// Root is the variant that matches a complete document.
const Root = "document"

const (
	stringRE = `"(?:[^"\\\x00-\x1f]|\\["\\/bfnrt]|\\u[0-9a-fA-F]{4})*"`
	numberRE = `-?(?:0|[1-9]\d*)(?:\.\d+)?(?:[eE][+-]?\d+)?`
)

var grammar = build()

func build() *parser.Grammar {
	g := builder.New().Separator(builder.Pat(`[ \t\n\r]*`))
	g.Variant(Root).Rule().
		Ref("value").Named("value").
		Pattern(`[ \t\n\r]+`).Tight().Optional()

	values(g.Variant("value")).Throw("expected a JSON value")
	values(g.Variant("element"))
	values(g.Variant("next_element")).Throw("expected a value after ','")

	g.Variant("object").Rule().
		Literal("{").
		Ref("members").Named("members").Optional().
		Ref("object_end")
	g.Variant("members").Rule().
		Ref("member").Named("member").
		Ref("more_members").Named("more").Many().
		Transform(flatten("member"))
	g.Variant("more_members").Rule().Literal(",").Ref("next_member").Named("member")
	member(g.Variant("member"))
	member(g.Variant("next_member")).Throw("expected an object member after ','")
	g.Variant("colon").Rule().Literal(":")
	g.Variant("colon").Throw("expected ':' after object key")
	g.Variant("object_end").Rule().Literal("}")
	g.Variant("object_end").Throw("expected ',' or '}'")

	g.Variant("array").Rule().
		Literal("[").
		Ref("elements").Named("elements").Optional().
		Ref("array_end")
	g.Variant("elements").Rule().
		Ref("element").Named("item").
		Ref("more_elements").Named("more").Many().
		Transform(flatten("item"))
	g.Variant("more_elements").Rule().Literal(",").Ref("next_element").Named("item")
	g.Variant("array_end").Rule().Literal("]")
	g.Variant("array_end").Throw("expected ',' or ']'")

	return g.MustBuild()
}

func values(v *builder.Variant) *builder.Variant {
	v.Rule().Ref("object").Named("object").
		Or().Ref("array").Named("array").
		Or().Pattern(stringRE).Named("string").
		Or().Pattern(numberRE).Named("number").
		Or().Pattern(`(?:true|false|null)\b`).Named("literal")
	return v
}

func member(v *builder.Variant) *builder.Variant {
	v.Rule().
		Pattern(stringRE).Named("key").
		Ref("colon").
		Ref("value").Named("value")
	return v
}

// flatten hoists the name captures of the repeated tail into the node itself.
func flatten(name string) parser.Transform {
	return func(n parser.Node) parser.Node {
		all := n.All(name)
		for _, more := range n.All("more") {
			all = append(all, more.All(name)...)
		}
		return n.WithChildren(parser.NewCaptures(name, all...))
	}
}

// Grammar returns the JSON grammar.
func Grammar() *parser.Grammar {
	return grammar
}

// Parse parses a complete JSON document.
func Parse(source string) (parser.Node, error) {
	return grammar.Parse(source, Root, true)
}

// Unmarshal parses source and decodes it the way encoding/json decodes into an
// interface{}.
func Unmarshal(source string) (interface{}, error) {
	n, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return Decode(n)
}

// Decode converts a document or value node into maps, slices, strings, float64s,
// bools and nil.
func Decode(n parser.Node) (interface{}, error) {
	c := n.Children()
	switch {
	case c.Has("value"):
		v, _ := c.One("value")
		return Decode(v)
	case c.Has("object"):
		obj, _ := c.One("object")
		return decodeObject(obj)
	case c.Has("array"):
		arr, _ := c.One("array")
		return decodeArray(arr)
	case c.Has("string"):
		s, _ := c.One("string")
		return unquote(s)
	case c.Has("number"):
		num, _ := c.One("number")
		return strconv.ParseFloat(num.Raw(), 64)
	case c.Has("literal"):
		lit, _ := c.One("literal")
		switch lit.Raw() {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%s: not a JSON value node", n.Range())
}

func decodeObject(n parser.Node) (interface{}, error) {
	out := map[string]interface{}{}
	members, _ := n.One("members")
	for _, m := range members.All("member") {
		k, _ := m.One("key")
		key, err := unquote(k)
		if err != nil {
			return nil, err
		}
		v, _ := m.One("value")
		if out[key], err = Decode(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeArray(n parser.Node) (interface{}, error) {
	out := []interface{}{}
	elements, _ := n.One("elements")
	for _, e := range elements.All("item") {
		v, err := Decode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func unquote(n parser.Node) (string, error) {
	var s string
	if err := gojson.Unmarshal([]byte(n.Raw()), &s); err != nil {
		loc := n.Location()
		return "", fmt.Errorf("%d:%d: %w", loc.Line, loc.Col, err)
	}
	return s, nil
}
