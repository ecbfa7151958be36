package parser

import "strings"

// Variant is an ordered choice between rules.
type Variant struct {
	name  string
	rules []Rule
}

func (v *Variant) Name() string {
	return v.name
}

func (v *Variant) Rules() []Rule {
	return append([]Rule(nil), v.rules...)
}

func (v *Variant) String() string {
	parts := make([]string, 0, len(v.rules))
	for _, r := range v.rules {
		parts = append(parts, r.String())
	}
	return v.name + " -> " + strings.Join(parts, " | ") + ";"
}

func (v *Variant) parse(scope Scope, source string, prev *Node) (out Node, err error) {
	offset := follow(prev)
	scope, err = scope.enter(v.name, len(source), offset)
	if err != nil {
		return Node{}, err
	}
	defer scope.enterf("variant %s @%d", v.name, offset).exit(&out, &err)

	var errs []error
	for _, r := range v.rules {
		n, err := r.parse(scope, source, prev)
		if err == nil {
			return n, nil
		}
		if !isSoft(err) {
			if pe, ok := err.(*ParseError); ok && pe.Variant == "" {
				pe.Variant = v.name
			}
			return Node{}, err
		}
		errs = append(errs, err)
	}
	e := newParseError(VariantExhausted, offset, "none of the %d rule(s) matched", len(v.rules))
	e.Variant = v.name
	return Node{}, e.withChildren(errs...)
}
