package codegen

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// GoTypeName is the name of the generated node type for a variant.
func GoTypeName(variant string) string {
	return GoName(variant) + "Node"
}

// IdentName is the name of the generated constant holding a variant's name.
func IdentName(variant string) string {
	return "Ident" + GoName(variant)
}

func GoName(name string) string {
	return strcase.ToCamel(DropCaps(name))
}

// DropCaps lowercases every capital that follows another capital, so that runs like
// "JSON" camel-case as "Json".
func DropCaps(name string) string {
	isCaps := func(r uint8) bool { return r >= 'A' && r <= 'Z' }
	out := make([]string, 0, len(name))
	for i := 0; i < len(name); i++ {
		out = append(out, string(name[i]))
		if isCaps(name[i]) {
			for i+1 < len(name) && isCaps(name[i+1]) {
				i++
				out = append(out, strings.ToLower(string(name[i])))
			}
		}
	}
	return strings.Join(out, "")
}
