package codegen

import (
	"fmt"
	"strings"

	"github.com/arr-ai/frozen"

	"github.com/arr-ai/descent/def"
)

// IdentsWriter renders a constant for every variant name.
type IdentsWriter struct {
	def.Grammar
}

func (i IdentsWriter) String() string {
	names := frozen.NewSet[string]()
	for name := range i.Grammar {
		names = names.With(name)
	}

	sorted := names.OrderedElements(func(a, b string) bool {
		return strings.Compare(IdentName(a), IdentName(b)) < 0
	})
	out := "const (\n"
	for _, name := range sorted {
		out += fmt.Sprintf("%s = %q\n", IdentName(name), name)
	}
	return out + ")\n"
}
