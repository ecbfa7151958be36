package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertEqualNodes compares two trees by kind, raw text, range and captures, and
// reports each difference with its capture path.
func AssertEqualNodes(t *testing.T, v, u Node) bool {
	t.Helper()
	if !assertEqualNodes(t, v, u, []interface{}{}) {
		t.Logf("\nexpected: %v\nactual:   %v", v, u)
		return false
	}
	return true
}

func assertEqualNodes(t *testing.T, v, u Node, path []interface{}) bool {
	t.Helper()
	result := true
	ok := func(ok bool) bool {
		result = result && ok
		return ok
	}
	ok(assert.Equal(t, v.kind, u.kind, "%v", path))
	ok(assert.Equal(t, v.raw, u.raw, "%v", path))
	ok(assert.Equal(t, v.meta.Range, u.meta.Range, "%v", path))
	ok(assert.Equal(t, v.children.Names(), u.children.Names(), "%v", path))
	for _, name := range v.children.Names() {
		vc, uc := v.All(name), u.All(name)
		ok(assert.Equal(t, len(vc), len(uc), "%v", append(path, name)))
		n := len(vc)
		if n > len(uc) {
			n = len(uc)
		}
		for i := 0; i < n; i++ {
			ok(assertEqualNodes(t, vc[i], uc[i], append(path[:len(path):len(path)], name, i)))
		}
	}
	return result
}
