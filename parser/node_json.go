package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arr-ai/descent/meta"
)

type nodeRepr struct {
	Kind     string   `json:"kind"`
	Raw      string   `json:"raw"`
	Children Captures `json:"children"`
	Range    [2]int   `json:"range"`
}

// MarshalJSON encodes n as {"kind", "raw", "children", "range"}. Line and column
// locations are not part of the encoding.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeRepr{
		Kind:     n.kind.String(),
		Raw:      n.raw,
		Children: n.children,
		Range:    [2]int{n.meta.Range.Start, n.meta.Range.End},
	})
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var repr nodeRepr
	if err := json.Unmarshal(data, &repr); err != nil {
		return err
	}
	kind, err := parseKind(repr.Kind)
	if err != nil {
		return err
	}
	r := meta.Range{Start: repr.Range[0], End: repr.Range[1]}
	if r.Len() != len(repr.Raw) {
		return fmt.Errorf("node range %s does not fit raw text of length %d", r, len(repr.Raw))
	}
	*n = Node{kind: kind, raw: repr.Raw, children: repr.Children, meta: meta.At(r)}
	return nil
}

// MarshalJSON encodes c as an object whose keys keep capture order.
func (c Captures) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		nodes, err := json.Marshal(c.nodes[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(nodes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Captures) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok == nil {
		*c = Captures{}
		return nil
	} else if tok != json.Delim('{') {
		return fmt.Errorf("captures: expected object, got %v", tok)
	}

	var set captureSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("captures: expected name, got %v", tok)
		}
		var nodes []Node
		if err := dec.Decode(&nodes); err != nil {
			return fmt.Errorf("captures %q: %w", name, err)
		}
		set.add(name, nodes...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = set.freeze()
	return nil
}
