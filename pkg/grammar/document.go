package grammar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Object is a decoded JSON/YAML mapping that keeps member order as written.
type Object []Member

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Array is a decoded JSON/YAML sequence.
type Array []any

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns member keys in document order.
func (o Object) Keys() []string {
	out := make([]string, 0, len(o))
	for _, m := range o {
		out = append(out, m.Key)
	}
	return out
}

// DecodeJSON decodes exactly one JSON value into an ordered document.
// Numbers are kept as json.Number. A repeated key keeps its first position and
// its last value.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("invalid JSON: unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return nil, err
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := Object{}
		index := map[string]int{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("invalid JSON: object key at offset %d is not a string", dec.InputOffset())
			}
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			if i, dup := index[key]; dup {
				obj[i].Value = val
				continue
			}
			index[key] = len(obj)
			obj = append(obj, Member{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := Array{}
		for dec.More() {
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("invalid JSON: unexpected %q at offset %d", delim, dec.InputOffset())
	}
}

// DecodeYAML decodes a YAML document into the same ordered representation as
// DecodeJSON. Aliases are expanded; scalars other than strings are decoded to
// their natural Go type.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, errors.New("empty YAML document")
	}
	return fromYAMLNode(&doc, 0)
}

const maxYAMLAliasDepth = 64

func fromYAMLNode(n *yaml.Node, depth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0], depth)
	case yaml.AliasNode:
		if depth >= maxYAMLAliasDepth {
			return nil, fmt.Errorf("yaml line %d: alias nesting too deep", n.Line)
		}
		return fromYAMLNode(n.Alias, depth+1)
	case yaml.MappingNode:
		obj := make(Object, 0, len(n.Content)/2)
		index := map[string]int{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("yaml line %d: mapping key must be a scalar", k.Line)
			}
			val, err := fromYAMLNode(n.Content[i+1], depth)
			if err != nil {
				return nil, err
			}
			if j, dup := index[k.Value]; dup {
				obj[j].Value = val
				continue
			}
			index[k.Value] = len(obj)
			obj = append(obj, Member{Key: k.Value, Value: val})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make(Array, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAMLNode(c, depth)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("yaml line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("yaml line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

// sortedMembers adapts an unordered map to member order. Go maps carry no
// encounter order, so keys are visited sorted.
func sortedMembers(m map[string]any) Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, Member{Key: k, Value: m[k]})
	}
	return out
}
