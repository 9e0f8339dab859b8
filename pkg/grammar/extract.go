package grammar

import "reflect"

// LocatedRegex is one regex found in a grammar together with where it was
// found.
type LocatedRegex struct {
	Regex    string `json:"regex"`
	Location string `json:"location"`
	Path     Path   `json:"-"`
}

// Kind classifies one member of a rule node.
type Kind int

const (
	Unrecognized Kind = iota
	Repository
	CaptureMap
	PatternsArray
	RegexLeaf
)

func (k Kind) String() string {
	switch k {
	case Repository:
		return "repository"
	case CaptureMap:
		return "captures"
	case PatternsArray:
		return "patterns"
	case RegexLeaf:
		return "regex"
	default:
		return "unrecognized"
	}
}

var (
	repositoryKeys = map[string]struct{}{"repository": {}}
	captureKeys    = map[string]struct{}{"captures": {}, "beginCaptures": {}, "endCaptures": {}, "whileCaptures": {}}
	patternsKeys   = map[string]struct{}{"patterns": {}}
	regexKeys      = map[string]struct{}{"match": {}, "begin": {}, "end": {}, "while": {}}
)

// Classify decides how the member key: value of a rule node is traversed. The
// shape of value must fit the key; a "patterns" member that is not an array is
// Unrecognized, as is a "match" member that is not a string.
func Classify(key string, value any) Kind {
	if _, ok := repositoryKeys[key]; ok {
		if _, ok := asObject(value); ok {
			return Repository
		}
		return Unrecognized
	}
	if _, ok := captureKeys[key]; ok {
		if _, ok := asObject(value); ok {
			return CaptureMap
		}
		return Unrecognized
	}
	if _, ok := patternsKeys[key]; ok {
		if _, ok := asArray(value); ok {
			return PatternsArray
		}
		return Unrecognized
	}
	if _, ok := regexKeys[key]; ok {
		if _, ok := value.(string); ok {
			return RegexLeaf
		}
	}
	return Unrecognized
}

// Extract returns every regex of doc in document order. doc is the decoded
// grammar (see Source.Load) and is never modified. Substructures that do not
// have a recognized shape are skipped; Extract never fails.
func Extract(doc any) []LocatedRegex {
	out := make([]LocatedRegex, 0)
	return walkRule(doc, nil, out)
}

func walkRule(node any, at Path, out []LocatedRegex) []LocatedRegex {
	obj, ok := asObject(node)
	if !ok {
		return out
	}
	for _, m := range obj {
		here := at.With(Key(m.Key))
		switch Classify(m.Key, m.Value) {
		case Repository, CaptureMap:
			children, _ := asObject(m.Value)
			for _, c := range children {
				out = walkRule(c.Value, here.With(Key(c.Key)), out)
			}
		case PatternsArray:
			children, _ := asArray(m.Value)
			for i, c := range children {
				out = walkRule(c, here.With(Index(i)), out)
			}
		case RegexLeaf:
			re, _ := m.Value.(string)
			out = append(out, LocatedRegex{Regex: re, Location: here.String(), Path: here})
		}
	}
	return out
}

func asObject(v any) (Object, bool) {
	switch t := v.(type) {
	case Object:
		return t, true
	case map[string]any:
		return sortedMembers(t), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return sortedMembers(m), true
}

func asArray(v any) (Array, bool) {
	switch t := v.(type) {
	case Array:
		return t, true
	case []any:
		return Array(t), true
	case Object, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	out := make(Array, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
