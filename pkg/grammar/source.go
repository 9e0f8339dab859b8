package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind selects how a Source is turned into a document.
type SourceKind int

const (
	// KindPath reads a UTF-8 grammar file. Files ending in .yaml or .yml are
	// decoded as YAML, everything else as JSON.
	KindPath SourceKind = iota
	// KindString decodes JSON text.
	KindString
	// KindRaw uses an already decoded value as is.
	KindRaw
)

func (k SourceKind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindString:
		return "str"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// Source is the grammar to be validated.
type Source struct {
	Kind  SourceKind
	Value string
	Raw   any
}

// FromPath returns a Source reading the grammar file at path.
func FromPath(path string) Source { return Source{Kind: KindPath, Value: path} }

// FromString returns a Source decoding JSON text.
func FromString(text string) Source { return Source{Kind: KindString, Value: text} }

// FromRaw returns a Source wrapping an already decoded document, for example
// an Object, a map[string]any or a *yaml.Node decoded elsewhere. Any map with
// string keys is walked as an object and any slice or array as a sequence, so
// values such as []map[string]any work too. Map keys are visited sorted.
func FromRaw(v any) Source { return Source{Kind: KindRaw, Raw: v} }

// Label describes the source for messages.
func (s Source) Label() string {
	switch s.Kind {
	case KindPath:
		return s.Value
	case KindString:
		return "<string>"
	default:
		return "<raw>"
	}
}

// SourceError reports a grammar that could not be read or decoded. No
// extraction happens after it.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("grammar %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func sourceError(s Source, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Source: s.Label(), Err: err}
}

// Load returns the decoded document. Failures are *SourceError.
func (s Source) Load() (any, error) {
	switch s.Kind {
	case KindPath:
		p := strings.TrimSpace(s.Value)
		if p == "" {
			return nil, sourceError(s, fmt.Errorf("grammar path is empty"))
		}
		// #nosec G304 -- validation reads a user-specified path by design.
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, sourceError(s, err)
		}
		var doc any
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			doc, err = DecodeYAML(b)
		default:
			doc, err = DecodeJSON(b)
		}
		if err != nil {
			return nil, sourceError(s, err)
		}
		return doc, nil
	case KindString:
		doc, err := DecodeJSON([]byte(s.Value))
		if err != nil {
			return nil, sourceError(s, err)
		}
		return doc, nil
	case KindRaw:
		if n, ok := s.Raw.(*yaml.Node); ok && n != nil {
			doc, err := fromYAMLNode(n, 0)
			if err != nil {
				return nil, sourceError(s, err)
			}
			return doc, nil
		}
		return s.Raw, nil
	default:
		return nil, sourceError(s, fmt.Errorf("unexpected source kind: %s", s.Kind))
	}
}
