package grammar

import (
	"strconv"
	"strings"
)

// Step is one component of a Path: either an object key or an array index.
type Step struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a step addressing an object member.
func Key(k string) Step { return Step{key: k} }

// Index returns a step addressing an array element.
func Index(i int) Step { return Step{index: i, isIndex: true} }

// IsIndex reports whether the step addresses an array element.
func (s Step) IsIndex() bool { return s.isIndex }

// Name returns the key of a key step; it is empty for index steps.
func (s Step) Name() string { return s.key }

// Pos returns the index of an index step; it is zero for key steps.
func (s Step) Pos() int { return s.index }

func (s Step) bare() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path locates one value inside a grammar document, root first.
type Path []Step

// With returns a copy of p extended by s. The receiver is never modified, so
// sibling branches of a traversal can share a prefix.
func (p Path) With(s Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Parent returns p without its last step.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// String renders the path. The first step is written bare; later key steps are
// written as ".name" and later index steps as "[i]":
//
//	repository.aRule.endCaptures.1.patterns[0].match
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(p[0].bare())
	for _, s := range p[1:] {
		if s.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
			continue
		}
		b.WriteByte('.')
		b.WriteString(s.key)
	}
	return b.String()
}

// Resolve walks doc along p and returns the value found there.
func Resolve(doc any, p Path) (any, bool) {
	cur := doc
	for _, s := range p {
		if s.isIndex {
			arr, ok := asArray(cur)
			if !ok || s.index < 0 || s.index >= len(arr) {
				return nil, false
			}
			cur = arr[s.index]
			continue
		}
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		next, ok := obj.Get(s.key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
