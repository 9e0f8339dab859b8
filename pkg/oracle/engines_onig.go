//go:build cgo && oniguruma

package oracle

import (
	rubex "github.com/go-enry/go-oniguruma"
)

func init() {
	engines[EngineOnig] = func() (Engine, error) { return onigEngine{}, nil }
	defaultEngine = EngineOnig
}

// onigEngine compiles with libonig using its default (Ruby) syntax, the
// syntax TextMate grammars are written in. The compiled regex is released by
// the binding's finalizer.
type onigEngine struct{}

func (onigEngine) Compile(pattern string) error {
	_, err := rubex.Compile(pattern)
	return err
}

// Not declared safe, so the Loader serializes calls into the binding.
func (onigEngine) ConcurrentSafe() bool { return false }
