// Package oracle adapts regex engines for use as a validity oracle: an engine
// is asked to compile one pattern, and a compile error means the pattern is
// invalid.
package oracle

import (
	"fmt"
	"sync"
)

// Engine compiles a single pattern. The returned error text is the verdict
// shown to users, so implementations must not decorate it.
type Engine interface {
	Compile(pattern string) error
}

// ConcurrencyReporter is implemented by engines that know whether Compile may
// be called from several goroutines at once.
type ConcurrencyReporter interface {
	ConcurrentSafe() bool
}

// IsConcurrentSafe reports whether e may be shared between goroutines.
// Engines that do not say are assumed unsafe.
func IsConcurrentSafe(e Engine) bool {
	if r, ok := e.(ConcurrencyReporter); ok {
		return r.ConcurrentSafe()
	}
	return false
}

// Serialize returns an engine that forwards to e one call at a time. Safe
// engines are returned unchanged.
func Serialize(e Engine) Engine {
	if e == nil || IsConcurrentSafe(e) {
		return e
	}
	return &serialEngine{e: e}
}

type serialEngine struct {
	mu sync.Mutex
	e  Engine
}

func (s *serialEngine) Compile(pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Compile(pattern)
}

func (s *serialEngine) ConcurrentSafe() bool { return true }

// EngineInitError reports that no engine handle could be obtained. Nothing can
// be validated without one.
type EngineInitError struct {
	Engine string
	Err    error
}

func (e *EngineInitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("init regex engine %q: %v", e.Engine, e.Err)
}

func (e *EngineInitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
