// Package oracletest provides a scripted oracle.Engine for tests that should
// not depend on a real regex engine.
package oracletest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/r9s-ai/textmate-validate/pkg/oracle"
)

// FakeEngine rejects the patterns it was told to reject and accepts everything
// else. It is safe for concurrent use and records every pattern it sees.
type FakeEngine struct {
	mu       sync.Mutex
	invalid  map[string]string
	compiled []string
	// Hook, when set, runs at the start of every Compile. Tests use it to
	// delay calls and shuffle completion order.
	Hook func(pattern string)
	// Unsafe makes ConcurrentSafe report false.
	Unsafe bool
}

// NewFakeEngine returns a FakeEngine with no invalid patterns.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{invalid: map[string]string{}}
}

// Reject marks pattern invalid with the given error message.
func (f *FakeEngine) Reject(pattern, message string) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalid[pattern] = message
	return f
}

// Compile records pattern and returns the scripted verdict.
func (f *FakeEngine) Compile(pattern string) error {
	if f.Hook != nil {
		f.Hook(pattern)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compiled = append(f.compiled, pattern)
	if msg, ok := f.invalid[pattern]; ok {
		return errors.New(msg)
	}
	return nil
}

// ConcurrentSafe implements oracle.ConcurrencyReporter.
func (f *FakeEngine) ConcurrentSafe() bool { return !f.Unsafe }

// Compiled returns the patterns compiled so far, in call order.
func (f *FakeEngine) Compiled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.compiled...)
}

// CountingOpen wraps an engine in an oracle.OpenFunc that counts how often it
// is called.
type CountingOpen struct {
	Engine oracle.Engine
	Err    error
	// Gate, when non-nil, blocks every open until it is closed.
	Gate  chan struct{}
	calls atomic.Int32
}

// Open implements oracle.OpenFunc.
func (c *CountingOpen) Open(ctx context.Context) (oracle.Engine, error) {
	c.calls.Add(1)
	if c.Gate != nil {
		<-c.Gate
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Engine, nil
}

// Calls returns how many times Open ran.
func (c *CountingOpen) Calls() int { return int(c.calls.Load()) }

var _ oracle.Engine = (*FakeEngine)(nil)
