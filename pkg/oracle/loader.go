package oracle

import (
	"context"
	"sync"
)

// OpenFunc obtains an engine handle. It may be slow; Loader calls it at most
// once.
type OpenFunc func(ctx context.Context) (Engine, error)

// Loader memoizes one engine handle. The first caller of Engine runs the open
// function; callers arriving while it runs wait for the same result, and every
// later caller gets the stored handle or the stored error.
type Loader struct {
	name string
	open OpenFunc

	once   sync.Once
	engine Engine
	err    error
}

// NewLoader returns a Loader around open. name labels init errors.
func NewLoader(name string, open OpenFunc) *Loader {
	return &Loader{name: name, open: open}
}

// ForEngine returns a Loader for a registered engine name.
func ForEngine(name string) *Loader {
	canon := NormalizeEngineName(name)
	return NewLoader(canon, func(context.Context) (Engine, error) {
		return Open(canon)
	})
}

// Name returns the engine label.
func (l *Loader) Name() string { return l.name }

// Engine returns the loaded handle, loading it on first use. Handles that are
// not safe for concurrent use are wrapped with Serialize. Failures are always
// *EngineInitError.
func (l *Loader) Engine(ctx context.Context) (Engine, error) {
	l.once.Do(func() {
		if l.open == nil {
			l.err = &EngineInitError{Engine: l.name, Err: errNoOpenFunc}
			return
		}
		// The load outlives the first caller's cancellation; its result is
		// shared with everyone else.
		e, err := l.open(context.WithoutCancel(ctx))
		if err != nil {
			l.err = asInitError(l.name, err)
			return
		}
		if e == nil {
			l.err = &EngineInitError{Engine: l.name, Err: errNilEngine}
			return
		}
		l.engine = Serialize(e)
	})
	return l.engine, l.err
}

var (
	sharedMu      sync.Mutex
	sharedLoaders = map[string]*Loader{}
)

// Shared returns the process-wide Loader for a registered engine name, so an
// engine is loaded at most once per process.
func Shared(name string) *Loader {
	canon := NormalizeEngineName(name)
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if l, ok := sharedLoaders[canon]; ok {
		return l
	}
	l := ForEngine(canon)
	sharedLoaders[canon] = l
	return l
}
