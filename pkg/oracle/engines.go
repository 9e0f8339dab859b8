package oracle

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

const (
	// EngineOnig is Oniguruma, the engine editors run TextMate grammars with.
	// It needs cgo and libonig and is compiled in with the "oniguruma" build
	// tag.
	EngineOnig = "onig"
	// EngineRegexp2 is a backtracking engine close to Oniguruma syntax:
	// lookbehind, backreferences, named groups, \G, \A and \z. It rejects
	// possessive quantifiers, \h, \K, \R, \X and absent groups, and accepts
	// variable-length lookbehind.
	EngineRegexp2 = "regexp2"
	// EngineRE2 is the Go standard library engine. It rejects lookaround and
	// backreferences, which TextMate grammars use often.
	EngineRE2 = "re2"
)

type openEngine func() (Engine, error)

var (
	engines = map[string]openEngine{
		EngineRegexp2: func() (Engine, error) { return regexp2Engine{}, nil },
		EngineRE2:     func() (Engine, error) { return re2Engine{}, nil },
	}
	engineAliases = map[string]string{
		"oniguruma": EngineOnig,
		"go":        EngineRE2,
	}
	// defaultEngine is switched to EngineOnig when it is compiled in.
	defaultEngine = EngineRegexp2
)

var errOnigNotCompiled = errors.New(`not compiled in (build with cgo and -tags oniguruma)`)

// DefaultEngine returns the engine used when none is named: onig when this
// binary has it, regexp2 otherwise.
func DefaultEngine() string { return defaultEngine }

// NormalizeEngineName maps aliases to canonical engine names and the empty
// name to DefaultEngine. Unknown names are returned lower-cased and trimmed.
func NormalizeEngineName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return defaultEngine
	}
	if canon, ok := engineAliases[n]; ok {
		return canon
	}
	return n
}

// EngineNames returns the canonical names of the engines in this binary.
func EngineNames() []string {
	out := make([]string, 0, len(engines))
	for name := range engines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open returns the engine registered under name.
func Open(name string) (Engine, error) {
	canon := NormalizeEngineName(name)
	if open, ok := engines[canon]; ok {
		e, err := open()
		if err != nil {
			return nil, asInitError(canon, err)
		}
		return e, nil
	}
	if canon == EngineOnig {
		return nil, &EngineInitError{Engine: canon, Err: errOnigNotCompiled}
	}
	return nil, &EngineInitError{
		Engine: name,
		Err:    fmt.Errorf("unknown engine (supported: %s)", strings.Join(EngineNames(), ", ")),
	}
}

type regexp2Engine struct{}

func (regexp2Engine) Compile(pattern string) error {
	_, err := regexp2.Compile(pattern, regexp2.None)
	return err
}

func (regexp2Engine) ConcurrentSafe() bool { return true }

type re2Engine struct{}

func (re2Engine) Compile(pattern string) error {
	_, err := regexp.Compile(pattern)
	return err
}

func (re2Engine) ConcurrentSafe() bool { return true }
