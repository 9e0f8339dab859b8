//go:build cgo && oniguruma

package oracle_test

import (
	"context"
	"testing"

	"github.com/r9s-ai/textmate-validate/pkg/oracle"
)

func TestOnigIsDefault(t *testing.T) {
	if got := oracle.DefaultEngine(); got != oracle.EngineOnig {
		t.Fatalf("DefaultEngine()=%q want %q", got, oracle.EngineOnig)
	}
	if got := oracle.NormalizeEngineName(""); got != oracle.EngineOnig {
		t.Fatalf("NormalizeEngineName(\"\")=%q want %q", got, oracle.EngineOnig)
	}
}

func TestOnigSyntax(t *testing.T) {
	e, err := oracle.Open(oracle.EngineOnig)
	if err != nil {
		t.Fatalf("Open err=%v", err)
	}

	// Oniguruma-only syntax that regexp2 rejects.
	valid := []string{`a*+`, `(?:ab)++`, `\h+`, `a\Kb`, `\R`, `\X`, `(?~abc)`, `\p{Alnum}`}
	for _, p := range valid {
		if err := e.Compile(p); err != nil {
			t.Fatalf("Compile(%q) err=%v", p, err)
		}
	}

	// Oniguruma refuses variable-length lookbehind, which regexp2 allows.
	invalid := []string{`(`, `(?<=a+)b`, `[a-z`, `test.*)`}
	for _, p := range invalid {
		if err := e.Compile(p); err == nil {
			t.Fatalf("Compile(%q) expected error", p)
		}
	}
}

func TestOnigSharedLoaderIsSerialized(t *testing.T) {
	e, err := oracle.Shared(oracle.EngineOnig).Engine(context.Background())
	if err != nil {
		t.Fatalf("Engine err=%v", err)
	}
	if !oracle.IsConcurrentSafe(e) {
		t.Fatalf("shared onig engine should be wrapped for concurrent use")
	}
}
