package tmvalidate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/r9s-ai/textmate-validate/pkg/grammar"
	"github.com/r9s-ai/textmate-validate/pkg/oracle"
	"github.com/r9s-ai/textmate-validate/pkg/oracle/oracletest"
)

var (
	validPool   = []string{"a*", "str(.*)", `\b(if|else)\b`, "[0-9]+", `(?<=x)y`, `^\s*#`, `(")`, "x{2,3}"}
	invalidPool = []string{"(", "a)", "[abc", "((a)"}
)

func fakeLoader(e oracle.Engine) *oracle.Loader {
	return oracle.NewLoader("fake", func(context.Context) (oracle.Engine, error) { return e, nil })
}

func makeGrammar(re1, re2 string) string {
	return fmt.Sprintf(`{
		"scopeName": "source.test",
		"name": "testName",
		"patterns": [{
			"name": "keyword.test1",
			"match": %q,
			"captures": {"1": {"name": "keyword.test2", "match": %q}}
		}]
	}`, re1, re2)
}

func TestValidateGrammarExample(t *testing.T) {
	v := New(oracle.ForEngine(oracle.EngineRegexp2))

	res, err := v.ValidateGrammar(context.Background(), grammar.FromString(makeGrammar("reStr", "(.*)")))
	if err != nil {
		t.Fatalf("ValidateGrammar err=%v", err)
	}
	if !res.Passed() || len(res) != 2 {
		t.Fatalf("result=%v want two valid entries", res)
	}

	res, err = v.ValidateGrammar(context.Background(), grammar.FromString(makeGrammar("reStr", ".*)")))
	if err != nil {
		t.Fatalf("ValidateGrammar err=%v", err)
	}
	if !res.Failed() {
		t.Fatalf("result should fail: %v", res)
	}
	if diff := cmp.Diff([]string{"patterns[0].captures.1.match"}, locations(res.Invalid())); diff != "" {
		t.Fatalf("invalid locations (-want +got):\n%s", diff)
	}
}

func TestValidateSingleUnclosedParen(t *testing.T) {
	v := New(oracle.ForEngine(oracle.EngineRegexp2))
	res, err := v.ValidateGrammar(context.Background(),
		grammar.FromString(`{"scopeName":"x","patterns":[{"match":"("}]}`))
	if err != nil {
		t.Fatalf("ValidateGrammar err=%v", err)
	}

	if len(res) != 1 {
		t.Fatalf("len=%d want 1", len(res))
	}
	e := res[0]
	if e.Regex != "(" || e.Location != "patterns[0].match" {
		t.Fatalf("entry=%+v", e)
	}
	if !e.Failed() || !res.Failed() {
		t.Fatalf("unclosed paren should fail")
	}
	if !regexp.MustCompile(`(missing closing|unexpected) \)`).MatchString(e.Message) {
		t.Fatalf("message=%q does not mention the parenthesis", e.Message)
	}
}

func TestValidateEmptyGrammarPasses(t *testing.T) {
	v := New(fakeLoader(oracletest.NewFakeEngine()))
	for _, src := range []string{`{"scopeName":"x","patterns":[]}`, `{}`, `{"scopeName":"x"}`} {
		res, err := v.ValidateGrammar(context.Background(), grammar.FromString(src))
		if err != nil {
			t.Fatalf("%s: err=%v", src, err)
		}
		if res == nil || len(res) != 0 {
			t.Fatalf("%s: result=%#v want empty non-nil", src, res)
		}
		if !res.Passed() || res.Failed() {
			t.Fatalf("%s: empty result should pass", src)
		}
	}
}

func TestValidateAllKeepsOrderAndValidatesEverything(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	fake := oracletest.NewFakeEngine().Reject("bad-2", "nope 2").Reject("bad-5", "nope 5")
	delays := map[string]time.Duration{}
	located := make([]grammar.LocatedRegex, 0, 40)
	for i := 0; i < 40; i++ {
		re := "ok-" + strconv.Itoa(i)
		if i == 2 || i == 5 {
			re = "bad-" + strconv.Itoa(i)
		}
		delays[re] = time.Duration(rng.IntN(3000)) * time.Microsecond
		p := grammar.Path{grammar.Key("patterns"), grammar.Index(i), grammar.Key("match")}
		located = append(located, grammar.LocatedRegex{Regex: re, Location: p.String(), Path: p})
	}
	fake.Hook = func(p string) { time.Sleep(delays[p]) }

	v := New(fakeLoader(fake), WithConcurrency(8))
	res, err := v.ValidateAll(context.Background(), located)
	if err != nil {
		t.Fatalf("ValidateAll err=%v", err)
	}

	if len(res) != len(located) {
		t.Fatalf("len=%d want %d", len(res), len(located))
	}
	for i, e := range res {
		if e.Location != located[i].Location || e.Regex != located[i].Regex {
			t.Fatalf("entry %d=%+v out of order", i, e.LocatedRegex)
		}
	}
	sorted := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(regexesOf(located), fake.Compiled(), sorted); diff != "" {
		t.Fatalf("every regex should compile once (-want +got):\n%s", diff)
	}

	invalid := res.Invalid()
	if diff := cmp.Diff([]string{"patterns[2].match", "patterns[5].match"}, locations(invalid)); diff != "" {
		t.Fatalf("invalid locations (-want +got):\n%s", diff)
	}
	if invalid[0].Message != "nope 2" || invalid[1].Message != "nope 5" {
		t.Fatalf("messages=%q,%q", invalid[0].Message, invalid[1].Message)
	}
	if n := len(res.Valid()); n != 38 {
		t.Fatalf("valid=%d want 38", n)
	}
}

func TestValidateAllSequential(t *testing.T) {
	fake := oracletest.NewFakeEngine()
	located := []grammar.LocatedRegex{{Regex: "a"}, {Regex: "b"}, {Regex: "c"}}
	res, err := New(fakeLoader(fake), WithConcurrency(0)).ValidateAll(context.Background(), located)
	if err != nil {
		t.Fatalf("ValidateAll err=%v", err)
	}
	if !res.Passed() {
		t.Fatalf("result should pass: %v", res)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, fake.Compiled()); diff != "" {
		t.Fatalf("compile order (-want +got):\n%s", diff)
	}
}

func TestValidateOne(t *testing.T) {
	v := New(oracle.ForEngine(oracle.EngineRegexp2))

	o, err := v.ValidateOne(context.Background(), `\b(if|else)\b`)
	if err != nil {
		t.Fatalf("ValidateOne err=%v", err)
	}
	if !o.Passed() || o.Message != "" {
		t.Fatalf("outcome=%+v want valid", o)
	}

	o, err = v.ValidateOne(context.Background(), "[abc")
	if err != nil {
		t.Fatalf("ValidateOne err=%v", err)
	}
	if !o.Failed() || o.Message == "" {
		t.Fatalf("outcome=%+v want invalid with message", o)
	}
}

func TestEngineMessagePassedThrough(t *testing.T) {
	fake := oracletest.NewFakeEngine().Reject("x", "  raw engine text\n")
	o, err := New(fakeLoader(fake)).ValidateOne(context.Background(), "x")
	if err != nil {
		t.Fatalf("ValidateOne err=%v", err)
	}
	if o.Message != "  raw engine text\n" {
		t.Fatalf("message=%q", o.Message)
	}
}

func TestEngineInitErrorIsFatal(t *testing.T) {
	boom := errors.New("cannot load")
	open := &oracletest.CountingOpen{Err: boom}
	v := New(oracle.NewLoader("onig", open.Open))

	var ie *oracle.EngineInitError
	_, err := v.ValidateGrammar(context.Background(), grammar.FromString(makeGrammar("a", "b")))
	if !errors.As(err, &ie) || !errors.Is(err, boom) {
		t.Fatalf("ValidateGrammar err=%v want EngineInitError wrapping the load failure", err)
	}

	if _, err := v.ValidateOne(context.Background(), "a"); !errors.As(err, &ie) {
		t.Fatalf("ValidateOne err=%v want EngineInitError", err)
	}

	res, err := v.ValidateAll(context.Background(), nil)
	if !errors.As(err, &ie) {
		t.Fatalf("ValidateAll err=%v want EngineInitError", err)
	}
	if res != nil {
		t.Fatalf("result=%v want nil", res)
	}
	if n := open.Calls(); n != 1 {
		t.Fatalf("open calls=%d want 1", n)
	}

	if _, err := New(nil).ValidateOne(context.Background(), "a"); !errors.As(err, &ie) {
		t.Fatalf("nil loader err=%v want EngineInitError", err)
	}
}

func TestSourceErrorIsFatal(t *testing.T) {
	fake := oracletest.NewFakeEngine()
	v := New(fakeLoader(fake))

	res, err := v.ValidateGrammar(context.Background(), grammar.FromString(`{"patterns": [`))
	var se *grammar.SourceError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v want SourceError", err)
	}
	if res != nil {
		t.Fatalf("result=%v want nil", res)
	}
	if n := len(fake.Compiled()); n != 0 {
		t.Fatalf("compiled %d regexes after a source error", n)
	}
}

func TestValidatorLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fake := oracletest.NewFakeEngine().Reject("(", "missing closing )")
	v := New(fakeLoader(fake), WithLogger(zap.New(core)))

	if _, err := v.ValidateGrammar(context.Background(), grammar.FromString(makeGrammar("a", "("))); err != nil {
		t.Fatalf("ValidateGrammar err=%v", err)
	}

	if n := logs.FilterMessage("extracted regexes").Len(); n != 1 {
		t.Fatalf("extracted regexes logged %d times", n)
	}
	summary := logs.FilterMessage("validated regexes").All()
	if len(summary) != 1 {
		t.Fatalf("validated regexes logged %d times", len(summary))
	}
	if got := summary[0].ContextMap()["invalid"]; got != int64(1) {
		t.Fatalf("invalid field=%v (%T)", got, got)
	}
	bad := logs.FilterMessage("invalid regex").All()
	if len(bad) != 1 {
		t.Fatalf("invalid regex logged %d times", len(bad))
	}
	if got := bad[0].ContextMap()["location"]; got != "patterns[0].captures.1.match" {
		t.Fatalf("location field=%v", got)
	}
}

// randomGrammar builds a nested grammar whose regexes are drawn from the pools.
// invalidRate is the chance that a regex comes from invalidPool.
func randomGrammar(rng *rand.Rand, invalidRate float64) grammar.Object {
	pick := func() string {
		if rng.Float64() < invalidRate {
			return invalidPool[rng.IntN(len(invalidPool))]
		}
		return validPool[rng.IntN(len(validPool))]
	}
	var rule func(depth int) grammar.Object
	rule = func(depth int) grammar.Object {
		r := grammar.Object{{Key: "name", Value: "scope." + strconv.Itoa(rng.IntN(100))}}
		switch rng.IntN(3) {
		case 0:
			r = append(r, grammar.Member{Key: "match", Value: pick()})
		case 1:
			r = append(r, grammar.Member{Key: "begin", Value: pick()}, grammar.Member{Key: "end", Value: pick()})
		default:
			r = append(r, grammar.Member{Key: "begin", Value: pick()}, grammar.Member{Key: "while", Value: pick()})
		}
		if depth < 3 && rng.IntN(2) == 0 {
			caps := grammar.Object{}
			for i := 0; i < 1+rng.IntN(2); i++ {
				caps = append(caps, grammar.Member{Key: strconv.Itoa(i), Value: rule(depth + 1)})
			}
			key := []string{"captures", "beginCaptures", "endCaptures", "whileCaptures"}[rng.IntN(4)]
			r = append(r, grammar.Member{Key: key, Value: caps})
		}
		if depth < 3 && rng.IntN(2) == 0 {
			pats := grammar.Array{}
			for i := 0; i < 1+rng.IntN(3); i++ {
				pats = append(pats, rule(depth+1))
			}
			r = append(r, grammar.Member{Key: "patterns", Value: pats})
		}
		return r
	}

	repo := grammar.Object{}
	for i := 0; i < 1+rng.IntN(4); i++ {
		repo = append(repo, grammar.Member{Key: "rule" + strconv.Itoa(i), Value: rule(0)})
	}
	pats := grammar.Array{}
	for i := 0; i < 1+rng.IntN(4); i++ {
		pats = append(pats, rule(0))
	}
	return grammar.Object{
		{Key: "scopeName", Value: "source.random"},
		{Key: "patterns", Value: pats},
		{Key: "repository", Value: repo},
	}
}

func TestRandomGrammarsAllValidPass(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	v := New(oracle.ForEngine(oracle.EngineRegexp2), WithConcurrency(4))
	for i := 0; i < 30; i++ {
		g := randomGrammar(rng, 0)
		res, err := v.ValidateGrammar(context.Background(), grammar.FromRaw(g))
		if err != nil {
			t.Fatalf("grammar %d: err=%v", i, err)
		}
		if len(res) == 0 {
			t.Fatalf("grammar %d: no regexes extracted", i)
		}
		if !res.Passed() {
			t.Fatalf("grammar %d: %v", i, res.Invalid())
		}
	}
}

func TestRandomGrammarsInvalidSetMatches(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	isInvalid := map[string]bool{}
	for _, p := range invalidPool {
		isInvalid[p] = true
	}
	v := New(oracle.ForEngine(oracle.EngineRegexp2), WithConcurrency(4))

	for i := 0; i < 30; i++ {
		g := randomGrammar(rng, 0.3)
		located := grammar.Extract(g)

		want := []string{}
		for _, lr := range located {
			if isInvalid[lr.Regex] {
				want = append(want, lr.Location)
			}
		}

		res, err := v.ValidateAll(context.Background(), located)
		if err != nil {
			t.Fatalf("grammar %d: err=%v", i, err)
		}
		if diff := cmp.Diff(want, locations(res.Invalid())); diff != "" {
			t.Fatalf("grammar %d invalid set mismatch (-want +got):\n%s", i, diff)
		}
		if res.Failed() != (len(want) > 0) {
			t.Fatalf("grammar %d: Failed()=%v with %d invalid", i, res.Failed(), len(want))
		}
	}
}

func regexesOf(located []grammar.LocatedRegex) []string {
	out := make([]string, 0, len(located))
	for _, lr := range located {
		out = append(out, lr.Regex)
	}
	return out
}
