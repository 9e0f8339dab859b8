package tmvalidate

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/r9s-ai/textmate-validate/pkg/grammar"
	"github.com/r9s-ai/textmate-validate/pkg/oracle"
)

// Validator checks regexes against the engine handed out by its Loader.
type Validator struct {
	loader      *oracle.Loader
	concurrency int
	logger      *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithConcurrency bounds how many regexes are compiled at once. Values below 1
// mean sequential validation.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n < 1 {
			n = 1
		}
		v.concurrency = n
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New returns a Validator using loader for its engine handle.
func New(loader *oracle.Loader, opts ...Option) *Validator {
	v := &Validator{
		loader:      loader,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Validator) engine(ctx context.Context) (oracle.Engine, error) {
	if v.loader == nil {
		return nil, &oracle.EngineInitError{Engine: "", Err: errNoLoader}
	}
	return v.loader.Engine(ctx)
}

// ValidateOne compiles a single regex. The only error returned is
// *oracle.EngineInitError; a rejected regex is an invalid Outcome.
func (v *Validator) ValidateOne(ctx context.Context, regex string) (Outcome, error) {
	eng, err := v.engine(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return compileOutcome(eng, regex), nil
}

// ValidateAll validates every located regex. All entries are validated even
// after failures, and the Result keeps the order of located.
func (v *Validator) ValidateAll(ctx context.Context, located []grammar.LocatedRegex) (Result, error) {
	eng, err := v.engine(ctx)
	if err != nil {
		return nil, err
	}
	out := make(Result, len(located))
	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, lr := range located {
		g.Go(func() error {
			out[i] = Entry{LocatedRegex: lr, Outcome: compileOutcome(eng, lr.Regex)}
			return nil
		})
	}
	_ = g.Wait()

	total, valid, invalid := out.Counts()
	v.logger.Debug("validated regexes",
		zap.String("engine", v.loader.Name()),
		zap.Int("total", total),
		zap.Int("valid", valid),
		zap.Int("invalid", invalid))
	for _, e := range out {
		if e.Failed() {
			v.logger.Debug("invalid regex",
				zap.String("location", e.Location),
				zap.String("regex", e.Regex),
				zap.String("error", e.Message))
		}
	}
	return out, nil
}

// ValidateGrammar loads source, extracts its regexes and validates them.
// Errors are *grammar.SourceError or *oracle.EngineInitError.
func (v *Validator) ValidateGrammar(ctx context.Context, source grammar.Source) (Result, error) {
	doc, err := source.Load()
	if err != nil {
		return nil, err
	}
	located := grammar.Extract(doc)
	v.logger.Debug("extracted regexes",
		zap.String("source", source.Label()),
		zap.Int("count", len(located)))
	return v.ValidateAll(ctx, located)
}

func compileOutcome(eng oracle.Engine, regex string) Outcome {
	if err := eng.Compile(regex); err != nil {
		return InvalidOutcome(err.Error())
	}
	return ValidOutcome()
}
