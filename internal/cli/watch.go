package cli

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r9s-ai/textmate-validate/internal/watch"
	"github.com/r9s-ai/textmate-validate/pkg/grammar"
	"github.com/r9s-ai/textmate-validate/pkg/report"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <grammar>",
		Short: "Validate a grammar and re-validate it whenever the file changes",
		Long: `Validate a grammar and re-validate it whenever the file changes.

The report is printed at verbosity 1 or higher. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, args[0])
		},
	}
}

func (a *app) runWatch(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	v := a.verbosity()
	if v < report.Normal {
		v = report.Normal
	}
	validator := a.validator()
	src := grammar.FromPath(path)

	// Runs on the caller first, then on the watcher goroutine only.
	var mu sync.Mutex
	check := func() {
		mu.Lock()
		defer mu.Unlock()
		res, err := validator.ValidateGrammar(ctx, src)
		if err != nil {
			a.logger.Debug("validate failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			return
		}
		if err := a.emit(cmd, res, v); err != nil && !errors.Is(err, ErrValidationFailed) {
			a.logger.Warn("write report failed", zap.Error(err))
		}
	}
	check()

	closer, err := watch.Start(watch.Options{
		Path:     path,
		Debounce: time.Duration(a.cfg.Watch.DebounceMs) * time.Millisecond,
		OnChange: check,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	<-ctx.Done()
	return nil
}
