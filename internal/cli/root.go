package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r9s-ai/textmate-validate/internal/logx"
	"github.com/r9s-ai/textmate-validate/internal/version"
	"github.com/r9s-ai/textmate-validate/pkg/config"
	"github.com/r9s-ai/textmate-validate/pkg/grammar"
	"github.com/r9s-ai/textmate-validate/pkg/oracle"
	"github.com/r9s-ai/textmate-validate/pkg/tmvalidate"
)

// ErrValidationFailed is returned when at least one regex is invalid. The
// report has already been written, so Run exits with status 1 silently.
var ErrValidationFailed = errors.New("validation failed")

var errGrammarRequired = errors.New("grammar file required")

const (
	formatText = "text"
	formatJSON = "json"
)

type rootOptions struct {
	cfgPath     string
	engine      string
	concurrency int
	logLevel    string
	format      string
	compact     bool
	nonCompact  bool
	verbose     int
	showVersion bool
}

// app carries the resolved configuration shared by all commands.
type app struct {
	opts   rootOptions
	cfg    *config.Config
	logger *zap.Logger
}

// Run executes the command line and returns the process exit status.
func Run(args []string, in io.Reader, out, errw io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errw)
	return exitCode(root.ExecuteContext(ctx), errw)
}

func exitCode(err error, errw io.Writer) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrValidationFailed) {
		fmt.Fprintf(errw, "error: %v\n", err)
	}
	return 1
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "textmate-validate [flags] <grammar>",
		Short: "Validate the regexes of a TextMate grammar",
		Long: `Validate the regexes of a TextMate grammar.

Unless -v/--verbose is used, nothing is printed to the terminal.

Exit status:
  0  validation passed (all found regexes are valid)
  1  validation failed (at least one found regex is invalid)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// -V must work even with a broken config or log level.
			if a.opts.showVersion {
				return nil
			}
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.showVersion {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get())
				return err
			}
			if len(args) == 0 {
				return errGrammarRequired
			}
			return a.runValidate(cmd, args[0])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.opts.cfgPath, "config", "", "config yaml path (default "+config.DefaultPath+" when present)")
	pf.StringVar(&a.opts.engine, "engine", "", "regex engine: "+strings.Join(oracle.EngineNames(), "|"))
	pf.IntVar(&a.opts.concurrency, "concurrency", 0, "parallel regex compiles (0 = one per CPU)")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.StringVar(&a.opts.format, "format", formatText, "output format: text|json")
	pf.BoolVar(&a.opts.nonCompact, "non-compact", false, "force non-compact output (default if stdout is a TTY)")
	pf.BoolVarP(&a.opts.compact, "compact", "c", false, "force compact output (default if stdout is not a TTY)")
	pf.CountVarP(&a.opts.verbose, "verbose", "v", "verbose (-vv for more verbose)")
	cmd.Flags().BoolVarP(&a.opts.showVersion, "version", "V", false, "show version")

	cmd.AddCommand(
		newVersionCmd(),
		newExtractCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newBrowseCmd(a),
	)
	return cmd
}

// setup loads the config file and applies flag overrides. Flags win over
// environment variables, which win over the file.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if p := strings.TrimSpace(a.opts.cfgPath); p != "" {
		cfg, err = config.Load(p)
	} else {
		cfg, err = config.LoadIfExists(config.DefaultPath)
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine = oracle.NormalizeEngineName(a.opts.engine)
	}
	if flags.Changed("concurrency") {
		if a.opts.concurrency < 0 {
			return errors.New("--concurrency must be >= 0")
		}
		cfg.Concurrency = a.opts.concurrency
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.opts.logLevel
	}
	if flags.Changed("verbose") {
		cfg.Verbosity = a.opts.verbose
	}
	switch a.opts.format {
	case formatText, formatJSON:
	default:
		return fmt.Errorf("invalid --format %q (expect: text|json)", a.opts.format)
	}

	logger, err := logx.New(cfg.Logging.Level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) validator() *tmvalidate.Validator {
	opts := []tmvalidate.Option{tmvalidate.WithLogger(a.logger)}
	if a.cfg.Concurrency > 0 {
		opts = append(opts, tmvalidate.WithConcurrency(a.cfg.Concurrency))
	}
	return tmvalidate.New(oracle.Shared(a.cfg.Engine), opts...)
}

func (a *app) runValidate(cmd *cobra.Command, path string) error {
	res, err := a.validator().ValidateGrammar(cmd.Context(), grammar.FromPath(path))
	if err != nil {
		return err
	}
	return a.emit(cmd, res, a.verbosity())
}
