package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/textmate-validate/pkg/config"
	"github.com/r9s-ai/textmate-validate/pkg/report"
	"github.com/r9s-ai/textmate-validate/pkg/tmvalidate"
)

func (a *app) verbosity() report.Verbosity {
	return report.ClampVerbosity(a.cfg.Verbosity)
}

// style picks the report layout. Explicit flags win, then output.style, then
// the NO_COLOR/NOCOLOR/FORCE_COLOR conventions, then whether out is a
// terminal.
func (a *app) style(out io.Writer) report.Style {
	switch {
	case a.opts.compact:
		return report.Compact
	case a.opts.nonCompact:
		return report.NonCompact
	}
	switch strings.ToLower(strings.TrimSpace(a.cfg.Output.Style)) {
	case config.ModeCompact:
		return report.Compact
	case config.ModeNonCompact:
		return report.NonCompact
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("NOCOLOR") != "" {
		return report.Compact
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return report.NonCompact
	}
	if isTerminal(out) {
		return report.NonCompact
	}
	return report.Compact
}

func (a *app) color(out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(a.cfg.Output.Color)) {
	case config.ModeAlways:
		return true
	case config.ModeNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("NOCOLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTerminal(out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// emit writes res in the selected format and maps a failed result to
// ErrValidationFailed.
func (a *app) emit(cmd *cobra.Command, res tmvalidate.Result, v report.Verbosity) error {
	out := cmd.OutOrStdout()
	switch a.opts.format {
	case formatJSON:
		if err := writeJSON(out, res); err != nil {
			return err
		}
	default:
		f := report.NewFormatter(a.style(out), a.color(out))
		if err := report.Write(out, cmd.ErrOrStderr(), res, v, f); err != nil {
			return err
		}
	}
	if res.Failed() {
		return ErrValidationFailed
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
