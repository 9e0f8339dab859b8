// Package report renders validation results as text for a message stream and
// an error stream.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/r9s-ai/textmate-validate/pkg/tmvalidate"
)

// Verbosity controls how much is reported: 0 nothing, 1 summary and invalid
// regexes, 2 also every valid regex.
type Verbosity int

const (
	Quiet   Verbosity = 0
	Normal  Verbosity = 1
	Verbose Verbosity = 2
)

// ClampVerbosity maps any count onto the supported levels.
func ClampVerbosity(n int) Verbosity {
	if n < int(Quiet) {
		return Quiet
	}
	if n > int(Verbose) {
		return Verbose
	}
	return Verbosity(n)
}

// Sink receives rendered lines for one stream.
type Sink func(line string)

// Reporter routes lines by stream and verbosity: Out1 and Err1 from level 1,
// Out2 from level 2.
type Reporter struct {
	Out1 Sink
	Out2 Sink
	Err1 Sink
}

func discard(string) {}

// NewReporter builds a Reporter writing to out and err up to verbosity.
func NewReporter(v Verbosity, out, err Sink) Reporter {
	switch {
	case v <= Quiet:
		return Reporter{Out1: discard, Out2: discard, Err1: discard}
	case v == Normal:
		return Reporter{Out1: out, Out2: discard, Err1: err}
	default:
		return Reporter{Out1: out, Out2: out, Err1: err}
	}
}

// Report sends result through rep, formatted by f.
func Report(result tmvalidate.Result, rep Reporter, f Formatter) {
	total, valid, invalid := result.Counts()
	rep.Out1(f.Group(TagInfo, "number of regexes:", []Item{
		{Key: "total:", Value: strconv.Itoa(total)},
		{Key: "valid:", Value: strconv.Itoa(valid)},
		{Key: "invalid:", Value: strconv.Itoa(invalid)},
	}))

	for _, e := range result.Valid() {
		rep.Out2(f.Group(TagInfo, "valid regex:", []Item{
			{Key: "regex:", Value: e.Regex},
			{Key: "path:", Value: e.Location},
		}))
	}

	for _, e := range result.Invalid() {
		rep.Err1(f.Group(TagError, "invalid regex:", []Item{
			{Key: "error:", Value: e.Message},
			{Key: "regex:", Value: e.Regex},
			{Key: "path:", Value: e.Location},
		}))
	}

	if invalid > 0 {
		rep.Err1(f.Message(TagError, "validation failed"))
		return
	}
	rep.Out1(f.Message(TagInfo, "validation passed"))
}

// Render returns the message and error stream text for result. Every emitted
// line or group ends with a newline; at Quiet both strings are empty.
func Render(result tmvalidate.Result, v Verbosity, style Style) (message, errText string) {
	return RenderWith(result, v, NewFormatter(style, false))
}

// RenderWith is Render with a caller-supplied Formatter.
func RenderWith(result tmvalidate.Result, v Verbosity, f Formatter) (message, errText string) {
	var out, errb strings.Builder
	rep := NewReporter(v, lineTo(&out), lineTo(&errb))
	Report(result, rep, f)
	return out.String(), errb.String()
}

// Write renders result and writes the two streams to out and errw.
func Write(out, errw io.Writer, result tmvalidate.Result, v Verbosity, f Formatter) error {
	msg, errText := RenderWith(result, v, f)
	if msg != "" {
		if _, err := io.WriteString(out, msg); err != nil {
			return err
		}
	}
	if errText != "" {
		if _, err := io.WriteString(errw, errText); err != nil {
			return err
		}
	}
	return nil
}

func lineTo(b *strings.Builder) Sink {
	return func(line string) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
