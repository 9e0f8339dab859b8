package logx

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

type formatPart struct {
	literal string
	varName string
}

// AccessLogFormatter renders one access log line for the serve command from a
// compiled "$var" format.
type AccessLogFormatter struct {
	parts []formatPart
}

var allowedAccessLogVars = map[string]struct{}{
	"time_local":    {},
	"status":        {},
	"latency":       {},
	"latency_ms":    {},
	"client_ip":     {},
	"method":        {},
	"path":          {},
	"request_id":    {},
	"engine":        {},
	"regex_total":   {},
	"regex_invalid": {},
}

// CompileAccessLogFormat parses format. "$$" is a literal dollar sign.
func CompileAccessLogFormat(format string) (*AccessLogFormatter, error) {
	s := strings.TrimSpace(format)
	if s == "" {
		return nil, nil
	}
	parts := make([]formatPart, 0, 8)
	var lit strings.Builder

	flushLiteral := func() {
		if lit.Len() == 0 {
			return
		}
		parts = append(parts, formatPart{literal: lit.String()})
		lit.Reset()
	}

	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '$' {
			lit.WriteByte(ch)
			continue
		}
		if i+1 < len(format) && format[i+1] == '$' {
			lit.WriteByte('$')
			i++
			continue
		}
		flushLiteral()
		j := i + 1
		for j < len(format) {
			r := rune(format[j])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			j++
		}
		if j == i+1 {
			return nil, fmt.Errorf("invalid access_log_format: missing variable name after '$' at pos %d", i)
		}
		name := format[i+1 : j]
		if _, ok := allowedAccessLogVars[name]; !ok {
			return nil, fmt.Errorf("invalid access_log_format: unknown variable $%s", name)
		}
		parts = append(parts, formatPart{varName: name})
		i = j - 1
	}
	flushLiteral()
	return &AccessLogFormatter{parts: parts}, nil
}

// AccessEntry holds the values of one request.
type AccessEntry struct {
	Time      time.Time
	Status    int
	Latency   time.Duration
	ClientIP  string
	Method    string
	Path      string
	RequestID string
	// Fields carries handler-provided values such as engine or regex_total.
	Fields map[string]any
}

// Format renders e. Unset variables render as "-".
func (f *AccessLogFormatter) Format(e AccessEntry) string {
	if f == nil || len(f.parts) == 0 {
		return ""
	}
	vars := map[string]string{
		"time_local": e.Time.Format("2006/01/02 - 15:04:05"),
		"status":     fmt.Sprintf("%d", e.Status),
		"latency":    e.Latency.String(),
		"latency_ms": fmt.Sprintf("%d", e.Latency.Milliseconds()),
		"client_ip":  strings.TrimSpace(e.ClientIP),
		"method":     strings.TrimSpace(e.Method),
		"path":       e.Path,
		"request_id": strings.TrimSpace(e.RequestID),
	}
	for k, v := range e.Fields {
		s := strings.TrimSpace(fmt.Sprintf("%v", v))
		if s == "" || s == "<nil>" {
			continue
		}
		vars[k] = s
	}

	var b strings.Builder
	for _, p := range f.parts {
		if p.literal != "" {
			b.WriteString(p.literal)
			continue
		}
		v := strings.TrimSpace(vars[p.varName])
		if v == "" {
			b.WriteByte('-')
			continue
		}
		b.WriteString(v)
	}
	return b.String()
}

// AccessLogAllowedVars lists the variable names a format may use.
func AccessLogAllowedVars() []string {
	keys := make([]string, 0, len(allowedAccessLogVars))
	for k := range allowedAccessLogVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
