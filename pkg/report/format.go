package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style selects the layout of report groups.
type Style int

const (
	// NonCompact writes a header line followed by one indented line per item.
	NonCompact Style = iota
	// Compact writes every group on a single line.
	Compact
)

func (s Style) String() string {
	if s == Compact {
		return "compact"
	}
	return "non-compact"
}

// ParseStyle parses "compact" or "non-compact".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compact":
		return Compact, nil
	case "non-compact", "noncompact":
		return NonCompact, nil
	default:
		return NonCompact, fmt.Errorf("invalid style %q (expect: compact|non-compact)", s)
	}
}

// Item is one key/value line of a group.
type Item struct {
	Key   string
	Value string
}

// Formatter renders messages and groups. Results carry no trailing newline.
type Formatter interface {
	Message(tag, message string) string
	Group(tag, subject string, items []Item) string
}

const (
	TagInfo  = "INFO"
	TagError = "ERROR"
)

// NewFormatter returns the formatter for style. With color set, tags are
// styled for a terminal.
func NewFormatter(style Style, color bool) Formatter {
	tag := plainTag
	if color {
		tag = colorTag
	}
	if style == Compact {
		return compactFormatter{tag: tag}
	}
	return nonCompactFormatter{tag: tag}
}

type compactFormatter struct {
	tag func(string) string
}

func (f compactFormatter) Message(tag, message string) string {
	return f.tag(tag) + " " + message
}

func (f compactFormatter) Group(tag, subject string, items []Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Key+" "+it.Value)
	}
	return f.tag(tag) + " " + subject + " (" + strings.Join(parts, ", ") + ")"
}

type nonCompactFormatter struct {
	tag func(string) string
}

func (f nonCompactFormatter) Message(tag, message string) string {
	return f.tag(tag) + " " + message
}

func (f nonCompactFormatter) Group(tag, subject string, items []Item) string {
	var b strings.Builder
	b.WriteString(f.tag(tag))
	b.WriteByte(' ')
	b.WriteString(subject)
	for _, it := range items {
		fmt.Fprintf(&b, "\n  %-9s %s", it.Key, it.Value)
	}
	return b.String()
}

func plainTag(tag string) string { return "[" + tag + "]" }

var (
	infoTagStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorTagStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func colorTag(tag string) string {
	switch tag {
	case TagError:
		return errorTagStyle.Render(plainTag(tag))
	case TagInfo:
		return infoTagStyle.Render(plainTag(tag))
	default:
		return plainTag(tag)
	}
}
