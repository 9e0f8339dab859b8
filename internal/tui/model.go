package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/r9s-ai/textmate-validate/pkg/grammar"
	"github.com/r9s-ai/textmate-validate/pkg/tmvalidate"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Filter key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Top:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom: key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Filter: key.NewBinding(key.WithKeys("tab", "f"), key.WithHelp("f", "invalid only")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	detailHeight  = 7
)

type model struct {
	title       string
	result      tmvalidate.Result
	doc         any
	invalidOnly bool
	visible     []int
	cursor      int
	width       int
	height      int
	detail      viewport.Model
}

func newModel(title string, result tmvalidate.Result, doc any) model {
	m := model{
		title:  title,
		result: result,
		doc:    doc,
		width:  defaultWidth,
		height: defaultHeight,
		detail: viewport.New(defaultWidth, detailHeight),
	}
	m.refilter()
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width
		m.syncDetail()
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Top):
			m.cursor = 0
		case key.Matches(msg, keys.Bottom):
			m.cursor = max(len(m.visible)-1, 0)
		case key.Matches(msg, keys.Filter):
			m.invalidOnly = !m.invalidOnly
			m.refilter()
			return m, nil
		default:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		m.syncDetail()
	}
	return m, nil
}

func (m *model) refilter() {
	m.visible = make([]int, 0, len(m.result))
	for i, e := range m.result {
		if m.invalidOnly && e.Passed() {
			continue
		}
		m.visible = append(m.visible, i)
	}
	m.cursor = 0
	m.syncDetail()
}

func (m *model) selected() (tmvalidate.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return tmvalidate.Entry{}, false
	}
	return m.result[m.visible[m.cursor]], true
}

func (m *model) syncDetail() {
	e, ok := m.selected()
	if !ok {
		m.detail.SetContent(dimStyle.Render("no regexes"))
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "path:   %s\n", e.Location)
	if scope := ruleScope(m.doc, e.Path); scope != "" {
		fmt.Fprintf(&b, "scope:  %s\n", scope)
	}
	fmt.Fprintf(&b, "regex:  %s\n", e.Regex)
	if e.Failed() {
		fmt.Fprintf(&b, "error:  %s\n", badStyle.Render(e.Message))
	}
	m.detail.SetContent(b.String())
}

// ruleScope returns the "name" of the rule holding the regex at p.
func ruleScope(doc any, p grammar.Path) string {
	if doc == nil || len(p) < 2 {
		return ""
	}
	rule, ok := grammar.Resolve(doc, p.Parent())
	if !ok {
		return ""
	}
	obj, ok := rule.(grammar.Object)
	if !ok {
		return ""
	}
	name, _ := obj.Get("name")
	s, _ := name.(string)
	return s
}

func (m model) View() string {
	var b strings.Builder
	total, valid, invalid := m.result.Counts()
	b.WriteString(titleStyle.Render(m.title))
	fmt.Fprintf(&b, "  %d regexes, %s, %s\n\n",
		total,
		okStyle.Render(fmt.Sprintf("%d valid", valid)),
		badStyle.Render(fmt.Sprintf("%d invalid", invalid)))

	listHeight := m.height - detailHeight - 5
	if listHeight < 1 {
		listHeight = 1
	}
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(m.visible))
	for row := start; row < end; row++ {
		e := m.result[m.visible[row]]
		mark := okStyle.Render("✓")
		if e.Failed() {
			mark = badStyle.Render("✗")
		}
		line := fmt.Sprintf("%s %s", e.Location, dimStyle.Render(truncate(e.Regex, m.width/2)))
		if row == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(mark + " " + line + "\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("(nothing to show)") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detail.View())
	b.WriteString("\n")
	filter := "all"
	if m.invalidOnly {
		filter = "invalid only"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("showing %s · ↑/↓ move · f filter · q quit", filter)))
	return b.String()
}

func truncate(s string, n int) string {
	if n <= 1 {
		n = 40
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
