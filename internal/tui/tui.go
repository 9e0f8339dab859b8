package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/r9s-ai/textmate-validate/pkg/tmvalidate"
)

// Run opens the interactive result browser and blocks until the user quits.
// doc is the decoded grammar; it is used to show the scope of the rule that
// holds each regex and may be nil.
func Run(title string, result tmvalidate.Result, doc any, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(
		newModel(title, result, doc),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui run failed: %w", err)
	}
	return nil
}
