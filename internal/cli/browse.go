package cli

import (
	"github.com/spf13/cobra"

	"github.com/r9s-ai/textmate-validate/internal/tui"
	"github.com/r9s-ai/textmate-validate/pkg/grammar"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <grammar>",
		Short: "Validate a grammar and browse the results interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := grammar.FromPath(args[0]).Load()
			if err != nil {
				return err
			}
			res, err := a.validator().ValidateAll(cmd.Context(), grammar.Extract(doc))
			if err != nil {
				return err
			}
			return tui.Run(args[0], res, doc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
