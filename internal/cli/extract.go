package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/textmate-validate/pkg/grammar"
)

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <grammar>",
		Short: "List every regex of a grammar with its location, without validating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := grammar.FromPath(args[0]).Load()
			if err != nil {
				return err
			}
			located := grammar.Extract(doc)
			if a.opts.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), located)
			}
			for _, lr := range located {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", lr.Location, lr.Regex); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
