package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLanguagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.client.Languages(cmd.Context())
			if err != nil {
				return fmt.Errorf("list languages: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()).languages(catalog))
			return nil
		}),
	}
}
