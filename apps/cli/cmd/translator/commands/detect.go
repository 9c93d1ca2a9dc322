package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of text",
		Long:  "Detect the language of text. Text is read from stdin when no arguments are given.",
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			resp, err := a.client.Detect(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("detect language: %w", err)
			}

			s := newStyles(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				s.Result.Render(fmt.Sprintf("%s (%s)", resp.LanguageName, resp.Language)),
				s.Dim.Render(confidencePercent(resp.Confidence)))
			return nil
		}),
	}
}
