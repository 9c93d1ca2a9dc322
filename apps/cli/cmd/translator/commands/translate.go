package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"unitranslate/packages/backend/language"
	"unitranslate/packages/backend/session"

	"github.com/spf13/cobra"
)

var errNoText = errors.New("no text to translate")

func newTranslateCmd(a *app) *cobra.Command {
	var (
		from  string
		to    string
		speak bool
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text",
		Long: `Translate text once. Text is read from stdin when no arguments are given.

Examples:
  translator translate --to es "Good morning"
  echo "Bonjour" | translator translate --to de --speak`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ctrl := a.container.NewSession()
			defer func() { _ = ctrl.Close() }()

			ctrl.LoadLanguages(ctx)
			if err := ctrl.SetSourceLanguage(from); err != nil {
				return err
			}
			if err := ctrl.SetTargetLanguage(to); err != nil {
				return err
			}
			ctrl.SetInputText(text)
			ctrl.TranslateInput(ctx)

			state := ctrl.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()).translation(state))
			if state.TranslatedText == session.FailureMessage {
				return errors.New("translation failed")
			}

			if speak {
				if !ctrl.Capabilities().SpeechSynthesis {
					a.logger.Warnw("speech synthesis unavailable, not speaking")
					return nil
				}
				ctrl.SpeakTranslation(ctx)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&from, "from", "f", language.Auto, "source language code, or auto to detect")
	cmd.Flags().StringVarP(&to, "to", "t", language.DefaultTarget, "target language code")
	cmd.Flags().BoolVar(&speak, "speak", false, "read the translation aloud")
	return cmd
}

// inputText joins the arguments, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errNoText
	}
	return text, nil
}
