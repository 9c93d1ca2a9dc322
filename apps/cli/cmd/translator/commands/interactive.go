package commands

import (
	"bufio"
	"context"
	"strings"
	"sync"

	"unitranslate/packages/backend/session"

	"github.com/spf13/cobra"
)

const interactiveHelp = `Type text to translate it. Commands:
  /from <code>   set the source language (auto to detect)
  /to <code>     set the target language
  /swap          swap languages and texts
  /clear         clear the texts
  /listen        capture speech into the input
  /stop          stop capturing speech
  /speak         read the translation aloud
  /translate     translate the current input
  /status        show the session state
  /help          show this help
  /quit          leave`

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"repl"},
		Short:   "Start an interactive translation session",
		Args:    cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			r := &repl{out: newPrinter(cmd.OutOrStdout())}
			ctrl := a.container.NewSession(session.WithCaptureEndListener(r.onCaptureEnd))
			r.ctrl = ctrl
			defer func() { _ = ctrl.Close() }()

			ctx := cmd.Context()
			ctrl.LoadLanguages(ctx)

			st := r.out.styles
			caps := ctrl.Capabilities()
			r.out.Println(st.Title.Render("Universal Translator") + " " + st.Dim.Render("session "+ctrl.ID()))
			if !caps.SpeechRecognition {
				r.out.Println(st.Dim.Render("speech input unavailable"))
			}
			if !caps.SpeechSynthesis {
				r.out.Println(st.Dim.Render("speech output unavailable"))
			}
			r.out.Println(st.Dim.Render("type /help for commands"))

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if quit := r.handle(ctx, scanner.Text()); quit {
					break
				}
				if ctx.Err() != nil {
					break
				}
			}
			return scanner.Err()
		}),
	}
}

type repl struct {
	ctrl *session.Controller
	out  *printer

	mu        sync.Mutex
	awaiting  bool
	lastInput string
}

// onCaptureEnd reports what a finished speech capture put into the input.
func (r *repl) onCaptureEnd(state session.State) {
	r.mu.Lock()
	if !r.awaiting {
		r.mu.Unlock()
		return
	}
	r.awaiting = false
	heard := state.InputText != r.lastInput && state.InputText != ""
	r.mu.Unlock()

	st := r.out.styles
	if heard {
		r.out.Println(st.Label.Render("heard:") + " " + state.InputText + st.Dim.Render("  (/translate to translate it)"))
		return
	}
	r.out.Println(st.Dim.Render("no speech recognized"))
}

func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	st := r.out.styles
	if !strings.HasPrefix(line, "/") {
		r.ctrl.SetInputText(line)
		r.translate(ctx)
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		r.out.Println(interactiveHelp)
	case "/from":
		if err := r.ctrl.SetSourceLanguage(arg); err != nil {
			r.out.Println(st.Error.Render(err.Error()))
			return false
		}
		r.out.Println(st.Dim.Render("from " + languageLabel(r.ctrl.Snapshot().Languages, arg)))
	case "/to":
		if err := r.ctrl.SetTargetLanguage(arg); err != nil {
			r.out.Println(st.Error.Render(err.Error()))
			return false
		}
		r.out.Println(st.Dim.Render("to " + languageLabel(r.ctrl.Snapshot().Languages, arg)))
	case "/swap":
		before := r.ctrl.Snapshot()
		r.ctrl.SwapLanguages()
		if r.ctrl.Snapshot().SourceLanguage == before.SourceLanguage {
			r.out.Println(st.Dim.Render("cannot swap while the source language is auto"))
			return false
		}
		r.out.Println(st.Success.Render("languages swapped"))
	case "/clear":
		r.ctrl.ClearAll()
		r.out.Println(st.Dim.Render("cleared"))
	case "/listen":
		if !r.ctrl.Capabilities().SpeechRecognition {
			r.out.Println(st.Error.Render("speech input unavailable"))
			return false
		}
		r.mu.Lock()
		if r.awaiting {
			r.mu.Unlock()
			r.out.Println(st.Dim.Render("already listening"))
			return false
		}
		r.awaiting = true
		r.lastInput = r.ctrl.Snapshot().InputText
		r.mu.Unlock()
		r.out.Println(st.Dim.Render("listening... /stop to finish"))
		r.ctrl.StartListening(ctx)
	case "/stop":
		r.ctrl.StopListening()
	case "/speak":
		if !r.ctrl.Capabilities().SpeechSynthesis {
			r.out.Println(st.Error.Render("speech output unavailable"))
			return false
		}
		r.ctrl.SpeakTranslation(ctx)
	case "/translate":
		r.translate(ctx)
	case "/status":
		r.out.Println(st.status(r.ctrl.ID(), r.ctrl.Snapshot(), r.ctrl.Capabilities()))
	default:
		r.out.Println(st.Error.Render("unknown command " + name + ", try /help"))
	}
	return false
}

func (r *repl) translate(ctx context.Context) {
	before := r.ctrl.Snapshot()
	if strings.TrimSpace(before.InputText) == "" {
		r.out.Println(r.out.styles.Dim.Render("nothing to translate"))
		return
	}
	r.ctrl.TranslateInput(ctx)
	r.out.Println(r.out.styles.translation(r.ctrl.Snapshot()))
}

