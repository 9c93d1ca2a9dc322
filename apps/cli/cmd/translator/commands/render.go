package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"unitranslate/packages/backend/language"
	"unitranslate/packages/backend/session"
	"unitranslate/packages/backend/status"

	"github.com/charmbracelet/lipgloss"
)

// styles are bound to the command's output so colors are only emitted to
// terminals.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Result  lipgloss.Style
	Dim     lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	primary := lipgloss.Color("#00ff9f")
	dim := lipgloss.Color("#6e7681")
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(primary),
		Label:   r.NewStyle().Bold(true).Foreground(primary),
		Result:  r.NewStyle().Bold(true),
		Dim:     r.NewStyle().Foreground(dim),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#ff5f87")),
		Success: r.NewStyle().Foreground(primary),
	}
}

// printer serializes writes from the REPL and from provider callbacks.
type printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles styles
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, styles: newStyles(w)}
}

func (p *printer) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, a...)
}

func languageLabel(catalog language.Catalog, code string) string {
	if code == language.Auto {
		return "auto-detect"
	}
	return fmt.Sprintf("%s (%s)", catalog.DisplayName(code), code)
}

// confidencePercent formats a confidence as the UI did: "95% confident".
func confidencePercent(confidence float64) string {
	return fmt.Sprintf("%.0f%% confident", confidence*100)
}

func (s styles) translation(state session.State) string {
	if state.TranslatedText == session.FailureMessage {
		return s.Error.Render(state.TranslatedText)
	}

	var b strings.Builder
	b.WriteString(s.Result.Render(state.TranslatedText))
	if state.SourceLanguage == language.Auto && state.DetectedLanguage != "" {
		b.WriteString("\n")
		b.WriteString(s.Dim.Render(fmt.Sprintf("detected %s, %s",
			languageLabel(state.Languages, state.DetectedLanguage),
			confidencePercent(state.Confidence))))
	}
	return b.String()
}

func (s styles) languages(catalog language.Catalog) string {
	var b strings.Builder
	for _, code := range catalog.Codes() {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render(fmt.Sprintf("%-6s", code)), catalog.Name(code))
	}
	return b.String()
}

func (s styles) status(id string, state session.State, caps session.Capabilities) string {
	flag := func(on bool) string {
		if on {
			return "yes"
		}
		return "no"
	}
	rows := [][2]string{
		{"session", id},
		{"from", languageLabel(state.Languages, state.SourceLanguage)},
		{"to", languageLabel(state.Languages, state.TargetLanguage)},
		{"input", state.InputText},
		{"translation", state.TranslatedText},
		{"translations", fmt.Sprint(state.TranslationCount)},
		{"listening", flag(state.IsListening)},
		{"microphone", flag(caps.SpeechRecognition)},
		{"speech", flag(caps.SpeechSynthesis)},
	}
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render(fmt.Sprintf("%-13s", row[0]+":")), row[1])
	}
	return b.String()
}

func (s styles) event(e status.SessionStatusEvent) string {
	line := fmt.Sprintf("%s %-11s %-9s", e.Timestamp.Format("15:04:05"), e.Stage, e.State)
	if e.Detail != "" {
		line += " " + e.Detail
	}
	if e.State == status.StateFailed {
		return s.Error.Render(line)
	}
	return line
}
