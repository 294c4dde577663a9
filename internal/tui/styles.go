package tui

import (
	"github.com/charmbracelet/lipgloss"

	"graphterm/internal/config"
	"graphterm/internal/terminal"
)

// Styles holds every style the UI renders with
type Styles struct {
	// Navbar and top bar
	Title  lipgloss.Style
	Clock  lipgloss.Style
	TopBar lipgloss.Style

	// Output log
	PromptUser lipgloss.Style
	PromptSign lipgloss.Style
	Command    lipgloss.Style
	Output     lipgloss.Style
	Error      lipgloss.Style
	Notice     lipgloss.Style

	// Login form
	Form      lipgloss.Style
	Label     lipgloss.Style
	Button    lipgloss.Style
	ButtonOff lipgloss.Style

	// Toasts
	ToastOK    lipgloss.Style
	ToastError lipgloss.Style

	Help lipgloss.Style
}

// NewStyles builds the styles for a palette
func NewStyles(p config.Palette) Styles {
	accent := lipgloss.Color(p.Accent)
	text := lipgloss.Color(p.Text)
	muted := lipgloss.Color(p.Muted)
	surface := lipgloss.Color(p.Surface)

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Clock: lipgloss.NewStyle().
			Foreground(muted),

		TopBar: lipgloss.NewStyle().
			Background(surface).
			Foreground(text).
			Bold(true).
			Padding(0, 1),

		PromptUser: lipgloss.NewStyle().
			Foreground(accent),

		PromptSign: lipgloss.NewStyle().
			Foreground(text),

		Command: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)),

		Output: lipgloss.NewStyle().
			Foreground(text).
			PaddingLeft(2),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Danger)).
			PaddingLeft(2),

		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Warning)).
			Italic(true).
			PaddingLeft(2),

		Form: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 3),

		Label: lipgloss.NewStyle().
			Foreground(muted),

		Button: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color(p.Surface)).
			Bold(true).
			Padding(0, 2),

		ButtonOff: lipgloss.NewStyle().
			Background(surface).
			Foreground(muted).
			Padding(0, 2),

		ToastOK: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Success)).
			Foreground(surface).
			Bold(true).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Danger)).
			Foreground(surface).
			Bold(true).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(muted),
	}
}

// line renders one output log entry
func (s Styles) line(l terminal.Line, prompt string) string {
	switch l.Kind {
	case terminal.LinePrompt:
		raw := l.Text[min(len(prompt), len(l.Text)):]
		return s.PromptUser.Render(prompt[:len(prompt)-3]) + s.PromptSign.Render("~$ ") + s.Command.Render(raw)
	case terminal.LineError:
		return s.Error.Render(l.Text)
	case terminal.LineNotice:
		return s.Notice.Render(l.Text)
	case terminal.LineArtifact:
		return l.Text
	default:
		return s.Output.Render(l.Text)
	}
}
