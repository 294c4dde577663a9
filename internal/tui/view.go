package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI based on the model state
func (m Model) View() string {
	switch m.screen {
	case screenLogin:
		return m.viewLogin()
	case screenDashboard:
		return m.viewDashboard()
	default:
		return "Loading..."
	}
}

// viewLogin renders the credentials form with any popups below it
func (m Model) viewLogin() string {
	button := m.styles.Button.Render("Login")
	if m.submitting {
		button = m.styles.ButtonOff.Render("Please wait...")
	}

	form := m.styles.Form.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("GraphQL"),
		"",
		m.styles.Label.Render("Username"),
		m.userInput.View(),
		"",
		m.styles.Label.Render("Password"),
		m.passInput.View(),
		"",
		button,
	))

	body := lipgloss.JoinVertical(lipgloss.Center, form, m.renderToasts(), m.styles.Help.Render("tab:switch field | enter:login | ctrl+c:quit"))
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// viewDashboard renders navbar, top bar, scrollback and command line
func (m Model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderNavbar())
	b.WriteString("\n")
	b.WriteString(m.renderTopBar())
	b.WriteString("\n")
	b.WriteString(m.output.View())
	b.WriteString("\n")
	b.WriteString(m.command.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderNavbar renders the title, the clock and the logout hint
func (m Model) renderNavbar() string {
	title := m.styles.Title.Render("GraphQL")
	right := m.styles.Clock.Render(m.clock()) + "  " + m.styles.Help.Render("⏻ ctrl+x")

	spacing := max(1, m.width-lipgloss.Width(title)-lipgloss.Width(right))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Repeat(" ", spacing), right)
}

// renderTopBar renders the window title of the terminal
func (m Model) renderTopBar() string {
	label := fmt.Sprintf("%s@%s", m.term.Username(), m.hostname())
	if m.pending > 0 {
		label += " (loading…)"
	}
	return m.styles.TopBar.Width(max(lipgloss.Width(label)+2, m.width)).Render(label)
}

// renderFooter shows popups when there are any, key help otherwise
func (m Model) renderFooter() string {
	if len(m.toasts) > 0 {
		return m.renderToasts()
	}
	help := []string{
		"enter:run",
		"↑/↓:history",
		"tab:complete",
		"pgup/pgdn:scroll",
		"ctrl+x:logout",
		"ctrl+c:quit",
	}
	return m.styles.Help.Render(strings.Join(help, " | "))
}

// renderToasts renders the live popups on one line
func (m Model) renderToasts() string {
	parts := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := m.styles.ToastError
		if t.code < 400 {
			style = m.styles.ToastOK
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", t.code, t.text)))
	}
	return strings.Join(parts, " ")
}

func (m Model) hostname() string {
	if m.opts.Hostname == "" {
		return "hostname"
	}
	return m.opts.Hostname
}
