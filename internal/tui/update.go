package tui

import (
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"graphterm/internal/terminal"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.updateSizes(), nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tickCmd()

	case toastExpiredMsg:
		return m.dropToast(int(msg)), nil

	case validatedMsg:
		if msg.valid {
			m.logger.Info("session restored", zap.String("user", msg.username))
			return m.enterDashboard(msg.username), nil
		}
		return m.enterLogin(), nil

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case logoutDoneMsg:
		m = m.enterLogin()
		if msg.err != nil {
			m.logger.Error("logout", zap.Error(msg.err))
			return m.showToast(http.StatusInternalServerError, "Logout failed")
		}
		return m, nil

	case jobDoneMsg:
		m.pending = max(0, m.pending-1)
		res := terminal.Result(msg)
		if m.term == nil || !m.term.Complete(res) {
			m.logger.Debug("dropped superseded job", zap.Stringer("option", res.Job.Option))
			return m, nil
		}
		if res.Err != nil {
			m.logger.Warn("graphctl failed", zap.Stringer("option", res.Job.Option), zap.Error(res.Err))
		}
		return m.syncOutput(), nil

	case sessionChangedMsg:
		return m.handleSessionChanged(msg)

	case watchErrMsg:
		m.logger.Warn("session watcher", zap.Error(msg.error))
		return m, m.watchSessionCmd()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.handleLoginKey(msg)
		case screenDashboard:
			return m.handleDashboardKey(msg)
		}
	}

	return m, nil
}

// handleLoginKey drives the credentials form
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.focusPass = !m.focusPass
		if m.focusPass {
			m.userInput.Blur()
			return m, m.passInput.Focus()
		}
		m.passInput.Blur()
		return m, m.userInput.Focus()

	case "enter":
		m.submitting = true
		username := strings.TrimSpace(m.userInput.Value())
		return m, m.loginCmd(username, m.passInput.Value())
	}

	var cmd tea.Cmd
	if m.focusPass {
		m.passInput, cmd = m.passInput.Update(msg)
	} else {
		m.userInput, cmd = m.userInput.Update(msg)
	}
	return m, cmd
}

// handleLoginDone shows the dashboard or the failure popup
func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.logger.Info("login failed", zap.Error(msg.err))
		m.passInput.Reset()
		return m.showToast(loginErrorToast(msg.err))
	}
	return m.enterDashboard(msg.login), nil
}

// handleDashboardKey drives the terminal
func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		job := m.term.SubmitLine(m.command.Value())
		m.command.Reset()
		m = m.syncOutput()
		if job == nil {
			return m, nil
		}
		m.pending++
		return m, jobCmd(job)

	case "up":
		m.term.NavigateHistory(terminal.Older)
		return m.showInput(), nil

	case "down":
		m.term.NavigateHistory(terminal.Newer)
		return m.showInput(), nil

	case "tab":
		m.term.SetInput(m.term.CompleteInput(m.command.Value()))
		return m.showInput(), nil

	case "pgup":
		m.output.ViewUp()
		return m, nil

	case "pgdown":
		m.output.ViewDown()
		return m, nil

	case "ctrl+x":
		return m, m.logoutCmd()
	}

	var cmd tea.Cmd
	m.command, cmd = m.command.Update(msg)
	m.term.SetInput(m.command.Value())
	return m, cmd
}

// showInput copies the interpreter's buffer into the command line
func (m Model) showInput() Model {
	m.command.SetValue(m.term.Input())
	m.command.CursorEnd()
	return m
}

// handleSessionChanged returns to login when the session vanished on disk
func (m Model) handleSessionChanged(msg sessionChangedMsg) (tea.Model, tea.Cmd) {
	next := m.watchSessionCmd()
	if m.screen != screenDashboard || m.opts.Session == nil {
		return m, next
	}
	if _, ok := m.opts.Session.Username(); ok {
		return m, next
	}

	m.logger.Info("session removed on disk", zap.String("path", msg.Path))
	m = m.enterLogin()
	m, toastCmd := m.showToast(sessionEndedToast())
	return m, tea.Batch(next, toastCmd)
}
