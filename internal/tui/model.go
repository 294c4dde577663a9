package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"graphterm/internal/auth"
	"graphterm/internal/storage"
	"graphterm/internal/terminal"
)

// screen is the page currently shown
type screen int

const (
	screenLoading   screen = iota // startup session validation
	screenLogin                   // credentials form
	screenDashboard               // navbar + terminal
)

const (
	clockInterval = 10 * time.Second
	toastLifetime = 2 * time.Second
	clockLayout   = "Jan 2 03:04 PM"
)

// SessionSource is the part of the session store the UI reads
type SessionSource interface {
	Validate(ctx context.Context) bool
	Username() (string, bool)
}

// Authenticator logs users in and out
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout() error
}

// Options wires the UI to the rest of the application
type Options struct {
	Session   SessionSource
	Auth      Authenticator
	Presenter terminal.Presenter
	Watcher   *storage.Watcher // optional
	Styles    Styles
	Hostname  string
	Logger    *zap.Logger
	Now       func() time.Time
}

// toast is a short-lived popup
type toast struct {
	id   int
	code int
	text string
}

// Model represents the application state
type Model struct {
	opts   Options
	logger *zap.Logger
	styles Styles

	screen screen
	now    time.Time

	// Login form
	userInput  textinput.Model
	passInput  textinput.Model
	focusPass  bool
	submitting bool

	// Dashboard
	term    *terminal.Interpreter
	command textinput.Model
	output  viewport.Model
	pending int // jobs in flight

	toasts    []toast
	nextToast int

	// UI dimensions
	width  int
	height int
}

// NewModel creates a new Model in the loading screen
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	user := textinput.New()
	user.Placeholder = "Username"
	user.Prompt = ""
	user.CharLimit = 64

	pass := textinput.New()
	pass.Placeholder = "Password"
	pass.Prompt = ""
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	cmd := textinput.New()
	cmd.Placeholder = "Type your command..."
	cmd.Prompt = "❯ "

	return Model{
		opts:      opts,
		logger:    opts.Logger,
		styles:    opts.Styles,
		screen:    screenLoading,
		now:       opts.Now(),
		userInput: user,
		passInput: pass,
		command:   cmd,
		output:    viewport.New(80, 20),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.validateCmd(),
		m.tickCmd(),
		m.watchSessionCmd(),
	)
}

// Message types
type (
	validatedMsg struct {
		valid    bool
		username string
	}
	loginDoneMsg struct {
		login string
		err   error
	}
	logoutDoneMsg     struct{ err error }
	jobDoneMsg        terminal.Result
	tickMsg           time.Time
	toastExpiredMsg   int
	sessionChangedMsg storage.ChangeEvent
	watchErrMsg       struct{ error }
)

// validateCmd checks the stored session at startup
func (m Model) validateCmd() tea.Cmd {
	session := m.opts.Session
	return func() tea.Msg {
		if session == nil {
			return validatedMsg{}
		}
		if !session.Validate(context.Background()) {
			return validatedMsg{}
		}
		name, _ := session.Username()
		return validatedMsg{valid: true, username: name}
	}
}

// loginCmd runs the auth flow
func (m Model) loginCmd(username, password string) tea.Cmd {
	a := m.opts.Auth
	return func() tea.Msg {
		login, err := a.Login(context.Background(), username, password)
		return loginDoneMsg{login: login, err: err}
	}
}

// logoutCmd drops the session
func (m Model) logoutCmd() tea.Cmd {
	a := m.opts.Auth
	return func() tea.Msg {
		return logoutDoneMsg{err: a.Logout()}
	}
}

// jobCmd runs a graphctl job off the event loop
func jobCmd(job *terminal.Job) tea.Cmd {
	return func() tea.Msg {
		return jobDoneMsg(job.Run(context.Background()))
	}
}

// tickCmd refreshes the navbar clock
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// watchSessionCmd waits for the session file to change on disk
func (m Model) watchSessionCmd() tea.Cmd {
	w := m.opts.Watcher
	return func() tea.Msg {
		if w == nil {
			return nil
		}
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			return sessionChangedMsg(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err}
		}
	}
}

// showToast queues a popup and its expiry
func (m Model) showToast(code int, text string) (Model, tea.Cmd) {
	m.nextToast++
	id := m.nextToast
	m.toasts = append(m.toasts, toast{id: id, code: code, text: text})
	return m, tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg(id)
	})
}

// dropToast removes an expired popup
func (m Model) dropToast(id int) Model {
	var kept []toast
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return m
}

// enterLogin resets the form and shows it
func (m Model) enterLogin() Model {
	m.screen = screenLogin
	m.term = nil
	m.pending = 0
	m.submitting = false
	m.focusPass = false
	m.userInput.Reset()
	m.passInput.Reset()
	m.passInput.Blur()
	m.userInput.Focus()
	m.command.Blur()
	return m
}

// enterDashboard installs a fresh interpreter for username
func (m Model) enterDashboard(username string) Model {
	m.screen = screenDashboard
	m.term = terminal.New(username, m.opts.Presenter, terminal.WithHostname(m.opts.Hostname))
	m.pending = 0
	m.userInput.Blur()
	m.passInput.Blur()
	m.command.Reset()
	m.command.Focus()
	return m.syncOutput()
}

// syncOutput re-renders the log into the viewport and follows the bottom
func (m Model) syncOutput() Model {
	if m.term == nil {
		m.output.SetContent("")
		return m
	}
	prompt := m.term.Prompt()
	lines := m.term.Lines()
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = m.styles.line(l, prompt)
	}
	m.output.SetContent(strings.Join(rendered, "\n"))
	m.output.GotoBottom()
	return m
}

// updateSizes fits the viewport and inputs to the window
func (m Model) updateSizes() Model {
	// navbar (1), top bar (1), input (1), help (1), spacing (2)
	m.output.Width = max(20, m.width)
	m.output.Height = max(3, m.height-6)
	m.command.Width = max(10, m.width-4)
	m.userInput.Width = 30
	m.passInput.Width = 30
	return m.syncOutput()
}

// clock formats the navbar date
func (m Model) clock() string {
	return m.now.Format(clockLayout)
}

// loginErrorToast maps a failed login to its popup
func loginErrorToast(err error) (int, string) {
	return auth.Status(err), auth.Message(err)
}

// sessionEndedToast is shown when the session disappears under the dashboard
func sessionEndedToast() (int, string) {
	return http.StatusUnauthorized, "Session ended"
}

// Screen names the current screen, for logs and tests
func (m Model) Screen() string {
	switch m.screen {
	case screenLoading:
		return "loading"
	case screenLogin:
		return "login"
	case screenDashboard:
		return "dashboard"
	default:
		return fmt.Sprintf("screen(%d)", int(m.screen))
	}
}
