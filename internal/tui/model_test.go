package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	catppuccin "github.com/catppuccin/go"
	tea "github.com/charmbracelet/bubbletea"

	"graphterm/internal/auth"
	"graphterm/internal/config"
	"graphterm/internal/storage"
)

type fakeSession struct {
	valid    bool
	username string
}

func (f *fakeSession) Validate(context.Context) bool { return f.valid }

func (f *fakeSession) Username() (string, bool) { return f.username, f.username != "" }

type fakeAuth struct {
	err       error
	gotUser   string
	gotPass   string
	logouts   int
	logoutErr error
}

func (f *fakeAuth) Login(_ context.Context, username, password string) (string, error) {
	f.gotUser, f.gotPass = username, password
	if f.err != nil {
		return "", f.err
	}
	return username, nil
}

func (f *fakeAuth) Logout() error {
	f.logouts++
	return f.logoutErr
}

type fakePresenter struct{}

func (fakePresenter) WhoAmI(context.Context) (string, error)     { return "profile", nil }
func (fakePresenter) Projects(context.Context) (string, error)   { return "bars", nil }
func (fakePresenter) OvertimeXP(context.Context) (string, error) { return "line", nil }
func (fakePresenter) Audit(context.Context) (string, error)      { return "", errors.New("down") }

func newTestModel(sess *fakeSession, a *fakeAuth) Model {
	now := time.Date(2026, 10, 18, 15, 4, 0, 0, time.UTC)
	m := NewModel(Options{
		Session:   sess,
		Auth:      a,
		Presenter: fakePresenter{},
		Styles:    NewStyles(config.PaletteFor(catppuccin.Mocha)),
		Hostname:  "box",
		Now:       func() time.Time { return now },
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return model, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func dashboard(t *testing.T) Model {
	t.Helper()
	m := newTestModel(&fakeSession{valid: true, username: "zone01"}, &fakeAuth{})
	m, _ = update(t, m, validatedMsg{valid: true, username: "zone01"})
	return m
}

func TestNewModel(t *testing.T) {
	m := newTestModel(&fakeSession{}, &fakeAuth{})
	if m.Screen() != "loading" {
		t.Errorf("expected initial screen to be loading, got %s", m.Screen())
	}
	if m.View() != "Loading..." {
		t.Errorf("expected loading view, got %q", m.View())
	}
}

func TestValidateCmd(t *testing.T) {
	tests := []struct {
		name string
		sess *fakeSession
		want validatedMsg
	}{
		{"valid", &fakeSession{valid: true, username: "alice"}, validatedMsg{valid: true, username: "alice"}},
		{"invalid", &fakeSession{}, validatedMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(tt.sess, &fakeAuth{})
			got := m.validateCmd()()
			if got != tt.want {
				t.Errorf("validateCmd() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStartupRouting(t *testing.T) {
	m := newTestModel(&fakeSession{}, &fakeAuth{})

	login, _ := update(t, m, validatedMsg{})
	if login.Screen() != "login" {
		t.Errorf("expected login after failed validation, got %s", login.Screen())
	}

	dash, _ := update(t, m, validatedMsg{valid: true, username: "alice"})
	if dash.Screen() != "dashboard" {
		t.Fatalf("expected dashboard after validation, got %s", dash.Screen())
	}
	if !strings.Contains(dash.View(), "alice@box") {
		t.Errorf("expected top bar with alice@box")
	}
}

func TestLoginSubmit(t *testing.T) {
	a := &fakeAuth{}
	m := newTestModel(&fakeSession{}, a)
	m, _ = update(t, m, validatedMsg{})

	m = typeText(t, m, "alice")
	m, _ = update(t, m, key(tea.KeyTab))
	if !m.focusPass {
		t.Fatalf("expected tab to focus the password field")
	}
	m = typeText(t, m, "secret")
	if strings.Contains(m.View(), "secret") {
		t.Errorf("password must be masked")
	}

	m, cmd := update(t, m, key(tea.KeyEnter))
	if !m.submitting || cmd == nil {
		t.Fatalf("expected enter to start the login")
	}
	msg := cmd()
	if a.gotUser != "alice" || a.gotPass != "secret" {
		t.Errorf("login called with %q/%q", a.gotUser, a.gotPass)
	}

	m, _ = update(t, m, msg)
	if m.Screen() != "dashboard" {
		t.Errorf("expected dashboard after login, got %s", m.Screen())
	}
}

func TestLoginFailureShowsToast(t *testing.T) {
	m := newTestModel(&fakeSession{}, &fakeAuth{})
	m, _ = update(t, m, validatedMsg{})
	m.submitting = true

	m, cmd := update(t, m, loginDoneMsg{err: auth.ErrUserMismatch})
	if m.Screen() != "login" || m.submitting {
		t.Fatalf("expected to stay on an idle login form")
	}
	if len(m.toasts) != 1 || m.toasts[0].code != 403 || m.toasts[0].text != "Username mismatch" {
		t.Fatalf("unexpected toasts: %+v", m.toasts)
	}
	if !strings.Contains(m.View(), "403 Username mismatch") {
		t.Errorf("expected toast in view")
	}
	if cmd == nil {
		t.Fatalf("expected an expiry command")
	}

	m, _ = update(t, m, toastExpiredMsg(m.toasts[0].id))
	if len(m.toasts) != 0 {
		t.Errorf("expected toast to expire, got %+v", m.toasts)
	}
}

func TestDashboardRunsCommands(t *testing.T) {
	m := dashboard(t)

	m = typeText(t, m, "echo hello world")
	m, cmd := update(t, m, key(tea.KeyEnter))
	if cmd != nil {
		t.Errorf("echo should not start a job")
	}
	if m.command.Value() != "" {
		t.Errorf("expected input cleared, got %q", m.command.Value())
	}
	view := m.View()
	if !strings.Contains(view, "zone01@box~$ echo hello world") || !strings.Contains(view, "hello world") {
		t.Errorf("expected echoed command and output in view:\n%s", view)
	}
}

func TestDashboardJobs(t *testing.T) {
	m := dashboard(t)

	m = typeText(t, m, "graphctl projects")
	m, cmd := update(t, m, key(tea.KeyEnter))
	if cmd == nil || m.pending != 1 {
		t.Fatalf("expected a pending job")
	}
	m, _ = update(t, m, cmd())
	if m.pending != 0 {
		t.Errorf("expected no pending jobs, got %d", m.pending)
	}
	if !m.term.Dirty() {
		t.Errorf("expected chart to mark the terminal dirty")
	}
	if !strings.Contains(m.output.View(), "bars") {
		t.Errorf("expected chart in output")
	}

	m = typeText(t, m, "graphctl audit")
	m, cmd = update(t, m, key(tea.KeyEnter))
	m, _ = update(t, m, cmd())
	if !strings.Contains(m.output.View(), "Error loading audit data: down") {
		t.Errorf("expected audit error line:\n%s", m.output.View())
	}
}

func TestDashboardDropsStaleJob(t *testing.T) {
	m := dashboard(t)

	m = typeText(t, m, "graphctl whoami")
	m, cmd := update(t, m, key(tea.KeyEnter))
	m = typeText(t, m, "pwd")
	m, _ = update(t, m, key(tea.KeyEnter))

	m, _ = update(t, m, cmd())
	if strings.Contains(m.output.View(), "profile") {
		t.Errorf("superseded result must not render")
	}
}

func TestDashboardHistoryAndCompletion(t *testing.T) {
	m := dashboard(t)
	for _, line := range []string{"ls", "pwd"} {
		m = typeText(t, m, line)
		m, _ = update(t, m, key(tea.KeyEnter))
	}

	m, _ = update(t, m, key(tea.KeyUp))
	if m.command.Value() != "pwd" {
		t.Errorf("up: got %q, want pwd", m.command.Value())
	}
	m, _ = update(t, m, key(tea.KeyUp))
	if m.command.Value() != "ls" {
		t.Errorf("up: got %q, want ls", m.command.Value())
	}
	m, _ = update(t, m, key(tea.KeyDown))
	m, _ = update(t, m, key(tea.KeyDown))
	if m.command.Value() != "" || m.term.Cursor() != -1 {
		t.Errorf("down to live buffer: got %q cursor %d", m.command.Value(), m.term.Cursor())
	}

	m = typeText(t, m, "graphctl ov")
	m, _ = update(t, m, key(tea.KeyTab))
	if m.command.Value() != "graphctl overtimexp" {
		t.Errorf("tab: got %q", m.command.Value())
	}
}

func TestLogout(t *testing.T) {
	a := &fakeAuth{}
	m := newTestModel(&fakeSession{valid: true, username: "zone01"}, a)
	m, _ = update(t, m, validatedMsg{valid: true, username: "zone01"})

	m, cmd := update(t, m, key(tea.KeyCtrlX))
	if cmd == nil {
		t.Fatalf("expected logout command")
	}
	m, _ = update(t, m, cmd())
	if a.logouts != 1 {
		t.Errorf("expected one logout, got %d", a.logouts)
	}
	if m.Screen() != "login" || m.term != nil {
		t.Errorf("expected login screen with no interpreter")
	}
}

func TestSessionRemovedOnDisk(t *testing.T) {
	sess := &fakeSession{valid: true, username: "zone01"}
	m := newTestModel(sess, &fakeAuth{})
	m, _ = update(t, m, validatedMsg{valid: true, username: "zone01"})

	// A write that keeps the session is ignored
	m, _ = update(t, m, sessionChangedMsg(storage.ChangeEvent{Path: "session.yaml"}))
	if m.Screen() != "dashboard" {
		t.Fatalf("expected to stay on dashboard")
	}

	sess.username = ""
	m, _ = update(t, m, sessionChangedMsg(storage.ChangeEvent{Path: "session.yaml", Removed: true}))
	if m.Screen() != "login" {
		t.Errorf("expected login after the session vanished, got %s", m.Screen())
	}
	if len(m.toasts) != 1 || m.toasts[0].code != 401 {
		t.Errorf("expected a 401 toast, got %+v", m.toasts)
	}
}

func TestClockTick(t *testing.T) {
	m := dashboard(t)
	at := time.Date(2026, 1, 2, 9, 5, 0, 0, time.UTC)

	m, cmd := update(t, m, tickMsg(at))
	if cmd == nil {
		t.Errorf("expected the next tick to be scheduled")
	}
	if !strings.Contains(m.View(), "Jan 2 09:05 AM") {
		t.Errorf("expected clock in navbar")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := dashboard(t)
	_, cmd := update(t, m, key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}
