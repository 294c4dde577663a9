// Package terminal is the command interpreter behind the dashboard: it owns
// the command history, the output log, and the dirty-graphics flag, and
// turns submitted lines into output lines or asynchronous data jobs.
//
// An Interpreter is not safe for concurrent use. The UI event loop owns it;
// only Job.Run may execute on another goroutine.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPresenter is reported by graphctl views when no data source is set
var ErrNoPresenter = errors.New("no data source configured")

const (
	// Greeting is the first line of every new terminal
	Greeting = "Terminal initialized. Type 'help' for available commands."

	// ClearedNotice replaces the log when a chart was on screen
	ClearedNotice = "Terminal cleared - chart was displayed"

	defaultHostname = "hostname"
	defaultUsername = "user"
)

// Direction of history navigation
type Direction int

const (
	Older Direction = iota
	Newer
)

// LineKind tells the UI how to style a line
type LineKind int

const (
	LineOutput LineKind = iota
	LinePrompt
	LineError
	LineNotice
	LineArtifact
)

// Line is one entry of the output log
type Line struct {
	Kind    LineKind
	Text    string
	Graphic bool // a chart, subject to the single-artifact rule
}

// Presenter renders the graphctl data views
type Presenter interface {
	WhoAmI(ctx context.Context) (string, error)
	Projects(ctx context.Context) (string, error)
	OvertimeXP(ctx context.Context) (string, error)
	Audit(ctx context.Context) (string, error)
}

type noPresenter struct{}

func (noPresenter) WhoAmI(context.Context) (string, error)     { return "", ErrNoPresenter }
func (noPresenter) Projects(context.Context) (string, error)   { return "", ErrNoPresenter }
func (noPresenter) OvertimeXP(context.Context) (string, error) { return "", ErrNoPresenter }
func (noPresenter) Audit(context.Context) (string, error)      { return "", ErrNoPresenter }

// Job is a pending graphctl data request
type Job struct {
	Option     GraphctlOption
	Generation uint64
	fetch      func(context.Context) (string, error)
	owner      *Interpreter
}

// Run fetches the view. It is safe to call off the UI goroutine.
func (j *Job) Run(ctx context.Context) Result {
	text, err := j.fetch(ctx)
	return Result{Job: j, Text: text, Err: err}
}

// Result is a finished Job
type Result struct {
	Job  *Job
	Text string
	Err  error
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithHostname sets the host shown in the prompt
func WithHostname(host string) Option {
	return func(i *Interpreter) {
		if host != "" {
			i.hostname = host
		}
	}
}

// Interpreter is the terminal command interpreter
type Interpreter struct {
	username  string
	hostname  string
	presenter Presenter

	history    []string
	cursor     int // -1 is the live buffer
	input      string
	lines      []Line
	dirty      bool
	generation uint64
}

// New creates an interpreter for username
func New(username string, p Presenter, opts ...Option) *Interpreter {
	if username == "" {
		username = defaultUsername
	}
	if p == nil {
		p = noPresenter{}
	}
	i := &Interpreter{
		username:  username,
		hostname:  defaultHostname,
		presenter: p,
		cursor:    -1,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.output(Greeting)
	return i
}

// Prompt is the prefix echoed before each submitted line
func (i *Interpreter) Prompt() string {
	return fmt.Sprintf("%s@%s~$ ", i.username, i.hostname)
}

// SubmitLine runs one line of input. It returns the job to run when the
// command needs remote data, nil otherwise.
func (i *Interpreter) SubmitLine(raw string) *Job {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if i.dirty {
		i.lines = nil
		i.add(LineNotice, ClearedNotice)
		i.dirty = false
	}

	i.history = append(i.history, raw)
	i.cursor = -1
	i.input = ""
	i.add(LinePrompt, i.Prompt()+raw)
	i.generation++

	fields := strings.Fields(raw)
	return i.Dispatch(fields[0], fields[1:])
}

// Dispatch runs a single command
func (i *Interpreter) Dispatch(command string, args []string) *Job {
	cmd, ok := ParseCommand(command)
	if !ok {
		i.add(LineError, fmt.Sprintf("Unknown command '%s'! Try: help", command))
		return nil
	}

	switch cmd {
	case CmdClear:
		i.lines = nil
		i.dirty = false
	case CmdHelp:
		i.output(helpText...)
	case CmdHistory:
		if len(i.history) == 0 {
			i.output("No command history")
			break
		}
		for n, entry := range i.history {
			i.output(fmt.Sprintf("%d  %s", n+1, entry))
		}
	case CmdLs:
		i.output(listing)
	case CmdPwd:
		i.output("/home/" + i.username)
	case CmdEcho:
		i.output(strings.Join(args, " "))
	case CmdGraphctl:
		return i.graphctl(args)
	}
	return nil
}

func (i *Interpreter) graphctl(args []string) *Job {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	opt, ok := ParseGraphctlOption(sub)
	if !ok {
		i.add(LineError, fmt.Sprintf("Invalid graphctl option '%s'! Try: graphctl help", sub))
		return nil
	}

	var fetch func(context.Context) (string, error)
	switch opt {
	case OptHelp:
		i.output(graphctlHelpText...)
		return nil
	case OptWhoami:
		fetch = i.presenter.WhoAmI
	case OptProjects:
		fetch = i.presenter.Projects
	case OptOvertimeXP:
		fetch = i.presenter.OvertimeXP
	case OptAudit:
		fetch = i.presenter.Audit
	}
	return &Job{Option: opt, Generation: i.generation, fetch: fetch, owner: i}
}

// Complete renders a finished job. Results of jobs superseded by a newer
// command, or started by another interpreter, are dropped and Complete
// returns false.
func (i *Interpreter) Complete(res Result) bool {
	if res.Job == nil || res.Job.owner != i || res.Job.Generation != i.generation {
		return false
	}
	opt := res.Job.Option
	if res.Err != nil {
		i.add(LineError, fmt.Sprintf("Error loading %s: %s", opt.subject(), res.Err.Error()))
		return true
	}
	i.lines = append(i.lines, Line{Kind: LineArtifact, Text: res.Text, Graphic: opt.Chart()})
	if opt.Chart() {
		i.dirty = true
	}
	return true
}

// NavigateHistory recalls older or newer entries into the input buffer
func (i *Interpreter) NavigateHistory(dir Direction) {
	if len(i.history) == 0 {
		return
	}
	switch dir {
	case Older:
		if i.cursor < len(i.history)-1 {
			i.cursor++
			i.input = i.history[len(i.history)-1-i.cursor]
		}
	case Newer:
		if i.cursor > 0 {
			i.cursor--
			i.input = i.history[len(i.history)-1-i.cursor]
		} else if i.cursor == 0 {
			i.cursor = -1
			i.input = ""
		}
	}
}

// CompleteInput completes a command name, or a graphctl option after
// "graphctl ", when exactly one candidate matches. Anything else is
// returned unchanged.
func (i *Interpreter) CompleteInput(buffer string) string {
	parts := strings.Split(buffer, " ")
	switch {
	case len(parts) == 1:
		var names []string
		for _, c := range Commands {
			names = append(names, c.String())
		}
		if match, ok := single(names, parts[0]); ok {
			return match
		}
	case len(parts) == 2 && parts[0] == CmdGraphctl.String():
		var names []string
		for _, o := range GraphctlOptions {
			names = append(names, o.String())
		}
		if match, ok := single(names, parts[1]); ok {
			return parts[0] + " " + match
		}
	}
	return buffer
}

func single(candidates []string, prefix string) (string, bool) {
	match := ""
	n := 0
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			match = c
			n++
		}
	}
	return match, n == 1
}

// Input returns the live input buffer
func (i *Interpreter) Input() string { return i.input }

// SetInput replaces the live input buffer (typing)
func (i *Interpreter) SetInput(s string) { i.input = s }

// History returns a copy of the submitted lines, oldest first
func (i *Interpreter) History() []string {
	return append([]string(nil), i.history...)
}

// Cursor is the history position, -1 when on the live buffer
func (i *Interpreter) Cursor() int { return i.cursor }

// Lines returns a copy of the output log
func (i *Interpreter) Lines() []Line {
	return append([]Line(nil), i.lines...)
}

// Dirty reports whether a chart is on screen
func (i *Interpreter) Dirty() bool { return i.dirty }

// Username is the user shown in the prompt
func (i *Interpreter) Username() string { return i.username }

// Generation counts submitted commands
func (i *Interpreter) Generation() uint64 { return i.generation }

func (i *Interpreter) output(text ...string) {
	for _, t := range text {
		i.add(LineOutput, t)
	}
}

func (i *Interpreter) add(kind LineKind, text string) {
	i.lines = append(i.lines, Line{Kind: kind, Text: text})
}
