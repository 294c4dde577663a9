package terminal

import "strings"

// Command is a top-level terminal command
type Command int

// Commands in completion order
const (
	CmdUnknown Command = iota
	CmdClear
	CmdHelp
	CmdGraphctl
	CmdHistory
	CmdLs
	CmdPwd
	CmdEcho
)

var commandNames = map[Command]string{
	CmdClear:    "clear",
	CmdHelp:     "help",
	CmdGraphctl: "graphctl",
	CmdHistory:  "history",
	CmdLs:       "ls",
	CmdPwd:      "pwd",
	CmdEcho:     "echo",
}

// Commands lists every known command in completion order
var Commands = []Command{CmdClear, CmdHelp, CmdGraphctl, CmdHistory, CmdLs, CmdPwd, CmdEcho}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCommand resolves a command token, ignoring case
func ParseCommand(token string) (Command, bool) {
	token = strings.ToLower(token)
	for _, c := range Commands {
		if commandNames[c] == token {
			return c, true
		}
	}
	return CmdUnknown, false
}

// GraphctlOption is a graphctl subcommand
type GraphctlOption int

// Options in completion order
const (
	OptUnknown GraphctlOption = iota
	OptWhoami
	OptProjects
	OptOvertimeXP
	OptAudit
	OptHelp
)

var optionNames = map[GraphctlOption]string{
	OptWhoami:     "whoami",
	OptProjects:   "projects",
	OptOvertimeXP: "overtimexp",
	OptAudit:      "audit",
	OptHelp:       "help",
}

// GraphctlOptions lists every graphctl subcommand in completion order
var GraphctlOptions = []GraphctlOption{OptWhoami, OptProjects, OptOvertimeXP, OptAudit, OptHelp}

func (o GraphctlOption) String() string {
	if name, ok := optionNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseGraphctlOption resolves a subcommand token; matching is exact
func ParseGraphctlOption(token string) (GraphctlOption, bool) {
	for _, o := range GraphctlOptions {
		if optionNames[o] == token {
			return o, true
		}
	}
	return OptUnknown, false
}

// Chart reports whether the option renders a chart
func (o GraphctlOption) Chart() bool {
	return o == OptProjects || o == OptOvertimeXP
}

// subject names what the option loads, for error lines
func (o GraphctlOption) subject() string {
	switch o {
	case OptWhoami:
		return "user info"
	case OptProjects:
		return "projects"
	case OptOvertimeXP:
		return "overtime XP"
	case OptAudit:
		return "audit data"
	default:
		return o.String()
	}
}

var helpText = []string{
	"Available commands:",
	"  clear      - Clear the terminal",
	"  help       - Show this help message",
	"  history    - Show command history",
	"  ls         - List directory contents",
	"  pwd        - Show current directory",
	"  echo <msg> - Display a message",
	"  graphctl   - Graph control commands (try 'graphctl help')",
	"",
	"Navigation:",
	"  ↑/↓ arrows - Navigate command history",
	"  Tab        - Auto-complete commands",
	"  PgUp/PgDn  - Scroll the output",
	"  Ctrl+X     - Log out",
}

var graphctlHelpText = []string{
	"graphctl - Graph Control Commands:",
	"  whoami     - Display user information",
	"  projects   - Show project XP chart",
	"  overtimexp - Show XP progression over time",
	"  audit      - Show audit statistics",
	"  help       - Show this help message",
}

const listing = "projects/  data/  graphs/  logs/"
