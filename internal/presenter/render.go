package presenter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"graphterm/internal/config"
)

// styles used by every rendered block
type styles struct {
	heading lipgloss.Style
	section lipgloss.Style
	text    lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	warn    lipgloss.Style
	bar     lipgloss.Style
	track   lipgloss.Style
	line    lipgloss.Style
}

func newStyles(p config.Palette) styles {
	return styles{
		heading: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Bold(true).MarginBottom(1),
		section: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).MarginTop(1),
		text:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		good:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		bad:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warning)),
		bar:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		track:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Surface)),
		line:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Info)),
	}
}

// kB formats an XP amount the way the platform does (1 kB = 1000 XP)
func kB(amount float64, decimals int) string {
	return fmt.Sprintf("%.*fkB", decimals, amount/1000)
}

// renderUserInfo renders the profile block
func renderUserInfo(st styles, a Attrs, now time.Time) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, st.text.Render(fmt.Sprintf(format, args...)))
	}
	section := func(title string) {
		lines = append(lines, st.section.Render("--- "+title+" ---"))
	}

	lines = append(lines, st.heading.Render("=== User Information ==="))
	add("Name: %s %s", a.String("firstName"), a.String("lastName"))
	if a.String("arabicFirstName") != "" && a.String("arabicLastName") != "" {
		add("Arabic Name: %s %s", strings.TrimSpace(a.String("arabicFirstName")), a.String("arabicLastName"))
	}
	add("Email: %s", a.String("email"))
	add("Phone: %s", a.String("tel"))
	add("Location: %s, %s", a.String("city"), a.String("country"))
	add("Address: %s, %s", a.String("addressStreet"), a.String("addressCity"))
	if v := a.String("arabicAddressStreet"); v != "" {
		add("Arabic Address: %s", v)
	}
	if v := a.String("dateOfBirth"); v != "" {
		if birth, err := time.Parse(time.RFC3339Nano, v); err == nil {
			add("Age: %d years old (Born: %s)", Age(birth, now), birth.Format("Jan 2, 2006"))
		}
	}
	add("Place of Birth: %s, %s", a.String("placeOfBirth"), a.String("countryOfBirth"))
	if v := a.String("arabicPlaceOfBirth"); v != "" {
		add("Arabic Place of Birth: %s", v)
	}
	add("Education: %s", a.String("scholarLevel"))
	if a.String("medicalCase") == "yes" && a.String("medicalInfo") != "" {
		lines = append(lines, st.warn.Render("Medical Info: "+a.String("medicalInfo")))
	}
	if a.String("peerToPeerBefore") == "yes" {
		lines = append(lines, st.good.Render("Previous P2P Experience: Yes"))
	}

	section("Emergency Contact")
	add("Contact: %s %s", a.String("emergencyFirstName"), a.String("emergencyLastName"))
	add("Relationship: %s", a.String("emergencyAffiliation"))
	add("Phone: %s", a.String("emergencyTel"))

	section("Additional Info")
	add("CIN: %s", a.String("cin"))
	add("Gender: %s", a.String("gender"))
	add("Postal Code: %s", a.String("addressPostalCode"))
	if v := a.String("Mohamed1stCheck"); v != "" {
		add("Mohammed 1st University Check: %s", v)
	}

	section("Terms Status")
	lines = append(lines,
		acceptance(st, "General Conditions", a.Bool("general-conditionsAccepted")),
		acceptance(st, "Using Our Services", a.Bool("using-our-servicesAccepted")),
	)

	return strings.Join(lines, "\n")
}

func acceptance(st styles, label string, accepted bool) string {
	if accepted {
		return st.good.Render(label + ": Accepted")
	}
	return st.bad.Render(label + ": Not Accepted")
}

// renderAudit renders the audit summary with a success-rate bar
func renderAudit(st styles, s AuditStats, width int) string {
	lines := []string{
		st.heading.Render("=== Audit Performance ==="),
		st.text.Render(fmt.Sprintf("Total Audits: %d", s.Total())),
		st.good.Render(fmt.Sprintf("Successful Audits: %d (%.2f%%)", s.Succeeded, s.SuccessRate)),
		st.bad.Render(fmt.Sprintf("Failed Audits: %d (%.2f%%)", s.Failed, s.FailureRate)),
		st.warn.Render(fmt.Sprintf("Audit Ratio: %.2f (%.2f%%)", s.Ratio, s.Ratio*100)),
		"",
		progressBar(st, s.SuccessRate, width),
	}
	return strings.Join(lines, "\n")
}

// progressBar draws percent of width as filled cells
func progressBar(st styles, percent float64, width int) string {
	filled := int(math.Round(percent / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return st.good.Render(strings.Repeat("█", filled)) + st.track.Render(strings.Repeat("░", width-filled))
}

// renderBarChart draws one horizontal bar per project scaled to the largest
func renderBarChart(st styles, projects []ProjectXP, width int) string {
	if len(projects) == 0 {
		return st.muted.Render("No project XP to display")
	}

	nameWidth := 0
	biggest := 0.0
	for _, p := range projects {
		nameWidth = max(nameWidth, lipgloss.Width(p.Name))
		biggest = math.Max(biggest, p.Amount)
	}
	nameWidth = min(nameWidth, 28)

	lines := []string{st.heading.Render("=== Top Projects by XP ===")}
	for _, p := range projects {
		cells := 0
		if biggest > 0 {
			cells = int(math.Round(p.Amount / biggest * float64(width)))
		}
		name := p.Name
		if r := []rune(name); len(r) > nameWidth {
			name = string(r[:nameWidth-1]) + "…"
		}
		date := ""
		if !p.Date.IsZero() {
			date = p.Date.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			st.text.Render(fmt.Sprintf("%-*s", nameWidth, name)),
			st.bar.Render(strings.Repeat("█", cells))+strings.Repeat(" ", width-cells),
			st.text.Render(fmt.Sprintf("%8s", kB(p.Amount, 1))),
			st.muted.Render(date),
		))
	}
	return strings.Join(lines, "\n")
}

// renderTimeline plots cumulative XP against time on a width x height grid
func renderTimeline(st styles, points []XPPoint, width, height int) string {
	if len(points) == 0 {
		return st.muted.Render("No XP progression to display")
	}

	first, last := points[0].Date, points[len(points)-1].Date
	span := last.Sub(first)
	maxXP := points[len(points)-1].Cumulative

	col := func(t time.Time) int {
		if span <= 0 {
			return width - 1
		}
		return int(math.Round(float64(t.Sub(first)) / float64(span) * float64(width-1)))
	}
	row := func(v float64) int {
		if maxXP <= 0 {
			return height - 1
		}
		return height - 1 - int(math.Round(v/maxXP*float64(height-1)))
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}

	// Carry the running total forward so the line is continuous
	level := make([]float64, width)
	marked := make([]bool, width)
	for _, p := range points {
		c := col(p.Date)
		level[c] = p.Cumulative
		marked[c] = true
	}
	current := 0.0
	for c := 0; c < width; c++ {
		if marked[c] {
			current = level[c]
			grid[row(current)][c] = '•'
			continue
		}
		if c > 0 {
			grid[row(current)][c] = '─'
		}
	}

	ticks := make(map[int]string)
	for _, ratio := range []float64{0, 0.25, 0.5, 0.75, 1} {
		ticks[row(maxXP*ratio)] = fmt.Sprintf("%.0fkB", maxXP*ratio/1000)
	}
	labelWidth := 0
	for _, l := range ticks {
		labelWidth = max(labelWidth, len(l))
	}

	lines := []string{st.heading.Render("=== XP Progression ===")}
	for r := 0; r < height; r++ {
		label := fmt.Sprintf("%*s", labelWidth, ticks[r])
		side := ""
		switch r {
		case 0:
			side = " Total"
		case 1:
			side = " " + kB(maxXP, 2)
		}
		lines = append(lines, st.muted.Render(label)+" │"+st.line.Render(string(grid[r]))+st.text.Render(side))
	}
	axis := strings.Repeat(" ", labelWidth) + " └" + strings.Repeat("─", width)
	dates := first.Format("2006-01-02")
	if end := last.Format("2006-01-02"); end != dates {
		gap := max(1, width-len(dates)-len(end))
		dates += strings.Repeat(" ", gap) + end
	}
	lines = append(lines,
		st.muted.Render(axis),
		st.muted.Render(strings.Repeat(" ", labelWidth+2)+dates),
		st.text.Render(fmt.Sprintf("%d transactions, last: %s (+%s)", len(points), points[len(points)-1].Name, kB(points[len(points)-1].Amount, 2))),
	)
	return strings.Join(lines, "\n")
}
