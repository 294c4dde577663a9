package presenter

import (
	"math"
	"sort"
	"strings"
	"time"
)

const (
	modulePrefix    = "/oujda/module/"
	campusPrefix    = "/oujda/"
	piscineJSReward = "/oujda/module/piscine-js"
	maxProjects     = 10
)

// ProjectXP is one bar of the projects chart
type ProjectXP struct {
	Name   string
	Amount float64
	Date   time.Time
}

// XPPoint is one step of the XP timeline
type XPPoint struct {
	Name       string
	Date       time.Time
	Amount     float64
	Cumulative float64
}

// AuditStats summarizes audit outcomes
type AuditStats struct {
	Succeeded   int
	Failed      int
	Ratio       float64
	SuccessRate float64 // percent
	FailureRate float64 // percent
}

// Total returns the number of closed audits
func (a AuditStats) Total() int { return a.Succeeded + a.Failed }

func isXP(t Transaction) bool {
	return t.Type == "" || t.Type == "xp"
}

// TopProjects keeps module XP (no onboarding or piscines), one entry per
// project with its best gain, highest first, at most ten.
func TopProjects(txs []Transaction) []ProjectXP {
	best := make(map[string]ProjectXP)

	for _, tx := range txs {
		if tx.Path == "" || !isXP(tx) {
			continue
		}
		path := strings.ToLower(tx.Path)
		if !strings.HasPrefix(path, modulePrefix) {
			continue
		}
		if strings.Contains(path, "onboarding") || strings.Contains(path, "piscine-js") || strings.Contains(path, "piscine-go") {
			continue
		}

		name := projectName(tx.Path)
		entry := ProjectXP{Name: name, Amount: tx.Amount, Date: tx.Time()}
		cur, seen := best[name]
		if !seen || entry.Amount > cur.Amount || (entry.Amount == cur.Amount && entry.Date.After(cur.Date)) {
			best[name] = entry
		}
	}

	projects := make([]ProjectXP, 0, len(best))
	for _, p := range best {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Amount != projects[j].Amount {
			return projects[i].Amount > projects[j].Amount
		}
		return projects[i].Name < projects[j].Name
	})
	if len(projects) > maxProjects {
		projects = projects[:maxProjects]
	}
	return projects
}

// projectName is the first path segment after the module prefix
func projectName(path string) string {
	idx := strings.Index(strings.ToLower(path), modulePrefix)
	if idx < 0 {
		return path
	}
	rest := path[idx+len(modulePrefix):]
	if name, _, _ := strings.Cut(rest, "/"); name != "" {
		return name
	}
	return path
}

// Timeline keeps campus XP in date order with a running total. The
// piscine-js completion reward is the only piscine entry kept.
func Timeline(txs []Transaction) []XPPoint {
	points := make([]XPPoint, 0, len(txs))

	for _, tx := range txs {
		if tx.Path == "" || tx.Amount == 0 || !isXP(tx) {
			continue
		}
		path := strings.ToLower(tx.Path)
		if !strings.Contains(path, campusPrefix) {
			continue
		}
		if path != piscineJSReward && (strings.Contains(path, "onboarding") || strings.Contains(path, "piscine")) {
			continue
		}
		date := tx.Time()
		if date.IsZero() {
			continue
		}
		points = append(points, XPPoint{Name: timelineName(tx.Path), Date: date, Amount: tx.Amount})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	var total float64
	for i := range points {
		total += points[i].Amount
		points[i].Cumulative = total
	}
	return points
}

// timelineName labels a point with the segments below the module, or the
// module segment itself for short paths
func timelineName(path string) string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	switch {
	case len(parts) >= 5:
		return parts[3] + "/" + parts[4]
	case len(parts) == 4:
		return parts[3]
	case len(parts) == 3:
		return parts[2]
	default:
		return "Unknown"
	}
}

// NewAuditStats computes rates rounded to two decimals
func NewAuditStats(succeeded, failed int, ratio float64) AuditStats {
	s := AuditStats{Succeeded: succeeded, Failed: failed, Ratio: ratio}
	if total := s.Total(); total > 0 {
		s.SuccessRate = round2(float64(succeeded) / float64(total) * 100)
		s.FailureRate = round2(float64(failed) / float64(total) * 100)
	}
	return s
}

// Age is the difference in calendar years, as shown on the profile page
func Age(birth, now time.Time) int {
	return now.Year() - birth.Year()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
