// Package report composes the text messages sent to operators.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hamed0406/pingwatch/internal/tracker"
)

const (
	headerSomeDown = "🔴 Status Report - Targets Down:"
	headerAllUp    = "✅ Status Report - All Targets Up"
	upSection      = "Targets Up:"
)

// Status is a full snapshot report.
type Status struct {
	Down []string
	Up   []string
}

func (s Status) AnyDown() bool { return len(s.Down) > 0 }

// Build partitions targets by tracked status. Targets without a known
// status are left out.
func Build(states []tracker.TargetStatus) Status {
	var s Status
	for _, st := range states {
		switch st.Status {
		case tracker.StatusDown:
			s.Down = append(s.Down, st.Description)
		case tracker.StatusUp:
			s.Up = append(s.Up, st.Description)
		}
	}
	sort.Strings(s.Down)
	sort.Strings(s.Up)
	return s
}

func (s Status) String() string {
	var b strings.Builder
	if s.AnyDown() {
		b.WriteString(headerSomeDown + "\n")
		for _, d := range s.Down {
			b.WriteString("- " + d + "\n")
		}
	} else {
		b.WriteString(headerAllUp + "\n")
	}
	if len(s.Up) > 0 {
		b.WriteString("\n" + upSection + "\n")
		for _, u := range s.Up {
			b.WriteString("- " + u + "\n")
		}
	}
	return b.String()
}

// Generate is Build followed by String.
func Generate(states []tracker.TargetStatus) string {
	return Build(states).String()
}

// Transition renders the notification for a WentDown or RecoveredUp event.
func Transition(ev tracker.Event) string {
	switch ev.Kind {
	case tracker.WentDown:
		msg := fmt.Sprintf("❌ %s is down", ev.Description)
		if ev.ErrorDetail != "" {
			msg += ". " + ev.ErrorDetail
		}
		return msg
	case tracker.RecoveredUp:
		return fmt.Sprintf("✅ %s is back up. Downtime: %s", ev.Description, FormatDowntime(ev.Downtime))
	default:
		return ""
	}
}

// FormatDowntime keeps the two most significant units: "1d 2h", "3h 4m",
// "5m 6s" or "7s".
func FormatDowntime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
