// Package tracker turns raw probe results into up/down transitions using a
// consecutive-failure threshold.
//
// A Tracker is not safe for concurrent use. The scheduler owns it and calls
// it only from its control loop after every probe in a cycle has returned.
package tracker

import (
	"sort"
	"time"

	"github.com/hamed0406/pingwatch/internal/domain"
)

type EventKind int

const (
	None EventKind = iota
	WentDown
	RecoveredUp
)

func (k EventKind) String() string {
	switch k {
	case WentDown:
		return "went_down"
	case RecoveredUp:
		return "recovered_up"
	default:
		return "none"
	}
}

// Event is a confirmed state change for one target.
type Event struct {
	Kind        EventKind
	Description string
	ErrorDetail string        // WentDown only
	Downtime    time.Duration // RecoveredUp only
	At          time.Time
}

// State is the per-target record.
type State struct {
	ConsecutiveFailures int
	ReportedDown        bool
	DownSince           time.Time
	EverUp              bool
	Last                domain.ProbeResult
}

// Status is the tracked (not raw) status of a target.
type Status string

const (
	StatusUp      Status = "Up"
	StatusDown    Status = "Down"
	StatusUnknown Status = "Unknown" // only sub-threshold failures seen so far
)

func (s State) Status() Status {
	switch {
	case s.ReportedDown:
		return StatusDown
	case s.EverUp:
		return StatusUp
	default:
		return StatusUnknown
	}
}

type Tracker struct {
	threshold int
	states    map[string]*State
	now       func() time.Time
}

// New returns a tracker that declares a target down after threshold
// consecutive failures. Thresholds below 1 are treated as 1.
func New(threshold int) *Tracker {
	if threshold < 1 {
		threshold = 1
	}
	return &Tracker{
		threshold: threshold,
		states:    make(map[string]*State),
		now:       time.Now,
	}
}

// Apply records one probe result and reports the transition it caused, if any.
func (t *Tracker) Apply(description string, r domain.ProbeResult) Event {
	st := t.states[description]
	if st == nil {
		st = &State{}
		t.states[description] = st
	}
	st.Last = r
	now := t.now()

	if r.Outcome == domain.Down {
		st.ConsecutiveFailures++
		if st.ConsecutiveFailures >= t.threshold && !st.ReportedDown {
			st.ReportedDown = true
			st.DownSince = now
			return Event{Kind: WentDown, Description: description, ErrorDetail: r.ErrorDetail, At: now}
		}
		return Event{Kind: None, Description: description, At: now}
	}

	wasReportedDown := st.ReportedDown
	st.ConsecutiveFailures = 0
	st.ReportedDown = false
	st.EverUp = true
	if wasReportedDown {
		return Event{Kind: RecoveredUp, Description: description, Downtime: now.Sub(st.DownSince), At: now}
	}
	return Event{Kind: None, Description: description, At: now}
}

// Prune drops state for every description not in keep and returns how many
// entries were removed.
func (t *Tracker) Prune(keep []string) int {
	live := make(map[string]struct{}, len(keep))
	for _, d := range keep {
		live[d] = struct{}{}
	}
	removed := 0
	for d := range t.states {
		if _, ok := live[d]; !ok {
			delete(t.states, d)
			removed++
		}
	}
	return removed
}

// Get returns a copy of the state for description.
func (t *Tracker) Get(description string) (State, bool) {
	st, ok := t.states[description]
	if !ok {
		return State{}, false
	}
	return *st, true
}

func (t *Tracker) Len() int { return len(t.states) }

// TargetStatus is a read-only view of one tracked target.
type TargetStatus struct {
	Description         string             `json:"description"`
	Status              Status             `json:"status"`
	ConsecutiveFailures int                `json:"consecutive_failures"`
	DownSince           *time.Time         `json:"down_since,omitempty"`
	Last                domain.ProbeResult `json:"last"`
}

// Snapshot returns every tracked target sorted by description.
func (t *Tracker) Snapshot() []TargetStatus {
	out := make([]TargetStatus, 0, len(t.states))
	for d, st := range t.states {
		ts := TargetStatus{
			Description:         d,
			Status:              st.Status(),
			ConsecutiveFailures: st.ConsecutiveFailures,
			Last:                st.Last,
		}
		if st.ReportedDown {
			since := st.DownSince
			ts.DownSince = &since
		}
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out
}
