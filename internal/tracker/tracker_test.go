package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/pingwatch/internal/domain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTracker(threshold int) (*Tracker, *clock) {
	c := &clock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	tr := New(threshold)
	tr.now = c.now
	return tr, c
}

var (
	up   = domain.UpResult(domain.Latency(10))
	down = domain.DownResult("Timeout")
)

func TestApply_DownFiresOncePerStreak(t *testing.T) {
	tr, _ := newTracker(3)

	kinds := []EventKind{}
	for i := 0; i < 10; i++ {
		kinds = append(kinds, tr.Apply("A", down).Kind)
	}
	assert.Equal(t, []EventKind{None, None, WentDown, None, None, None, None, None, None, None}, kinds)

	st, ok := tr.Get("A")
	require.True(t, ok)
	assert.Equal(t, 10, st.ConsecutiveFailures)
	assert.True(t, st.ReportedDown)
}

func TestApply_WentDownCarriesErrorDetail(t *testing.T) {
	tr, _ := newTracker(1)
	ev := tr.Apply("A", domain.DownResult("Returned status code: 503"))
	assert.Equal(t, WentDown, ev.Kind)
	assert.Equal(t, "Returned status code: 503", ev.ErrorDetail)
	assert.Equal(t, "A", ev.Description)
}

func TestApply_ThresholdOneFiresOnFirstFailure(t *testing.T) {
	tr, _ := newTracker(1)
	assert.Equal(t, WentDown, tr.Apply("A", down).Kind)
	assert.Equal(t, None, tr.Apply("A", down).Kind)
}

func TestApply_UpResetsCounter(t *testing.T) {
	tr, _ := newTracker(5)
	for i := 0; i < 4; i++ {
		tr.Apply("A", down)
	}
	assert.Equal(t, None, tr.Apply("A", up).Kind)

	st, _ := tr.Get("A")
	assert.Equal(t, 0, st.ConsecutiveFailures)

	// a new streak starts from zero
	for i := 0; i < 4; i++ {
		assert.Equal(t, None, tr.Apply("A", down).Kind)
	}
	assert.Equal(t, WentDown, tr.Apply("A", down).Kind)
}

func TestApply_ShortFlapNeverNotifies(t *testing.T) {
	tr, _ := newTracker(3)
	seq := []domain.ProbeResult{down, down, up, down, up, down, down, up}
	for i, r := range seq {
		assert.Equal(t, None, tr.Apply("A", r).Kind, "step %d", i)
	}
}

func TestApply_RecoveryDowntimeFromTransition(t *testing.T) {
	tr, c := newTracker(2)

	tr.Apply("A", down)
	c.advance(30 * time.Second) // first failure must not count towards downtime
	require.Equal(t, WentDown, tr.Apply("A", down).Kind)

	c.advance(90 * time.Second)
	tr.Apply("A", down)
	c.advance(30 * time.Second)

	ev := tr.Apply("A", up)
	assert.Equal(t, RecoveredUp, ev.Kind)
	assert.Equal(t, 2*time.Minute, ev.Downtime)

	assert.Equal(t, None, tr.Apply("A", up).Kind, "recovery fires once")
	st, _ := tr.Get("A")
	assert.False(t, st.ReportedDown)
	assert.Equal(t, StatusUp, st.Status())
}

func TestApply_TargetsAreIndependent(t *testing.T) {
	tr, _ := newTracker(1)
	assert.Equal(t, WentDown, tr.Apply("A", down).Kind)
	assert.Equal(t, None, tr.Apply("B", up).Kind)
	assert.Equal(t, RecoveredUp, tr.Apply("A", up).Kind)
	assert.Equal(t, WentDown, tr.Apply("B", down).Kind)
}

func TestStatus(t *testing.T) {
	tr, _ := newTracker(2)
	tr.Apply("unknown", down)
	tr.Apply("up", up)
	tr.Apply("up", down) // below threshold keeps tracked status Up
	tr.Apply("down", down)
	tr.Apply("down", down)

	snap := tr.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "down", snap[0].Description)
	assert.Equal(t, StatusDown, snap[0].Status)
	assert.NotNil(t, snap[0].DownSince)
	assert.Equal(t, StatusUnknown, snap[1].Status)
	assert.Equal(t, StatusUp, snap[2].Status)
	assert.Equal(t, 1, snap[2].ConsecutiveFailures)
	assert.Nil(t, snap[2].DownSince)
}

func TestPrune(t *testing.T) {
	tr, _ := newTracker(1)
	tr.Apply("A", down)
	tr.Apply("B", up)
	tr.Apply("C", up)

	assert.Equal(t, 2, tr.Prune([]string{"B"}))
	assert.Equal(t, 1, tr.Len())
	_, ok := tr.Get("A")
	assert.False(t, ok)

	// a re-added target starts fresh: no recovery for the pruned down streak
	assert.Equal(t, None, tr.Apply("A", up).Kind)
}

func TestNew_ClampsThreshold(t *testing.T) {
	tr := New(0)
	assert.Equal(t, WentDown, tr.Apply("A", down).Kind)
}
