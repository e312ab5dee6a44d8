package repo

import (
	"context"
	"time"

	"github.com/hamed0406/pingwatch/internal/tracker"
)

// Snapshot is the tracked state of every target after one completed cycle.
type Snapshot struct {
	Cycle   int                    `json:"cycle"`
	TakenAt time.Time              `json:"taken_at"`
	Targets []tracker.TargetStatus `json:"targets"`
}

// Ports (interfaces); swap in any adapter later.
type SnapshotStore interface {
	Save(ctx context.Context, s Snapshot) error
	// Latest reports ok=false until the first snapshot is saved.
	Latest(ctx context.Context) (s Snapshot, ok bool, err error)
}
