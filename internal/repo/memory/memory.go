package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/pingwatch/internal/repo"
	"github.com/hamed0406/pingwatch/internal/tracker"
)

// Store keeps only the most recent snapshot.
type Store struct {
	mu     sync.RWMutex
	latest *repo.Snapshot
}

func New() *Store {
	return &Store{}
}

func (m *Store) Save(ctx context.Context, s repo.Snapshot) error {
	cp := s
	cp.Targets = append([]tracker.TargetStatus(nil), s.Targets...)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest != nil && cp.Cycle < m.latest.Cycle {
		return nil
	}
	m.latest = &cp
	return nil
}

func (m *Store) Latest(ctx context.Context) (repo.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return repo.Snapshot{}, false, nil
	}
	out := *m.latest
	out.Targets = append([]tracker.TargetStatus(nil), m.latest.Targets...)
	return out, true, nil
}
