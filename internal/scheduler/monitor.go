package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/pingwatch/internal/config"
	"github.com/hamed0406/pingwatch/internal/domain"
	"github.com/hamed0406/pingwatch/internal/probe"
	"github.com/hamed0406/pingwatch/internal/repo"
	"github.com/hamed0406/pingwatch/internal/report"
	"github.com/hamed0406/pingwatch/internal/tracker"
)

// DefaultConcurrency is the number of probes allowed in flight at once.
const DefaultConcurrency = 10

// TargetSource is asked for the target list at the top of every cycle.
type TargetSource interface {
	Targets(ctx context.Context) ([]domain.TargetSpec, error)
}

// Notifier sends messages without blocking the caller. Wait joins every
// message handed to Dispatch so far.
type Notifier interface {
	Dispatch(ctx context.Context, message string)
	Wait()
}

// Display receives results as they arrive and renders once per cycle.
type Display interface {
	Reset()
	Update(description string, r domain.ProbeResult)
	Render()
}

// Cycle is what one pass over the targets produced.
type Cycle struct {
	Number  int
	Skipped bool // target reload failed, nothing was probed
	Results map[string]domain.ProbeResult
	Events  []tracker.Event
	Report  string // status report sent this cycle, if any
}

// Monitor runs poll cycles on a fixed interval. Notifier, Display and Store
// are optional.
type Monitor struct {
	Logger      *zap.Logger
	Source      TargetSource
	Prober      probe.Prober
	Tracker     *tracker.Tracker
	Notifier    Notifier
	Display     Display
	Store       repo.SnapshotStore
	Settings    domain.Settings
	Concurrency int

	now        func() time.Time
	cycles     int
	lastReport time.Time
}

func NewMonitor(
	logger *zap.Logger,
	src TargetSource,
	prober probe.Prober,
	settings domain.Settings,
) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		Logger:      logger,
		Source:      src,
		Prober:      prober,
		Tracker:     tracker.New(settings.FailureThreshold),
		Settings:    settings,
		Concurrency: DefaultConcurrency,
		now:         time.Now,
	}
}

// Run does an immediate pass, then one pass per poll interval until ctx is
// cancelled. A cycle that has started always runs to completion.
func (m *Monitor) Run(ctx context.Context) error {
	m.Logger.Info("monitor_started",
		zap.Duration("interval", m.Settings.PollInterval),
		zap.Int("failure_threshold", m.Settings.FailureThreshold),
		zap.Int("concurrency", m.concurrency()),
	)
	work := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			break
		}
		m.RunCycle(work)

		t := time.NewTimer(m.Settings.PollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}
	m.Logger.Info("monitor_stopped", zap.Int("cycles", m.cycles))
	return nil
}

// RunCycle reloads the targets, probes all of them, applies the results and
// sends whatever notifications and reports are due.
func (m *Monitor) RunCycle(ctx context.Context) Cycle {
	specs, err := m.Source.Targets(ctx)
	if err != nil {
		m.Logger.Error("reload_failed",
			zap.Bool("config_error", config.IsConfigError(err)),
			zap.Error(err),
		)
		return Cycle{Number: m.cycles, Skipped: true}
	}

	keep := make([]string, len(specs))
	for i, s := range specs {
		keep[i] = s.Description
	}
	if n := m.Tracker.Prune(keep); n > 0 {
		m.Logger.Info("pruned_targets", zap.Int("removed", n))
	}

	if m.Display != nil {
		m.Display.Reset()
	}
	start := m.now()
	results := m.probeAll(ctx, specs)

	out := Cycle{Results: make(map[string]domain.ProbeResult, len(specs))}
	for i, s := range specs {
		r := results[i]
		out.Results[s.Description] = r
		ev := m.Tracker.Apply(s.Description, r)
		if ev.Kind == tracker.None {
			continue
		}
		out.Events = append(out.Events, ev)
		m.Logger.Info("target_"+ev.Kind.String(),
			zap.String("target", s.Description),
			zap.String("detail", ev.ErrorDetail),
			zap.Duration("downtime", ev.Downtime),
		)
		m.notify(ctx, report.Transition(ev))
	}

	m.cycles++
	out.Number = m.cycles
	now := m.now()
	snap := m.Tracker.Snapshot()

	// The first cycle's report also satisfies a zero report interval.
	switch {
	case m.cycles == 1:
		out.Report = report.Generate(snap)
		m.notify(ctx, out.Report)
		m.lastReport = now
	case now.Sub(m.lastReport) >= m.Settings.StatusReportInterval:
		m.lastReport = now
		st := report.Build(snap)
		if m.Settings.ReportOnlyIfDown && !st.AnyDown() {
			m.Logger.Debug("report_suppressed")
			break
		}
		out.Report = st.String()
		m.notify(ctx, out.Report)
	}

	if m.Notifier != nil {
		m.Notifier.Wait()
	}

	if m.Store != nil {
		if err := m.Store.Save(ctx, repo.Snapshot{Cycle: m.cycles, TakenAt: now.UTC(), Targets: snap}); err != nil {
			m.Logger.Warn("snapshot_save_error", zap.Error(err))
		}
	}
	if m.Display != nil {
		m.Display.Render()
	}

	m.Logger.Info("cycle_done",
		zap.Int("cycle", m.cycles),
		zap.Int("targets", len(specs)),
		zap.Int("events", len(out.Events)),
		zap.Duration("took", now.Sub(start)),
	)
	return out
}

func (m *Monitor) probeAll(ctx context.Context, specs []domain.TargetSpec) []domain.ProbeResult {
	results := make([]domain.ProbeResult, len(specs))
	var g errgroup.Group
	g.SetLimit(m.concurrency())
	for i, s := range specs {
		g.Go(func() error {
			r := m.probeOne(ctx, s)
			results[i] = r
			if m.Display != nil {
				m.Display.Update(s.Description, r)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (m *Monitor) probeOne(ctx context.Context, s domain.TargetSpec) (r domain.ProbeResult) {
	defer func() {
		if rec := recover(); rec != nil {
			id := uuid.NewString()
			m.Logger.Error("probe_panic",
				zap.String("correlation_id", id),
				zap.String("target", s.Description),
				zap.Any("panic", rec),
			)
			r = domain.DownResult(fmt.Sprintf("internal error (correlation_id: %s)", id))
		}
	}()
	r = m.Prober.Probe(ctx, s)
	m.Logger.Debug("probe_done",
		zap.String("target", s.Description),
		zap.String("kind", string(s.Kind())),
		zap.String("outcome", string(r.Outcome)),
		zap.String("detail", r.ErrorDetail),
	)
	return r
}

func (m *Monitor) notify(ctx context.Context, msg string) {
	if m.Notifier == nil || msg == "" {
		return
	}
	m.Notifier.Dispatch(ctx, msg)
}

func (m *Monitor) concurrency() int {
	if m.Concurrency < 1 {
		return DefaultConcurrency
	}
	return m.Concurrency
}
