package probe

import (
	"context"
	"time"

	"github.com/hamed0406/pingwatch/internal/domain"
)

// Timeouts shared by all probes.
const (
	NetworkTimeout = 5 * time.Second  // ping reply wait and TCP connect
	ProcessGuard   = 6 * time.Second  // hard stop for the ping process
	HTTPTimeout    = 10 * time.Second // whole HTTP request
)

const (
	DetailTimeout = "Timeout"
	DetailTLS     = "SSL certificate validation failed"
)

// Prober runs one check against a target. It is bounded in time and never
// fails: every problem is reported as a Down result.
type Prober interface {
	Probe(ctx context.Context, spec domain.TargetSpec) domain.ProbeResult
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
