package domain

import "time"

type Outcome string

const (
	Up   Outcome = "Up"
	Down Outcome = "Down"
)

// ProbeResult is the output of one probe. Up results never carry ErrorDetail.
type ProbeResult struct {
	Outcome     Outcome   `json:"outcome"`
	LatencyMS   *float64  `json:"latency_ms,omitempty"` // nil when not measured
	ErrorDetail string    `json:"error_detail,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
}

func UpResult(latencyMS *float64) ProbeResult {
	return ProbeResult{Outcome: Up, LatencyMS: latencyMS, CheckedAt: time.Now().UTC()}
}

func DownResult(detail string) ProbeResult {
	return ProbeResult{Outcome: Down, ErrorDetail: detail, CheckedAt: time.Now().UTC()}
}

func (r ProbeResult) IsUp() bool { return r.Outcome == Up }

// Latency returns a pointer suitable for ProbeResult.LatencyMS.
func Latency(ms float64) *float64 { return &ms }
