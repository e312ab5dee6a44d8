package probe

import (
	"context"
	"fmt"

	"github.com/hamed0406/pingwatch/internal/domain"
)

// Executor dispatches a target to the checker matching its check kind.
type Executor struct {
	Ping    *PingChecker
	Port    *PortChecker
	HTTP    *HTTPChecker
	Keyword *KeywordChecker
}

func NewExecutor() *Executor {
	ping := NewPingChecker()
	hc := NewHTTPChecker(HTTPTimeout)
	return &Executor{
		Ping:    ping,
		Port:    NewPortChecker(NetworkTimeout, ping),
		HTTP:    hc,
		Keyword: &KeywordChecker{HTTP: hc},
	}
}

func (e *Executor) Probe(ctx context.Context, spec domain.TargetSpec) domain.ProbeResult {
	switch c := spec.Check.(type) {
	case domain.PingCheck:
		return e.Ping.Check(ctx, spec.Host)
	case domain.PortCheck:
		return e.Port.Check(ctx, spec.Host, c.Port)
	case domain.HTTPCheck:
		return e.HTTP.Check(ctx, spec.Host)
	case domain.KeywordCheck:
		return e.Keyword.Check(ctx, spec.Host, c.Keyword, c.ExpectPresent)
	default:
		return domain.DownResult(fmt.Sprintf("unsupported check type %T", c))
	}
}

var _ Prober = (*Executor)(nil)
