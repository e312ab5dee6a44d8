package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/hamed0406/pingwatch/internal/domain"
)

// PortChecker opens and closes a TCP connection. Latency comes from a
// follow-up ping and is omitted when that ping fails.
type PortChecker struct {
	Timeout time.Duration
	Ping    *PingChecker
}

func NewPortChecker(timeout time.Duration, ping *PingChecker) *PortChecker {
	return &PortChecker{Timeout: timeout, Ping: ping}
}

func (p *PortChecker) Check(ctx context.Context, host string, port int) domain.ProbeResult {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return domain.DownResult(describeDialError(ctx, host, err))
	}
	_ = conn.Close()

	if p.Ping == nil {
		return domain.UpResult(nil)
	}
	if pr := p.Ping.Check(ctx, host); pr.IsUp() {
		return domain.UpResult(pr.LatencyMS)
	}
	return domain.UpResult(nil)
}

func describeDialError(ctx context.Context, host string, err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return DetailTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "Connection refused"
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		return dnsDetail(ctx, host)
	}
	return err.Error()
}
