package probe

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/pingwatch/internal/domain"
)

// CommandRunner runs an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// PingChecker sends a single ICMP echo through the system ping tool.
type PingChecker struct {
	Run     CommandRunner
	Timeout time.Duration // reply wait passed to ping
	Guard   time.Duration // process deadline
	goos    string
}

func NewPingChecker() *PingChecker {
	return &PingChecker{
		Run:     execRunner,
		Timeout: NetworkTimeout,
		Guard:   ProcessGuard,
		goos:    runtime.GOOS,
	}
}

var (
	// "rtt min/avg/max/mdev = 0.045/0.051/0.060/0.004 ms" (linux, macOS "round-trip")
	summaryRTT = regexp.MustCompile(`=\s*[\d.]+/([\d.]+)/[\d.]+`)
	replyRTT   = regexp.MustCompile(`time[=<]\s*([\d.]+)\s*ms`)
	windowsAvg = regexp.MustCompile(`Average = (\d+)ms`)
)

func (p *PingChecker) Check(ctx context.Context, host string) domain.ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.Guard)
	defer cancel()

	out, err := p.Run(ctx, "ping", p.args(host)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.DownResult(DetailTimeout)
		}
		if strings.Contains(string(out), "100% packet loss") || strings.Contains(string(out), "100.0% packet loss") {
			return domain.DownResult(DetailTimeout)
		}
		return domain.DownResult("Ping failed")
	}

	ms, ok := parseRTT(string(out))
	if !ok {
		return domain.DownResult("Ping failed: unreadable output")
	}
	return domain.UpResult(domain.Latency(ms))
}

func (p *PingChecker) args(host string) []string {
	secs := strconv.Itoa(int(p.Timeout.Seconds()))
	switch p.goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.Itoa(int(p.Timeout.Milliseconds())), host}
	case "darwin", "freebsd":
		return []string{"-c", "1", "-t", secs, host}
	default:
		return []string{"-c", "1", "-W", secs, host}
	}
}

func parseRTT(out string) (float64, bool) {
	for _, re := range []*regexp.Regexp{summaryRTT, replyRTT, windowsAvg} {
		if m := re.FindStringSubmatch(out); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
