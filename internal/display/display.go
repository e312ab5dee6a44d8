// Package display renders the latest poll cycle to a terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/hamed0406/pingwatch/internal/domain"
)

const (
	maxNameWidth  = 60
	maxErrorWidth = 20
	clearScreen   = "\033[H\033[2J\033[3J"
)

// Terminal collects per-target results during a cycle and prints them as an
// aligned table when Render is called. Safe for concurrent Update calls.
type Terminal struct {
	out     io.Writer
	tty     bool
	now     func() time.Time
	mu      sync.Mutex
	results map[string]domain.ProbeResult

	green, yellow, red, dim, bold *color.Color
}

// NewTerminal writes to stdout; colour and screen clearing are only used
// when stdout is a terminal.
func NewTerminal() *Terminal {
	fd := os.Stdout.Fd()
	return New(os.Stdout, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

func New(out io.Writer, tty bool) *Terminal {
	t := &Terminal{
		out:     out,
		tty:     tty,
		now:     time.Now,
		results: make(map[string]domain.ProbeResult),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
		dim:     color.New(color.Faint),
		bold:    color.New(color.Bold, color.FgBlue),
	}
	for _, c := range []*color.Color{t.green, t.yellow, t.red, t.dim, t.bold} {
		if tty {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

// Reset forgets the previous cycle's results.
func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.results)
}

func (t *Terminal) Update(description string, r domain.ProbeResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results[description] = r
}

type row struct {
	name string
	res  domain.ProbeResult
}

// Render prints down targets first, then the rest by name.
func (t *Terminal) Render() {
	t.mu.Lock()
	rows := make([]row, 0, len(t.results))
	for n, r := range t.results {
		rows = append(rows, row{n, r})
	}
	t.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		di, dj := rows[i].res.Outcome == domain.Down, rows[j].res.Outcome == domain.Down
		if di != dj {
			return di
		}
		return strings.ToLower(rows[i].name) < strings.ToLower(rows[j].name)
	})

	width := 12
	for _, r := range rows {
		if n := len([]rune(truncate(r.name, maxNameWidth))); n > width {
			width = n
		}
	}

	var b strings.Builder
	if t.tty {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "%s %s\n\n", t.bold.Sprint("pingwatch"), t.dim.Sprint(t.now().Format("15:04:05")))

	up, down := 0, 0
	for _, r := range rows {
		dot := t.green.Sprint("●")
		if r.res.Outcome == domain.Down {
			dot = t.red.Sprint("●")
			down++
		} else {
			up++
		}
		name := truncate(r.name, maxNameWidth)
		pad := strings.Repeat(" ", width-len([]rune(name)))
		fmt.Fprintf(&b, "%s %s%s %s\n", dot, name, pad, t.resultColumn(r.res))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s%s", t.green.Sprint(up), t.dim.Sprint(" up"))
	if down > 0 {
		fmt.Fprintf(&b, "  %s%s", t.red.Sprint(down), t.dim.Sprint(" down"))
	}
	b.WriteString("\n")

	_, _ = io.WriteString(t.out, b.String())
}

func (t *Terminal) resultColumn(r domain.ProbeResult) string {
	if r.Outcome == domain.Up && r.LatencyMS != nil {
		ms := *r.LatencyMS
		c := t.red
		switch {
		case ms < 50:
			c = t.green
		case ms < 150:
			c = t.yellow
		}
		return c.Sprintf("%.0f ms", ms)
	}
	if r.ErrorDetail != "" {
		return t.red.Sprint(truncate(r.ErrorDetail, maxErrorWidth))
	}
	return ""
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}
