package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hamed0406/pingwatch/internal/domain"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("want GET, got %s", r.Method)
		}
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	out := NewHTTPChecker(2*time.Second).Check(context.Background(), s.URL)
	if out.Outcome != domain.Up {
		t.Fatalf("want up, got %+v", out)
	}
	if out.ErrorDetail != "" {
		t.Fatalf("up result must not carry detail, got %q", out.ErrorDetail)
	}
	if out.LatencyMS == nil || *out.LatencyMS < 0 {
		t.Fatalf("want latency >= 0, got %v", out.LatencyMS)
	}
}

func TestHTTPChecker_NonOKStatusIsDown(t *testing.T) {
	for _, code := range []int{201, 301, 404, 500} {
		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		out := NewHTTPChecker(2*time.Second).Check(context.Background(), s.URL)
		s.Close()

		if out.Outcome != domain.Down {
			t.Fatalf("status %d: want down, got %+v", code, out)
		}
		if !strings.Contains(out.ErrorDetail, "status code") {
			t.Fatalf("status %d: want status code in detail, got %q", code, out.ErrorDetail)
		}
	}
}

func TestHTTPChecker_Timeout(t *testing.T) {
	release := make(chan struct{})
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer s.Close()
	defer close(release)

	out := NewHTTPChecker(50*time.Millisecond).Check(context.Background(), s.URL)
	if out.Outcome != domain.Down || out.ErrorDetail != DetailTimeout {
		t.Fatalf("want Down(Timeout), got %+v", out)
	}
}

func TestHTTPChecker_UntrustedCertificate(t *testing.T) {
	s := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer s.Close()

	out := NewHTTPChecker(2*time.Second).Check(context.Background(), s.URL)
	if out.Outcome != domain.Down || out.ErrorDetail != DetailTLS {
		t.Fatalf("want Down(%s), got %+v", DetailTLS, out)
	}
}

func TestHTTPChecker_Unreachable(t *testing.T) {
	out := NewHTTPChecker(2*time.Second).Check(context.Background(), "http://127.0.0.1:1")
	if out.Outcome != domain.Down || out.ErrorDetail == "" {
		t.Fatalf("want Down with detail, got %+v", out)
	}
}

func TestKeywordChecker(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>status: Keyword1 is here</body></html>"))
	}))
	defer s.Close()

	k := &KeywordChecker{HTTP: NewHTTPChecker(2 * time.Second)}
	ctx := context.Background()

	if out := k.Check(ctx, s.URL, "keyword1", true); out.Outcome != domain.Up {
		t.Fatalf("present+expected: want up, got %+v", out)
	}

	out := k.Check(ctx, s.URL, "keyword1", false)
	if out.Outcome != domain.Down || !strings.Contains(out.ErrorDetail, "found") || strings.Contains(out.ErrorDetail, "not found") {
		t.Fatalf("present+unexpected: want Down(found), got %+v", out)
	}

	out = k.Check(ctx, s.URL, "keyword2", true)
	if out.Outcome != domain.Down || !strings.Contains(out.ErrorDetail, "not found") {
		t.Fatalf("absent+expected: want Down(not found), got %+v", out)
	}

	if out := k.Check(ctx, s.URL, "keyword2", false); out.Outcome != domain.Up {
		t.Fatalf("absent+unexpected: want up, got %+v", out)
	}
}

func TestKeywordChecker_Non200(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "keyword1", http.StatusServiceUnavailable)
	}))
	defer s.Close()

	k := &KeywordChecker{HTTP: NewHTTPChecker(2 * time.Second)}
	out := k.Check(context.Background(), s.URL, "keyword1", true)
	if out.Outcome != domain.Down || !strings.Contains(out.ErrorDetail, "503") {
		t.Fatalf("want Down(503), got %+v", out)
	}
}

func TestHTTPChecker_ReusesConnection(t *testing.T) {
	body := strings.Repeat("x", 64<<10)
	var conns atomic.Int32
	s := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	s.Config.ConnState = func(c net.Conn, st http.ConnState) {
		if st == http.StateNew {
			conns.Add(1)
		}
	}
	s.Start()
	defer s.Close()

	hc := NewHTTPChecker(2 * time.Second)
	for i := 0; i < 4; i++ {
		if out := hc.Check(context.Background(), s.URL); out.Outcome != domain.Up {
			t.Fatalf("check %d: want up, got %+v", i, out)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if n := conns.Load(); n != 1 {
		t.Fatalf("want one keep-alive connection, got %d", n)
	}
}
