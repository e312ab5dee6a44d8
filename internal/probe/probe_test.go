package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hamed0406/pingwatch/internal/domain"
)

func TestExecutor_Dispatch(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer s.Close()

	e := NewExecutor()
	e.Ping = fakePing(linuxReply, nil)
	e.Port.Ping = e.Ping
	host, port := listen(t)
	ctx := context.Background()

	cases := []domain.TargetSpec{
		{Description: "ping", Host: "example.com", Check: domain.PingCheck{}},
		{Description: "port", Host: host, Check: domain.PortCheck{Port: port}},
		{Description: "http", Host: s.URL, Check: domain.HTTPCheck{}},
		{Description: "kw", Host: s.URL, Check: domain.KeywordCheck{Keyword: "HELLO", ExpectPresent: true}},
	}
	for _, spec := range cases {
		if out := e.Probe(ctx, spec); out.Outcome != domain.Up {
			t.Fatalf("%s: want up, got %+v", spec.Description, out)
		}
	}

	out := e.Probe(ctx, domain.TargetSpec{Description: "none", Host: "x"})
	if out.Outcome != domain.Down || !strings.Contains(out.ErrorDetail, "unsupported") {
		t.Fatalf("want Down(unsupported), got %+v", out)
	}
}

func TestClassifyDNSError(t *testing.T) {
	if got := classifyDNSError(&net.DNSError{Err: "no such host", IsNotFound: true}); got != "NXDOMAIN" {
		t.Fatalf("got %q", got)
	}
	if got := classifyDNSError(&net.DNSError{Err: "server misbehaving", IsTemporary: true}); got != "SERVFAIL_or_TIMEOUT" {
		t.Fatalf("got %q", got)
	}
	if got := classifyDNSError(context.Canceled); got != "" {
		t.Fatalf("got %q", got)
	}
}

type fakeResolver struct {
	ips   []net.IP
	ipErr error
	ns    []*net.NS
	nsErr error
	nsHit int
}

func (f *fakeResolver) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	return f.ips, f.ipErr
}

func (f *fakeResolver) LookupNS(ctx context.Context, name string) ([]*net.NS, error) {
	f.nsHit++
	return f.ns, f.nsErr
}

func TestClassifyHost(t *testing.T) {
	notFound := &net.DNSError{Err: "no such host", IsNotFound: true}
	servfail := &net.DNSError{Err: "server misbehaving", IsTemporary: true}
	ns := []*net.NS{{Host: "ns1.example."}}

	cases := []struct {
		name string
		r    *fakeResolver
		want string
	}{
		{"resolves", &fakeResolver{ips: []net.IP{net.IPv4(93, 184, 216, 34)}}, DNSResolves},
		{"nxdomain", &fakeResolver{ipErr: notFound, nsErr: notFound}, DNSNXDomain},
		{"zone without address", &fakeResolver{ipErr: notFound, ns: ns}, DNSNoARecord},
		{"servfail", &fakeResolver{ipErr: servfail, nsErr: servfail}, DNSServfail},
		{"servfail with ns", &fakeResolver{ipErr: servfail, ns: ns}, DNSServfail},
		{"unclassified error", &fakeResolver{ipErr: errors.New("boom")}, DNSServfail},
	}
	for _, c := range cases {
		if got := classifyHost(context.Background(), c.r, "example.com"); got != c.want {
			t.Fatalf("%s: got %q want %q", c.name, got, c.want)
		}
	}

	r := &fakeResolver{ips: []net.IP{net.IPv4(1, 1, 1, 1)}}
	classifyHost(context.Background(), r, "example.com")
	if r.nsHit != 0 {
		t.Fatalf("NS lookup made for a resolving host")
	}
}

func TestClassifyDNS_InvalidName(t *testing.T) {
	for _, in := range []string{"", "   ", "https://example.com"} {
		if got := ClassifyDNS(context.Background(), in); got != DNSInvalidName {
			t.Fatalf("ClassifyDNS(%q) = %q", in, got)
		}
	}
}
