package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNS classes reported in failure details.
const (
	DNSResolves    = "RESOLVES"
	DNSNXDomain    = "NXDOMAIN"
	DNSNoARecord   = "NO_A_RECORD"
	DNSServfail    = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName = "INVALID_NAME"
)

const dnsLookupTimeout = 3 * time.Second

// lookuper is the part of net.Resolver used here.
type lookuper interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

// ClassifyDNS explains how host resolves. Used to describe probe failures
// caused by name resolution.
func ClassifyDNS(ctx context.Context, host string) string {
	return classifyHost(ctx, net.DefaultResolver, host)
}

func classifyHost(ctx context.Context, r lookuper, host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.Contains(host, "://") {
		return DNSInvalidName
	}

	ctx, cancel := context.WithTimeout(ctx, dnsLookupTimeout)
	defer cancel()

	ips, err := r.LookupIP(ctx, "ip", host)
	if err == nil && len(ips) > 0 {
		return DNSResolves
	}
	// the name may exist without address records
	ns, nsErr := r.LookupNS(ctx, host)
	return dnsClass(err, nsErr == nil && len(ns) > 0)
}

func dnsClass(ipErr error, hasNS bool) string {
	class := classifyDNSError(ipErr)
	switch {
	case hasNS && (class == DNSNXDomain || class == ""):
		return DNSNoARecord
	case class != "":
		return class
	case ipErr != nil:
		return DNSServfail
	default:
		return DNSNXDomain
	}
}

func classifyDNSError(err error) string {
	var de *net.DNSError
	if !errors.As(err, &de) {
		return ""
	}
	switch {
	case de.IsNotFound:
		return DNSNXDomain
	case de.IsTemporary || de.Timeout():
		return DNSServfail
	}
	return ""
}

func dnsDetail(ctx context.Context, host string) string {
	return "DNS lookup failed (" + ClassifyDNS(ctx, host) + ")"
}
