package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hamed0406/pingwatch/internal/domain"
)

const maxBodySize = 2 << 20 // 2MB

type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

type fetchResult struct {
	StatusCode int
	Body       []byte
	LatencyMS  float64
}

// fetch issues a GET and, when withBody is set, reads up to maxBodySize
// bytes of the response. A non-empty detail means the request failed.
func (h *HTTPChecker) fetch(ctx context.Context, target string, withBody bool) (fetchResult, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fetchResult{}, fmt.Sprintf("Invalid URL: %v", err)
	}

	start := time.Now()
	resp, err := h.Client.Do(req)
	lat := elapsedMS(start)
	if err != nil {
		return fetchResult{LatencyMS: lat}, describeHTTPError(ctx, req.URL.Hostname(), err)
	}
	defer resp.Body.Close()

	out := fetchResult{StatusCode: resp.StatusCode, LatencyMS: lat}
	if withBody && resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return out, describeHTTPError(ctx, req.URL.Hostname(), err)
		}
		out.Body = body
		return out, ""
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	return out, ""
}

// Check is Up only on a 200 response.
func (h *HTTPChecker) Check(ctx context.Context, target string) domain.ProbeResult {
	res, detail := h.fetch(ctx, target, false)
	if detail != "" {
		return domain.DownResult(detail)
	}
	if res.StatusCode != http.StatusOK {
		return domain.DownResult(fmt.Sprintf("Returned status code: %d", res.StatusCode))
	}
	return domain.UpResult(domain.Latency(res.LatencyMS))
}

// KeywordChecker looks for a keyword (case-insensitive) in a 200 response.
type KeywordChecker struct {
	HTTP *HTTPChecker
}

func (k *KeywordChecker) Check(ctx context.Context, target, keyword string, expectPresent bool) domain.ProbeResult {
	res, detail := k.HTTP.fetch(ctx, target, true)
	if detail != "" {
		return domain.DownResult(detail)
	}
	if res.StatusCode != http.StatusOK {
		return domain.DownResult(fmt.Sprintf("Returned status code: %d", res.StatusCode))
	}

	found := strings.Contains(strings.ToLower(string(res.Body)), strings.ToLower(keyword))
	if found == expectPresent {
		return domain.UpResult(domain.Latency(res.LatencyMS))
	}
	out := domain.DownResult(fmt.Sprintf("Keyword %q not found", keyword))
	if found {
		out.ErrorDetail = fmt.Sprintf("Keyword %q found", keyword)
	}
	out.LatencyMS = domain.Latency(res.LatencyMS)
	return out
}

func describeHTTPError(ctx context.Context, host string, err error) string {
	if isTLSValidationError(err) {
		return DetailTLS
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return DetailTimeout
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		return dnsDetail(ctx, host)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}

func isTLSValidationError(err error) bool {
	var (
		verr     *tls.CertificateVerificationError
		unknown  x509.UnknownAuthorityError
		invalid  x509.CertificateInvalidError
		hostname x509.HostnameError
	)
	return errors.As(err, &verr) || errors.As(err, &unknown) ||
		errors.As(err, &invalid) || errors.As(err, &hostname)
}
