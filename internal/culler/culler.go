// Package culler checks whether saved post URLs still resolve.
package culler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/spots/internal/model"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single item.
type Result struct {
	Item       model.SavedItem
	Status     Status
	StatusCode int    // HTTP status code (0 if connection failed)
	Error      string // Error message for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
// completed is the number of URLs checked so far, total is the total count.
type ProgressFunc func(completed, total int)

// Checker checks item URLs with bounded concurrency.
type Checker struct {
	client      *http.Client
	concurrency int
	exclude     map[string]bool
	onProgress  ProgressFunc
	logger      *zap.Logger
}

// NewCheckerParams configures a Checker.
type NewCheckerParams struct {
	Client      *http.Client // optional; built from Timeout when nil
	Concurrency int          // default 8
	Timeout     time.Duration
	// ExcludeDomains are hosts whose 404s mean "possibly private" rather than dead.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	Logger         *zap.Logger
}

// NewChecker creates a Checker.
func NewChecker(params NewCheckerParams) *Checker {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := params.Client
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow redirects but limit to 10
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	exclude := make(map[string]bool, len(params.ExcludeDomains))
	for _, domain := range params.ExcludeDomains {
		exclude[strings.ToLower(strings.TrimSpace(domain))] = true
	}

	return &Checker{
		client:      client,
		concurrency: concurrency,
		exclude:     exclude,
		onProgress:  params.OnProgress,
		logger:      logger,
	}
}

// Check checks every item URL and returns results in input order.
// It stops early only when ctx is cancelled.
func (c *Checker) Check(ctx context.Context, items []model.SavedItem) ([]Result, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]Result, len(items))
	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkURL(gctx, items[i])

			if c.onProgress != nil {
				mu.Lock()
				completed++
				c.onProgress(completed, len(items))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dead := len(Filter(results, Dead))
	c.logger.Info("cull finished", zap.Int("checked", len(results)), zap.Int("dead", dead))
	return results, nil
}

// checkURL checks a single URL and returns the result.
func (c *Checker) checkURL(ctx context.Context, item model.SavedItem) Result {
	result := Result{Item: item}

	// Try HEAD first; some hosts reject it, so fall back to GET
	resp, err := c.do(ctx, http.MethodHead, item.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = c.do(ctx, http.MethodGet, item.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err)
			c.logger.Debug("url unreachable", zap.String("id", item.ID), zap.Error(err))
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if c.isExcludedDomain(item.URL) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// Rate limits and auth walls are common on social hosts
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "spots-culler/1.0")
	return c.client.Do(req)
}

// isExcludedDomain checks if the URL's host is an excluded domain or a subdomain of one.
func (c *Checker) isExcludedDomain(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if c.exclude[host] {
		return true
	}
	for domain := range c.exclude {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Filter returns the results with the given status.
func Filter(results []Result, status Status) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return err.Error()
	}
}
