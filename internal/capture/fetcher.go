package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
)

// PageFetcher renders live post pages in a headless browser so the
// extractors see the DOM the platform builds with JavaScript.
type PageFetcher struct {
	controlURL string
	timeout    time.Duration
	settle     time.Duration
	scanner    *Scanner
	logger     *zap.Logger
}

// NewPageFetcherParams holds parameters for creating a PageFetcher.
type NewPageFetcherParams struct {
	ControlURL string        // existing DevTools endpoint; empty launches a browser
	Timeout    time.Duration // per page, default 30s
	Settle     time.Duration // wait after load for late content, default 2s
	Scanner    *Scanner
	Logger     *zap.Logger
}

// NewPageFetcher creates a PageFetcher.
func NewPageFetcher(params NewPageFetcherParams) *PageFetcher {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	settle := params.Settle
	if settle <= 0 {
		settle = 2 * time.Second
	}
	scanner := params.Scanner
	if scanner == nil {
		scanner = NewScanner(NewScannerParams{Logger: params.Logger})
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageFetcher{
		controlURL: params.ControlURL,
		timeout:    timeout,
		settle:     settle,
		scanner:    scanner,
		logger:     logger,
	}
}

// HTML loads pageURL and returns the rendered document.
func (f *PageFetcher) HTML(ctx context.Context, pageURL string) (string, error) {
	controlURL := f.controlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return "", fmt.Errorf("launch browser: %w", err)
		}
		defer l.Cleanup()
		controlURL = u
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect to browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	select {
	case <-time.After(f.settle):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	f.logger.Debug("page fetched", zap.String("url", pageURL), zap.Int("bytes", len(html)))
	return html, nil
}

// Fetch renders pageURL and scans it for posts.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) ([]model.CapturedPost, error) {
	html, err := f.HTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	_, posts, err := f.scanner.ScanReader(strings.NewReader(html), pageURL)
	if err != nil {
		return nil, err
	}
	return posts, nil
}
