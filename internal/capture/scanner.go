package capture

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
)

// MarkerClass tags posts that already carry a save control.
const MarkerClass = "spots-save-btn"

const markerHTML = `<button type="button" class="` + MarkerClass + `">Save to spots</button>`

// Scanner injects a save marker into every unmarked post of a page and
// returns the posts it marked. Scanning the same document again yields
// nothing new.
type Scanner struct {
	extractors []Extractor
	logger     *zap.Logger
}

// NewScannerParams holds parameters for creating a Scanner.
type NewScannerParams struct {
	Extractors []Extractor // defaults to DefaultExtractors
	Logger     *zap.Logger
}

// NewScanner creates a Scanner.
func NewScanner(params NewScannerParams) *Scanner {
	extractors := params.Extractors
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{extractors: extractors, logger: logger}
}

// Scan marks and extracts the posts of doc that have not been seen yet.
func (s *Scanner) Scan(doc *goquery.Document, pageURL string) []model.CapturedPost {
	var found []model.CapturedPost

	for _, ex := range s.forPage(pageURL) {
		for _, post := range ex.Eligible(doc) {
			if post.Find("."+MarkerClass).Length() > 0 {
				continue
			}
			ex.Anchor(post).AppendHtml(markerHTML)

			captured, ok := ex.Extract(post, pageURL)
			if !ok {
				s.logger.Debug("post without url skipped", zap.String("platform", string(ex.Platform())))
				continue
			}
			found = append(found, *captured)
		}
	}

	s.logger.Debug("page scanned", zap.String("url", pageURL), zap.Int("posts", len(found)))
	return found
}

// ScanReader parses HTML from r and scans it.
func (s *Scanner) ScanReader(r io.Reader, pageURL string) (*goquery.Document, []model.CapturedPost, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, err
	}
	if pageURL == "" {
		pageURL = DocumentURL(doc)
	}
	return doc, s.Scan(doc, pageURL), nil
}

// forPage narrows the extractors by host; unknown hosts try all of them.
func (s *Scanner) forPage(pageURL string) []Extractor {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return s.extractors
	}
	host := strings.ToLower(u.Hostname())
	for _, ex := range s.extractors {
		if strings.Contains(host, string(ex.Platform())) {
			return []Extractor{ex}
		}
	}
	return s.extractors
}

// DocumentURL returns the canonical or og:url of a saved page, if any.
func DocumentURL(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		return href
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && content != "" {
		return content
	}
	return ""
}
