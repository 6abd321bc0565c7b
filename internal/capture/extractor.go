// Package capture finds social-media posts in HTML pages and extracts
// the fields needed to save them.
package capture

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nikbrunner/spots/internal/model"
)

// Extractor knows how to find and read posts of one platform.
type Extractor interface {
	Platform() model.Platform
	// Eligible returns the post containers in doc.
	Eligible(doc *goquery.Document) []*goquery.Selection
	// Anchor returns where the save marker goes inside a post.
	Anchor(post *goquery.Selection) *goquery.Selection
	// Extract reads a post. ok is false when the post has no usable URL.
	Extract(post *goquery.Selection, pageURL string) (p *model.CapturedPost, ok bool)
}

// DefaultExtractors returns one extractor per supported platform.
func DefaultExtractors() []Extractor {
	return []Extractor{InstagramExtractor{}, TikTokExtractor{}}
}

// firstMatch returns the first non-empty selection among selectors.
func firstMatch(sel *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, s := range selectors {
		if found := sel.Find(s).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// resolve makes href absolute against base.
func resolve(base, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}

// collapseSpace trims and collapses runs of whitespace.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
