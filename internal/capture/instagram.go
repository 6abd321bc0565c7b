package capture

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nikbrunner/spots/internal/model"
)

// InstagramExtractor reads feed and single-post articles.
type InstagramExtractor struct{}

func (InstagramExtractor) Platform() model.Platform { return model.PlatformInstagram }

func (InstagramExtractor) Eligible(doc *goquery.Document) []*goquery.Selection {
	var posts []*goquery.Selection
	doc.Find(`article[role="presentation"]`).Each(func(_ int, s *goquery.Selection) {
		posts = append(posts, s)
	})
	return posts
}

func (InstagramExtractor) Anchor(post *goquery.Selection) *goquery.Selection {
	if actions := post.Find("section > div").First(); actions.Length() > 0 {
		return actions
	}
	return post
}

func (InstagramExtractor) Extract(post *goquery.Selection, pageURL string) (*model.CapturedPost, bool) {
	p := &model.CapturedPost{
		Platform: model.PlatformInstagram,
		Content:  strings.TrimSpace(post.Find("h1").First().Text()),
		Author:   instagramAuthor(post),
		Images:   []string{},
		URL:      pageURL,
	}

	post.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if src == "" || strings.Contains(src, "profile") {
			return true
		}
		p.Images = append(p.Images, src)
		return len(p.Images) < model.MaxCapturedImages
	})

	// Feed pages host many posts; the permalink identifies this one
	if link := firstMatch(post, `a[href*="/p/"]`, `a[href*="/reel/"]`); link != nil {
		if href, ok := link.Attr("href"); ok {
			p.URL = resolve(pageURL, href)
		}
	}

	return p, p.URL != ""
}

// instagramAuthor tries progressively looser header lookups.
func instagramAuthor(post *goquery.Selection) string {
	header := post.Find("header")

	if text := strings.TrimSpace(header.Find("a").First().Text()); text != "" {
		return text
	}
	if text := strings.TrimSpace(header.Find("span a").First().Text()); text != "" {
		return text
	}

	author := ""
	header.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		if text != "" && !strings.Contains(text, " ") && utf8.RuneCountInString(text) < 50 {
			author = text
			return false
		}
		return true
	})
	if author != "" {
		return author
	}

	if href, ok := header.Find(`a[href^="/"]`).First().Attr("href"); ok {
		segment := strings.SplitN(strings.TrimPrefix(href, "/"), "/", 2)[0]
		return segment
	}
	return ""
}
