package capture

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nikbrunner/spots/internal/model"
)

const tiktokOrigin = "https://www.tiktok.com"

// tiktokContainers covers the feed, profile grid and single-video layouts.
var tiktokContainers = strings.Join([]string{
	`[data-e2e="recommend-list-item-container"]`,
	`[data-e2e="browse-video"]`,
	`[data-e2e="user-post-item"]`,
	`div[class*="DivItemContainer"]`,
	`div[class*="DivVideoWrapper"]`,
}, ", ")

// TikTokExtractor reads video containers.
type TikTokExtractor struct{}

func (TikTokExtractor) Platform() model.Platform { return model.PlatformTikTok }

func (TikTokExtractor) Eligible(doc *goquery.Document) []*goquery.Selection {
	var posts []*goquery.Selection
	doc.Find(tiktokContainers).Each(func(_ int, s *goquery.Selection) {
		// Layout variants nest containers; keep the outermost only
		if s.ParentsFiltered(tiktokContainers).Length() > 0 {
			return
		}
		posts = append(posts, s)
	})
	return posts
}

func (TikTokExtractor) Anchor(post *goquery.Selection) *goquery.Selection {
	if item := post.Find(`[class*="ActionItem"]`).First(); item.Length() > 0 {
		return item.Parent()
	}
	if bar := firstMatch(post,
		`[data-e2e="browse-video-action-bar"]`,
		`[class*="DivActionItemContainer"]`,
		`[data-e2e="video-player-action-bar"]`,
	); bar != nil {
		return bar
	}
	return post
}

func (TikTokExtractor) Extract(post *goquery.Selection, pageURL string) (*model.CapturedPost, bool) {
	p := &model.CapturedPost{
		Platform: model.PlatformTikTok,
		URL:      pageURL,
		Images:   []string{},
	}

	if el := firstMatch(post, `[data-e2e="browse-username"]`, `a[href*="/@"]`, `[class*="AuthorName"]`); el != nil {
		p.Author = strings.TrimSpace(el.Text())
		if p.Author == "" {
			href, _ := el.Attr("href")
			p.Author = authorFromHref(href)
		}
	}

	if el := firstMatch(post, `[data-e2e="browse-video-desc"]`, `[class*="DivVideoDesc"]`, `[class*="SpanText"]`); el != nil {
		p.Content = collapseSpace(el.Text())
	}

	if src, ok := post.Find(`img[src*="tiktok"]`).First().Attr("src"); ok && src != "" {
		p.Images = append(p.Images, src)
	}

	if href, ok := post.Find(`a[href*="/video/"]`).First().Attr("href"); ok {
		if strings.HasPrefix(href, "/") {
			p.URL = tiktokOrigin + href
		} else {
			p.URL = resolve(pageURL, href)
		}
	}

	p.Tags = model.Hashtags(p.Content)
	return p, p.URL != ""
}

// authorFromHref returns user from ".../@user/...".
func authorFromHref(href string) string {
	_, after, ok := strings.Cut(href, "/@")
	if !ok {
		return ""
	}
	user, _, _ := strings.Cut(after, "/")
	return user
}
