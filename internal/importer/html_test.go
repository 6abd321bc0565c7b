package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/spots/internal/importer"
	"github.com/nikbrunner/spots/internal/model"
)

var importTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestParseHTML_SinglePost(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://www.instagram.com/bluebottle/p/Cx1/" ADD_DATE="1234567890">Blue Bottle</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html), importTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(res.Posts))
	}

	p := res.Posts[0]
	if p.Platform != model.PlatformInstagram {
		t.Errorf("expected instagram, got %q", p.Platform)
	}
	if p.Author != "bluebottle" {
		t.Errorf("expected author from the link, got %q", p.Author)
	}
	if p.Name != "Blue Bottle" {
		t.Errorf("expected name 'Blue Bottle', got %q", p.Name)
	}
	if p.Category != "" {
		t.Errorf("expected no category at the root, got %q", p.Category)
	}
	if !p.AddedAt.Equal(time.Unix(1234567890, 0)) {
		t.Errorf("expected ADD_DATE time, got %v", p.AddedAt)
	}
}

func TestParseHTML_FoldersBecomeCategories(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Food</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">Tacos</H3>
        <DL><p>
            <DT><A HREF="https://www.tiktok.com/@eats/video/123">https://www.tiktok.com/@eats/video/123</A>
        </DL><p>
        <DT><A HREF="https://www.instagram.com/p/abc/">Ramen</A>
    </DL><p>
    <DT><A HREF="https://www.instagram.com/reel/xyz/">Reel</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html), importTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(res.Posts))
	}

	byURL := make(map[string]importer.Post)
	for _, p := range res.Posts {
		byURL[p.URL] = p
	}

	tiktok := byURL["https://www.tiktok.com/@eats/video/123"]
	if tiktok.Category != "Tacos" {
		t.Errorf("expected innermost folder 'Tacos', got %q", tiktok.Category)
	}
	if tiktok.Name != "" {
		t.Errorf("expected no name when the link text is the URL, got %q", tiktok.Name)
	}
	if tiktok.Author != "eats" {
		t.Errorf("expected author 'eats', got %q", tiktok.Author)
	}
	if got := byURL["https://www.instagram.com/p/abc/"].Category; got != "Food" {
		t.Errorf("expected 'Food' after leaving the nested folder, got %q", got)
	}
	if got := byURL["https://www.instagram.com/reel/xyz/"].Category; got != "" {
		t.Errorf("expected root post to be uncategorized, got %q", got)
	}
}

func TestParseHTML_SkipsOtherLinks(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="https://example.com">Example</A>
    <DT><A>No href</A>
    <DT><A HREF="https://www.instagram.com/p/abc/">Post</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html), importTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(res.Posts))
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "https://example.com" {
		t.Errorf("expected example.com to be skipped, got %v", res.Skipped)
	}
}

func TestParseHTML_MissingAddDateUsesNow(t *testing.T) {
	html := `<DL><p><DT><A HREF="https://www.instagram.com/p/abc/">Post</A></DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html), importTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Posts[0].AddedAt.Equal(importTime) {
		t.Errorf("expected import time, got %v", res.Posts[0].AddedAt)
	}
}

func TestPost_Item(t *testing.T) {
	p := importer.Post{
		CapturedPost: model.CapturedPost{
			Platform: model.PlatformTikTok,
			URL:      "https://www.tiktok.com/@eats/video/1",
			Content:  "Best dumplings in town! Go early.",
			Category: "Dumplings",
		},
		AddedAt: importTime,
	}

	item := p.Item()
	if item.DisplayName() != "Best dumplings in town" {
		t.Errorf("expected name from content, got %q", item.DisplayName())
	}
	if item.CategoryName() != "Dumplings" {
		t.Errorf("expected category, got %q", item.CategoryName())
	}
	if !item.SavedAt.Equal(importTime) {
		t.Errorf("expected saved time from the bookmark, got %v", item.SavedAt)
	}

	p.Category = ""
	if p.Item().Category != nil {
		t.Error("expected nil category for uncategorized post")
	}
}
