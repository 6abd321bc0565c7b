package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/spots/internal/model"
)

func saved(id, name, category string) model.SavedItem {
	return model.SavedItem{
		ID:        id,
		Platform:  model.PlatformInstagram,
		URL:       "https://www.instagram.com/p/" + id + "/",
		VenueName: model.StringPtr(name),
		Category:  model.StringPtr(category),
		SavedAt:   time.Unix(1700000000, 0),
	}
}

func TestExportHTML_Empty(t *testing.T) {
	html := ExportHTML(nil)

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Spots</TITLE>") {
		t.Error("expected TITLE element")
	}
	if strings.Contains(html, "<H3>") {
		t.Error("expected no folders")
	}
}

func TestExportHTML_SingleItem(t *testing.T) {
	html := ExportHTML([]model.SavedItem{saved("a", "Blue Bottle", "")})

	if !strings.Contains(html, `<A HREF="https://www.instagram.com/p/a/"`) {
		t.Error("expected item URL")
	}
	if !strings.Contains(html, "Blue Bottle</A>") {
		t.Error("expected item name")
	}
	if !strings.Contains(html, `ADD_DATE="1700000000"`) {
		t.Error("expected ADD_DATE timestamp")
	}
	if strings.Contains(html, "<H3>") {
		t.Error("expected uncategorized item at the root")
	}
}

func TestExportHTML_CategoriesAsFolders(t *testing.T) {
	items := []model.SavedItem{
		saved("a", "Blue Bottle", "Coffee"),
		saved("b", "Bodega", "Bars"),
		saved("c", "Stumptown", "Coffee"),
	}

	html := ExportHTML(items)

	barsIdx := strings.Index(html, "<H3>Bars</H3>")
	coffeeIdx := strings.Index(html, "<H3>Coffee</H3>")
	bodegaIdx := strings.Index(html, "Bodega</A>")
	blueIdx := strings.Index(html, "Blue Bottle</A>")
	stumpIdx := strings.Index(html, "Stumptown</A>")

	if barsIdx == -1 || coffeeIdx == -1 || bodegaIdx == -1 || blueIdx == -1 || stumpIdx == -1 {
		t.Fatalf("missing elements in output:\n%s", html)
	}
	if !(barsIdx < bodegaIdx && bodegaIdx < coffeeIdx && coffeeIdx < blueIdx && blueIdx < stumpIdx) {
		t.Errorf("expected sorted folders each followed by their items:\n%s", html)
	}
	if strings.Count(html, "<H3>Coffee</H3>") != 1 {
		t.Error("expected one folder per category")
	}
}

func TestExportHTML_EscapesAndDescribes(t *testing.T) {
	item := saved("a", "Tom & Jerry's", "Bars <late>")
	item.Address = model.StringPtr("1 Main St")
	item.EventDate = model.StringPtr("2025-07-04")

	html := ExportHTML([]model.SavedItem{item})

	if !strings.Contains(html, "Tom &amp; Jerry&#39;s</A>") {
		t.Error("expected escaped name")
	}
	if !strings.Contains(html, "<H3>Bars &lt;late&gt;</H3>") {
		t.Error("expected escaped folder name")
	}
	if !strings.Contains(html, "<DD>1 Main St | 2025-07-04") {
		t.Error("expected description line")
	}
}
