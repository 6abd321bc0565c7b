package model_test

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/spots/internal/model"
)

// Helper functions for pointers
func stringPtr(s string) *string  { return &s }
func floatPtr(f float64) *float64 { return &f }
func timeAt(m int) time.Time      { return time.Date(2025, 6, 1, 12, m, 0, 0, time.UTC) }

func itemWithID(id string) model.SavedItem {
	return model.SavedItem{ID: id, Platform: model.PlatformInstagram, URL: "https://instagram.com/p/" + id}
}

func TestSavedItem_JSONNullableFields(t *testing.T) {
	item := model.SavedItem{
		ID:       "1718000000000",
		Platform: model.PlatformTikTok,
		URL:      "https://www.tiktok.com/@eats/video/1",
		Author:   "eats",
		Tags:     []string{},
		SavedAt:  time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	// Enrichment fields are serialized as null, not omitted
	for _, key := range []string{`"event_name":null`, `"latitude":null`, `"category":null`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
	if strings.Contains(string(data), "remote_id") {
		t.Errorf("remote_id should be omitted when empty: %s", data)
	}

	var got model.SavedItem
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if got.ID != item.ID || got.Platform != item.Platform || !got.SavedAt.Equal(item.SavedAt) {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Platform
		wantErr bool
	}{
		{"instagram", model.PlatformInstagram, false},
		{" TikTok ", model.PlatformTikTok, false},
		{"facebook", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := model.ParsePlatform(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePlatform(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !model.IsValidation(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
			if got != tt.want {
				t.Errorf("ParsePlatform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePlatform_AcceptsEveryPlatform(t *testing.T) {
	for _, p := range model.Platforms {
		got, err := model.ParsePlatform(strings.ToUpper(string(p)))
		if err != nil || got != p {
			t.Errorf("ParsePlatform(%q) = %q, %v", p, got, err)
		}
	}
}

func TestDefaultName(t *testing.T) {
	long := strings.Repeat("a", 60)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"first sentence", "Great tacos here! #yum", "Great tacos here"},
		{"period", "Open late. Bring cash.", "Open late"},
		{"question", "Best ramen? Maybe", "Best ramen"},
		{"no terminator", "Sunset rooftop bar", "Sunset rooftop bar"},
		{"empty content", "", "Saved Post"},
		{"only punctuation", "!!!", "Saved Post"},
		{"exactly fifty", strings.Repeat("b", 50), strings.Repeat("b", 50)},
		{"truncated", long + ". rest", strings.Repeat("a", 50) + "..."},
		{"multibyte", strings.Repeat("é", 55), strings.Repeat("é", 50) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.DefaultName(tt.content); got != tt.want {
				t.Errorf("DefaultName(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestHashtags(t *testing.T) {
	got := model.Hashtags("Great tacos #yum #food_truck and more")
	if len(got) != 2 || got[0] != "yum" || got[1] != "food_truck" {
		t.Errorf("unexpected hashtags: %v", got)
	}
	if got := model.Hashtags("no tags"); len(got) != 0 {
		t.Errorf("expected no hashtags, got %v", got)
	}
}

func TestSavedItem_SortTime(t *testing.T) {
	saved := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	withDate := model.SavedItem{EventDate: stringPtr("2025-03-04"), SavedAt: saved}
	if got := withDate.SortTime(); !got.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected event date, got %v", got)
	}

	malformed := model.SavedItem{EventDate: stringPtr("next friday"), SavedAt: saved}
	if got := malformed.SortTime(); !got.Equal(saved) {
		t.Errorf("malformed date should fall back to saved_at, got %v", got)
	}

	noDate := model.SavedItem{SavedAt: saved}
	if got := noDate.SortTime(); !got.Equal(saved) {
		t.Errorf("expected saved_at, got %v", got)
	}
}

func TestSavedItem_HasCoordinates(t *testing.T) {
	if (model.SavedItem{}).HasCoordinates() {
		t.Error("item without coordinates reported HasCoordinates")
	}
	if (model.SavedItem{Latitude: floatPtr(40.7)}).HasCoordinates() {
		t.Error("latitude alone is not a coordinate")
	}
	if !(model.SavedItem{Latitude: floatPtr(40.7), Longitude: floatPtr(-74)}).HasCoordinates() {
		t.Error("expected coordinates")
	}
}

func TestSavedItem_DisplayName(t *testing.T) {
	if got := (model.SavedItem{VenueName: stringPtr("Joe's"), EventName: stringPtr("Pizza")}).DisplayName(); got != "Joe's" {
		t.Errorf("venue should win, got %q", got)
	}
	if got := (model.SavedItem{EventName: stringPtr("Pizza")}).DisplayName(); got != "Pizza" {
		t.Errorf("expected event name, got %q", got)
	}
	if got := (model.SavedItem{}).DisplayName(); got != "Saved Item" {
		t.Errorf("expected placeholder, got %q", got)
	}
}

// === Store Tests ===

func TestStore_Append_MostRecentFirst(t *testing.T) {
	store := model.NewStore()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Append(itemWithID(id)); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	if store.Items[0].ID != "c" || store.Items[2].ID != "a" {
		t.Errorf("expected most-recent-first order, got %s,%s,%s",
			store.Items[0].ID, store.Items[1].ID, store.Items[2].ID)
	}
}

func TestStore_Append_CapsAtMaxItems(t *testing.T) {
	store := model.NewStore()

	total := model.MaxItems + 25
	for i := 0; i < total; i++ {
		if _, err := store.Append(itemWithID(strconv.Itoa(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if len(store.Items) > model.MaxItems {
			t.Fatalf("store grew to %d items", len(store.Items))
		}
	}

	if len(store.Items) != model.MaxItems {
		t.Fatalf("expected %d items, got %d", model.MaxItems, len(store.Items))
	}

	// The most recent 100 insertions, newest first
	for i, item := range store.Items {
		want := strconv.Itoa(total - 1 - i)
		if item.ID != want {
			t.Fatalf("position %d: got id %s, want %s", i, item.ID, want)
		}
	}
}

func TestStore_Append_AssignsUniqueTimeIDs(t *testing.T) {
	store := model.NewStore()
	now := timeAt(0)

	first, err := store.Append(model.SavedItem{SavedAt: now})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := store.Append(model.SavedItem{SavedAt: now})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if first.ID != strconv.FormatInt(now.UnixMilli(), 10) {
		t.Errorf("expected millisecond id, got %s", first.ID)
	}
	if first.ID == second.ID {
		t.Errorf("ids collided: %s", first.ID)
	}
	if first.Tags == nil || first.Images == nil {
		t.Error("expected initialized tags and images")
	}
}

func TestStore_Append_RejectsDuplicateID(t *testing.T) {
	store := model.NewStore()
	_, _ = store.Append(itemWithID("x"))

	if _, err := store.Append(itemWithID("x")); err != model.ErrDuplicateID {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if len(store.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(store.Items))
	}
}

func TestStore_Update(t *testing.T) {
	store := model.NewStore()
	_, _ = store.Append(itemWithID("x"))

	updated, err := store.Update("x", model.Patch{
		VenueName: stringPtr("Taqueria"),
		Category:  stringPtr("Food"),
		Latitude:  floatPtr(1.5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DisplayName() != "Taqueria" || updated.CategoryName() != "Food" {
		t.Errorf("patch not applied: %+v", updated)
	}
	if store.Get("x").CategoryName() != "Food" {
		t.Error("patch not persisted in store")
	}

	// Empty string clears the field
	cleared, _ := store.Update("x", model.Patch{Category: stringPtr("")})
	if cleared.Category != nil {
		t.Errorf("expected category cleared, got %q", *cleared.Category)
	}

	if _, err := store.Update("missing", model.Patch{}); err != model.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	store := model.NewStore()
	_, _ = store.Append(itemWithID("a"))
	_, _ = store.Append(itemWithID("b"))

	if err := store.Remove("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Items) != 1 || store.Items[0].ID != "b" {
		t.Errorf("unexpected items after remove: %+v", store.Items)
	}

	if err := store.Remove("a"); err != model.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(store.Items) != 1 {
		t.Error("remove of missing id must not change the store")
	}
}

func TestStore_FindURL(t *testing.T) {
	store := model.NewStore()
	_, _ = store.Append(itemWithID("a"))

	if got := store.FindURL(" https://instagram.com/p/a "); got == nil || got.ID != "a" {
		t.Errorf("FindURL did not match stored item: %+v", got)
	}
	if got := store.FindURL("https://instagram.com/p/b"); got != nil {
		t.Errorf("expected nil for unknown URL, got %+v", got)
	}
}

func TestPatch_IsEmpty(t *testing.T) {
	if !(model.Patch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if (model.Patch{Category: stringPtr("")}).IsEmpty() {
		t.Error("patch clearing a field is not empty")
	}
	if (model.Patch{Tags: []string{}}).IsEmpty() {
		t.Error("patch replacing tags is not empty")
	}
}

func TestStore_AddCategory_Idempotent(t *testing.T) {
	store := model.NewStore()

	if !store.AddCategory("Coffee") {
		t.Error("first add should report true")
	}
	if store.AddCategory("Coffee") {
		t.Error("second add should report false")
	}
	store.AddCategory("coffee") // case-sensitive: distinct label
	store.AddCategory("")

	count := 0
	for _, c := range store.Categories {
		if c == "Coffee" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one Coffee, got %d", count)
	}
	if len(store.Categories) != 2 || store.Categories[0] != "Coffee" || store.Categories[1] != "coffee" {
		t.Errorf("unexpected categories: %v", store.Categories)
	}
}

func TestCapturedPost_Validate(t *testing.T) {
	ok := model.CapturedPost{Platform: model.PlatformInstagram, URL: "https://instagram.com/p/abc"}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	noURL := model.CapturedPost{Platform: model.PlatformInstagram}
	if err := noURL.Validate(); !model.IsValidation(err) {
		t.Errorf("expected ValidationError for missing url, got %v", err)
	}

	badPlatform := model.CapturedPost{Platform: "myspace", URL: "https://x"}
	if err := badPlatform.Validate(); !model.IsValidation(err) {
		t.Errorf("expected ValidationError for platform, got %v", err)
	}
}
