package model

import (
	"strings"
	"time"
)

// Platform identifies the social network a post was captured from.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Platforms lists every supported platform.
var Platforms = []Platform{PlatformInstagram, PlatformTikTok}

// ParsePlatform converts a raw platform tag into a Platform.
func ParsePlatform(s string) (Platform, error) {
	tag := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range Platforms {
		if p == tag {
			return p, nil
		}
	}
	return "", &ValidationError{Field: "platform", Msg: "unsupported platform " + `"` + s + `"`}
}

// SavedItem is a captured post reference with optional enrichment.
type SavedItem struct {
	ID       string   `json:"id"`
	RemoteID string   `json:"remote_id,omitempty"` // backend id when the save was synced
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	Author   string   `json:"author"`
	Content  string   `json:"content"`
	Images   []string `json:"images"`

	EventName       *string  `json:"event_name"`
	VenueName       *string  `json:"venue_name"`
	Address         *string  `json:"address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	EventDate       *string  `json:"event_date"`
	StartTime       *string  `json:"start_time"`
	EndTime         *string  `json:"end_time"`
	EventType       *string  `json:"event_type"`
	Category        *string  `json:"category"`
	Tags            []string `json:"tags"`
	Description     *string  `json:"description"`
	AIProcessed     bool     `json:"ai_processed"`
	ConfidenceScore *float64 `json:"confidence_score"`

	SavedAt time.Time `json:"saved_at"`
}

// HasCoordinates reports whether the item can be placed on a map.
func (i SavedItem) HasCoordinates() bool {
	return i.Latitude != nil && i.Longitude != nil && *i.Latitude != 0 && *i.Longitude != 0
}

// CategoryName returns the category label, or "" when uncategorized.
func (i SavedItem) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return *i.Category
}

// DisplayName returns the venue name, the event name, or a placeholder.
func (i SavedItem) DisplayName() string {
	if s := deref(i.VenueName); s != "" {
		return s
	}
	if s := deref(i.EventName); s != "" {
		return s
	}
	return "Saved Item"
}

// eventDateLayouts are the accepted shapes of EventDate.
var eventDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// EventTime parses EventDate. ok is false when the date is absent or malformed.
func (i SavedItem) EventTime() (t time.Time, ok bool) {
	raw := strings.TrimSpace(deref(i.EventDate))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range eventDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// SortTime is the event date when present, else the save time.
func (i SavedItem) SortTime() time.Time {
	if t, ok := i.EventTime(); ok {
		return t
	}
	return i.SavedAt
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for empty strings, else a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
