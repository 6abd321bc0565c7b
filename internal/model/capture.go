package model

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultNamePlaceholder names saves whose content is empty.
	DefaultNamePlaceholder = "Saved Post"
	// maxDefaultNameRunes caps the derived name before the ellipsis.
	maxDefaultNameRunes = 50
	// MaxCapturedImages is the number of image URLs kept per capture.
	MaxCapturedImages = 3
)

// CapturedPost holds the raw fields scraped from a post plus what the
// user typed into the save form.
type CapturedPost struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	Author   string   `json:"author"`
	Content  string   `json:"content"`
	Images   []string `json:"images"`
	Tags     []string `json:"tags,omitempty"`

	// User-entered
	Name      string `json:"event_name,omitempty"`
	Category  string `json:"category,omitempty"`
	EventDate string `json:"event_date,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Validate checks the fields required before a save can be attempted.
func (p CapturedPost) Validate() error {
	if _, err := ParsePlatform(string(p.Platform)); err != nil {
		return err
	}
	if strings.TrimSpace(p.URL) == "" {
		return &ValidationError{Field: "url", Msg: "post URL is required"}
	}
	return nil
}

// DefaultName derives a display name from the first sentence of content.
func DefaultName(content string) string {
	if content == "" {
		return DefaultNamePlaceholder
	}
	sentence := content
	if idx := strings.IndexAny(content, ".!?"); idx >= 0 {
		sentence = content[:idx]
	}
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return DefaultNamePlaceholder
	}
	if utf8.RuneCountInString(sentence) <= maxDefaultNameRunes {
		return sentence
	}
	runes := []rune(sentence)
	return string(runes[:maxDefaultNameRunes]) + "..."
}

var hashtagRegex = regexp.MustCompile(`#(\w+)`)

// Hashtags returns the #tags found in text, without the leading '#'.
func Hashtags(text string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}
