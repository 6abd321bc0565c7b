package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/spots/internal/model"
)

// Format selects the export encoding.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", &model.ValidationError{Field: "format", Msg: fmt.Sprintf("unknown export format %q", s)}
}

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/spots-export-YYYY-MM-DD.<ext>
func DefaultExportPath(format Format, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("spots-export-%s.%s", now.Format("2006-01-02"), format)
	return filepath.Join(home, "Downloads", filename), nil
}

// Document is the JSON and YAML export layout.
type Document struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Categories []string  `json:"categories" yaml:"categories"`
	Items      []Entry   `json:"items" yaml:"items"`
}

// Entry is one exported item.
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	Platform  string    `json:"platform" yaml:"platform"`
	URL       string    `json:"url" yaml:"url"`
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Address   string    `json:"address,omitempty" yaml:"address,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	EventDate string    `json:"event_date,omitempty" yaml:"event_date,omitempty"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	SavedAt   time.Time `json:"saved_at" yaml:"saved_at"`
}

// NewDocument builds the export document for items.
func NewDocument(items []model.SavedItem, now time.Time) Document {
	_, categories := groupByCategory(items)
	doc := Document{
		ExportedAt: now.UTC(),
		Categories: categories,
		Items:      make([]Entry, 0, len(items)),
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	for _, item := range items {
		e := Entry{
			ID:       item.ID,
			Platform: string(item.Platform),
			URL:      item.URL,
			Author:   item.Author,
			Name:     item.DisplayName(),
			Category: item.CategoryName(),
			Tags:     item.Tags,
			SavedAt:  item.SavedAt.UTC(),
		}
		if item.Address != nil {
			e.Address = *item.Address
		}
		if item.EventDate != nil {
			e.EventDate = *item.EventDate
		}
		if item.HasCoordinates() {
			e.Latitude, e.Longitude = item.Latitude, item.Longitude
		}
		doc.Items = append(doc.Items, e)
	}
	return doc
}

// Export writes items to w in the given format.
func Export(w io.Writer, format Format, items []model.SavedItem, now time.Time) error {
	switch format {
	case FormatHTML:
		_, err := io.WriteString(w, ExportHTML(items))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(items, now))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(items, now)); err != nil {
			return err
		}
		return enc.Close()
	}
	return &model.ValidationError{Field: "format", Msg: fmt.Sprintf("unknown export format %q", format)}
}
