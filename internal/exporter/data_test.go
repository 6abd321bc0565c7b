package exporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/spots/internal/model"
)

var exportTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func sampleItems() []model.SavedItem {
	lat, lng := 40.7, -74.0
	located := saved("a", "Blue Bottle", "Coffee")
	located.Latitude, located.Longitude = &lat, &lng
	located.Address = model.StringPtr("1 Main St")

	zero := 0.0
	unlocated := saved("b", "Bodega", "")
	unlocated.Latitude, unlocated.Longitude = &zero, &zero

	return []model.SavedItem{located, unlocated}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"html", FormatHTML, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.wantErr && !model.IsValidation(err) {
			t.Errorf("expected a validation error, got %v", err)
		}
	}
}

func TestDefaultExportPath(t *testing.T) {
	path, err := DefaultExportPath(FormatYAML, exportTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "spots-export-2025-06-01.yaml") {
		t.Errorf("unexpected path %q", path)
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(sampleItems(), exportTime)

	if len(doc.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(doc.Items))
	}
	if len(doc.Categories) != 1 || doc.Categories[0] != "Coffee" {
		t.Errorf("expected categories [Coffee], got %v", doc.Categories)
	}
	if doc.Items[0].Latitude == nil || *doc.Items[0].Latitude != 40.7 {
		t.Errorf("expected coordinates on the located item")
	}
	// Zero coordinates are not a location
	if doc.Items[1].Latitude != nil {
		t.Errorf("expected no coordinates on the unlocated item")
	}
}

func TestExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatJSON, sampleItems(), exportTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Items[0].Name != "Blue Bottle" || doc.Items[0].Address != "1 Main St" {
		t.Errorf("unexpected first item %+v", doc.Items[0])
	}
	if !doc.ExportedAt.Equal(exportTime) {
		t.Errorf("expected exported_at %v, got %v", exportTime, doc.ExportedAt)
	}
}

func TestExport_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatYAML, sampleItems(), exportTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "- Coffee") {
		t.Errorf("expected category list in:\n%s", out)
	}
	if !strings.Contains(out, "name: Blue Bottle") {
		t.Errorf("expected item name in:\n%s", out)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(doc.Items) != 2 || doc.Items[1].URL != "https://www.instagram.com/p/b/" {
		t.Errorf("unexpected items %+v", doc.Items)
	}
}

func TestExport_HTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatHTML, sampleItems(), exportTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "<H3>Coffee</H3>") {
		t.Error("expected HTML export")
	}
}
