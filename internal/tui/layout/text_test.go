package layout

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no ANSI", "hello", "hello"},
		{"bold", "\x1b[1mhello\x1b[0m", "hello"},
		{"mixed", "normal \x1b[1;4mbold underline\x1b[0m normal", "normal bold underline normal"},
		{"only ANSI", "\x1b[1m\x1b[0m", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSI(tt.input); got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestVisibleLength(t *testing.T) {
	if got := VisibleLength("\x1b[1mcafé\x1b[0m"); got != 4 {
		t.Errorf("VisibleLength = %d, want 4", got)
	}
}

func TestTruncateText(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name      string
		text      string
		maxWidth  int
		want      string
		truncated bool
	}{
		{"no truncation needed", "Taqueria", 10, "Taqueria", false},
		{"exact length", "Taqueria", 8, "Taqueria", false},
		{"needs truncation", "Taqueria del Sol", 8, "Taque...", true},
		{"very short max", "Taqueria", 3, "...", true},
		{"max is 1", "Taqueria", 1, ".", true},
		{"max is 0", "Taqueria", 0, "", true},
		{"unicode text", "こんにちは", 4, "こ...", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateText(tt.text, tt.maxWidth, cfg)
			if got != tt.want || truncated != tt.truncated {
				t.Errorf("TruncateText(%q, %d) = (%q, %v), want (%q, %v)",
					tt.text, tt.maxWidth, got, truncated, tt.want, tt.truncated)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	cfg := DefaultConfig().Text

	if got := Excerpt("Great  tacos\nhere", 50, cfg); got != "Great tacos here" {
		t.Errorf("Excerpt flattened = %q", got)
	}
	if got := Excerpt("abcdef", 3, cfg); got != "abc..." {
		t.Errorf("Excerpt cut = %q", got)
	}
}
