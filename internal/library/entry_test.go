package library

import (
	"errors"
	"testing"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"bare id padded", "  dQw4w9WgXcQ ", "dQw4w9WgXcQ", false},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short url with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"too short", "dQw4w9WgXc", "", true},
		{"too long", "dQw4w9WgXcQQ", "", true},
		{"illegal chars", "dQw4w9WgX$Q", "", true},
		{"empty", "", "", true},
		{"unrelated url", "https://example.com/video/12345", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractID(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractID(%q) = %q, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractID(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractID_AllShapesAgree(t *testing.T) {
	shapes := []string{
		"dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
	}
	for _, raw := range shapes {
		got, err := ExtractID(raw)
		if err != nil {
			t.Fatalf("ExtractID(%q): %v", raw, err)
		}
		if got != "dQw4w9WgXcQ" {
			t.Errorf("ExtractID(%q) = %q, want dQw4w9WgXcQ", raw, got)
		}
	}
}

func TestVideoEntryValidate(t *testing.T) {
	valid := VideoEntry{ID: "dQw4w9WgXcQ", Title: "A Song"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	if err := (VideoEntry{ID: "short", Title: "A Song"}).Validate(); !errors.Is(err, ErrInvalidID) {
		t.Errorf("bad id: got %v, want ErrInvalidID", err)
	}
	if err := (VideoEntry{ID: "dQw4w9WgXcQ", Title: "   "}).Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("blank title: got %v, want ErrEmptyTitle", err)
	}
}

func TestDefaultLibraryIsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range Default() {
		if err := e.Validate(); err != nil {
			t.Errorf("default entry %q invalid: %v", e.Title, err)
		}
		if seen[e.ID] {
			t.Errorf("duplicate default id %q", e.ID)
		}
		seen[e.ID] = true
	}
}
