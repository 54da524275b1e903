package history

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalize_ImageRefPriority(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawRecord
		expected string
	}{
		{
			name: "Nested current-schema field wins",
			raw: RawRecord{
				Images:           &rawImages{OriginalImageURL: "https://cdn.example.com/nested.jpg"},
				OriginalImageURL: "https://cdn.example.com/legacy-a.jpg",
				ImageURL:         "https://cdn.example.com/legacy-b.jpg",
				CloudinaryURL:    "https://cdn.example.com/legacy-c.jpg",
			},
			expected: "https://cdn.example.com/nested.jpg",
		},
		{
			name: "First legacy field when nested absent",
			raw: RawRecord{
				OriginalImageURL: "https://cdn.example.com/legacy-a.jpg",
				ImageURL:         "https://cdn.example.com/legacy-b.jpg",
			},
			expected: "https://cdn.example.com/legacy-a.jpg",
		},
		{
			name: "Second legacy field when first absent",
			raw: RawRecord{
				ImageURL:      "https://cdn.example.com/legacy-b.jpg",
				CloudinaryURL: "https://cdn.example.com/legacy-c.jpg",
			},
			expected: "https://cdn.example.com/legacy-b.jpg",
		},
		{
			name:     "Third legacy field as last resort",
			raw:      RawRecord{CloudinaryURL: "https://cdn.example.com/legacy-c.jpg"},
			expected: "https://cdn.example.com/legacy-c.jpg",
		},
		{
			name:     "No image reference anywhere",
			raw:      RawRecord{ID: 7},
			expected: "",
		},
		{
			name: "Empty nested field falls through",
			raw: RawRecord{
				Images:   &rawImages{},
				ImageURL: "https://cdn.example.com/legacy-b.jpg",
			},
			expected: "https://cdn.example.com/legacy-b.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(tt.raw)
			if rec.ImageRef != tt.expected {
				t.Errorf("ImageRef = %q, want %q", rec.ImageRef, tt.expected)
			}
		})
	}
}

func TestDecodePredictions_ObjectForm(t *testing.T) {
	raw := json.RawMessage(`{"Fresh Leaf":0.93,"Downy Mildew":0.05,"Leaf Scars":0.02}`)

	preds, err := DecodePredictions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(preds))
	}

	// Document order must survive the decode.
	wantOrder := []string{"Fresh Leaf", "Downy Mildew", "Leaf Scars"}
	for i, label := range wantOrder {
		if preds[i].Label != label {
			t.Errorf("preds[%d].Label = %q, want %q", i, preds[i].Label, label)
		}
	}
	if preds[0].Confidence != 0.93 {
		t.Errorf("preds[0].Confidence = %v, want 0.93", preds[0].Confidence)
	}
}

func TestDecodePredictions_StringForm(t *testing.T) {
	raw := json.RawMessage(`"{\"Gray Mold\":0.61,\"Fresh Leaf\":0.39}"`)

	preds, err := DecodePredictions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
	if preds[0].Label != "Gray Mold" || preds[1].Label != "Fresh Leaf" {
		t.Errorf("unexpected order: %q, %q", preds[0].Label, preds[1].Label)
	}
}

func TestDecodePredictions_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Truncated object", `{"Fresh Leaf":0.9`},
		{"String wrapping garbage", `"not an object"`},
		{"Array instead of object", `[0.9, 0.1]`},
		{"Non-numeric value", `{"Fresh Leaf":"high"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePredictions(json.RawMessage(tt.raw)); err == nil {
				t.Error("expected decode error, got nil")
			}
		})
	}
}

func TestDecodePredictions_Empty(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		preds, err := DecodePredictions(json.RawMessage(raw))
		if err != nil {
			t.Errorf("raw %q: unexpected error: %v", raw, err)
		}
		if len(preds) != 0 {
			t.Errorf("raw %q: expected no predictions, got %d", raw, len(preds))
		}
	}
}

func TestNormalize_MalformedPredictionsDegradeToEmpty(t *testing.T) {
	raw := RawRecord{
		ID:             3,
		AllPredictions: json.RawMessage(`"{broken json"`),
	}

	rec := Normalize(raw)
	if len(rec.Predictions) != 0 {
		t.Errorf("expected empty predictions, got %d entries", len(rec.Predictions))
	}
}

func TestNormalize_ImageInfoFallbacks(t *testing.T) {
	tests := []struct {
		name         string
		raw          RawRecord
		wantFilename string
		wantSize     string
		wantSeconds  float64
	}{
		{
			name: "Nested info preferred",
			raw: RawRecord{
				ImageInfo:      &rawImageInfo{Filename: "leaf.jpg", Size: "1.2 MB", ProcessingTime: 1.5},
				ImageFilename:  "old.jpg",
				ImageSize:      "9 MB",
				ProcessingTime: 9.9,
			},
			wantFilename: "leaf.jpg",
			wantSize:     "1.2 MB",
			wantSeconds:  1.5,
		},
		{
			name: "Legacy flat fields fill gaps",
			raw: RawRecord{
				ImageFilename:  "old.jpg",
				ImageSize:      "2 MB",
				ProcessingTime: 0.75,
			},
			wantFilename: "old.jpg",
			wantSize:     "2 MB",
			wantSeconds:  0.75,
		},
		{
			name:         "Nothing present degrades to zero values",
			raw:          RawRecord{},
			wantFilename: "",
			wantSize:     "",
			wantSeconds:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(tt.raw)
			if rec.ImageInfo.Filename != tt.wantFilename {
				t.Errorf("Filename = %q, want %q", rec.ImageInfo.Filename, tt.wantFilename)
			}
			if rec.ImageInfo.Size != tt.wantSize {
				t.Errorf("Size = %q, want %q", rec.ImageInfo.Size, tt.wantSize)
			}
			if rec.ImageInfo.ProcessingTimeSec != tt.wantSeconds {
				t.Errorf("ProcessingTimeSec = %v, want %v", rec.ImageInfo.ProcessingTimeSec, tt.wantSeconds)
			}
		})
	}
}

func TestNormalize_CreatedAtFormats(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantZero bool
	}{
		{"RFC3339", "2025-06-15T10:30:00Z", false},
		{"Backend isoformat without zone", "2025-06-15T10:30:00.123456", false},
		{"Space-separated", "2025-06-15 10:30:00", false},
		{"Empty", "", true},
		{"Garbage", "yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(RawRecord{CreatedAt: tt.input})
			if rec.CreatedAt.IsZero() != tt.wantZero {
				t.Errorf("CreatedAt.IsZero() = %v, want %v", rec.CreatedAt.IsZero(), tt.wantZero)
			}
			if !tt.wantZero {
				want := time.Date(2025, 6, 15, 10, 30, 0, rec.CreatedAt.Nanosecond(), rec.CreatedAt.Location())
				if !rec.CreatedAt.Equal(want) {
					t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, want)
				}
			}
		})
	}
}
