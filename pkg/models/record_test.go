package models

import (
	"reflect"
	"testing"
)

func TestHealthStatus(t *testing.T) {
	tests := []struct {
		name       string
		class      string
		wantStatus string
		wantHealth bool
	}{
		{"healthy class", "Fresh Leaf", "Healthy", true},
		{"disease class", "Downy Mildew", "Disease Detected", false},
		{"empty class", "", "Disease Detected", false},
		{"case sensitive", "fresh leaf", "Disease Detected", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := AnalysisRecord{PredictedClass: tt.class}
			if got := rec.HealthStatus(); got != tt.wantStatus {
				t.Errorf("HealthStatus() = %q, want %q", got, tt.wantStatus)
			}
			if got := rec.IsHealthy(); got != tt.wantHealth {
				t.Errorf("IsHealthy() = %v, want %v", got, tt.wantHealth)
			}
		})
	}
}

func TestSortedPredictions(t *testing.T) {
	rec := AnalysisRecord{
		Predictions: []Prediction{
			{Label: "Leaf Scars", Confidence: 0.10},
			{Label: "Fresh Leaf", Confidence: 0.85},
			{Label: "Gray Mold", Confidence: 0.05},
		},
	}

	got := rec.SortedPredictions()
	want := []Prediction{
		{Label: "Fresh Leaf", Confidence: 0.85},
		{Label: "Leaf Scars", Confidence: 0.10},
		{Label: "Gray Mold", Confidence: 0.05},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedPredictions() = %v, want %v", got, want)
	}

	// The stored order must be untouched.
	if rec.Predictions[0].Label != "Leaf Scars" {
		t.Error("sorting mutated the stored prediction order")
	}
}

func TestResolvedImageURL_IsZero(t *testing.T) {
	if !(ResolvedImageURL{}).IsZero() {
		t.Error("zero value not reported as zero")
	}
	if (ResolvedImageURL{Primary: "https://example.com/a.jpg"}).IsZero() {
		t.Error("resolved URL reported as zero")
	}
}
