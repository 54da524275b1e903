package report

import (
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sunflower-vision/report-export-go/pkg/models"
)

func TestComposeCSV(t *testing.T) {
	records := []models.AnalysisRecord{
		{
			ID:             1,
			PredictedClass: "Fresh Leaf",
			Confidence:     0.93,
			ImageInfo: models.ImageInfo{
				Filename:          "leaf_1.jpg",
				Size:              "1.2 MB",
				ProcessingTimeSec: 1.25,
			},
			CreatedAt: time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			// Missing optional metadata falls back to defaults.
			ID:             2,
			PredictedClass: "Downy Mildew",
			Confidence:     0.5,
		},
	}

	artifact := ComposeCSV(records)

	if artifact.Filename != "sunflower-analysis-history.csv" {
		t.Errorf("Filename = %q", artifact.Filename)
	}
	if artifact.ContentType != "text/csv; charset=utf-8" {
		t.Errorf("ContentType = %q", artifact.ContentType)
	}

	rows, err := csv.NewReader(strings.NewReader(string(artifact.Data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not parseable CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 records", len(rows))
	}
	if !reflect.DeepEqual(rows[0], CSVHeaders) {
		t.Errorf("header row = %v", rows[0])
	}

	want := []string{"1", "2025-06-14", "09:30:00", "leaf_1.jpg", "Fresh Leaf", "93.0%", "1.25s", "1.2 MB"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row 1 = %v, want %v", rows[1], want)
	}

	wantDefaults := []string{"2", "N/A", "N/A", "sunflower_analysis.jpg", "Downy Mildew", "50.0%", "0.00s", "N/A"}
	if !reflect.DeepEqual(rows[2], wantDefaults) {
		t.Errorf("row 2 = %v, want %v", rows[2], wantDefaults)
	}
}

func TestComposeCSV_QuotesUnsafeFields(t *testing.T) {
	records := []models.AnalysisRecord{{
		ID:             9,
		PredictedClass: `Leaf, "Spotted"`,
		ImageInfo:      models.ImageInfo{Filename: "a,b.jpg"},
	}}

	artifact := ComposeCSV(records)

	raw := string(artifact.Data)
	if !strings.Contains(raw, `"Leaf, ""Spotted"""`) {
		t.Errorf("unsafe class field not quoted: %q", raw)
	}
	if !strings.Contains(raw, `"a,b.jpg"`) {
		t.Errorf("unsafe filename field not quoted: %q", raw)
	}

	rows, err := csv.NewReader(strings.NewReader(raw)).ReadAll()
	if err != nil {
		t.Fatalf("quoted output is not parseable CSV: %v", err)
	}
	if got := rows[1][4]; got != `Leaf, "Spotted"` {
		t.Errorf("class round-trip = %q", got)
	}
}

func TestComposeCSV_EmptyHistory(t *testing.T) {
	artifact := ComposeCSV(nil)
	if got := string(artifact.Data); got != strings.Join(CSVHeaders, ",") {
		t.Errorf("empty export = %q, want header row only", got)
	}
}
