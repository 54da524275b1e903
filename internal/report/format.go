package report

import (
	"fmt"
	"time"

	"github.com/sunflower-vision/report-export-go/pkg/models"
)

// Fallback values for fields that may be missing in either schema version.
const (
	defaultFilename = "sunflower_analysis.jpg"
	defaultSize     = "N/A"
)

// formatTimestamp splits a record timestamp into its date and time strings.
func formatTimestamp(t time.Time) (date, clock string) {
	if t.IsZero() {
		return "N/A", "N/A"
	}
	return t.Format("2006-01-02"), t.Format("15:04:05")
}

// formatConfidence renders a [0,1] confidence as a percentage with one
// decimal place.
func formatConfidence(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}

func filenameOrDefault(rec models.AnalysisRecord) string {
	if rec.ImageInfo.Filename != "" {
		return rec.ImageInfo.Filename
	}
	return defaultFilename
}

func sizeOrDefault(rec models.AnalysisRecord) string {
	if rec.ImageInfo.Size != "" {
		return rec.ImageInfo.Size
	}
	return defaultSize
}
