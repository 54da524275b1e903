package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sunflower-vision/report-export-go/pkg/models"
)

// CSVHeaders is the fixed 8-column export schema, in order.
var CSVHeaders = []string{
	"ID", "Date", "Time", "Filename", "Predicted Class",
	"Confidence", "Processing Time", "Image Size",
}

// ComposeCSV flattens the record set into comma-delimited UTF-8 text, one
// row per record in input order. String assembly cannot fail, so this never
// returns an error.
func ComposeCSV(records []models.AnalysisRecord) *models.Artifact {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(CSVHeaders, ","))

	for _, rec := range records {
		date, clock := formatTimestamp(rec.CreatedAt)
		row := []string{
			strconv.Itoa(rec.ID),
			date,
			clock,
			filenameOrDefault(rec),
			rec.PredictedClass,
			formatConfidence(rec.Confidence),
			fmt.Sprintf("%.2fs", rec.ImageInfo.ProcessingTimeSec),
			sizeOrDefault(rec),
		}
		for i, field := range row {
			row[i] = quoteIfNeeded(field)
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return &models.Artifact{
		Filename:    "sunflower-analysis-history.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte(strings.Join(lines, "\n")),
	}
}

// quoteIfNeeded quotes a field only when its content would break the
// comma-delimited framing.
func quoteIfNeeded(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
