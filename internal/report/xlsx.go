package report

import (
	"fmt"
	"strconv"

	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/pkg/models"

	"github.com/xuri/excelize/v2"
)

// ComposeXLSX writes the record set into a single-sheet workbook with the
// same columns as the CSV export.
func ComposeXLSX(records []models.AnalysisRecord) (*models.Artifact, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Analysis History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, apperrors.NewAssemblyError("workbook sheet creation failed", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range CSVHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range records {
		date, clock := formatTimestamp(rec.CreatedAt)

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, strconv.Itoa(rec.ID))
		write(2, date)
		write(3, clock)
		write(4, filenameOrDefault(rec))
		write(5, rec.PredictedClass)
		write(6, formatConfidence(rec.Confidence))
		write(7, fmt.Sprintf("%.2fs", rec.ImageInfo.ProcessingTimeSec))
		write(8, sizeOrDefault(rec))
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.NewAssemblyError("workbook serialization failed", err)
	}

	return &models.Artifact{
		Filename:    "sunflower-analysis-history.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}
