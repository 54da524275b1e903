package export

import (
	"context"

	"github.com/sunflower-vision/report-export-go/internal/service"
	"github.com/sunflower-vision/report-export-go/pkg/models"
)

// BulkStrategy generates one whole-set export format. All bulk formats share
// the singleton bulk lane; the orchestrator dispatches by name.
type BulkStrategy interface {
	Generate(ctx context.Context, records []models.AnalysisRecord) (*models.Artifact, error)
	Name() string
}

// bulkPDFStrategy produces the complete-history report document.
type bulkPDFStrategy struct {
	svc service.ReportService
}

func (s *bulkPDFStrategy) Generate(ctx context.Context, records []models.AnalysisRecord) (*models.Artifact, error) {
	return s.svc.GenerateHistoryPDF(ctx, records)
}

func (s *bulkPDFStrategy) Name() string { return "pdf" }

// csvStrategy produces the flattened comma-delimited export.
type csvStrategy struct {
	svc service.ReportService
}

func (s *csvStrategy) Generate(_ context.Context, records []models.AnalysisRecord) (*models.Artifact, error) {
	return s.svc.GenerateHistoryCSV(records), nil
}

func (s *csvStrategy) Name() string { return "csv" }

// xlsxStrategy produces the workbook export.
type xlsxStrategy struct {
	svc service.ReportService
}

func (s *xlsxStrategy) Generate(_ context.Context, records []models.AnalysisRecord) (*models.Artifact, error) {
	return s.svc.GenerateHistoryXLSX(records)
}

func (s *xlsxStrategy) Name() string { return "xlsx" }

// bulkStrategies indexes the built-in formats for an orchestrator.
func bulkStrategies(svc service.ReportService) map[string]BulkStrategy {
	strategies := map[string]BulkStrategy{}
	for _, s := range []BulkStrategy{
		&bulkPDFStrategy{svc: svc},
		&csvStrategy{svc: svc},
		&xlsxStrategy{svc: svc},
	} {
		strategies[s.Name()] = s
	}
	return strategies
}
