package service

import (
	"context"

	"github.com/sunflower-vision/report-export-go/internal/cdn"
	"github.com/sunflower-vision/report-export-go/internal/logger"
	"github.com/sunflower-vision/report-export-go/internal/report"
	"github.com/sunflower-vision/report-export-go/internal/storage"
	"github.com/sunflower-vision/report-export-go/internal/transcode"
	"github.com/sunflower-vision/report-export-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// previewBound caps the pixel dimensions of on-demand preview images.
const previewBound = 800

// ReportService turns canonical records into export artifacts and previews.
type ReportService interface {
	// GenerateRecordPDF builds the single-record report. Image-path failures
	// degrade the document; they never fail it.
	GenerateRecordPDF(ctx context.Context, rec models.AnalysisRecord) (*models.Artifact, error)

	// GenerateHistoryPDF builds the bulk report over the full snapshot.
	GenerateHistoryPDF(ctx context.Context, records []models.AnalysisRecord) (*models.Artifact, error)

	// GenerateHistoryCSV flattens the snapshot into CSV.
	GenerateHistoryCSV(records []models.AnalysisRecord) *models.Artifact

	// GenerateHistoryXLSX writes the snapshot into a workbook.
	GenerateHistoryXLSX(records []models.AnalysisRecord) (*models.Artifact, error)

	// PreviewImage loads one record's image at preview resolution. Unlike
	// exports, an unavailable image here is the caller's error to show.
	PreviewImage(ctx context.Context, rec models.AnalysisRecord) ([]byte, error)
}

type reportService struct {
	resolver *cdn.Resolver
	loader   storage.ImageLoader
	composer *report.PDFComposer
}

// NewReportService wires the resolver, loader and composer into the one
// pipeline every export path runs through.
func NewReportService(resolver *cdn.Resolver, loader storage.ImageLoader, composer *report.PDFComposer) ReportService {
	return &reportService{
		resolver: resolver,
		loader:   loader,
		composer: composer,
	}
}

func (s *reportService) GenerateRecordPDF(ctx context.Context, rec models.AnalysisRecord) (*models.Artifact, error) {
	img := s.loadForReport(ctx, rec)
	return s.composer.ComposeRecord(rec, img)
}

// loadForReport resolves, loads and transcodes the record image. Every
// failure on this path returns nil: the report is produced without the
// image, which is a degraded success, not an error. Records with no image
// reference skip loading entirely.
func (s *reportService) loadForReport(ctx context.Context, rec models.AnalysisRecord) *transcode.Result {
	resolved := s.resolver.Resolve(rec.ImageRef, cdn.VariantReport)
	if resolved.IsZero() {
		return nil
	}

	bitmap, err := s.loader.Load(ctx, resolved)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"record_id": rec.ID,
		}).Warn("Report image unavailable, composing without it")
		return nil
	}

	result, err := transcode.FitJPEG(bitmap, report.ImageMaxWidth, report.ImageMaxHeight)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"record_id": rec.ID,
		}).Warn("Report image transcode failed, composing without it")
		return nil
	}
	return result
}

func (s *reportService) GenerateHistoryPDF(_ context.Context, records []models.AnalysisRecord) (*models.Artifact, error) {
	return s.composer.ComposeBulk(records)
}

func (s *reportService) GenerateHistoryCSV(records []models.AnalysisRecord) *models.Artifact {
	return report.ComposeCSV(records)
}

func (s *reportService) GenerateHistoryXLSX(records []models.AnalysisRecord) (*models.Artifact, error) {
	return report.ComposeXLSX(records)
}

func (s *reportService) PreviewImage(ctx context.Context, rec models.AnalysisRecord) ([]byte, error) {
	resolved := s.resolver.Resolve(rec.ImageRef, cdn.VariantPreview)
	bitmap, err := s.loader.Load(ctx, resolved)
	if err != nil {
		return nil, err
	}
	result, err := transcode.FitJPEG(bitmap, previewBound, previewBound)
	if err != nil {
		return nil, err
	}
	return result.JPEG, nil
}
