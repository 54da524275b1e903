package service

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/sunflower-vision/report-export-go/internal/cdn"
	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/internal/report"
	"github.com/sunflower-vision/report-export-go/pkg/models"
)

// stubLoader records every load request and serves a canned bitmap or error.
type stubLoader struct {
	calls  []models.ResolvedImageURL
	bitmap image.Image
	err    error
}

func (s *stubLoader) Load(_ context.Context, resolved models.ResolvedImageURL) (image.Image, error) {
	s.calls = append(s.calls, resolved)
	if s.err != nil {
		return nil, s.err
	}
	return s.bitmap, nil
}

func newTestService(loader *stubLoader) ReportService {
	composer := report.NewPDFComposer()
	composer.Compress = false
	return NewReportService(cdn.NewResolver("res.cloudinary.com"), loader, composer)
}

func healthyRecord() models.AnalysisRecord {
	return models.AnalysisRecord{
		ID:             42,
		PredictedClass: "Fresh Leaf",
		Confidence:     0.93,
		Predictions: []models.Prediction{
			{Label: "Fresh Leaf", Confidence: 0.93},
			{Label: "Downy Mildew", Confidence: 0.07},
		},
		CreatedAt: time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestGenerateRecordPDF_NoImageReferenceSkipsLoading(t *testing.T) {
	loader := &stubLoader{}
	svc := newTestService(loader)

	artifact, err := svc.GenerateRecordPDF(context.Background(), healthyRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loader.calls) != 0 {
		t.Errorf("loader called %d times for a record without an image reference", len(loader.calls))
	}

	content := string(artifact.Data)
	for _, want := range []string{
		"Health Status: Healthy",
		"Image could not be loaded",
		"Fresh Leaf: 93.0%",
		"Downy Mildew: 7.0%",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestGenerateRecordPDF_LoadFailureDegrades(t *testing.T) {
	loader := &stubLoader{err: apperrors.NewImageUnavailableError("fetch failed", nil)}
	svc := newTestService(loader)

	rec := healthyRecord()
	rec.ImageRef = "https://res.cloudinary.com/demo/image/upload/v1/leaf.jpg"

	artifact, err := svc.GenerateRecordPDF(context.Background(), rec)
	if err != nil {
		t.Fatalf("image failure must not fail the report, got %v", err)
	}
	if len(loader.calls) != 1 {
		t.Fatalf("loader called %d times, want 1", len(loader.calls))
	}
	if !strings.Contains(string(artifact.Data), "Image could not be loaded") {
		t.Error("degraded document missing placeholder notice")
	}
}

func TestGenerateRecordPDF_EmbedsLoadedImage(t *testing.T) {
	loader := &stubLoader{bitmap: image.NewRGBA(image.Rect(0, 0, 160, 120))}
	svc := newTestService(loader)

	rec := healthyRecord()
	rec.ImageRef = "https://res.cloudinary.com/demo/image/upload/v1/leaf.jpg"

	artifact, err := svc.GenerateRecordPDF(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved := loader.calls[0]
	if !strings.Contains(resolved.Primary, "q_auto,f_auto") {
		t.Errorf("report load did not request the report variant: %q", resolved.Primary)
	}
	if strings.Contains(string(artifact.Data), "Image could not be loaded") {
		t.Error("placeholder notice present despite loaded image")
	}
}

func TestPreviewImage(t *testing.T) {
	t.Run("propagates load failure", func(t *testing.T) {
		loader := &stubLoader{err: apperrors.NewImageUnavailableError("fetch failed", nil)}
		svc := newTestService(loader)

		rec := healthyRecord()
		rec.ImageRef = "https://res.cloudinary.com/demo/image/upload/v1/leaf.jpg"

		if _, err := svc.PreviewImage(context.Background(), rec); !apperrors.IsType(err, apperrors.ErrorTypeImageUnavailable) {
			t.Errorf("got %v, want image_unavailable", err)
		}
	})

	t.Run("returns preview jpeg", func(t *testing.T) {
		loader := &stubLoader{bitmap: image.NewRGBA(image.Rect(0, 0, 1600, 1200))}
		svc := newTestService(loader)

		rec := healthyRecord()
		rec.ImageRef = "https://res.cloudinary.com/demo/image/upload/v1/leaf.jpg"

		data, err := svc.PreviewImage(context.Background(), rec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
			t.Error("preview is not a JPEG stream")
		}
		if !strings.Contains(loader.calls[0].Primary, "w_800") {
			t.Errorf("preview load did not request the preview variant: %q", loader.calls[0].Primary)
		}
	})
}
