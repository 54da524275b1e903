package report

import (
	"bytes"
	"fmt"
	"time"

	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/internal/transcode"
	"github.com/sunflower-vision/report-export-go/pkg/models"

	"github.com/jung-kurt/gofpdf"
)

// Layout bounds for the embedded record image, in page units (mm).
const (
	ImageMaxWidth  = 80
	ImageMaxHeight = 80
)

// bulkPageBreak is the vertical offset past which the bulk report starts a
// new page.
const bulkPageBreak = 250.0

// PDFComposer assembles the single-record and bulk history reports. Both
// documents share the same page setup and text helpers.
type PDFComposer struct {
	// Compress toggles PDF stream compression. Tests turn it off so content
	// streams stay inspectable.
	Compress bool

	// Now supplies the generation timestamp for the bulk cover page.
	Now func() time.Time
}

// NewPDFComposer creates a composer with production defaults.
func NewPDFComposer() *PDFComposer {
	return &PDFComposer{
		Compress: true,
		Now:      time.Now,
	}
}

func (c *PDFComposer) newPage() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(c.Compress)
	pdf.AddPage()
	return pdf
}

// ComposeRecord builds the single-record report: image on the left when one
// was transcoded, metadata and the full prediction listing on the right. A
// nil image is a degraded but successful outcome; only assembly failures
// return an error.
func (c *PDFComposer) ComposeRecord(rec models.AnalysisRecord, img *transcode.Result) (*models.Artifact, error) {
	pdf := c.newPage()

	pdf.SetFont("Helvetica", "", 20)
	pdf.Text(20, 30, "Sunflower Disease Analysis Report")

	date, clock := formatTimestamp(rec.CreatedAt)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 50, fmt.Sprintf("Analysis ID: #%d", rec.ID))
	pdf.Text(20, 65, fmt.Sprintf("Date: %s %s", date, clock))
	pdf.Text(20, 80, "Image: "+filenameOrDefault(rec))

	if img != nil {
		name := fmt.Sprintf("record-%d", rec.ID)
		opts := gofpdf.ImageOptions{ImageType: "JPEG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.JPEG))
		pdf.ImageOptions(name, 20, 100, img.Width, img.Height, false, opts, 0, "")
	} else {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(20, 120, "Image could not be loaded")
		pdf.Text(20, 135, "for PDF generation")
	}

	const rightColumnX = 120.0
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(rightColumnX, 100, "Analysis Results")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(rightColumnX, 120, "Health Status: "+rec.HealthStatus())
	pdf.Text(rightColumnX, 135, "Predicted Class: "+rec.PredictedClass)
	pdf.Text(rightColumnX, 150, "Confidence: "+formatConfidence(rec.Confidence))
	pdf.Text(rightColumnX, 165, fmt.Sprintf("Processing Time: %.2fs", rec.ImageInfo.ProcessingTimeSec))
	pdf.Text(rightColumnX, 180, "Image Size: "+sizeOrDefault(rec))

	if len(rec.Predictions) > 0 {
		pdf.SetFont("Helvetica", "", 14)
		pdf.Text(rightColumnX, 200, "All Predictions:")

		pdf.SetFont("Helvetica", "", 10)
		y := 215.0
		for _, p := range rec.Predictions {
			pdf.Text(rightColumnX, y, fmt.Sprintf("%s: %s", p.Label, formatConfidence(p.Confidence)))
			y += 12
		}
	}

	data, err := output(pdf)
	if err != nil {
		return nil, apperrors.NewAssemblyError("single-record report assembly failed", err)
	}
	return &models.Artifact{
		Filename:    fmt.Sprintf("sunflower-analysis-%d.pdf", rec.ID),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// ComposeBulk builds the complete-history report: a cover block followed by
// one compact summary block per record, in input order, paginating when the
// running offset passes the page threshold. Images are never embedded here
// so generation stays bounded for large histories.
func (c *PDFComposer) ComposeBulk(records []models.AnalysisRecord) (*models.Artifact, error) {
	pdf := c.newPage()

	pdf.SetFont("Helvetica", "", 24)
	pdf.Text(20, 30, "Sunflower Disease Analysis")
	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(20, 50, "Complete History Report")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 70, "Generated on: "+c.Now().Format("2006-01-02 15:04:05"))
	pdf.Text(20, 85, fmt.Sprintf("Total Analyses: %d", len(records)))

	y := 110.0
	for _, rec := range records {
		if y > bulkPageBreak {
			pdf.AddPage()
			y = 30
		}

		date, clock := formatTimestamp(rec.CreatedAt)

		pdf.SetFont("Helvetica", "", 14)
		pdf.Text(20, y, fmt.Sprintf("Analysis #%d", rec.ID))
		y += 15

		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(25, y, fmt.Sprintf("Date: %s %s", date, clock))
		pdf.Text(25, y+12, "Status: "+rec.HealthStatus())
		pdf.Text(25, y+24, "Confidence: "+formatConfidence(rec.Confidence))
		pdf.Text(25, y+36, "Class: "+rec.PredictedClass)

		y += 55
	}

	data, err := output(pdf)
	if err != nil {
		return nil, apperrors.NewAssemblyError("bulk report assembly failed", err)
	}
	return &models.Artifact{
		Filename:    "sunflower-analysis-complete-history.pdf",
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
