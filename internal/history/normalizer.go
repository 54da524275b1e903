package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sunflower-vision/report-export-go/pkg/models"
)

// RawRecord is the wire shape of one history entry. The backend has shipped
// two schema generations: the current one nests the image URL and upload
// metadata, the legacy one carried flat fields. Both appear in live data.
type RawRecord struct {
	ID             int             `json:"id"`
	UserID         int             `json:"user_id"`
	PredictedClass string          `json:"predicted_class"`
	Confidence     float64         `json:"confidence"`
	AllPredictions json.RawMessage `json:"all_predictions"`
	ImageInfo      *rawImageInfo   `json:"image_info"`
	Images         *rawImages      `json:"images"`

	// Legacy flat fields, oldest schema last.
	OriginalImageURL string  `json:"original_image_url"`
	ImageURL         string  `json:"image_url"`
	CloudinaryURL    string  `json:"cloudinary_url"`
	ImageFilename    string  `json:"image_filename"`
	ImageSize        string  `json:"image_size"`
	ProcessingTime   float64 `json:"processing_time"`

	CreatedAt string `json:"created_at"`
}

type rawImageInfo struct {
	Filename       string  `json:"filename"`
	Size           string  `json:"size"`
	ProcessingTime float64 `json:"processing_time"`
}

type rawImages struct {
	OriginalImageURL string `json:"original_image_url"`
}

// Normalize maps a raw history entry onto the canonical record. It is pure
// and never fails: malformed fields degrade to their most conservative
// representable value (empty prediction list, empty image ref, zero time).
func Normalize(raw RawRecord) models.AnalysisRecord {
	rec := models.AnalysisRecord{
		ID:             raw.ID,
		PredictedClass: raw.PredictedClass,
		Confidence:     raw.Confidence,
		ImageRef:       resolveImageRef(raw),
		CreatedAt:      parseCreatedAt(raw.CreatedAt),
	}

	preds, err := DecodePredictions(raw.AllPredictions)
	if err != nil {
		// Collapse decode failures to "no prediction data" at this boundary.
		preds = nil
	}
	rec.Predictions = preds

	if raw.ImageInfo != nil {
		rec.ImageInfo = models.ImageInfo{
			Filename:          raw.ImageInfo.Filename,
			Size:              raw.ImageInfo.Size,
			ProcessingTimeSec: raw.ImageInfo.ProcessingTime,
		}
	}
	if rec.ImageInfo.Filename == "" {
		rec.ImageInfo.Filename = raw.ImageFilename
	}
	if rec.ImageInfo.Size == "" {
		rec.ImageInfo.Size = raw.ImageSize
	}
	if rec.ImageInfo.ProcessingTimeSec == 0 {
		rec.ImageInfo.ProcessingTimeSec = raw.ProcessingTime
	}

	return rec
}

// resolveImageRef picks the image location: nested current-schema field
// first, then the legacy flat fields in fixed priority order.
func resolveImageRef(raw RawRecord) string {
	if raw.Images != nil && raw.Images.OriginalImageURL != "" {
		return raw.Images.OriginalImageURL
	}
	if raw.OriginalImageURL != "" {
		return raw.OriginalImageURL
	}
	if raw.ImageURL != "" {
		return raw.ImageURL
	}
	return raw.CloudinaryURL
}

// DecodePredictions decodes the all_predictions payload, which arrives
// either as a JSON object or as a JSON string containing a serialized
// object. Entry order in the source document is preserved. The error case
// stays visible here; Normalize collapses it to an empty list.
func DecodePredictions(raw json.RawMessage) ([]models.Prediction, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	// String-wrapped form: unquote, then decode the inner document.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("predictions: unquote: %w", err)
		}
		data = []byte(strings.TrimSpace(inner))
		if len(data) == 0 {
			return nil, nil
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("predictions: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("predictions: expected object, got %v", tok)
	}

	var preds []models.Prediction
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("predictions: %w", err)
		}
		label, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("predictions: non-string key %v", keyTok)
		}
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return nil, fmt.Errorf("predictions: value for %q: %w", label, err)
		}
		confidence, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("predictions: value for %q: %w", label, err)
		}
		preds = append(preds, models.Prediction{Label: label, Confidence: confidence})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("predictions: %w", err)
	}
	return preds, nil
}

// parseCreatedAt accepts the timestamp formats the backend has emitted over
// time. Unparseable input degrades to the zero time.
func parseCreatedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
