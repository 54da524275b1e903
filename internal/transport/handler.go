package transport

import (
	"net/http"
	"strconv"

	"github.com/sunflower-vision/report-export-go/internal/cdn"
	"github.com/sunflower-vision/report-export-go/internal/config"
	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/internal/export"
	"github.com/sunflower-vision/report-export-go/internal/history"
	"github.com/sunflower-vision/report-export-go/internal/logger"
	"github.com/sunflower-vision/report-export-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type jobResponse struct {
	JobID string `json:"job_id"`
	Lane  string `json:"lane"`
}

// NewHandler builds the HTTP surface over the history client and the export
// orchestrator. These routes are the service's equivalent of the UI actions:
// list history, export one record, export the whole set, preview an image.
func NewHandler(fetcher history.Fetcher, orchestrator *export.Orchestrator, resolver *cdn.Resolver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(requestSizeLimiter(cfg.MaxRequestBodySize))

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.GET("/history", listHistory(fetcher, resolver))
	api.GET("/history/:id", getRecord(fetcher))
	api.GET("/history/:id/preview", previewImage(fetcher, orchestrator))
	api.POST("/history/:id/export/pdf", exportRecord(fetcher, orchestrator))
	api.POST("/history/export/:format", exportHistory(fetcher, orchestrator))

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// historyEntry is one list item: the record plus its card thumbnail URLs.
type historyEntry struct {
	models.AnalysisRecord
	ThumbnailURL         string `json:"thumbnail_url,omitempty"`
	ThumbnailFallbackURL string `json:"thumbnail_fallback_url,omitempty"`
}

func listHistory(fetcher history.Fetcher, resolver *cdn.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := fetcher.FetchHistory(c.Request.Context())
		if err != nil {
			logger.WithError(err).Error("History fetch failed")
			respondError(c, err)
			return
		}

		entries := make([]historyEntry, 0, len(records))
		for _, rec := range records {
			thumb := resolver.Resolve(rec.ImageRef, cdn.VariantThumbnail)
			entries = append(entries, historyEntry{
				AnalysisRecord:       rec,
				ThumbnailURL:         thumb.Primary,
				ThumbnailFallbackURL: thumb.Fallback,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"count":   len(entries),
			"history": entries,
		})
	}
}

// getRecord returns one record in its detail representation, with the
// prediction list ranked by confidence. Card summaries keep stored order;
// the detail view does not.
func getRecord(fetcher history.Fetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := lookupRecord(c, fetcher)
		if !ok {
			return
		}
		detail := rec
		detail.Predictions = rec.SortedPredictions()
		c.JSON(http.StatusOK, detail)
	}
}

func previewImage(fetcher history.Fetcher, orchestrator *export.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := lookupRecord(c, fetcher)
		if !ok {
			return
		}
		data, err := orchestrator.PreviewImage(c.Request.Context(), rec)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"record_id": rec.ID,
			}).Warn("Preview unavailable")
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/jpeg", data)
	}
}

func exportRecord(fetcher history.Fetcher, orchestrator *export.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := lookupRecord(c, fetcher)
		if !ok {
			return
		}
		job, err := orchestrator.ExportRecord(c.Request.Context(), rec)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, jobResponse{JobID: job.ID, Lane: string(job.Lane)})
	}
}

func exportHistory(fetcher history.Fetcher, orchestrator *export.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := fetcher.FetchHistory(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		job, err := orchestrator.ExportHistory(c.Request.Context(), records, c.Param("format"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, jobResponse{JobID: job.ID, Lane: string(job.Lane)})
	}
}

// lookupRecord fetches the current snapshot and finds the addressed record.
func lookupRecord(c *gin.Context, fetcher history.Fetcher) (models.AnalysisRecord, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewValidationError("invalid record id", err))
		return models.AnalysisRecord{}, false
	}

	records, err := fetcher.FetchHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return models.AnalysisRecord{}, false
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "record not found"})
	return models.AnalysisRecord{}, false
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.GetStatusCode(err), ErrorResponse{Error: err.Error()})
}

// requestSizeLimiter caps request bodies; exports carry no payload so the
// limit is small.
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
