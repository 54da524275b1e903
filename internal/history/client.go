package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/internal/logger"
	"github.com/sunflower-vision/report-export-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// Fetcher retrieves the analysis history snapshot.
type Fetcher interface {
	FetchHistory(ctx context.Context) ([]models.AnalysisRecord, error)
}

// Client talks to the backend history endpoint. It is constructed explicitly
// and injected into consumers; the bearer credential is held on the client
// and managed through SetCredential/ClearCredential, not ambient state.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a history client for the given backend base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetCredential installs the bearer token sent with history requests.
func (c *Client) SetCredential(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearCredential removes the bearer token.
func (c *Client) ClearCredential() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// historyEnvelope is the backend's response wrapper.
type historyEnvelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error"`
	History []RawRecord `json:"history"`
}

// FetchHistory retrieves and normalizes the full history snapshot. A failed
// request or a non-success status yields a record-fetch error; a successful
// response with zero records yields an empty, non-nil slice.
func (c *Client) FetchHistory(ctx context.Context) ([]models.AnalysisRecord, error) {
	url := c.baseURL + "/api/sunflower/history"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewRecordFetchError("invalid history request", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewRecordFetchError("history request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewRecordFetchError(
			fmt.Sprintf("history endpoint returned status %d", resp.StatusCode), nil)
	}

	var envelope historyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, apperrors.NewRecordFetchError("malformed history response", err)
	}
	if envelope.Status != "success" {
		msg := envelope.Error
		if msg == "" {
			msg = envelope.Message
		}
		if msg == "" {
			msg = "history endpoint reported failure"
		}
		return nil, apperrors.NewRecordFetchError(msg, nil)
	}

	records := make([]models.AnalysisRecord, 0, len(envelope.History))
	for _, raw := range envelope.History {
		records = append(records, Normalize(raw))
	}

	logger.WithFields(logrus.Fields{
		"count": len(records),
	}).Debug("Fetched analysis history")

	return records, nil
}
