package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/sunflower-vision/report-export-go/internal/cdn"
	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/internal/logger"
	"github.com/sunflower-vision/report-export-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// ImageLoader fetches and decodes a resolved image URL into a bitmap.
type ImageLoader interface {
	Load(ctx context.Context, resolved models.ResolvedImageURL) (image.Image, error)
}

// HTTPImageLoader implements ImageLoader over plain anonymous HTTP. Each URL
// is attempted exactly once; the retry budget lives entirely in the
// resolver's fallback variant.
type HTTPImageLoader struct {
	client *http.Client
}

// NewHTTPImageLoader creates an image loader with a transport tuned for
// one-shot image downloads.
func NewHTTPImageLoader(timeout time.Duration) *HTTPImageLoader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableCompression:     false,
		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageLoader{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

// Load attempts the primary URL, and on any failure retries exactly once
// with the fallback variant when one exists. A second failure, or a missing
// fallback, terminates with an image-unavailable error. No credentials are
// ever attached; concurrent calls are independent.
func (l *HTTPImageLoader) Load(ctx context.Context, resolved models.ResolvedImageURL) (image.Image, error) {
	if resolved.IsZero() {
		return nil, apperrors.NewImageUnavailableError("no image reference", nil)
	}

	img, primaryErr := l.fetchOnce(ctx, resolved.Primary)
	if primaryErr == nil {
		return img, nil
	}

	if resolved.Fallback == "" {
		return nil, apperrors.NewImageUnavailableError("image load failed", primaryErr)
	}

	logger.WithError(primaryErr).WithFields(logrus.Fields{
		"primary":  resolved.Primary,
		"fallback": resolved.Fallback,
	}).Debug("Primary image load failed, trying fallback variant")

	img, fallbackErr := l.fetchOnce(ctx, resolved.Fallback)
	if fallbackErr == nil {
		return img, nil
	}
	return nil, apperrors.NewImageUnavailableError("image load failed after fallback", fallbackErr)
}

// fetchOnce performs a single anonymous GET and decode. No per-URL retries.
func (l *HTTPImageLoader) fetchOnce(ctx context.Context, imageURL string) (image.Image, error) {
	if err := cdn.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Sunflower-Report-Export/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
