package cdn

import (
	"net/url"
	"strings"

	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/pkg/models"
)

// Variant names the call site a resolved URL is for; each gets its own
// transformation parameters (small for thumbnails, large for previews).
type Variant string

const (
	VariantThumbnail Variant = "thumbnail"
	VariantPreview   Variant = "preview"
	VariantReport    Variant = "report"
)

// uploadSegment is the path marker after which the CDN accepts a
// transformation parameter block.
const uploadSegment = "/upload/"

type transformPair struct {
	primary  string
	fallback string
}

// Per-variant delivery parameters. The fallback block is a broader or
// simpler request for the same asset, used by the loader's single retry.
var transforms = map[Variant]transformPair{
	VariantThumbnail: {primary: "q_auto,f_auto,c_fill,w_400,h_400", fallback: "q_auto,f_auto"},
	VariantPreview:   {primary: "q_auto,f_auto,w_800", fallback: "q_auto,f_auto,c_scale,w_600"},
	VariantReport:    {primary: "q_auto,f_auto", fallback: "q_auto,f_auto,c_fill,w_400,h_400"},
}

// Resolver computes delivery URLs for record images. Pure and synchronous.
type Resolver struct {
	host string
}

// NewResolver creates a resolver recognizing the given CDN host substring.
func NewResolver(host string) *Resolver {
	if host == "" {
		host = "cloudinary.com"
	}
	return &Resolver{host: host}
}

// Resolve maps an image reference to its delivery variants. An empty ref
// resolves to the zero value (callers render a placeholder); a non-CDN URL
// passes through unchanged with no fallback, since no alternative delivery
// parameters exist for it.
func (r *Resolver) Resolve(imageRef string, variant Variant) models.ResolvedImageURL {
	if imageRef == "" {
		return models.ResolvedImageURL{}
	}
	if !r.isCDNURL(imageRef) {
		return models.ResolvedImageURL{Primary: imageRef}
	}
	pair, ok := transforms[variant]
	if !ok {
		pair = transforms[VariantReport]
	}
	return models.ResolvedImageURL{
		Primary:  InsertTransform(imageRef, pair.primary),
		Fallback: InsertTransform(imageRef, pair.fallback),
	}
}

func (r *Resolver) isCDNURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.Contains(u.Host, r.host) && strings.Contains(u.Path, uploadSegment)
}

// InsertTransform inserts a transformation block immediately after the first
// upload segment. It is idempotent: a URL whose next path segment already
// looks like a transformation block is returned unchanged, so repeated
// resolution never stacks parameters.
func InsertTransform(rawURL, params string) string {
	if params == "" {
		return rawURL
	}
	idx := strings.Index(rawURL, uploadSegment)
	if idx < 0 {
		return rawURL
	}
	rest := rawURL[idx+len(uploadSegment):]
	if next, _, _ := strings.Cut(rest, "/"); isTransformSegment(next) {
		return rawURL
	}
	return rawURL[:idx] + uploadSegment + params + "/" + rest
}

// isTransformSegment reports whether a path segment is a transformation
// parameter block rather than an asset path component.
func isTransformSegment(segment string) bool {
	if segment == "" {
		return false
	}
	if strings.Contains(segment, ",") {
		return true
	}
	for _, prefix := range []string{"q_", "f_", "w_", "h_", "c_"} {
		if strings.HasPrefix(segment, prefix) {
			return true
		}
	}
	return false
}

// ValidateImageURL checks that a resolved URL is fetchable: parseable, an
// http(s) scheme, and a non-empty host.
func ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}
	if parsed.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	return nil
}
