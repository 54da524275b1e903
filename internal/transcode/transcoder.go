package transcode

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"

	xdraw "golang.org/x/image/draw"
)

// jpegQuality is the re-encode quality for embedded report images.
const jpegQuality = 80

// Result is a transcoded raster ready for embedding: compact JPEG bytes,
// their base64 form, and the fitted dimensions in layout units.
type Result struct {
	JPEG   []byte
	Base64 string
	Width  float64
	Height float64
}

// FitJPEG scales a decoded bitmap to fit the bounding box while preserving
// aspect ratio, then re-encodes it as a compact JPEG. Scaling binds on the
// larger dimension: width first when the image is wider than tall, height
// first otherwise. Images already inside the box are re-encoded unscaled.
func FitJPEG(src image.Image, maxWidth, maxHeight int) (*Result, error) {
	if src == nil {
		return nil, apperrors.NewTranscodeError("nil source bitmap", nil)
	}
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, apperrors.NewTranscodeError("zero-sized source bitmap", nil)
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, apperrors.NewTranscodeError("invalid bounding box", nil)
	}

	dstW, dstH := fit(srcW, srcH, maxWidth, maxHeight)

	out := src
	if dstW != srcW || dstH != srcH {
		scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, bounds, xdraw.Over, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, apperrors.NewTranscodeError("jpeg encode failed", err)
	}

	data := buf.Bytes()
	return &Result{
		JPEG:   data,
		Base64: base64.StdEncoding.EncodeToString(data),
		Width:  float64(dstW),
		Height: float64(dstH),
	}, nil
}

// fit computes box-constrained dimensions, binding the dominant side first.
func fit(w, h, maxW, maxH int) (int, int) {
	if w > h {
		if w > maxW {
			h = h * maxW / w
			w = maxW
		}
	} else {
		if h > maxH {
			w = w * maxH / h
			h = maxH
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
