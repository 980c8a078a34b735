// imageprocessor.go - Image normalization before text recognition

package processor

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
	"github.com/hospitex/medscan/configs"
)

// DecodeError means the uploaded bytes are not a decodable image.
// It is fatal for the current request and never swallowed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Normalize converts an arbitrary uploaded image into the buffer sent to the
// vision model: decoded, forced to three-channel RGB, constrained so both
// dimensions fit MAX_IMAGE_DIMENSION (aspect-preserving, never upscaled),
// and re-encoded as JPEG at fixed quality.
func Normalize(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	// Clone always yields NRGBA, which drops palette/gray color modes
	rgb := imaging.Clone(img)

	maxDim := configs.MAX_IMAGE_DIMENSION
	bounds := rgb.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		rgb = imaging.Fit(rgb, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: configs.JPEG_QUALITY}); err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}

	return buf.Bytes(), nil
}
