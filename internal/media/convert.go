// Package media normalizes ingested image payloads. The canonical stored
// encoding for remotely fetched images is PNG; anything else is re-encoded.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lnco/artifact-service/internal/domain"
)

// Sniff detects the payload's MIME type from its leading bytes. Claimed
// content types and filename extensions are never trusted.
func Sniff(data []byte) string {
	return http.DetectContentType(data)
}

// ToPNG returns the payload re-encoded as PNG, or unchanged when it already
// is one. The second return reports whether a conversion happened.
func ToPNG(data []byte) ([]byte, bool, error) {
	if Sniff(data) == "image/png" {
		return data, false, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode payload: %v: %w", err, domain.ErrConversionFailed)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, false, fmt.Errorf("encode %s as png: %v: %w", format, err, domain.ErrConversionFailed)
	}
	return buf.Bytes(), true, nil
}
