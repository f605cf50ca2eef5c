package media

import (
	"bytes"
	"fmt"
	"image"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP format support

	"photoframe/internal/filesystem"
	"photoframe/internal/logging"
	"photoframe/internal/mediatypes"
)

const (
	// MaxUploadDimension is the longest edge sent to the generator.
	MaxUploadDimension = 1568

	// uploadQuality is the JPEG quality used when re-encoding.
	uploadQuality = 85
)

// uploadable lists MIME types the generator accepts without conversion.
var uploadable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// Prepare returns the bytes and MIME type to send for the photo at path.
// Only read failures are errors.
func Prepare(path string) ([]byte, string, error) {
	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo: %w", err)
	}
	mime := mediatypes.GetMimeType(path)

	if mediatypes.NeedsVips(path) {
		if !IsVipsAvailable() {
			return data, mime, nil
		}
		out, err := prepareWithVips(data, MaxUploadDimension)
		if err != nil {
			logging.Debug("vips could not prepare %s: %v, sending original", path, err)
			return data, mime, nil
		}
		return out, "image/jpeg", nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logging.Debug("Could not read image header for %s: %v, sending original", path, err)
		return data, mime, nil
	}
	if fits(cfg.Width, cfg.Height, MaxUploadDimension) && uploadable[mime] {
		return data, mime, nil
	}

	out, err := downscale(data, MaxUploadDimension)
	if err != nil {
		logging.Debug("Could not downscale %s: %v, sending original", path, err)
		return data, mime, nil
	}

	logging.Debug("Prepared %s: %dx%d -> %d bytes", path, cfg.Width, cfg.Height, len(out))
	return out, "image/jpeg", nil
}

func fits(width, height, limit int) bool {
	return width <= limit && height <= limit
}

// downscale decodes data with orientation applied, fits it inside
// limit x limit and re-encodes it as JPEG.
func downscale(data []byte, limit int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if !fits(b.Dx(), b.Dy(), limit) {
		img = imaging.Fit(img, limit, limit, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(uploadQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
