package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"quill/internal/models"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// maxImageDimension rejects absurd inputs before they reach the image host.
const maxImageDimension = 8192

// ValidateImage confirms the bytes decode as a supported image format
// (JPEG, PNG or WebP) within sane dimensions.
func ValidateImage(content []byte, maxBytes int64) error {
	if len(content) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > maxBytes {
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", maxBytes/(1024*1024)))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return models.NewValidationError("File is not a supported image (jpeg, png, webp)")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxImageDimension || cfg.Height > maxImageDimension {
		return models.NewValidationError(fmt.Sprintf("Image dimensions out of range (%s %dx%d)", format, cfg.Width, cfg.Height))
	}
	return nil
}
