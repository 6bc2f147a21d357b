// Package limits provides centralized processing limits for the clipforge pipeline.
// This ensures consistent parameters across the different processing stages.
package limits

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxOutputWidth is the widest processed video the encoder produces (720p width).
	MaxOutputWidth = 1280

	// MaxDimension bounds any width or height accepted from a source.
	// Larger values are treated as corrupt metadata.
	MaxDimension = 16384

	// PixelizeBlockSize is the block size of the pixelize filter
	PixelizeBlockSize = 16

	// EdgeLowThreshold is the weak-edge hysteresis threshold of the edge filter
	EdgeLowThreshold = 100

	// EdgeHighThreshold is the strong-edge hysteresis threshold of the edge filter
	EdgeHighThreshold = 200

	// PreviewFrameCount is the number of frames sampled for the animated preview
	PreviewFrameCount = 30

	// PreviewScale is the factor applied to the source geometry for preview frames
	PreviewScale = 0.3

	// PreviewFrameDelay is the display duration of a single preview frame
	PreviewFrameDelay = 100 * time.Millisecond

	// ThumbnailQuality is the JPEG quality used for thumbnails
	ThumbnailQuality = 95

	// DefaultFPS is used when the source does not report a usable frame rate
	DefaultFPS = 30.0

	// MaxUploadSize is the default cap for a single uploaded file (512MB)
	MaxUploadSize = 512 << 20
)

var (
	// ErrInvalidDimensions indicates a width or height outside [1, MaxDimension]
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrUploadEmpty indicates an upload without content
	ErrUploadEmpty = errors.New("empty upload")

	// ErrUploadTooLarge indicates an upload above the configured cap
	ErrUploadTooLarge = errors.New("upload too large")
)

// ValidateDimensions checks that both dimensions are positive and at most MaxDimension.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds limit %d", ErrInvalidDimensions, width, height, MaxDimension)
	}
	return nil
}

// ValidateUploadSize validates an upload size against maxSize.
// Returns an error with context including the actual and maximum sizes.
func ValidateUploadSize(size, maxSize int64) error {
	if size <= 0 {
		return ErrUploadEmpty
	}
	if size > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrUploadTooLarge, size, maxSize)
	}
	return nil
}

// PreviewDelayCentiseconds converts PreviewFrameDelay to the GIF delay unit.
func PreviewDelayCentiseconds() int {
	return int(PreviewFrameDelay / (10 * time.Millisecond))
}
