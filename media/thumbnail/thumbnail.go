// Package thumbnail writes a still image of the first decodable frame of a video.
package thumbnail

import (
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/limits"
	"github.com/opd-ai/clipforge/media"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedFormat indicates an output extension with no image encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an output image encoding.
type Format string

// Supported formats.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// FormatForPath selects the encoding from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Report describes a written thumbnail.
type Report struct {
	Path       string         `json:"path"`
	Format     Format         `json:"format"`
	Geometry   video.Geometry `json:"geometry"`
	FrameIndex int            `json:"frame_index"`
}

// Generator produces thumbnails.
type Generator struct {
	backend interfaces.IMediaBackend
	quality int
}

// NewGenerator creates a generator using limits.ThumbnailQuality for JPEG output.
func NewGenerator(backend interfaces.IMediaBackend) *Generator {
	return &Generator{backend: backend, quality: limits.ThumbnailQuality}
}

// SetQuality overrides the JPEG quality, clamped to [1, 100].
func (g *Generator) SetQuality(quality int) {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	g.quality = quality
}

// Generate decodes the first frame of src and writes it to dst. A non-zero
// size resamples the frame by area averaging first. dst is replaced
// atomically, so a failed call leaves no partial image.
func (g *Generator) Generate(src, dst string, size video.Geometry) (*Report, error) {
	format, err := FormatForPath(dst)
	if err != nil {
		return nil, media.NewStageError(media.StageThumbnail, dst, media.ErrWriteFailure, err)
	}

	source, err := g.backend.OpenSource(src)
	if err != nil {
		return nil, media.NewStageError(media.StageThumbnail, src, media.ErrUnreadableSource, err)
	}
	defer source.Close()

	frame, err := source.Read()
	if err != nil {
		return nil, media.NewStageError(media.StageThumbnail, src, media.ErrFrameDecode, err)
	}
	if !size.IsZero() && size != frame.Geometry() {
		frame = video.ResizeArea(frame, size.Width, size.Height)
	}

	img := frame.RGBA()
	err = media.WriteFileAtomic(dst, func(w io.Writer) error {
		if format == FormatPNG {
			return png.Encode(w, img)
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: g.quality})
	})
	if err != nil {
		return nil, media.NewStageError(media.StageThumbnail, dst, media.ErrWriteFailure, err)
	}

	report := &Report{Path: dst, Format: format, Geometry: frame.Geometry(), FrameIndex: frame.Index}

	logrus.WithFields(logrus.Fields{
		"function": "Generator.Generate",
		"src":      src,
		"dst":      dst,
		"format":   format,
		"geometry": report.Geometry.String(),
	}).Info("Thumbnail written")

	return report, nil
}
