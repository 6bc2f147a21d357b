package media

import (
	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
)

// Metadata is the technical description of a source video. Zero fields mean
// unknown.
type Metadata struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
	FrameCount  int     `json:"frame_count"`
	DurationSec float64 `json:"duration_sec"`
}

// ComputeDuration returns frames/fps in seconds, or 0 when fps is not positive.
func ComputeDuration(frames int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) / fps
}

// Geometry returns the frame size.
func (m Metadata) Geometry() video.Geometry {
	return video.Geometry{Width: m.Width, Height: m.Height}
}

// Known reports whether the source could be read.
func (m Metadata) Known() bool {
	return !m.Geometry().IsZero()
}

// ExtractMetadata opens path and reads its geometry, frame rate and frame
// count. When the source cannot be opened it returns the zero Metadata along
// with a StageError wrapping ErrUnreadableSource; callers treat that as
// unknown metadata, not as a failed job.
func ExtractMetadata(backend interfaces.IMediaBackend, path string) (Metadata, error) {
	src, err := backend.OpenSource(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ExtractMetadata",
			"path":     path,
			"error":    err.Error(),
		}).Warn("Source unreadable, metadata unknown")
		return Metadata{}, NewStageError(StageMetadata, path, ErrUnreadableSource, err)
	}
	defer src.Close()

	meta := Metadata{
		Width:      src.Width(),
		Height:     src.Height(),
		FPS:        src.FPS(),
		FrameCount: src.FrameCount(),
	}
	meta.DurationSec = ComputeDuration(meta.FrameCount, meta.FPS)

	logrus.WithFields(logrus.Fields{
		"function":     "ExtractMetadata",
		"path":         path,
		"width":        meta.Width,
		"height":       meta.Height,
		"fps":          meta.FPS,
		"frame_count":  meta.FrameCount,
		"duration_sec": meta.DurationSec,
	}).Info("Extracted metadata")

	return meta, nil
}
