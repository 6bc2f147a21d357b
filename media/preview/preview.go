// Package preview builds a short looping GIF from frames sampled uniformly
// across a video.
package preview

import (
	"image"
	"image/color/palette"
	"image/gif"
	"io"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/limits"
	"github.com/opd-ai/clipforge/media"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// SampleIndices returns n frame indices floor(i*total/n) for i in [0, n).
// Indices repeat when total < n. A non-positive total or n yields nil.
func SampleIndices(total, n int) []int {
	if total <= 0 || n <= 0 {
		return nil
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i * total / n
	}
	return indices
}

// Report describes a written preview.
type Report struct {
	Path      string         `json:"path"`
	Geometry  video.Geometry `json:"geometry"`
	Requested int            `json:"requested"`
	Captured  int            `json:"captured"`
	Skipped   []int          `json:"skipped,omitempty"`
	DelayMS   int            `json:"delay_ms"`
}

// Generator produces animated previews.
type Generator struct {
	backend interfaces.IMediaBackend
	frames  int
	scale   float64
	delay   int
}

// NewGenerator creates a generator sampling limits.PreviewFrameCount frames
// scaled by limits.PreviewScale with limits.PreviewFrameDelay per frame.
func NewGenerator(backend interfaces.IMediaBackend) *Generator {
	return &Generator{
		backend: backend,
		frames:  limits.PreviewFrameCount,
		scale:   limits.PreviewScale,
		delay:   limits.PreviewDelayCentiseconds(),
	}
}

// Generate samples src and writes an infinitely looping GIF to dst.
//
// Each sampled index is decoded independently; failed decodes are skipped
// and duplicate indices are kept. Frames are scaled relative to the source
// geometry. If nothing decodes the error wraps ErrNoFramesProduced and dst
// is not written.
func (g *Generator) Generate(src, dst string) (*Report, error) {
	source, err := g.backend.OpenSource(src)
	if err != nil {
		return nil, media.NewStageError(media.StagePreview, src, media.ErrUnreadableSource, err)
	}
	defer source.Close()

	size := video.ScaleGeometry(video.Geometry{Width: source.Width(), Height: source.Height()}, g.scale)
	indices := SampleIndices(source.FrameCount(), g.frames)
	report := &Report{
		Path:      dst,
		Geometry:  size,
		Requested: len(indices),
		DelayMS:   g.delay * 10,
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, index := range indices {
		frame, err := source.ReadAt(index)
		if err != nil {
			report.Skipped = append(report.Skipped, index)
			logrus.WithFields(logrus.Fields{
				"function":    "Generator.Generate",
				"src":         src,
				"frame_index": index,
				"error":       err.Error(),
			}).Debug("Skipping preview frame")
			continue
		}
		anim.Image = append(anim.Image, quantize(video.ResizeImage(frame, size.Width, size.Height)))
		anim.Delay = append(anim.Delay, g.delay)
	}
	report.Captured = len(anim.Image)

	if report.Captured == 0 {
		logrus.WithFields(logrus.Fields{
			"function":  "Generator.Generate",
			"src":       src,
			"requested": report.Requested,
		}).Warn("No preview frames decoded")
		return report, media.NewStageError(media.StagePreview, src, media.ErrNoFramesProduced, nil)
	}

	err = media.WriteFileAtomic(dst, func(w io.Writer) error {
		return gif.EncodeAll(w, anim)
	})
	if err != nil {
		return report, media.NewStageError(media.StagePreview, dst, media.ErrWriteFailure, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Generator.Generate",
		"src":      src,
		"dst":      dst,
		"geometry": size.String(),
		"captured": report.Captured,
		"skipped":  len(report.Skipped),
	}).Info("Preview written")

	return report, nil
}

// quantize maps img onto the Plan 9 palette with Floyd-Steinberg dithering.
func quantize(img *image.RGBA) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(out, img.Bounds(), img, image.Point{})
	return out
}
