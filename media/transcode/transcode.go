// Package transcode re-encodes a source video at a target geometry with a
// per-frame filter applied.
package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/limits"
	"github.com/opd-ai/clipforge/media"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
)

// Default output stream.
const (
	DefaultContainer = "webm"
	DefaultCodec     = "libvpx"
)

// Options configures an Encoder.
type Options struct {
	// Container and Codec select the output stream
	Container string
	Codec     string

	// StrictDecode turns a mid-stream decode failure into an ErrFrameDecode
	// failure of the artifact. When false the output is truncated at the
	// failing frame and the transcode still succeeds.
	StrictDecode bool

	// FallbackFPS is used when the source reports no frame rate
	FallbackFPS float64
}

// DefaultOptions returns a VP8/WebM lenient configuration.
func DefaultOptions() Options {
	return Options{
		Container:   DefaultContainer,
		Codec:       DefaultCodec,
		FallbackFPS: limits.DefaultFPS,
	}
}

// Report describes a completed or truncated transcode.
type Report struct {
	Source        video.Geometry `json:"source"`
	Target        video.Geometry `json:"target"`
	Filter        string         `json:"filter"`
	Codec         string         `json:"codec"`
	FPS           float64        `json:"fps"`
	FramesRead    int            `json:"frames_read"`
	FramesWritten int            `json:"frames_written"`
	Resized       bool           `json:"resized"`
	Truncated     bool           `json:"truncated"`
	TruncatedAt   int            `json:"truncated_at,omitempty"`
	DecodeError   string         `json:"decode_error,omitempty"`
}

// Encoder decodes a source in order, resizes each frame to the target
// geometry, applies a filter and writes the result.
type Encoder struct {
	backend interfaces.IMediaBackend
	opts    Options
}

// NewEncoder creates an encoder. Zero option fields take their defaults.
func NewEncoder(backend interfaces.IMediaBackend, opts Options) *Encoder {
	defaults := DefaultOptions()
	if opts.Container == "" {
		opts.Container = defaults.Container
	}
	if opts.Codec == "" {
		opts.Codec = defaults.Codec
	}
	if opts.FallbackFPS <= 0 {
		opts.FallbackFPS = defaults.FallbackFPS
	}
	return &Encoder{backend: backend, opts: opts}
}

// Options returns the effective options.
func (e *Encoder) Options() Options {
	return e.opts
}

// Transcode encodes src into dst.
//
// A zero target means "normalize the source geometry". The writer is opened
// and verified before any frame is read; if that fails the error wraps
// ErrCodecUnavailable and dst is not created. Otherwise the parent directory
// of dst is created as needed. Frames already written when a decode or write
// failure occurs stay in dst. Both handles are released on every path.
func (e *Encoder) Transcode(src, dst string, target video.Geometry, kind video.FilterKind) (*Report, error) {
	source, err := e.backend.OpenSource(src)
	if err != nil {
		return nil, media.NewStageError(media.StageTranscode, src, media.ErrUnreadableSource, err)
	}
	defer source.Close()

	report := &Report{
		Source: video.Geometry{Width: source.Width(), Height: source.Height()},
		Filter: kind.String(),
		Codec:  e.opts.Codec,
		FPS:    source.FPS(),
	}
	if report.FPS <= 0 {
		report.FPS = e.opts.FallbackFPS
	}
	if target.IsZero() {
		target = video.Normalize(report.Source.Width, report.Source.Height, limits.MaxOutputWidth)
	}
	if err := limits.ValidateDimensions(target.Width, target.Height); err != nil {
		return nil, media.NewStageError(media.StageTranscode, src, media.ErrUnreadableSource, err)
	}
	report.Target = target
	report.Resized = report.Source != target

	writer, err := e.backend.CreateWriter(dst, interfaces.WriterSpec{
		Width:     target.Width,
		Height:    target.Height,
		FPS:       report.FPS,
		Container: e.opts.Container,
		Codec:     e.opts.Codec,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "Encoder.Transcode",
			"dst":       dst,
			"container": e.opts.Container,
			"codec":     e.opts.Codec,
			"error":     err.Error(),
		}).Error("Output writer unavailable, aborting")
		return nil, media.NewStageError(media.StageTranscode, dst, media.ErrCodecUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		writer.Close()
		return nil, media.NewStageError(media.StageTranscode, dst, media.ErrWriteFailure, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Encoder.Transcode",
		"src":      src,
		"dst":      dst,
		"source":   report.Source.String(),
		"target":   target.String(),
		"filter":   report.Filter,
		"fps":      report.FPS,
	}).Info("Starting transcode")

	writeErr := e.encode(source, writer, target, kind, report)
	if err := writer.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("finalize output: %w", err)
	}
	report.FramesWritten = writer.FramesWritten()

	logrus.WithFields(logrus.Fields{
		"function":       "Encoder.Transcode",
		"dst":            dst,
		"frames_read":    report.FramesRead,
		"frames_written": report.FramesWritten,
		"truncated":      report.Truncated,
	}).Info("Transcode finished")

	return report, e.classify(dst, report, writeErr)
}

// encode runs the frame loop and returns the first write error. Decode
// failures end the loop and are recorded in report.
func (e *Encoder) encode(source interfaces.IVideoSource, writer interfaces.IVideoWriter, target video.Geometry, kind video.FilterKind, report *Report) error {
	for {
		frame, err := source.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			report.Truncated = true
			report.TruncatedAt = report.FramesRead
			report.DecodeError = err.Error()

			msg := "Frame decode failed, output truncated"
			if e.opts.StrictDecode {
				msg = "Frame decode failed, video will fail"
			}
			logrus.WithFields(logrus.Fields{
				"function":       "Encoder.encode",
				"frame_index":    report.FramesRead,
				"error":          err.Error(),
				"strict":         e.opts.StrictDecode,
				"frames_written": writer.FramesWritten(),
			}).Warn(msg)
			return nil
		}
		report.FramesRead++

		if frame.Width != target.Width || frame.Height != target.Height {
			frame = video.ResizeArea(frame, target.Width, target.Height)
		}
		if err := writer.Write(video.Apply(kind, frame)); err != nil {
			return err
		}
	}
}

func (e *Encoder) classify(dst string, report *Report, writeErr error) error {
	switch {
	case writeErr != nil && report.FramesWritten > 0:
		return media.NewStageError(media.StageTranscode, dst, media.ErrWriteFailure,
			fmt.Errorf("after %d frames: %w", report.FramesWritten, writeErr))
	case writeErr != nil:
		return media.NewStageError(media.StageTranscode, dst, media.ErrWriteFailure, writeErr)
	case report.FramesWritten == 0 && report.Truncated:
		return media.NewStageError(media.StageTranscode, dst, media.ErrFrameDecode, errors.New(report.DecodeError))
	case report.FramesWritten == 0:
		return media.NewStageError(media.StageTranscode, dst, media.ErrNoFramesProduced, nil)
	case report.Truncated && e.opts.StrictDecode:
		return media.NewStageError(media.StageTranscode, dst, media.ErrFrameDecode,
			fmt.Errorf("stream ended at frame %d: %s", report.TruncatedAt, report.DecodeError))
	}
	return nil
}
