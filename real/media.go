package real

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
)

// Errors returned while opening encoders.
var (
	// ErrUnknownContainer indicates an output container with no codec table
	ErrUnknownContainer = errors.New("unknown output container")
	// ErrCodecNotAllowed indicates a codec the container cannot carry
	ErrCodecNotAllowed = errors.New("codec not allowed in container")
	// ErrEncoderMissing indicates an encoder the ffmpeg build does not provide
	ErrEncoderMissing = errors.New("encoder not provided by ffmpeg")
	// ErrProbeFailed indicates the ffmpeg encoder listing could not be obtained
	ErrProbeFailed = errors.New("ffmpeg encoder probe failed")
	// ErrPrematureEnd indicates the decoder stopped before the reported frame count
	ErrPrematureEnd = errors.New("decoder stopped before end of stream")
)

// VidioBackend implements interfaces.IMediaBackend with Vidio, which drives
// ffprobe and ffmpeg subprocesses found on PATH.
type VidioBackend struct {
	config   *interfaces.MediaBackendConfig
	runner   CommandRunner
	encoders map[string]bool
	probeErr error
	probed   bool
	mu       sync.Mutex
}

// NewVidioBackend creates a new ffmpeg-backed media implementation
func NewVidioBackend(config *interfaces.MediaBackendConfig) *VidioBackend {
	logrus.WithFields(logrus.Fields{
		"function":      "NewVidioBackend",
		"ffmpeg_path":   config.FFmpegPath,
		"probe_timeout": config.ProbeTimeout,
	}).Info("Creating real media backend")

	return &VidioBackend{
		config: config,
		runner: ExecRunner{},
	}
}

// SetRunner sets a custom CommandRunner and discards any cached probe
// result (primarily for testing).
func (b *VidioBackend) SetRunner(r CommandRunner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runner = r
	b.probed = false
	b.encoders = nil
	b.probeErr = nil
}

// IsSimulation returns false since this is a real implementation
func (b *VidioBackend) IsSimulation() bool {
	return false
}

// OpenSource implements IMediaBackend.OpenSource
func (b *VidioBackend) OpenSource(path string) (interfaces.IVideoSource, error) {
	v, err := vidio.NewVideo(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "VidioBackend.OpenSource",
			"path":     path,
			"error":    err.Error(),
		}).Debug("Failed to open video")
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	frames := v.Frames()
	if frames <= 0 && v.FPS() > 0 {
		// containers such as webm carry no frame count
		frames = int(v.Duration() * v.FPS())
	}

	logrus.WithFields(logrus.Fields{
		"function": "VidioBackend.OpenSource",
		"path":     path,
		"width":    v.Width(),
		"height":   v.Height(),
		"fps":      v.FPS(),
		"frames":   frames,
		"codec":    v.Codec(),
	}).Debug("Opened video")

	return &vidioSource{path: path, video: v, frames: frames}, nil
}

// CreateWriter implements IMediaBackend.CreateWriter. The container, codec
// and ffmpeg encoder list are verified before Vidio is asked for a writer;
// Vidio itself starts ffmpeg lazily on the first frame.
func (b *VidioBackend) CreateWriter(path string, spec interfaces.WriterSpec) (interfaces.IVideoWriter, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := b.checkCodec(path, spec); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "VidioBackend.CreateWriter",
			"path":      path,
			"container": spec.Container,
			"codec":     spec.Codec,
			"error":     err.Error(),
		}).Warn("Encoder unavailable")
		return nil, err
	}

	w, err := vidio.NewVideoWriter(path, spec.Width, spec.Height, &vidio.Options{
		FPS:   spec.FPS,
		Codec: spec.Codec,
	})
	if err != nil {
		return nil, fmt.Errorf("create writer %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "VidioBackend.CreateWriter",
		"path":     path,
		"width":    spec.Width,
		"height":   spec.Height,
		"fps":      spec.FPS,
		"codec":    spec.Codec,
	}).Debug("Created video writer")

	return &vidioWriter{path: path, writer: w, spec: spec}, nil
}

func (b *VidioBackend) checkCodec(path string, spec interfaces.WriterSpec) error {
	container := ContainerForPath(path)
	if spec.Container != "" && spec.Container != container {
		return fmt.Errorf("%w: %q does not match extension of %s", ErrUnknownContainer, spec.Container, path)
	}
	if _, ok := containerCodecs[container]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownContainer, container)
	}
	if !CodecAllowed(container, spec.Codec) {
		return fmt.Errorf("%w: %s in %s", ErrCodecNotAllowed, spec.Codec, container)
	}

	encoders, err := b.availableEncoders()
	if err != nil {
		return err
	}
	if !encoders[spec.Codec] {
		return fmt.Errorf("%w: %s", ErrEncoderMissing, spec.Codec)
	}
	return nil
}

// availableEncoders probes ffmpeg once and caches the result.
func (b *VidioBackend) availableEncoders() (map[string]bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.probed {
		return b.encoders, b.probeErr
	}

	timeout := time.Duration(b.config.ProbeTimeout) * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := b.runner.Run(ctx, b.config.FFmpegPath, "-hide_banner", "-encoders")
	if err == nil {
		b.encoders, err = ParseEncoders(out)
	}
	if err != nil {
		b.probeErr = fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	b.probed = true

	logrus.WithFields(logrus.Fields{
		"function":      "VidioBackend.availableEncoders",
		"ffmpeg_path":   b.config.FFmpegPath,
		"encoder_count": len(b.encoders),
		"success":       b.probeErr == nil,
	}).Info("Probed ffmpeg encoders")

	return b.encoders, b.probeErr
}

type vidioSource struct {
	path   string
	video  *vidio.Video
	frames int
	cursor int
}

func (s *vidioSource) Width() int      { return s.video.Width() }
func (s *vidioSource) Height() int     { return s.video.Height() }
func (s *vidioSource) FPS() float64    { return s.video.FPS() }
func (s *vidioSource) FrameCount() int { return s.frames }

// Read decodes the next frame. Vidio reports both the end of the stream and
// decode failures as a false return, so an early stop against a known
// frame count is classified as a decode failure.
func (s *vidioSource) Read() (*video.Frame, error) {
	if !s.video.Read() {
		if s.frames > 0 && s.cursor < s.frames {
			return nil, fmt.Errorf("%w: %s at frame %d of %d", ErrPrematureEnd, s.path, s.cursor, s.frames)
		}
		return nil, io.EOF
	}

	frame, err := video.FromPacked(s.video.FrameBuffer(), s.video.Width(), s.video.Height(), s.cursor)
	s.cursor++
	return frame, err
}

func (s *vidioSource) ReadAt(index int) (*video.Frame, error) {
	if index < 0 || (s.frames > 0 && index >= s.frames) {
		return nil, io.EOF
	}
	if err := s.video.ReadFrame(index); err != nil {
		return nil, fmt.Errorf("read frame %d of %s: %w", index, s.path, err)
	}
	return video.FromPacked(s.video.FrameBuffer(), s.video.Width(), s.video.Height(), index)
}

func (s *vidioSource) Close() error {
	s.video.Close()
	return nil
}

type vidioWriter struct {
	path    string
	writer  *vidio.VideoWriter
	spec    interfaces.WriterSpec
	written int
	closed  bool
}

func (w *vidioWriter) Write(frame *video.Frame) error {
	if w.closed {
		return os.ErrClosed
	}
	if frame.Width != w.spec.Width || frame.Height != w.spec.Height {
		return fmt.Errorf("frame %dx%d does not match writer %dx%d", frame.Width, frame.Height, w.spec.Width, w.spec.Height)
	}
	if err := w.writer.Write(frame.Packed(4)); err != nil {
		return fmt.Errorf("write frame %d to %s: %w", frame.Index, w.path, err)
	}
	w.written++
	return nil
}

func (w *vidioWriter) FramesWritten() int {
	return w.written
}

func (w *vidioWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.writer.Close()
	return nil
}
