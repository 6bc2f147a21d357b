package interfaces

import (
	"errors"
	"fmt"

	"github.com/opd-ai/clipforge/media/video"
)

// Validation errors for MediaBackendConfig.
var (
	// ErrInvalidProbeTimeout indicates the encoder probe timeout is not positive.
	ErrInvalidProbeTimeout = errors.New("probe timeout must be positive")
	// ErrMissingFFmpegPath indicates a real backend was requested without an ffmpeg binary.
	ErrMissingFFmpegPath = errors.New("ffmpeg path is required for the real backend")
)

// IVideoSource is an open decoding handle over a single video file.
// Each consumer opens its own handle; handles are not safe for concurrent use.
type IVideoSource interface {
	// Width returns the frame width in pixels, 0 if unknown
	Width() int

	// Height returns the frame height in pixels, 0 if unknown
	Height() int

	// FPS returns the frame rate, 0 if unknown
	FPS() float64

	// FrameCount returns the total number of frames, 0 if unknown
	FrameCount() int

	// Read decodes the next frame in order. It returns io.EOF at the natural
	// end of the stream; any other error is a decode failure.
	Read() (*video.Frame, error)

	// ReadAt seeks to index and decodes that frame.
	ReadAt(index int) (*video.Frame, error)

	// Close releases the decoder
	Close() error
}

// IVideoWriter is an open encoding handle.
type IVideoWriter interface {
	// Write encodes one frame. Frames must match the writer geometry.
	Write(frame *video.Frame) error

	// FramesWritten returns the number of frames accepted so far
	FramesWritten() int

	// Close flushes and finalizes the output container
	Close() error
}

// IMediaBackend opens decoders and encoders. This abstraction allows switching
// between the ffmpeg-backed implementation and in-memory synthetic media.
type IMediaBackend interface {
	// OpenSource opens path for decoding
	OpenSource(path string) (IVideoSource, error)

	// CreateWriter opens an encoder for path. Implementations verify that the
	// container and codec are usable before returning, and create no file
	// when they are not.
	CreateWriter(path string, spec WriterSpec) (IVideoWriter, error)

	// IsSimulation returns true if this is a simulation implementation
	IsSimulation() bool
}

// WriterSpec describes the encoded output stream.
type WriterSpec struct {
	// Width and Height are the output geometry
	Width  int
	Height int

	// FPS is the output frame rate
	FPS float64

	// Container is the output format name (webm, mp4, ...). Empty means
	// derive it from the file extension.
	Container string

	// Codec is the ffmpeg encoder name (libvpx, libx264, ...)
	Codec string
}

// Validate checks the writer geometry and frame rate.
func (s WriterSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid writer geometry %dx%d", s.Width, s.Height)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("invalid writer frame rate %v", s.FPS)
	}
	if s.Codec == "" {
		return errors.New("writer codec is required")
	}
	return nil
}

// MediaBackendConfig holds configuration for media backend implementations
type MediaBackendConfig struct {
	// UseSimulation determines whether to use synthetic media or ffmpeg
	UseSimulation bool

	// FFmpegPath is the ffmpeg binary queried for available encoders
	FFmpegPath string

	// ProbeTimeout bounds the encoder probe in milliseconds
	ProbeTimeout int
}

// Validate checks the configuration values.
func (c *MediaBackendConfig) Validate() error {
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidProbeTimeout, c.ProbeTimeout)
	}
	if !c.UseSimulation && c.FFmpegPath == "" {
		return ErrMissingFFmpegPath
	}
	return nil
}
