package testing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
)

// Errors returned by the simulated backend.
var (
	// ErrSourceNotFound indicates the path is neither registered nor a synthetic file
	ErrSourceNotFound = errors.New("simulated source not found")
	// ErrCodecDisabled indicates the requested codec or container is not available
	ErrCodecDisabled = errors.New("codec not available in simulation")
	// ErrInjectedDecode is returned for frames listed in SyntheticVideo.FailAt
	ErrInjectedDecode = errors.New("injected decode failure")
	// ErrInjectedWrite is returned once the configured write budget is exhausted
	ErrInjectedWrite = errors.New("injected write failure")
)

// simulatedContainers lists the output containers the simulation accepts.
var simulatedContainers = map[string]bool{
	"webm": true,
	"mp4":  true,
	"mkv":  true,
	"avi":  true,
}

// OutputRecord captures what a simulated writer received.
type OutputRecord struct {
	Path      string
	Spec      interfaces.WriterSpec
	Frames    int
	First     *video.Frame
	Last      *video.Frame
	Closed    bool
	Indices   []int
	ReadOrder bool
}

// SimulatedMediaBackend implements interfaces.IMediaBackend over synthetic videos.
type SimulatedMediaBackend struct {
	config   *interfaces.MediaBackendConfig
	videos   map[string]*SyntheticVideo
	codecs   map[string]bool
	outputs  map[string]*OutputRecord
	sources  int
	writers  int
	failSink int
	mu       sync.RWMutex
}

// NewSimulatedMediaBackend creates a new simulation implementation for testing
func NewSimulatedMediaBackend(config *interfaces.MediaBackendConfig) *SimulatedMediaBackend {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function":      "NewSimulatedMediaBackend",
		"probe_timeout": config.ProbeTimeout,
	}).Info("Creating simulated media backend for testing")

	return &SimulatedMediaBackend{
		config: config,
		videos: make(map[string]*SyntheticVideo),
		codecs: map[string]bool{
			"libvpx":     true,
			"libvpx-vp9": true,
			"libx264":    true,
			"mpeg4":      true,
		},
		outputs:  make(map[string]*OutputRecord),
		failSink: -1,
	}
}

// AddVideo registers a synthetic video under path.
func (s *SimulatedMediaBackend) AddVideo(path string, v *SyntheticVideo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[filepath.Clean(path)] = v
}

// DisableCodec makes CreateWriter reject codec.
func (s *SimulatedMediaBackend) DisableCodec(codec string) {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function": "SimulatedMediaBackend.DisableCodec",
		"codec":    codec,
	}).Info("Disabling simulated codec")

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codecs, codec)
}

// FailWritesAfter makes every writer reject frames after n successful writes.
// A negative n disables the injection.
func (s *SimulatedMediaBackend) FailWritesAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSink = n
}

// OpenSources returns the number of source handles not yet closed.
func (s *SimulatedMediaBackend) OpenSources() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources
}

// OpenWriters returns the number of writer handles not yet closed.
func (s *SimulatedMediaBackend) OpenWriters() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writers
}

// Output returns the record of the writer created for path.
func (s *SimulatedMediaBackend) Output(path string) (*OutputRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.outputs[filepath.Clean(path)]
	return rec, ok
}

// IsSimulation returns true since this is a simulation implementation
func (s *SimulatedMediaBackend) IsSimulation() bool {
	return true
}

// OpenSource implements IMediaBackend.OpenSource. Registered videos take
// precedence; otherwise the file at path is parsed as a synthetic description.
func (s *SimulatedMediaBackend) OpenSource(path string) (interfaces.IVideoSource, error) {
	s.mu.RLock()
	v, ok := s.videos[filepath.Clean(path)]
	s.mu.RUnlock()

	if !ok {
		parsed, err := ReadSyntheticFile(path)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "SimulatedMediaBackend.OpenSource",
				"path":     path,
				"error":    err.Error(),
			}).Debug("Simulated source unavailable")
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		v = parsed
	}

	s.mu.Lock()
	s.sources++
	s.mu.Unlock()

	return &simulatedSource{backend: s, video: v}, nil
}

// CreateWriter implements IMediaBackend.CreateWriter.
func (s *SimulatedMediaBackend) CreateWriter(path string, spec interfaces.WriterSpec) (interfaces.IVideoWriter, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	container := spec.Container
	if container == "" {
		container = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !simulatedContainers[container] {
		return nil, fmt.Errorf("%w: container %q", ErrCodecDisabled, container)
	}
	if !s.codecs[spec.Codec] {
		return nil, fmt.Errorf("%w: codec %q", ErrCodecDisabled, spec.Codec)
	}

	rec := &OutputRecord{Path: path, Spec: spec, ReadOrder: true}
	s.outputs[filepath.Clean(path)] = rec
	s.writers++

	return &simulatedWriter{backend: s, record: rec, failAfter: s.failSink}, nil
}

type simulatedSource struct {
	backend *SimulatedMediaBackend
	video   *SyntheticVideo
	base    *video.Frame
	cursor  int
	closed  bool
}

func (src *simulatedSource) Width() int      { return src.video.Width }
func (src *simulatedSource) Height() int     { return src.video.Height }
func (src *simulatedSource) FPS() float64    { return src.video.FPS }
func (src *simulatedSource) FrameCount() int { return src.video.FrameCount() }

func (src *simulatedSource) Read() (*video.Frame, error) {
	frame, err := src.ReadAt(src.cursor)
	if errors.Is(err, io.EOF) {
		return nil, err
	}
	src.cursor++
	return frame, err
}

func (src *simulatedSource) ReadAt(index int) (*video.Frame, error) {
	if src.closed {
		return nil, os.ErrClosed
	}
	if index < 0 || index >= src.video.Frames {
		return nil, io.EOF
	}
	if src.video.fails(index) {
		return nil, fmt.Errorf("%w at frame %d", ErrInjectedDecode, index)
	}
	if src.base == nil {
		src.base = src.video.base()
	}
	return src.video.shade(src.base, index), nil
}

func (src *simulatedSource) Close() error {
	if src.closed {
		return nil
	}
	src.closed = true

	src.backend.mu.Lock()
	src.backend.sources--
	src.backend.mu.Unlock()
	return nil
}

type simulatedWriter struct {
	backend   *SimulatedMediaBackend
	record    *OutputRecord
	failAfter int
	closed    bool
}

func (w *simulatedWriter) Write(frame *video.Frame) error {
	if w.closed {
		return os.ErrClosed
	}
	spec := w.record.Spec
	if frame.Width != spec.Width || frame.Height != spec.Height {
		return fmt.Errorf("frame %dx%d does not match writer %dx%d", frame.Width, frame.Height, spec.Width, spec.Height)
	}

	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()

	rec := w.record
	if w.failAfter >= 0 && rec.Frames >= w.failAfter {
		return ErrInjectedWrite
	}
	if n := len(rec.Indices); n > 0 && rec.Indices[n-1] >= frame.Index {
		rec.ReadOrder = false
	}
	if rec.First == nil {
		rec.First = frame.Clone()
	}
	rec.Last = frame.Clone()
	rec.Indices = append(rec.Indices, frame.Index)
	rec.Frames++
	return nil
}

func (w *simulatedWriter) FramesWritten() int {
	w.backend.mu.RLock()
	defer w.backend.mu.RUnlock()
	return w.record.Frames
}

// Close materializes the output as a synthetic description. Like ffmpeg,
// a writer that never received a frame produces no file.
func (w *simulatedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.backend.mu.Lock()
	w.backend.writers--
	w.record.Closed = true
	frames := w.record.Frames
	spec := w.record.Spec
	w.backend.mu.Unlock()

	if frames == 0 {
		return nil
	}

	out := &SyntheticVideo{
		Width:   spec.Width,
		Height:  spec.Height,
		FPS:     spec.FPS,
		Frames:  frames,
		Pattern: PatternGradient,
		Codec:   spec.Codec,
	}
	return WriteSyntheticFile(w.record.Path, out)
}
