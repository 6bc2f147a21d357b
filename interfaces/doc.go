// Package interfaces defines core abstractions for decoding and encoding video
// in clipforge.
//
// This package provides the foundational interfaces that enable switching between
// the ffmpeg-backed implementation and synthetic in-memory media, supporting both
// production deployments and deterministic testing scenarios.
//
// # Core Interfaces
//
// [IMediaBackend] opens decoders and encoders. Every pipeline stage receives a
// backend and opens its own handles from it:
//
//	backend, err := factory.NewMediaBackendFactory().CreateMediaBackend()
//	src, err := backend.OpenSource("input.mp4")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
// [IVideoSource] yields decoded frames in order with Read, or at an arbitrary
// index with ReadAt. Read returns io.EOF at the end of the stream:
//
//	for {
//	    frame, err := src.Read()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err // decode failure
//	    }
//	    process(frame)
//	}
//
// [IVideoWriter] accepts frames matching the geometry given in [WriterSpec].
// CreateWriter fails before any file is created when the requested container
// or codec cannot be used.
//
// # Configuration
//
// [MediaBackendConfig] selects the implementation:
//
//	config := &interfaces.MediaBackendConfig{
//	    UseSimulation: false,
//	    FFmpegPath:    "ffmpeg",
//	    ProbeTimeout:  5000,
//	}
//	if err := config.Validate(); err != nil {
//	    return err
//	}
//
// # Implementations
//
// Production code uses the real package (Vidio over ffmpeg pipes); tests use
// the testing package (synthetic sources with failure injection). The factory
// package selects between them based on configuration and environment.
package interfaces
