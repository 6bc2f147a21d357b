// Package testing provides simulation-based media infrastructure for
// deterministic testing of clipforge.
//
// # Overview
//
// This package implements a simulated media backend that mirrors the
// ffmpeg-backed implementation but operates entirely in-memory. Frames are
// generated from a compact description, so tests exercise the full decode,
// filter and encode path without ffmpeg installed.
//
// # Simulation vs Real Implementation
//
//   - Simulation (this package): synthetic sources with failure injection,
//     recorded outputs and open-handle accounting. Used for unit and
//     integration testing.
//
//   - Real (real package): Vidio decoders and encoders over ffmpeg pipes.
//     Used for production deployments.
//
// Both implementations conform to interfaces.IMediaBackend, allowing
// seamless switching via the factory package.
//
// # Usage
//
//	backend := testing.NewSimulatedMediaBackend(&interfaces.MediaBackendConfig{
//	    UseSimulation: true,
//	    ProbeTimeout:  1000,
//	})
//	backend.AddVideo("in.mp4", &testing.SyntheticVideo{
//	    Width: 1920, Height: 1080, FPS: 30, Frames: 300,
//	    FailAt: []int{150}, // decode failure injected at frame 150
//	})
//	backend.DisableCodec("libx264")
//
// Synthetic videos can also live on disk. WriteSyntheticFile stores the
// description as a single text line; OpenSource parses such files when the
// path is not registered, and simulated writers produce the same format on
// Close so outputs can be reopened:
//
//	clipforge-synthetic width=1920 height=1080 fps=30 frames=300 pattern=gradient
//
// # Verification
//
// Output returns what a writer received (geometry, frame count, first and
// last frame, decode order). OpenSources and OpenWriters report handles not
// yet closed, which every test should expect to be zero after a stage
// returns.
//
// # Thread Safety
//
// The backend is safe for concurrent use. Individual source and writer
// handles are not and must stay on one goroutine.
package testing
