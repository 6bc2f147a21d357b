// Package factory provides a factory pattern implementation for creating media
// backend implementations in clipforge.
//
// The factory abstracts the creation of media backends, allowing seamless
// switching between synthetic media (for testing) and the ffmpeg implementation
// without changing consuming code.
//
// # Configuration
//
// The factory supports configuration via environment variables:
//   - CLIPFORGE_USE_SIMULATION: "true" or "false" to enable simulation mode
//   - CLIPFORGE_FFMPEG_PATH: ffmpeg binary used for the encoder probe
//   - CLIPFORGE_PROBE_TIMEOUT: integer milliseconds, within [100, 120000]
//
// Invalid or out-of-range values are logged and the default is kept.
//
// # Usage
//
//	// Create factory with default configuration
//	factory := NewMediaBackendFactory()
//
//	// Create the configured implementation
//	backend, err := factory.CreateMediaBackend()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing Support
//
// CreateSimulationForTesting returns the concrete simulated backend so tests
// can register synthetic videos and inject failures:
//
//	func TestMyFeature(t *testing.T) {
//	    backend := factory.NewMediaBackendFactory().CreateSimulationForTesting()
//	    backend.AddVideo("in.mp4", &testing.SyntheticVideo{Width: 64, Height: 48, FPS: 30, Frames: 10})
//	    // Use backend in tests...
//	}
//
// # Mode Switching
//
//	factory := NewMediaBackendFactory()
//	factory.SwitchToSimulation()  // Switch to simulation mode
//	factory.SwitchToReal()        // Switch back to real mode
package factory
