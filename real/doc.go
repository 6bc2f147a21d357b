// Package real provides the production ffmpeg-backed media implementation for
// clipforge.
//
// This package implements interfaces.IMediaBackend with
// github.com/AlexEidt/Vidio, which decodes and encodes through ffprobe and
// ffmpeg subprocesses connected by pipes. It serves as the production
// implementation, distinct from the synthetic media in the testing package.
//
// # Architecture
//
//	┌─────────────────────────────────────────┐
//	│              VidioBackend               │
//	│  ┌─────────────┐  ┌─────────────────┐   │
//	│  │  Container  │  │  Encoder Probe  │   │
//	│  │ Codec Table │  │    (cached)     │   │
//	│  └─────────────┘  └─────────────────┘   │
//	└───────────────┬─────────────────────────┘
//	                │
//	                ▼
//	┌─────────────────────────────────────────┐
//	│   vidio.Video / vidio.VideoWriter       │
//	│     ffprobe + ffmpeg subprocesses       │
//	└─────────────────────────────────────────┘
//
// # Usage
//
//	config := &interfaces.MediaBackendConfig{
//	    FFmpegPath:   "ffmpeg",
//	    ProbeTimeout: 5000,
//	}
//	backend := real.NewVidioBackend(config)
//
//	w, err := backend.CreateWriter("out.webm", interfaces.WriterSpec{
//	    Width: 1280, Height: 720, FPS: 30, Codec: "libvpx",
//	})
//	if err != nil {
//	    // container, codec or encoder unavailable; no file was created
//	}
//
// # Codec Verification
//
// Vidio starts ffmpeg only when the first frame is written, so an
// unsupported codec would otherwise surface mid-stream. CreateWriter checks
// three things before returning a writer:
//
//   - the extension names a known container (webm, mp4, mkv, avi, mov)
//   - the codec may be muxed into that container
//   - `ffmpeg -hide_banner -encoders` lists the codec as a video encoder
//
// The probe runs once per backend, bounded by ProbeTimeout, and its result
// is cached. SetRunner replaces the command runner for tests.
//
// # Frame Counts
//
// Some containers carry no frame count; the source then estimates it from
// duration and frame rate. Because Vidio reports a decode failure and the
// end of the stream the same way, a source that stops before its known
// frame count returns ErrPrematureEnd rather than io.EOF.
//
// # Thread Safety
//
// VidioBackend is safe for concurrent use. Source and writer handles are not.
package real
