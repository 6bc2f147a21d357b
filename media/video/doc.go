// Package video provides frame-level processing for the clipforge pipeline.
//
// This package implements everything that operates on decoded rasters:
// the Frame type, resolution normalization, resampling and the fixed set of
// per-frame filters applied before encoding.
//
// # Architecture Overview
//
// The transcode loop pushes every decoded frame through the same stages:
//
//	Decoded RGB Frame → Area Resize (to target) → Filter → Encoder
//
// Each stage is a plain function over *Frame and can be used independently.
//
// # Video Frames
//
// Frames are interleaved 8-bit RGB buffers:
//
//	frame := video.NewFrame(1280, 720, 0)
//	frame.Set(10, 10, 255, 0, 0)
//	r, g, b := frame.At(10, 10)
//
// Decoders that produce RGBA buffers convert them with FromPacked, and
// encoders expecting RGBA receive Packed(4).
//
// # Resolution Normalization
//
// Normalize caps the width at a maximum while preserving the aspect ratio
// and never upscales:
//
//	target := video.Normalize(1920, 1080, limits.MaxOutputWidth) // 1280x720
//	target = video.Normalize(640, 480, limits.MaxOutputWidth)    // 640x480
//
// # Resampling
//
//   - ResizeArea: coverage-weighted area averaging, used for downscaling
//   - ResizeLinear: bilinear interpolation (golang.org/x/image/draw)
//   - ResizeNearest: nearest-neighbor interpolation (golang.org/x/image/draw)
//   - ResizeImage: Catmull-Rom resampling into an *image.RGBA for display
//
// # Filters
//
// Filters form a closed set dispatched through a table of pure functions:
//
//	kind := video.ParseFilterKind("grayscale")
//	out := video.Apply(kind, frame)
//
// Available filters:
//   - identity: returns the input frame unchanged
//   - grayscale: BT.601 luminance replicated into three channels
//   - pixelize: 16x16 blocks (bilinear down, nearest-neighbor up)
//   - edges: Canny edge map with thresholds 100/200
//
// Unknown names and out-of-range kinds fall back to identity. Given the same
// input frame every filter produces the same output frame.
//
// # Thread Safety
//
// All functions in this package are stateless. A Frame itself is not
// synchronized and must not be mutated while another goroutine reads it.
package video
