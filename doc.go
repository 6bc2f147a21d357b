// Package clipforge implements the video processing core: metadata
// extraction, resolution normalization, per-frame filtering, re-encoding,
// thumbnail and animated preview generation.
//
// A job takes an uploaded source and three fully resolved output paths. The
// core never chooses paths, never persists anything and never deletes files;
// the storage, catalog and server packages are built on top of the Result it
// returns.
//
// # Getting Started
//
//	backend, err := factory.NewMediaBackendFactory().CreateMediaBackend()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pipeline := clipforge.NewPipeline(backend, clipforge.NewOptions())
//
//	result, err := pipeline.Process(clipforge.Job{
//	    ID:            "c0ffee",
//	    SourcePath:    "in.mp4",
//	    Filter:        video.ParseFilterKind("grayscale"),
//	    VideoPath:     "out/video.webm",
//	    ThumbnailPath: "out/frame_0001.jpg",
//	    PreviewPath:   "out/preview.gif",
//	})
//	if errors.Is(err, media.ErrCodecUnavailable) {
//	    // job aborted before any frame was written
//	}
//
// # Control Flow
//
//	ExtractMetadata → Normalize → Transcode → ┬→ Thumbnail
//	                                          └→ Preview
//
// Metadata failures leave the record unknown and the job continues. The
// thumbnail and preview run in parallel, each on its own source handle.
//
// # Failure Policy
//
// Process returns an error only when the job was aborted, which happens for
// an invalid job and for ErrCodecUnavailable. Every other failure is
// reported on the matching ArtifactResult so the caller can keep a processed
// video without a preview, or discard the upload when the video failed.
//
// A decode failure in the middle of the stream truncates the output and
// sets Transcode.Truncated. With Options.Transcode.StrictDecode the video
// artifact fails with ErrFrameDecode instead.
//
// # Concurrency
//
// A Pipeline is safe for concurrent use. Pool bounds the number of jobs in
// flight (runtime.NumCPU() by default):
//
//	pool := clipforge.NewPool(pipeline, 0)
//	results, err := pool.RunAll(ctx, jobs)
//
// The context only bounds the wait for a worker slot; a started job runs to
// completion.
package clipforge
