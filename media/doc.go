// Package media holds the shared vocabulary of the clipforge pipeline: the
// error taxonomy, source metadata and atomic artifact writes.
//
// # Error Taxonomy
//
// Every stage reports failures as a *StageError naming the stage and path,
// wrapping one of the sentinels:
//
//   - ErrUnreadableSource: the source could not be opened. Metadata becomes
//     unknown; other stages lose only their own artifact.
//   - ErrCodecUnavailable: the output writer could not be initialized. This
//     is the only failure that aborts a job.
//   - ErrFrameDecode: a frame failed to decode. The encoder truncates its
//     output, the preview skips the frame.
//   - ErrNoFramesProduced: a generator captured nothing.
//   - ErrWriteFailure: an artifact could not be written after opening.
//
// Classify with errors.Is and recover the stage with StageOf:
//
//	_, err := media.ExtractMetadata(backend, path)
//	if errors.Is(err, media.ErrUnreadableSource) {
//	    log.Printf("%s failed, continuing", media.StageOf(err))
//	}
//
// # Subpackages
//
//   - video: frames, normalization, resampling and filters
//   - transcode: decode, resize, filter and re-encode a source
//   - thumbnail: first-frame still image
//   - preview: sampled looping GIF
package media
