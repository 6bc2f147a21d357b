// Package limits provides the centralized processing constants and validation
// functions for the clipforge pipeline. Every stage reads its fixed parameters
// from here so the encoder, the preview generator and the upload server agree
// on the same numbers.
//
// # Geometry
//
//   - MaxOutputWidth (1280 px): the processed video is never wider than this.
//     Sources that are already narrower keep their geometry; nothing is upscaled.
//
// # Filters
//
//   - PixelizeBlockSize (16): side of the blocks produced by the pixelize filter.
//   - EdgeLowThreshold / EdgeHighThreshold (100 / 200): the hysteresis thresholds
//     of the edge detector.
//
// # Preview
//
//   - PreviewFrameCount (30): number of frames sampled uniformly across the source.
//   - PreviewScale (0.3): scale factor applied to the source geometry.
//   - PreviewFrameDelay (100ms): display time of every preview frame.
//
// # Validation Functions
//
// Validation helpers return wrapped sentinel errors so callers can classify
// failures with errors.Is:
//
//	if err := limits.ValidateDimensions(w, h); err != nil {
//	    // errors.Is(err, limits.ErrInvalidDimensions)
//	}
//
//	if err := limits.ValidateUploadSize(header.Size, limits.MaxUploadSize); err != nil {
//	    // errors.Is(err, limits.ErrUploadEmpty) or errors.Is(err, limits.ErrUploadTooLarge)
//	}
package limits
