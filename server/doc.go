// Package server exposes the clipforge pipeline over HTTP.
//
// # Routes
//
//	POST /upload        multipart upload: "video" file and "filter" name
//	GET  /videos        catalog records, newest first
//	GET  /videos/{id}   one catalog record
//	GET  /media/...     stored files (originals, processed videos, stills)
//	GET  /              HTML index of processed videos
//
// An upload is processed synchronously on the request goroutine within the
// worker pool limit. A 201 response means the processed video exists and the
// catalog row was written; thumbnail and preview failures are recorded in
// meta.json but do not fail the request.
package server
