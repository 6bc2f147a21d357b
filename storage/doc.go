// Package storage manages the on-disk media tree of the upload server.
//
// # Layout
//
//	<root>/incoming/                     uploads being received
//	<root>/trash/                        originals of failed jobs
//	<root>/videos/YYYY/MM/DD/<id>/
//	    original/video.<ext>
//	    processed/<filter>/video.<ext>
//	    thumbs/frame_0001.jpg
//	    preview.gif
//	    meta.json
//
// Catalog rows store paths relative to the root, always with forward slashes,
// so they can be joined onto the /media/ URL prefix directly.
package storage
