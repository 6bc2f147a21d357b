// Package main runs the clipforge upload server.
//
// Usage:
//
//	clipforge [-config clipforge.yaml]
//
// Without -config every default applies. CLIPFORGE_USE_SIMULATION,
// CLIPFORGE_FFMPEG_PATH and CLIPFORGE_PROBE_TIMEOUT override the media
// section of the file. The server stops gracefully on SIGINT or SIGTERM.
package main
