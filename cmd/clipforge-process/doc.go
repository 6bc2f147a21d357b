// Package main runs a single clipforge job on local files and prints the
// result as JSON.
//
// Usage:
//
//	clipforge-process -input clip.mp4 -filter edges -out ./out
//
// The output directory receives video.<container>, thumbnail.jpg and
// preview.gif. The exit status is 1 when the job is aborted or the processed
// video could not be produced.
package main
