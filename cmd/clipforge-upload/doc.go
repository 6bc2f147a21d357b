// Package main uploads videos to a clipforge server or lists its history.
//
// Usage:
//
//	clipforge-upload -server http://host:5000 -filter edges clip.mp4 [more.mp4 ...]
//	clipforge-upload -server http://host:5000 -history
//
// The CLIPFORGE_SERVER environment variable supplies the default -server.
package main
