// Package config loads the clipforge server configuration.
//
// Configuration is read from a single YAML file. Decoding is strict: unknown
// keys are rejected so that typos surface at startup instead of silently
// falling back to defaults. Every field has an explicit default applied after
// decoding, and Validate reports the first out-of-range value.
//
// # Sections
//
//	server:      listen address, upload cap, shutdown timeout
//	storage:     media root and catalog database path
//	processing:  worker count, output container/codec, decode policy
//	media:       backend selection, ffmpeg binary, encoder probe timeout
//	logging:     logrus level and text/json formatter
//
// Environment overrides for the media backend are applied by the factory
// package, not here.
package config
