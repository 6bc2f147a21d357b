// Package video provides video effects processing capabilities for clipforge.
//
// This file implements the fixed filter set applied to every decoded frame.
// The set is closed: kinds are dispatched through a single table of pure
// functions and anything unrecognized falls back to identity.
package video

import (
	"strings"

	"github.com/opd-ai/clipforge/limits"
)

// FilterKind selects one of the per-frame transforms.
type FilterKind int

const (
	// FilterIdentity leaves frames untouched
	FilterIdentity FilterKind = iota
	// FilterGrayscale replaces every pixel with its luminance
	FilterGrayscale
	// FilterPixelize averages the frame into 16x16 blocks
	FilterPixelize
	// FilterEdges keeps only the detected edges
	FilterEdges

	filterKindCount
)

// FilterFunc is a pure frame transform.
type FilterFunc func(frame *Frame) *Frame

var filterNames = [filterKindCount]string{
	FilterIdentity:  "identity",
	FilterGrayscale: "grayscale",
	FilterPixelize:  "pixelize",
	FilterEdges:     "edges",
}

var filterTable = [filterKindCount]FilterFunc{
	FilterIdentity:  identity,
	FilterGrayscale: Grayscale,
	FilterPixelize: func(frame *Frame) *Frame {
		return Pixelize(frame, limits.PixelizeBlockSize)
	},
	FilterEdges: func(frame *Frame) *Frame {
		return Edges(frame, limits.EdgeLowThreshold, limits.EdgeHighThreshold)
	},
}

// ParseFilterKind maps a filter name to its kind. Unknown names map to FilterIdentity.
func ParseFilterKind(name string) FilterKind {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range filterNames {
		if n == name {
			return FilterKind(kind)
		}
	}
	return FilterIdentity
}

// FilterKinds returns every supported kind in declaration order.
func FilterKinds() []FilterKind {
	kinds := make([]FilterKind, 0, filterKindCount)
	for k := FilterIdentity; k < filterKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is one of the declared kinds.
func (k FilterKind) Valid() bool {
	return k >= FilterIdentity && k < filterKindCount
}

// String returns the filter name.
func (k FilterKind) String() string {
	if !k.Valid() {
		return filterNames[FilterIdentity]
	}
	return filterNames[k]
}

// Apply runs the transform selected by kind. Kinds outside the declared set
// behave as FilterIdentity.
func Apply(kind FilterKind, frame *Frame) *Frame {
	if !kind.Valid() {
		kind = FilterIdentity
	}
	return filterTable[kind](frame)
}

func identity(frame *Frame) *Frame {
	return frame
}

// Luminance returns the single-channel BT.601 luma of a frame.
//
// The fixed-point weights sum to 1<<14, so a pixel whose channels are all
// equal maps to that same value.
func Luminance(frame *Frame) []byte {
	const (
		rWeight = 4899
		gWeight = 9617
		bWeight = 1868
		shift   = 14
	)

	luma := make([]byte, frame.Width*frame.Height)
	for i := range luma {
		p := frame.Pix[i*Channels : i*Channels+Channels]
		luma[i] = byte((int(p[0])*rWeight + int(p[1])*gWeight + int(p[2])*bWeight + 1<<(shift-1)) >> shift)
	}
	return luma
}

// ExpandGray replicates a single-channel plane into a 3-channel frame.
func ExpandGray(plane []byte, width, height, index int) *Frame {
	out := NewFrame(width, height, index)
	for i, v := range plane {
		o := i * Channels
		out.Pix[o], out.Pix[o+1], out.Pix[o+2] = v, v, v
	}
	return out
}

// Grayscale converts a frame to luminance and expands it back to three
// identical channels so the encoder layout is unchanged.
func Grayscale(frame *Frame) *Frame {
	return ExpandGray(Luminance(frame), frame.Width, frame.Height, frame.Index)
}

// Pixelize downsamples the frame by blockSize with bilinear interpolation and
// upsamples it back with nearest-neighbor interpolation, producing uniform
// blocks. The downsampled size is at least 1x1.
func Pixelize(frame *Frame, blockSize int) *Frame {
	if blockSize < 1 {
		blockSize = 1
	}

	smallW := frame.Width / blockSize
	if smallW < 1 {
		smallW = 1
	}
	smallH := frame.Height / blockSize
	if smallH < 1 {
		smallH = 1
	}

	small := ResizeLinear(frame, smallW, smallH)
	out := ResizeNearest(small, frame.Width, frame.Height)
	out.Index = frame.Index
	return out
}

// Edges runs edge detection on the frame luminance and expands the binary
// edge map to three channels.
func Edges(frame *Frame, low, high int) *Frame {
	edges := Canny(Luminance(frame), frame.Width, frame.Height, low, high)
	return ExpandGray(edges, frame.Width, frame.Height, frame.Index)
}
