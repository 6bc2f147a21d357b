// Package video provides frame-level processing for the clipforge pipeline.
//
// This file defines the decoded raster type shared by the decoders, the
// filter engine and the encoders.
package video

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Channels is the number of interleaved color channels in a Frame (R, G, B).
const Channels = 3

// Frame is a decoded raster buffer of Height rows of Width RGB pixels.
//
// Index is the zero-based position of the frame in the source decode order.
// A Frame is owned by whichever component decoded it and is never shared
// across components.
type Frame struct {
	Width  int
	Height int
	Pix    []byte // Width*Height*Channels bytes, row-major, RGB
	Index  int
}

// NewFrame allocates a black frame of the given geometry.
func NewFrame(width, height, index int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*Channels),
		Index:  index,
	}
}

// FromPacked builds a Frame from an interleaved buffer with 3 (RGB) or
// 4 (RGBA) channels per pixel. The alpha channel is dropped.
func FromPacked(buf []byte, width, height, index int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}

	pixels := width * height
	if len(buf) < pixels*Channels || len(buf)%pixels != 0 {
		return nil, fmt.Errorf("buffer size %d does not match %dx%d", len(buf), width, height)
	}

	depth := len(buf) / pixels
	switch depth {
	case Channels:
		f := NewFrame(width, height, index)
		copy(f.Pix, buf)
		return f, nil
	case 4:
		f := NewFrame(width, height, index)
		for i, o := 0, 0; i < pixels; i, o = i+1, o+4 {
			copy(f.Pix[i*Channels:i*Channels+Channels], buf[o:o+Channels])
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported channel depth %d", depth)
	}
}

// FromImage converts any image into a Frame.
func FromImage(img image.Image, index int) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy(), index)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < f.Height; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < f.Width; x++ {
				copy(f.Pix[(y*f.Width+x)*Channels:], row[x*4:x*4+Channels])
			}
		}
		return f
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			f.Set(x, y, c.R, c.G, c.B)
		}
	}
	return f
}

// Packed returns the frame as an interleaved buffer with depth channels (3 or 4).
// For depth 4 the alpha channel is fully opaque.
func (f *Frame) Packed(depth int) []byte {
	if depth == Channels {
		return append([]byte(nil), f.Pix...)
	}

	out := make([]byte, f.Width*f.Height*depth)
	for i, o := 0, 0; i < len(f.Pix); i, o = i+Channels, o+depth {
		copy(out[o:o+Channels], f.Pix[i:i+Channels])
		for c := Channels; c < depth; c++ {
			out[o+c] = 0xff
		}
	}
	return out
}

// RGBA returns the frame in display order as an opaque *image.RGBA.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, o := 0, 0; i < len(f.Pix); i, o = i+Channels, o+4 {
		img.Pix[o] = f.Pix[i]
		img.Pix[o+1] = f.Pix[i+1]
		img.Pix[o+2] = f.Pix[i+2]
		img.Pix[o+3] = 0xff
	}
	return img
}

// Geometry returns the frame size.
func (f *Frame) Geometry() Geometry {
	return Geometry{Width: f.Width, Height: f.Height}
}

// At returns the color of pixel (x, y).
func (f *Frame) At(x, y int) (r, g, b byte) {
	i := (y*f.Width + x) * Channels
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Set stores the color of pixel (x, y).
func (f *Frame) Set(x, y int, r, g, b byte) {
	i := (y*f.Width + x) * Channels
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// Clone creates a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	return &Frame{
		Width:  f.Width,
		Height: f.Height,
		Pix:    append([]byte(nil), f.Pix...),
		Index:  f.Index,
	}
}

// Equal reports whether both frames have the same geometry and pixels.
// The frame index is not compared.
func (f *Frame) Equal(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Width == other.Width && f.Height == other.Height && bytes.Equal(f.Pix, other.Pix)
}

// Validate checks that the pixel buffer matches the frame geometry.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("video frame cannot be nil")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions: %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height * Channels; len(f.Pix) != want {
		return fmt.Errorf("pixel buffer size mismatch: got %d, expected %d", len(f.Pix), want)
	}
	return nil
}
