// Package video provides video scaling capabilities for clipforge.
//
// This file implements resolution normalization and the frame resamplers
// used by the encoder, the pixelize filter and the preview generator.
package video

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Geometry is a frame size in pixels.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String formats the geometry as WIDTHxHEIGHT.
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// IsZero reports whether either dimension is unknown.
func (g Geometry) IsZero() bool {
	return g.Width <= 0 || g.Height <= 0
}

// Normalize computes the target geometry for a source of srcWidth x srcHeight
// capped at maxWidth.
//
// Sources wider than maxWidth are scaled down to exactly maxWidth with the
// height rounded to preserve the aspect ratio. Narrower sources keep their
// geometry; the result is never upscaled.
func Normalize(srcWidth, srcHeight, maxWidth int) Geometry {
	if srcWidth <= maxWidth || srcWidth <= 0 || maxWidth <= 0 {
		return Geometry{Width: srcWidth, Height: srcHeight}
	}

	// round(maxWidth * srcHeight / srcWidth) in integer arithmetic
	height := (2*maxWidth*srcHeight + srcWidth) / (2 * srcWidth)
	if height < 1 {
		height = 1
	}
	return Geometry{Width: maxWidth, Height: height}
}

// ScaleGeometry multiplies a geometry by factor, truncating toward zero.
// Each dimension is at least 1.
func ScaleGeometry(g Geometry, factor float64) Geometry {
	// the epsilon keeps products like 1920*0.3 from truncating to 575
	w := int(float64(g.Width)*factor + 1e-9)
	h := int(float64(g.Height)*factor + 1e-9)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Geometry{Width: w, Height: h}
}

// ResizeArea resamples a frame by pixel-area averaging.
//
// Every destination pixel is the coverage-weighted mean of the source pixels
// its footprint overlaps, which is the preferred filter for downscaling.
// Returns a copy when the geometry already matches.
func ResizeArea(frame *Frame, width, height int) *Frame {
	if frame.Width == width && frame.Height == height {
		return frame.Clone()
	}

	xs := areaWeights(frame.Width, width)
	ys := areaWeights(frame.Height, height)
	out := NewFrame(width, height, frame.Index)

	var acc [Channels]float64
	for dy, wy := range ys {
		for dx, wx := range xs {
			acc = [Channels]float64{}
			total := 0.0
			for _, cy := range wy {
				row := cy.index * frame.Width
				for _, cx := range wx {
					w := cy.weight * cx.weight
					i := (row + cx.index) * Channels
					acc[0] += w * float64(frame.Pix[i])
					acc[1] += w * float64(frame.Pix[i+1])
					acc[2] += w * float64(frame.Pix[i+2])
					total += w
				}
			}
			o := (dy*width + dx) * Channels
			for c := 0; c < Channels; c++ {
				out.Pix[o+c] = clampByte(acc[c]/total + 0.5)
			}
		}
	}
	return out
}

type coverage struct {
	index  int
	weight float64
}

// areaWeights returns, for every destination index, the source indices its
// footprint covers and the covered fraction of each.
func areaWeights(src, dst int) [][]coverage {
	scale := float64(src) / float64(dst)
	table := make([][]coverage, dst)
	for d := 0; d < dst; d++ {
		start := float64(d) * scale
		end := start + scale
		for s := int(start); s < src && float64(s) < end; s++ {
			lo := maxFloat(start, float64(s))
			hi := minFloat(end, float64(s+1))
			if hi > lo {
				table[d] = append(table[d], coverage{index: s, weight: hi - lo})
			}
		}
		if len(table[d]) == 0 {
			table[d] = append(table[d], coverage{index: minInt(int(start), src-1), weight: 1})
		}
	}
	return table
}

// ResizeLinear resamples a frame with bilinear interpolation.
func ResizeLinear(frame *Frame, width, height int) *Frame {
	return resizeWith(draw.ApproxBiLinear, frame, width, height)
}

// ResizeNearest resamples a frame with nearest-neighbor interpolation.
func ResizeNearest(frame *Frame, width, height int) *Frame {
	return resizeWith(draw.NearestNeighbor, frame, width, height)
}

// ResizeImage resamples a frame into a display-order image with the
// Catmull-Rom kernel.
func ResizeImage(frame *Frame, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), frame.RGBA(), image.Rect(0, 0, frame.Width, frame.Height), draw.Src, nil)
	return dst
}

func resizeWith(interp draw.Interpolator, frame *Frame, width, height int) *Frame {
	if frame.Width == width && frame.Height == height {
		return frame.Clone()
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	interp.Scale(dst, dst.Bounds(), frame.RGBA(), image.Rect(0, 0, frame.Width, frame.Height), draw.Src, nil)
	return FromImage(dst, frame.Index)
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
