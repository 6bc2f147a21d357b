package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticMarshalParse(t *testing.T) {
	original := &SyntheticVideo{
		Width:          1920,
		Height:         1080,
		FPS:            29.97,
		Frames:         300,
		Pattern:        PatternSolid,
		Color:          [3]byte{10, 20, 30},
		ReportedFrames: 310,
		FailAt:         []int{12, 40},
		Codec:          "libvpx",
	}

	parsed, err := ParseSynthetic(original.Marshal())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseSynthetic_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"wrong magic", "mp4 width=1 height=1"},
		{"malformed field", SyntheticMagic + " width"},
		{"unknown key", SyntheticMagic + " width=1 height=1 bogus=2"},
		{"bad number", SyntheticMagic + " width=abc height=1"},
		{"missing geometry", SyntheticMagic + " fps=30 frames=2"},
		{"bad color", SyntheticMagic + " width=1 height=1 color=1,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSynthetic([]byte(tt.data))
			assert.ErrorIs(t, err, ErrNotSynthetic)
		})
	}
}

func TestSyntheticRender(t *testing.T) {
	solid := &SyntheticVideo{Width: 4, Height: 4, Pattern: PatternSolid, Color: [3]byte{1, 2, 3}}
	frame := solid.Render(7)
	assert.Equal(t, 7, frame.Index)
	r, g, b := frame.At(3, 3)
	assert.Equal(t, []byte{1, 2, 3}, []byte{r, g, b})

	checker := &SyntheticVideo{Width: 32, Height: 32, Pattern: PatternCheckerboard}
	frame = checker.Render(0)
	r, _, _ = frame.At(0, 0)
	assert.Equal(t, byte(255), r)
	r, _, _ = frame.At(16, 0)
	assert.Equal(t, byte(0), r)

	gradient := &SyntheticVideo{Width: 2, Height: 1}
	frame = gradient.Render(0)
	r, _, _ = frame.At(1, 0)
	assert.Equal(t, byte(255), r)
}

func TestSyntheticRender_GradientVariesByIndex(t *testing.T) {
	gradient := &SyntheticVideo{Width: 8, Height: 8}
	first, second := gradient.Render(0), gradient.Render(1)
	assert.False(t, first.Equal(second))

	r0, g0, b0 := first.At(3, 2)
	r1, g1, b1 := second.At(3, 2)
	assert.Equal(t, []byte{r0, g0}, []byte{r1, g1})
	assert.Equal(t, b0+1, b1)

	solid := &SyntheticVideo{Width: 8, Height: 8, Pattern: PatternSolid, Color: [3]byte{9, 9, 9}}
	assert.True(t, solid.Render(0).Equal(solid.Render(5)))
}
