package testing

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/opd-ai/clipforge/media/video"
)

// SyntheticMagic starts every serialized synthetic video.
const SyntheticMagic = "clipforge-synthetic"

// ErrNotSynthetic indicates that data does not describe a synthetic video.
var ErrNotSynthetic = errors.New("not a synthetic video")

// Pattern selects the generated frame content.
type Pattern string

const (
	// PatternGradient varies red along x, green along y and blue along both
	// plus the frame index, so consecutive frames differ
	PatternGradient Pattern = "gradient"
	// PatternSolid fills every pixel with Color
	PatternSolid Pattern = "solid"
	// PatternCheckerboard alternates black and white 16x16 squares
	PatternCheckerboard Pattern = "checker"
)

// SyntheticVideo describes a generated video stream.
type SyntheticVideo struct {
	Width   int
	Height  int
	FPS     float64
	Frames  int
	Pattern Pattern
	Color   [3]byte

	// ReportedFrames overrides the frame count exposed as metadata; zero
	// means Frames. Containers often report counts that differ from what
	// actually decodes.
	ReportedFrames int

	// FailAt lists frame indices that fail to decode
	FailAt []int

	// Codec is set on videos produced by a simulated writer
	Codec string
}

// FrameCount returns the frame count exposed by an open source.
func (v *SyntheticVideo) FrameCount() int {
	if v.ReportedFrames > 0 {
		return v.ReportedFrames
	}
	return v.Frames
}

func (v *SyntheticVideo) fails(index int) bool {
	for _, i := range v.FailAt {
		if i == index {
			return true
		}
	}
	return false
}

// Render builds frame index of the video.
func (v *SyntheticVideo) Render(index int) *video.Frame {
	return v.shade(v.base(), index)
}

// shade copies base as frame index. Gradient frames get their blue channel
// advanced by index; the other patterns are static.
func (v *SyntheticVideo) shade(base *video.Frame, index int) *video.Frame {
	frame := base.Clone()
	frame.Index = index
	if v.Pattern == PatternSolid || v.Pattern == PatternCheckerboard {
		return frame
	}
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			r, g, b := frame.At(x, y)
			frame.Set(x, y, r, g, b+byte(index))
		}
	}
	return frame
}

func (v *SyntheticVideo) base() *video.Frame {
	frame := video.NewFrame(v.Width, v.Height, 0)
	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			switch v.Pattern {
			case PatternSolid:
				frame.Set(x, y, v.Color[0], v.Color[1], v.Color[2])
			case PatternCheckerboard:
				if (x/16+y/16)%2 == 0 {
					frame.Set(x, y, 255, 255, 255)
				}
			default:
				frame.Set(x, y, byte(x*255/maxInt(v.Width-1, 1)), byte(y*255/maxInt(v.Height-1, 1)), byte((x+y)&0xff))
			}
		}
	}
	return frame
}

// Marshal serializes the description as a single text line.
func (v *SyntheticVideo) Marshal() []byte {
	fields := []string{
		SyntheticMagic,
		"width=" + strconv.Itoa(v.Width),
		"height=" + strconv.Itoa(v.Height),
		"fps=" + strconv.FormatFloat(v.FPS, 'g', -1, 64),
		"frames=" + strconv.Itoa(v.Frames),
	}
	if v.Pattern != "" {
		fields = append(fields, "pattern="+string(v.Pattern))
	}
	if v.Pattern == PatternSolid {
		fields = append(fields, fmt.Sprintf("color=%d,%d,%d", v.Color[0], v.Color[1], v.Color[2]))
	}
	if v.ReportedFrames > 0 {
		fields = append(fields, "reported="+strconv.Itoa(v.ReportedFrames))
	}
	if len(v.FailAt) > 0 {
		fail := make([]string, len(v.FailAt))
		for i, n := range v.FailAt {
			fail[i] = strconv.Itoa(n)
		}
		fields = append(fields, "fail="+strings.Join(fail, ","))
	}
	if v.Codec != "" {
		fields = append(fields, "codec="+v.Codec)
	}
	return []byte(strings.Join(fields, " ") + "\n")
}

// ParseSynthetic decodes a description produced by Marshal.
func ParseSynthetic(data []byte) (*SyntheticVideo, error) {
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != SyntheticMagic {
		return nil, ErrNotSynthetic
	}

	v := &SyntheticVideo{Pattern: PatternGradient}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("%w: malformed field %q", ErrNotSynthetic, field)
		}
		if err := v.setField(key, value); err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrNotSynthetic, key, err)
		}
	}
	if v.Width <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("%w: missing geometry", ErrNotSynthetic)
	}
	return v, nil
}

func (v *SyntheticVideo) setField(key, value string) error {
	var err error
	switch key {
	case "width":
		v.Width, err = strconv.Atoi(value)
	case "height":
		v.Height, err = strconv.Atoi(value)
	case "fps":
		v.FPS, err = strconv.ParseFloat(value, 64)
	case "frames":
		v.Frames, err = strconv.Atoi(value)
	case "reported":
		v.ReportedFrames, err = strconv.Atoi(value)
	case "pattern":
		v.Pattern = Pattern(value)
	case "codec":
		v.Codec = value
	case "color":
		parts := strings.Split(value, ",")
		if len(parts) != 3 {
			return fmt.Errorf("want 3 components, got %d", len(parts))
		}
		for i, p := range parts {
			c, perr := strconv.ParseUint(p, 10, 8)
			if perr != nil {
				return perr
			}
			v.Color[i] = byte(c)
		}
	case "fail":
		for _, p := range strings.Split(value, ",") {
			n, perr := strconv.Atoi(p)
			if perr != nil {
				return perr
			}
			v.FailAt = append(v.FailAt, n)
		}
		sort.Ints(v.FailAt)
	default:
		return fmt.Errorf("unknown key")
	}
	return err
}

// WriteSyntheticFile writes the serialized description to path so that a
// simulated backend can open it like a real video file.
func WriteSyntheticFile(path string, v *SyntheticVideo) error {
	return os.WriteFile(path, v.Marshal(), 0o644)
}

// ReadSyntheticFile parses a file written by WriteSyntheticFile or by a
// simulated writer.
func ReadSyntheticFile(path string) (*SyntheticVideo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSynthetic(data)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
