package thumbnail

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/media"
	"github.com/opd-ai/clipforge/media/video"
	simulation "github.com/opd-ai/clipforge/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(v *simulation.SyntheticVideo) *simulation.SimulatedMediaBackend {
	backend := simulation.NewSimulatedMediaBackend(&interfaces.MediaBackendConfig{UseSimulation: true, ProbeTimeout: 1000})
	if v != nil {
		backend.AddVideo("in.mp4", v)
	}
	return backend
}

func decodeImage(t *testing.T, path string, decode func(*os.File) (image.Image, error)) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := decode(f)
	require.NoError(t, err)
	return img
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{"a/frame_0001.jpg", FormatJPEG, false},
		{"a/frame.JPEG", FormatJPEG, false},
		{"a/frame.png", FormatPNG, false},
		{"a/frame.bmp", "", true},
		{"a/frame", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := FormatForPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestGenerate_JPEGAtTargetSize(t *testing.T) {
	backend := newTestBackend(&simulation.SyntheticVideo{Width: 1920, Height: 1080, FPS: 30, Frames: 3})
	dst := filepath.Join(t.TempDir(), "thumbs", "frame_0001.jpg")

	report, err := NewGenerator(backend).Generate("in.mp4", dst, video.Geometry{Width: 1280, Height: 720})
	require.NoError(t, err)

	assert.Equal(t, FormatJPEG, report.Format)
	assert.Equal(t, video.Geometry{Width: 1280, Height: 720}, report.Geometry)
	assert.Equal(t, 0, report.FrameIndex)
	assert.Zero(t, backend.OpenSources())

	img := decodeImage(t, dst, func(f *os.File) (image.Image, error) { return jpeg.Decode(f) })
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 720, img.Bounds().Dy())
}

func TestGenerate_PNGNativeSize(t *testing.T) {
	backend := newTestBackend(&simulation.SyntheticVideo{
		Width: 40, Height: 30, FPS: 30, Frames: 1,
		Pattern: simulation.PatternSolid, Color: [3]byte{200, 100, 50},
	})
	dst := filepath.Join(t.TempDir(), "thumb.png")

	report, err := NewGenerator(backend).Generate("in.mp4", dst, video.Geometry{})
	require.NoError(t, err)
	assert.Equal(t, video.Geometry{Width: 40, Height: 30}, report.Geometry)

	img := decodeImage(t, dst, func(f *os.File) (image.Image, error) { return png.Decode(f) })
	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, []uint32{200, 100, 50}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		video   *simulation.SyntheticVideo
		dst     string
		wantErr error
	}{
		{
			name:    "unreadable source",
			video:   nil,
			dst:     "thumb.jpg",
			wantErr: media.ErrUnreadableSource,
		},
		{
			name:    "first frame fails",
			video:   &simulation.SyntheticVideo{Width: 8, Height: 8, FPS: 30, Frames: 3, FailAt: []int{0}},
			dst:     "thumb.jpg",
			wantErr: media.ErrFrameDecode,
		},
		{
			name:    "empty video",
			video:   &simulation.SyntheticVideo{Width: 8, Height: 8, FPS: 30, Frames: 0},
			dst:     "thumb.jpg",
			wantErr: media.ErrFrameDecode,
		},
		{
			name:    "unsupported extension",
			video:   &simulation.SyntheticVideo{Width: 8, Height: 8, FPS: 30, Frames: 1},
			dst:     "thumb.tiff",
			wantErr: media.ErrWriteFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newTestBackend(tt.video)
			dst := filepath.Join(t.TempDir(), tt.dst)

			report, err := NewGenerator(backend).Generate("in.mp4", dst, video.Geometry{})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, media.StageThumbnail, media.StageOf(err))
			assert.Nil(t, report)
			assert.NoFileExists(t, dst)
			assert.Zero(t, backend.OpenSources())
		})
	}
}

func TestSetQuality(t *testing.T) {
	g := NewGenerator(newTestBackend(nil))
	assert.Equal(t, 95, g.quality)

	g.SetQuality(0)
	assert.Equal(t, 1, g.quality)
	g.SetQuality(250)
	assert.Equal(t, 100, g.quality)
}
