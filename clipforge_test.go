package clipforge

import (
	"context"
	"errors"
	"image/gif"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/media"
	"github.com/opd-ai/clipforge/media/video"
	simulation "github.com/opd-ai/clipforge/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend() *simulation.SimulatedMediaBackend {
	return simulation.NewSimulatedMediaBackend(&interfaces.MediaBackendConfig{UseSimulation: true, ProbeTimeout: 1000})
}

// newTestJob builds a job whose outputs live in a fresh temp directory.
func newTestJob(t *testing.T, source string, filter video.FilterKind) Job {
	t.Helper()
	dir := t.TempDir()
	return Job{
		ID:            filepath.Base(dir),
		SourcePath:    source,
		Filter:        filter,
		VideoPath:     filepath.Join(dir, "processed", "video.webm"),
		ThumbnailPath: filepath.Join(dir, "thumbs", "frame_0001.jpg"),
		PreviewPath:   filepath.Join(dir, "preview.gif"),
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full-resolution pipeline run")
	}

	backend := newTestBackend()
	backend.AddVideo("in.mp4", &simulation.SyntheticVideo{Width: 1920, Height: 1080, FPS: 30, Frames: 300})
	job := newTestJob(t, "in.mp4", video.ParseFilterKind("grayscale"))

	result, err := NewPipeline(backend, nil).Process(job)
	require.NoError(t, err)

	assert.Equal(t, media.Metadata{Width: 1920, Height: 1080, FPS: 30, FrameCount: 300, DurationSec: 10}, result.Metadata)
	assert.Equal(t, video.Geometry{Width: 1280, Height: 720}, result.Target)
	assert.Equal(t, "grayscale", result.Filter)
	assert.False(t, result.Aborted)
	assert.True(t, result.Video.OK)
	assert.True(t, result.Thumbnail.OK)
	assert.True(t, result.Preview.OK)

	assert.LessOrEqual(t, result.Transcode.FramesWritten, 300)
	rec, ok := backend.Output(job.VideoPath)
	require.True(t, ok)
	assert.Equal(t, 1280, rec.Spec.Width)
	assert.Equal(t, 720, rec.Spec.Height)

	f, err := os.Open(job.ThumbnailPath)
	require.NoError(t, err)
	thumb, err := jpeg.Decode(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, 1280, thumb.Bounds().Dx())
	assert.Equal(t, 720, thumb.Bounds().Dy())

	// preview scales from the source geometry, not the processed one
	f, err = os.Open(job.PreviewPath)
	require.NoError(t, err)
	anim, err := gif.DecodeAll(f)
	f.Close()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(anim.Image), 30)
	assert.Equal(t, 576, anim.Config.Width)
	assert.Equal(t, 324, anim.Config.Height)

	assert.Zero(t, backend.OpenSources())
	assert.Zero(t, backend.OpenWriters())
}

func TestProcess_SmallSource(t *testing.T) {
	backend := newTestBackend()
	backend.AddVideo("in.mp4", &simulation.SyntheticVideo{Width: 320, Height: 240, FPS: 24, Frames: 5})
	job := newTestJob(t, "in.mp4", video.FilterPixelize)

	result, err := NewPipeline(backend, nil).Process(job)
	require.NoError(t, err)

	assert.Equal(t, video.Geometry{Width: 320, Height: 240}, result.Target, "never upscales")
	assert.Equal(t, 5, result.Transcode.FramesWritten)
	require.NotNil(t, result.PreviewReport)
	assert.Equal(t, 30, result.PreviewReport.Captured, "duplicate sample indices are kept")
	assert.Equal(t, video.Geometry{Width: 96, Height: 72}, result.PreviewReport.Geometry)
}

func TestProcess_CodecUnavailableAborts(t *testing.T) {
	backend := newTestBackend()
	backend.DisableCodec("libvpx")
	backend.AddVideo("in.mp4", &simulation.SyntheticVideo{Width: 64, Height: 48, FPS: 30, Frames: 10})
	job := newTestJob(t, "in.mp4", video.FilterIdentity)

	result, err := NewPipeline(backend, nil).Process(job)
	assert.ErrorIs(t, err, media.ErrCodecUnavailable)
	require.NotNil(t, result)
	assert.True(t, result.Aborted)
	assert.False(t, result.Video.OK)

	for _, path := range []string{job.VideoPath, job.ThumbnailPath, job.PreviewPath} {
		assert.NoFileExists(t, path)
	}
	assert.Zero(t, backend.OpenSources())
}

func TestProcess_UnreadableSourceIsNotFatal(t *testing.T) {
	backend := newTestBackend()
	job := newTestJob(t, filepath.Join(t.TempDir(), "missing.mp4"), video.FilterEdges)

	result, err := NewPipeline(backend, nil).Process(job)
	require.NoError(t, err)

	assert.Equal(t, media.Metadata{}, result.Metadata)
	assert.ErrorIs(t, result.MetadataErr, media.ErrUnreadableSource)
	assert.False(t, result.Video.OK)
	assert.False(t, result.Thumbnail.OK)
	assert.False(t, result.Preview.OK)
	assert.ErrorIs(t, result.Video.Err, media.ErrUnreadableSource)
	assert.NotEmpty(t, result.Preview.Error)
}

func TestProcess_TruncatedVideoStillSucceeds(t *testing.T) {
	backend := newTestBackend()
	backend.AddVideo("in.mp4", &simulation.SyntheticVideo{Width: 64, Height: 48, FPS: 30, Frames: 40, FailAt: []int{20}})
	job := newTestJob(t, "in.mp4", video.FilterIdentity)

	result, err := NewPipeline(backend, nil).Process(job)
	require.NoError(t, err)
	assert.True(t, result.Video.OK)
	assert.True(t, result.Transcode.Truncated)
	assert.Equal(t, 20, result.Transcode.FramesWritten)
	assert.True(t, result.Preview.OK)
	assert.Equal(t, []int{20}, result.PreviewReport.Skipped)
}

func TestProcess_TruncatedVideoInFreshDirectory(t *testing.T) {
	backend := newTestBackend()
	backend.AddVideo("in.mp4", &simulation.SyntheticVideo{Width: 64, Height: 48, FPS: 30, Frames: 5, FailAt: []int{2}})
	root := filepath.Join(t.TempDir(), "videos", "abc")
	job := Job{
		ID:            "abc",
		SourcePath:    "in.mp4",
		Filter:        video.FilterIdentity,
		VideoPath:     filepath.Join(root, "processed", "video.webm"),
		ThumbnailPath: filepath.Join(root, "thumbs", "frame_0001.jpg"),
		PreviewPath:   filepath.Join(root, "previews", "preview.gif"),
	}
	require.NoDirExists(t, root)

	result, err := NewPipeline(backend, nil).Process(job)
	require.NoError(t, err)
	require.True(t, result.Video.OK, "truncated video must still be a successful artifact: %v", result.Video.Err)
	assert.True(t, result.Transcode.Truncated)
	assert.Equal(t, 2, result.Transcode.TruncatedAt)
	assert.Equal(t, 2, result.Transcode.FramesWritten)
	assert.FileExists(t, job.VideoPath)

	assert.True(t, result.Thumbnail.OK)
	assert.True(t, result.Preview.OK)
	assert.Contains(t, result.PreviewReport.Skipped, 2)
	assert.FileExists(t, job.ThumbnailPath)
	assert.FileExists(t, job.PreviewPath)
}

func TestProcess_StrictDecode(t *testing.T) {
	backend := newTestBackend()
	backend.AddVideo("in.mp4", &simulation.SyntheticVideo{Width: 64, Height: 48, FPS: 30, Frames: 40, FailAt: []int{20}})
	job := newTestJob(t, "in.mp4", video.FilterIdentity)

	opts := NewOptions()
	opts.Transcode.StrictDecode = true

	result, err := NewPipeline(backend, opts).Process(job)
	require.NoError(t, err, "decode failures never abort the job")
	assert.False(t, result.Video.OK)
	assert.ErrorIs(t, result.Video.Err, media.ErrFrameDecode)
	assert.True(t, result.Thumbnail.OK)
}

// failFirstBackend fails the first OpenSource call, as a container whose
// header probe fails once would.
type failFirstBackend struct {
	*simulation.SimulatedMediaBackend
	calls atomic.Int32
}

func (b *failFirstBackend) OpenSource(path string) (interfaces.IVideoSource, error) {
	if b.calls.Add(1) == 1 {
		return nil, errors.New("probe failed")
	}
	return b.SimulatedMediaBackend.OpenSource(path)
}

func TestProcess_UnknownMetadataUsesEncoderTarget(t *testing.T) {
	sim := newTestBackend()
	sim.AddVideo("in.mp4", &simulation.SyntheticVideo{Width: 2560, Height: 1440, FPS: 30, Frames: 1})
	job := newTestJob(t, "in.mp4", video.FilterIdentity)

	result, err := NewPipeline(&failFirstBackend{SimulatedMediaBackend: sim}, nil).Process(job)
	require.NoError(t, err)

	assert.ErrorIs(t, result.MetadataErr, media.ErrUnreadableSource)
	assert.False(t, result.Metadata.Known())
	assert.Equal(t, video.Geometry{Width: 1280, Height: 720}, result.Transcode.Target)
	assert.Equal(t, result.Transcode.Target, result.Target)
	require.NotNil(t, result.ThumbnailReport)
	assert.Equal(t, result.Target, result.ThumbnailReport.Geometry)
}

func TestProcess_InvalidJob(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Job)
	}{
		{"missing source", func(j *Job) { j.SourcePath = "" }},
		{"missing video", func(j *Job) { j.VideoPath = "" }},
		{"missing thumbnail", func(j *Job) { j.ThumbnailPath = "" }},
		{"missing preview", func(j *Job) { j.PreviewPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := newTestJob(t, "in.mp4", video.FilterIdentity)
			tt.edit(&job)

			result, err := NewPipeline(newTestBackend(), nil).Process(job)
			assert.ErrorIs(t, err, ErrInvalidJob)
			assert.True(t, result.Aborted)
		})
	}
}

func TestPool_RunAll(t *testing.T) {
	backend := newTestBackend()
	backend.AddVideo("a.mp4", &simulation.SyntheticVideo{Width: 32, Height: 32, FPS: 30, Frames: 4})
	backend.AddVideo("b.mp4", &simulation.SyntheticVideo{Width: 48, Height: 32, FPS: 30, Frames: 4})

	jobs := []Job{
		newTestJob(t, "a.mp4", video.FilterGrayscale),
		newTestJob(t, "b.mp4", video.FilterEdges),
		newTestJob(t, "a.mp4", video.FilterPixelize),
	}

	pool := NewPool(NewPipeline(backend, nil), 2)
	assert.Equal(t, 2, pool.Workers())

	results, err := pool.RunAll(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, jobs[i].ID, r.JobID)
		assert.True(t, r.Video.OK)
	}
	assert.Equal(t, 48, results[1].Target.Width)
	assert.Zero(t, backend.OpenSources())
}

func TestPool_RunAllJoinsErrors(t *testing.T) {
	backend := newTestBackend()
	backend.AddVideo("a.mp4", &simulation.SyntheticVideo{Width: 32, Height: 32, FPS: 30, Frames: 2})

	bad := newTestJob(t, "a.mp4", video.FilterIdentity)
	bad.VideoPath = ""
	jobs := []Job{newTestJob(t, "a.mp4", video.FilterIdentity), bad}

	results, err := NewPool(NewPipeline(backend, nil), 0).RunAll(context.Background(), jobs)
	assert.ErrorIs(t, err, ErrInvalidJob)
	assert.True(t, results[0].Video.OK, "a failing job does not cancel its siblings")
}

// blockingBackend holds OpenSource until release is closed.
type blockingBackend struct {
	*simulation.SimulatedMediaBackend
	release chan struct{}
	started atomic.Int32
}

func (b *blockingBackend) OpenSource(path string) (interfaces.IVideoSource, error) {
	b.started.Add(1)
	<-b.release
	return b.SimulatedMediaBackend.OpenSource(path)
}

func TestPool_SubmitHonorsContextWhileWaiting(t *testing.T) {
	sim := newTestBackend()
	sim.AddVideo("a.mp4", &simulation.SyntheticVideo{Width: 16, Height: 16, FPS: 30, Frames: 1})
	backend := &blockingBackend{SimulatedMediaBackend: sim, release: make(chan struct{})}
	pool := NewPool(NewPipeline(backend, nil), 1)
	first := newTestJob(t, "a.mp4", video.FilterIdentity)
	second := newTestJob(t, "a.mp4", video.FilterIdentity)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = pool.Submit(context.Background(), first)
	}()
	require.Eventually(t, func() bool { return backend.started.Load() > 0 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	result, err := pool.Submit(ctx, second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Nil(t, result)

	close(backend.release)
	wg.Wait()
}
