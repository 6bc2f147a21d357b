package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/clipforge/media/transcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayout(t *testing.T) *Layout {
	t.Helper()
	layout, err := NewLayout(t.TempDir())
	require.NoError(t, err)
	layout.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, layout.Setup())
	return layout
}

func TestSetupCreatesDirectories(t *testing.T) {
	layout := newTestLayout(t)
	for _, dir := range []string{"incoming", "videos", "trash"} {
		assert.DirExists(t, filepath.Join(layout.Root(), dir))
	}
	assert.Equal(t, filepath.Join(layout.Root(), "incoming"), layout.IncomingDir())

	// Idempotent
	assert.NoError(t, layout.Setup())
}

func TestCreateBuildsDatedTree(t *testing.T) {
	layout := newTestLayout(t)

	paths, err := layout.Create("abc", "mp4", "gray", "webm")
	require.NoError(t, err)

	rel := func(p string) string {
		r, err := layout.Rel(p)
		require.NoError(t, err)
		return r
	}
	assert.Equal(t, "videos/2026/10/14/abc", rel(paths.Dir))
	assert.Equal(t, "videos/2026/10/14/abc/original/video.mp4", rel(paths.Original))
	assert.Equal(t, "videos/2026/10/14/abc/processed/gray/video.webm", rel(paths.Processed))
	assert.Equal(t, "videos/2026/10/14/abc/thumbs/frame_0001.jpg", rel(paths.Thumbnail))
	assert.Equal(t, "videos/2026/10/14/abc/preview.gif", rel(paths.Preview))
	assert.Equal(t, "videos/2026/10/14/abc/meta.json", rel(paths.Meta))

	assert.DirExists(t, filepath.Dir(paths.Original))
	assert.DirExists(t, filepath.Dir(paths.Processed))
	assert.DirExists(t, filepath.Dir(paths.Thumbnail))
}

func TestCreateReusesOriginalExtension(t *testing.T) {
	layout := newTestLayout(t)
	paths, err := layout.Create("x", ".avi", "edges", "")
	require.NoError(t, err)
	assert.Equal(t, "video.avi", filepath.Base(paths.Processed))
	assert.Equal(t, "video.avi", filepath.Base(paths.Original))
}

func TestCreateRequiresIDAndFilter(t *testing.T) {
	layout := newTestLayout(t)
	_, err := layout.Create("", "mp4", "gray", "webm")
	assert.Error(t, err)
	_, err = layout.Create("id", "mp4", "", "webm")
	assert.Error(t, err)
}

func TestRelRejectsOutsideRoot(t *testing.T) {
	layout := newTestLayout(t)
	_, err := layout.Rel(filepath.Join(filepath.Dir(layout.Root()), "elsewhere"))
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.bin")
	dst := filepath.Join(dir, "nested", "deeper", "b.bin")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o600))

	require.NoError(t, MoveFile(src, dst))
	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestMoveFileOtherErrorIsReturned(t *testing.T) {
	old := renameFunc
	renameFunc = func(oldpath, newpath string) error { return os.ErrPermission }
	t.Cleanup(func() { renameFunc = old })

	dir := t.TempDir()
	src := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))

	err := MoveFile(src, filepath.Join(dir, "b.bin"))
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.FileExists(t, src)
}

func TestTrash(t *testing.T) {
	layout := newTestLayout(t)
	paths, err := layout.Create("id1", "mp4", "gray", "webm")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(paths.Original, []byte("orig"), 0o644))

	trashed, err := layout.Trash(paths.Original, "id1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(layout.Root(), "trash", "id1_video.mp4"), trashed)
	assert.FileExists(t, trashed)
	assert.NoFileExists(t, paths.Original)
}

func TestChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	sum, err := Checksum(path)
	require.NoError(t, err)
	// BLAKE2b-256 of the empty input
	assert.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", sum)

	_, err = Checksum(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWriteAndReadMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	meta := Meta{
		ID:        "id1",
		Checksum:  "abcd",
		Filter:    "pixel",
		Artifacts: map[string]bool{"video": true, "thumbnail": true, "preview": false},
		Errors:    map[string]string{"preview": "no frames"},
		Transcode: &transcode.Report{Codec: "libvpx", FramesWritten: 10},
		CreatedAt: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, WriteMeta(path, meta))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n    \"checksum\": \"abcd\""), "indented JSON expected")

	got, err := ReadMeta(path)
	require.NoError(t, err)
	assert.Equal(t, ChecksumAlgorithm, got.ChecksumAlgorithm)
	assert.Equal(t, map[string]int{}, got.FilterParams)
	assert.Equal(t, meta.Artifacts, got.Artifacts)
	assert.Equal(t, 10, got.Transcode.FramesWritten)
	assert.True(t, meta.CreatedAt.Equal(got.CreatedAt))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../etc/passwd", "etc_passwd"},
		{"C:\\Videos\\clip 1.mp4", "C_Videos_clip_1.mp4"},
		{".hidden", "hidden"},
		{"férias.mp4", "frias.mp4"},
		{"a&b$c.webm", "abc.webm"},
		{"   ", ""},
		{"___", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
