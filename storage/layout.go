package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrOutsideRoot indicates a path that does not lie under the media root.
var ErrOutsideRoot = errors.New("path outside media root")

const (
	incomingDir = "incoming"
	videosDir   = "videos"
	trashDir    = "trash"

	// ThumbnailName is the file name of the thumbnail inside thumbs/
	ThumbnailName = "frame_0001.jpg"
	// PreviewName is the file name of the animated preview
	PreviewName = "preview.gif"
	// MetaName is the file name of the per-video metadata document
	MetaName = "meta.json"
)

// Paths holds every file location of one stored video.
type Paths struct {
	Dir       string
	Original  string
	Processed string
	Thumbnail string
	Preview   string
	Meta      string
}

// Layout resolves and creates paths under a media root.
type Layout struct {
	root string
	now  func() time.Time
}

// NewLayout creates a layout rooted at root. The root is made absolute so
// relative paths stay stable if the working directory changes.
func NewLayout(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	return &Layout{root: abs, now: time.Now}, nil
}

// Root returns the absolute media root.
func (l *Layout) Root() string {
	return l.root
}

// Setup creates the incoming, videos and trash directories.
func (l *Layout) Setup() error {
	for _, dir := range []string{incomingDir, videosDir, trashDir} {
		if err := os.MkdirAll(filepath.Join(l.root, dir), 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", dir, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "Layout.Setup",
		"root":     l.root,
	}).Info("Media directories ready")
	return nil
}

// IncomingDir returns the directory uploads are received into.
func (l *Layout) IncomingDir() string {
	return filepath.Join(l.root, incomingDir)
}

// Create builds the dated directory tree for video id and returns its paths.
// An empty processedExt reuses origExt.
func (l *Layout) Create(id, origExt, filter, processedExt string) (Paths, error) {
	if id == "" || filter == "" {
		return Paths{}, fmt.Errorf("create storage path: id and filter are required")
	}
	origExt = strings.TrimPrefix(origExt, ".")
	processedExt = strings.TrimPrefix(processedExt, ".")
	if processedExt == "" {
		processedExt = origExt
	}

	base := filepath.Join(l.root, videosDir, l.now().Format("2006/01/02"), id)
	originalDir := filepath.Join(base, "original")
	processedDir := filepath.Join(base, "processed", filter)
	thumbsDir := filepath.Join(base, "thumbs")

	for _, dir := range []string{originalDir, processedDir, thumbsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("create storage path: %w", err)
		}
	}

	return Paths{
		Dir:       base,
		Original:  filepath.Join(originalDir, videoName(origExt)),
		Processed: filepath.Join(processedDir, videoName(processedExt)),
		Thumbnail: filepath.Join(thumbsDir, ThumbnailName),
		Preview:   filepath.Join(base, PreviewName),
		Meta:      filepath.Join(base, MetaName),
	}, nil
}

func videoName(ext string) string {
	if ext == "" {
		return "video"
	}
	return "video." + ext
}

// Rel returns path relative to the media root using forward slashes.
func (l *Layout) Rel(path string) (string, error) {
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return filepath.ToSlash(rel), nil
}

// Trash moves path into the trash directory and returns its new location.
// The name is prefixed with prefix (usually the video id) to avoid clashes.
func (l *Layout) Trash(path, prefix string) (string, error) {
	name := filepath.Base(path)
	if prefix != "" {
		name = prefix + "_" + name
	}
	dst := filepath.Join(l.root, trashDir, name)
	if err := MoveFile(path, dst); err != nil {
		return "", fmt.Errorf("move %s to trash: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Layout.Trash",
		"source":   path,
		"trash":    dst,
	}).Info("Moved file to trash")
	return dst, nil
}
