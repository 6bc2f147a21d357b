package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// renameFunc is replaced in tests to simulate cross-device renames.
var renameFunc = os.Rename

// MoveFile renames src to dst, creating dst's directory. When the rename
// crosses filesystems the file is copied and the source removed.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "MoveFile",
		"source":   src,
		"target":   dst,
	}).Debug("Cross-device rename, copying")

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
