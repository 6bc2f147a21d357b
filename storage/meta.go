package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/opd-ai/clipforge/media"
	"github.com/opd-ai/clipforge/media/transcode"
	"golang.org/x/crypto/blake2b"
)

// ChecksumAlgorithm names the digest stored in meta.json.
const ChecksumAlgorithm = "blake2b-256"

// Meta is the per-video document stored next to the artifacts.
type Meta struct {
	ID                string            `json:"id"`
	Checksum          string            `json:"checksum"`
	ChecksumAlgorithm string            `json:"checksum_algorithm"`
	Filter            string            `json:"filter"`
	FilterParams      map[string]int    `json:"filter_params"`
	Artifacts         map[string]bool   `json:"artifacts"`
	Errors            map[string]string `json:"errors,omitempty"`
	Transcode         *transcode.Report `json:"transcode,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Checksum returns the hex BLAKE2b-256 digest of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteMeta writes meta as indented JSON, atomically.
func WriteMeta(path string, meta Meta) error {
	if meta.ChecksumAlgorithm == "" && meta.Checksum != "" {
		meta.ChecksumAlgorithm = ChecksumAlgorithm
	}
	if meta.FilterParams == nil {
		meta.FilterParams = map[string]int{}
	}

	return media.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(meta)
	})
}

// ReadMeta loads a meta.json document.
func ReadMeta(path string) (Meta, error) {
	var meta Meta
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("decode %s: %w", path, err)
	}
	return meta, nil
}

// SanitizeFilename reduces name to a safe ASCII base name: path separators
// and whitespace become underscores, other characters outside [A-Za-z0-9_.-]
// are dropped, and leading or trailing dots and underscores are trimmed. The
// result may be empty.
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '.' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}
