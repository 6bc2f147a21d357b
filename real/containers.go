package real

import (
	"path/filepath"
	"sort"
	"strings"
)

// containerCodecs lists the ffmpeg encoders each output container can carry.
var containerCodecs = map[string][]string{
	"webm": {"libvpx", "libvpx-vp9", "libaom-av1"},
	"mp4":  {"libx264", "libx265", "mpeg4", "libaom-av1"},
	"mkv":  {"libx264", "libx265", "libvpx", "libvpx-vp9", "mpeg4", "libaom-av1"},
	"avi":  {"mpeg4", "libx264", "mjpeg"},
	"mov":  {"libx264", "mpeg4", "prores"},
}

// ContainerForPath returns the container named by the file extension.
func ContainerForPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Containers returns the known container names in sorted order.
func Containers() []string {
	names := make([]string, 0, len(containerCodecs))
	for name := range containerCodecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CodecAllowed reports whether codec may be muxed into container.
func CodecAllowed(container, codec string) bool {
	for _, c := range containerCodecs[container] {
		if c == codec {
			return true
		}
	}
	return false
}

// DefaultCodec returns the preferred encoder for container, or "" if the
// container is unknown.
func DefaultCodec(container string) string {
	codecs := containerCodecs[container]
	if len(codecs) == 0 {
		return ""
	}
	return codecs[0]
}
