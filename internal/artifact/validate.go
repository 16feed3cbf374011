package artifact

import (
	"io"
	"os"
)

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = [2]byte{0x1f, 0x8b}

// IsGzip reports whether the file starts with the gzip magic bytes.
// Empty, truncated, unreadable, or mismatched files are simply not gzip;
// the check never fails with an error.
func IsGzip(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	var header [2]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		return false
	}
	return header == gzipMagic
}
