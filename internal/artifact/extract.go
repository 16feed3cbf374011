package artifact

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"usage-report/internal/apperrors"
)

// DecompressedName strips the .gz suffix to get the extraction target.
func DecompressedName(src string) string {
	return strings.TrimSuffix(src, ".gz")
}

// Extract decompresses a gzip file into dst, streaming throughout so
// large reports never sit in memory. Call it only after the source
// passed validation. On failure a partially written dst is left in
// place for the caller to inspect or delete.
func Extract(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return apperrors.Extraction(src, err)
	}
	defer in.Close()

	gzReader, err := gzip.NewReader(in)
	if err != nil {
		return apperrors.Extraction(src, err)
	}
	defer gzReader.Close()

	out, err := os.Create(dst)
	if err != nil {
		return apperrors.Extraction(src, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, gzReader); err != nil {
		return apperrors.Extraction(src, err)
	}

	if err := out.Sync(); err != nil {
		return apperrors.Extraction(src, err)
	}

	return nil
}
