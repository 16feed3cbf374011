// Package artifact downloads, validates, and unpacks export artifacts.
package artifact

import "errors"

// ErrNotGzip marks a downloaded file that failed the gzip header check.
var ErrNotGzip = errors.New("artifact is not gzip compressed")

// Artifact tracks one download URL through its local lifecycle: download,
// validation, extraction. Failures stay local to the artifact so a batch
// can partially succeed.
type Artifact struct {
	SourceURL        string `json:"sourceUrl"`
	CompressedPath   string `json:"compressedPath,omitempty"`
	DecompressedPath string `json:"decompressedPath,omitempty"`
	Validated        bool   `json:"validated"`
	Err              error  `json:"-"`
}

// Usable reports whether the artifact survived download and validation.
func (a Artifact) Usable() bool {
	return a.Err == nil && a.Validated
}
