package deploy

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
)

// Artifact is the deployable code package produced by the (external)
// bundling step. The hash is the base64-encoded SHA-256 of the zip bytes,
// the same encoding the function service reports for deployed code, so
// change detection compares hashes rather than re-uploading identical
// bytes after a re-zip.
type Artifact struct {
	Zip  []byte
	Hash string
}

// LoadArtifact reads a zip archive from disk and computes its content hash.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return NewArtifact(data), nil
}

// NewArtifact wraps zip bytes with their content hash.
func NewArtifact(zip []byte) *Artifact {
	sum := sha256.Sum256(zip)
	return &Artifact{
		Zip:  zip,
		Hash: base64.StdEncoding.EncodeToString(sum[:]),
	}
}
