package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dendrascience/wfs/logfs"
	"github.com/dendrascience/wfs/version"
)

// Metadata is a JSON snapshot of an image: its log statistics and a hash of
// the superblock and every byte of the log.
type Metadata struct {
	WFSVersion string      `json:"wfs_version"`
	Generated  time.Time   `json:"generated"`
	LogSHA256  string      `json:"log_sha256"`
	Stats      logfs.Stats `json:"stats"`
}

// GetVersion returns the current wfs version string.
func GetVersion() string {
	return version.GetVersion()
}

// GenerateMetadata describes the filesystem engine serves from image, the
// raw bytes of the same region.
func GenerateMetadata(engine *logfs.FS, image []byte) (Metadata, error) {
	s, err := engine.Stats()
	if err != nil {
		return Metadata{}, err
	}
	if s.Head > int64(len(image)) {
		return Metadata{}, fmt.Errorf("head %d, image %d bytes: %w", s.Head, len(image), ErrHeadOutOfRange)
	}
	hash, err := GetHash(bytes.NewReader(image[:s.Head]))
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		WFSVersion: GetVersion(),
		Generated:  time.Now().UTC(),
		LogSHA256:  hash,
		Stats:      s,
	}, nil
}

// Save writes m as JSON to path.
func (m Metadata) Save(path string) error {
	return WriteJSONFile(path, m)
}

// WriteJSONFile writes any value as JSON to the specified file path.
// It creates the file and encodes the value using the standard JSON encoder.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(v)
}
