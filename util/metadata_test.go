package util

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dendrascience/wfs/disk"
	"github.com/dendrascience/wfs/logfs"
)

func newEngine(t *testing.T) (*logfs.FS, *disk.Mem) {
	t.Helper()
	region := disk.NewMem(0)
	if err := logfs.Format(region, logfs.FormatOptions{Time: time.Unix(1700000000, 0)}); err != nil {
		t.Fatalf("Format: %v", err)
	}
	engine, err := logfs.Open(region, logfs.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return engine, region
}

func TestGenerateMetadata(t *testing.T) {
	engine, region := newEngine(t)
	if _, err := engine.Mknod("/f", 0o644, logfs.Cred{}); err != nil {
		t.Fatalf("Mknod: %v", err)
	}

	m, err := GenerateMetadata(engine, region.Bytes())
	if err != nil {
		t.Fatalf("GenerateMetadata returned error: %v", err)
	}
	if m.Stats.Files != 1 || m.Stats.Directories != 1 {
		t.Errorf("Stats = %+v, want 1 file and 1 directory", m.Stats)
	}
	if len(m.LogSHA256) != 64 {
		t.Errorf("LogSHA256 = %q, want 64 hex characters", m.LogSHA256)
	}
	if m.WFSVersion == "" {
		t.Error("WFSVersion is empty")
	}

	// Bytes past head do not change the hash.
	grown := append(append([]byte(nil), region.Bytes()...), 1, 2, 3)
	m2, err := GenerateMetadata(engine, grown)
	if err != nil {
		t.Fatalf("GenerateMetadata returned error: %v", err)
	}
	if m2.LogSHA256 != m.LogSHA256 {
		t.Errorf("hash changed with trailing bytes: %s != %s", m2.LogSHA256, m.LogSHA256)
	}
}

func TestGenerateMetadata_ShortImage(t *testing.T) {
	engine, _ := newEngine(t)
	_, err := GenerateMetadata(engine, make([]byte, 4))
	if !errors.Is(err, ErrHeadOutOfRange) {
		t.Errorf("GenerateMetadata error = %v, want ErrHeadOutOfRange", err)
	}
}

func TestMetadataSave(t *testing.T) {
	engine, region := newEngine(t)
	m, err := GenerateMetadata(engine, region.Bytes())
	if err != nil {
		t.Fatalf("GenerateMetadata returned error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("saved metadata is not JSON: %v", err)
	}
	stats, ok := got["stats"].(map[string]any)
	if !ok {
		t.Fatalf("saved metadata has no stats object: %s", data)
	}
	if stats["entries"] != float64(1) {
		t.Errorf("stats.entries = %v, want 1", stats["entries"])
	}
	if got["log_sha256"] != m.LogSHA256 {
		t.Errorf("log_sha256 = %v, want %s", got["log_sha256"], m.LogSHA256)
	}
}
