package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dendrascience/wfs/logfs"
	"github.com/dendrascience/wfs/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newImage(t *testing.T) string {
	t.Helper()
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "disk.img")
	_, err := run(t, "mkfs", path, "--size", "65536", "--grow-chunk", "65536")
	require.NoError(t, err)
	return path
}

func TestMkfs(t *testing.T) {
	path := newImage(t)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(65536), info.Size())

	_, err = run(t, "mkfs", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "mkfs", path, "--force", "--root-mode", "9")
	assert.ErrorContains(t, err, "invalid root mode")

	_, err = run(t, "mkfs", path, "--force", "--root-mode", "0700")
	require.NoError(t, err)
	img, engine, err := openImage(path, DefaultConfig(), true)
	require.NoError(t, err)
	defer img.Close()
	a, err := engine.Getattr("/")
	require.NoError(t, err)
	assert.Equal(t, logfs.ModeDir|0o700, a.Mode)
	assert.Equal(t, uint32(os.Getuid()), a.UID)
}

func TestMkfsRootModeZero(t *testing.T) {
	path := newImage(t)
	_, err := run(t, "mkfs", path, "--force", "--root-mode", "0000")
	require.NoError(t, err)

	img, engine, err := openImage(path, DefaultConfig(), true)
	require.NoError(t, err)
	defer img.Close()
	a, err := engine.Getattr("/")
	require.NoError(t, err)
	assert.Equal(t, logfs.ModeDir, a.Mode)
}

func TestSeedThenCheck(t *testing.T) {
	path := newImage(t)
	out, err := run(t, "seed", path, "--count", "40", "--dirs", "4", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully created 40 files")

	out, err = run(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Problems: 0")

	img, engine, err := openImage(path, DefaultConfig(), true)
	require.NoError(t, err)
	defer img.Close()
	s, err := engine.Stats()
	require.NoError(t, err)
	assert.Equal(t, 40, s.Files)
	assert.LessOrEqual(t, s.Directories, 5)
}

func TestCheckReportsProblems(t *testing.T) {
	path := newImage(t)
	img, engine, err := openImage(path, DefaultConfig(), false)
	require.NoError(t, err)
	_, err = engine.Mknod("/f", 0o644, logfs.Cred{})
	require.NoError(t, err)
	require.NoError(t, img.Close())

	// Point the directory entry for "f" at an inode that does not exist.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sb := logfs.DecodeSuperblock(data)
	dirent := int64(sb.Head) - logfs.DirEntrySize
	copy(data[dirent:], logfs.DirEntry{Name: "f", Number: 77}.Encode())
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := run(t, "check", path)
	assert.ErrorContains(t, err, "1 problems found")
	assert.Contains(t, out, "missing inode 77")
}

func TestStat(t *testing.T) {
	path := newImage(t)
	_, err := run(t, "seed", path, "--count", "3", "--dirs", "1")
	require.NoError(t, err)

	out, err := run(t, "stat", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Live inodes:")
	assert.Contains(t, out, "(2 directories, 3 files)")

	saved := filepath.Join(t.TempDir(), "meta.json")
	out, err = run(t, "stat", path, "--json", "--output", saved)
	require.NoError(t, err)
	var m util.Metadata
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, 3, m.Stats.Files)
	assert.Len(t, m.LogSHA256, 64)

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	var fromFile util.Metadata
	require.NoError(t, json.Unmarshal(data, &fromFile))
	assert.Equal(t, m.LogSHA256, fromFile.LogSHA256)
}

func TestDump(t *testing.T) {
	path := newImage(t)
	img, engine, err := openImage(path, DefaultConfig(), false)
	require.NoError(t, err)
	_, err = engine.Mkdir("/docs", 0o755, logfs.Cred{})
	require.NoError(t, err)
	require.NoError(t, img.Close())

	out, err := run(t, "dump", path, "--entries")
	require.NoError(t, err)
	assert.Contains(t, out, "OFFSET")
	assert.Contains(t, out, "docs -> 1")
	// header, root, docs, new root, one directory entry
	assert.Equal(t, 5, bytes.Count([]byte(out), []byte("\n")))
}

func TestImport(t *testing.T) {
	path := newImage(t)
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a", "b", "deep.json"), []byte(`{"x":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a", "empty"), nil, 0o644))
	require.NoError(t, os.Symlink("top.txt", filepath.Join(src, "link")))

	out, err := run(t, "import", path, src, "--dest", "/in", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 files and 2 directories")

	img, engine, err := openImage(path, DefaultConfig(), true)
	require.NoError(t, err)
	defer img.Close()

	data, err := engine.ReadAll("/in/a/b/deep.json")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(data))

	a, err := engine.Getattr("/in/top.txt")
	require.NoError(t, err)
	assert.Equal(t, logfs.ModeRegular|0o600, a.Mode)

	ok, err := engine.Exists("/in/link")
	require.NoError(t, err)
	assert.False(t, ok, "symlinks are skipped")
}

func TestOpenRejectsNonImage(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "junk")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xab}, 4096), 0o644))

	_, err := run(t, "check", path)
	assert.ErrorIs(t, err, logfs.ErrNotImage)
}
