package logfs

import (
	"testing"
	"time"

	"github.com/dendrascience/wfs/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Unix(1700000000, 0)

// newTestFS formats an in-memory image and opens it with a fixed clock.
func newTestFS(t *testing.T, opts Options) (*FS, *disk.Mem) {
	t.Helper()
	region := disk.NewMem(0)
	require.NoError(t, Format(region, FormatOptions{Time: testTime}))
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return testTime }
	}
	fs, err := Open(region, opts)
	require.NoError(t, err)
	return fs, region
}

// logSize sums the sizes of every entry in the log.
func logSize(t *testing.T, fs *FS) int64 {
	t.Helper()
	var n int64
	require.NoError(t, fs.Walk(func(e Entry) error {
		n += e.Inode.EntrySize()
		return nil
	}))
	return n
}

func TestFormat(t *testing.T) {
	fs, region := newTestFS(t, Options{})

	head, err := fs.Head()
	require.NoError(t, err)
	assert.Equal(t, SuperblockSize+InodeSize, head)
	assert.Equal(t, uint64(head), DecodeSuperblock(region.Bytes()).Head)

	root, err := fs.ResolveEntry(RootInodeNumber)
	require.NoError(t, err)
	assert.Equal(t, SuperblockSize, root.Offset)
	assert.True(t, root.Inode.IsDir())
	assert.Equal(t, ModeDir|0o755, root.Inode.Mode)
	assert.Equal(t, uint32(0), root.Inode.Size)
	assert.Equal(t, uint32(1), root.Inode.Links)
	assert.Equal(t, uint32(testTime.Unix()), root.Inode.Mtime)
}

func TestFormatRootPerm(t *testing.T) {
	for _, perm := range []uint32{0, 0o700, 0o1777} {
		region := disk.NewMem(0)
		require.NoError(t, Format(region, FormatOptions{Perm: &perm, Time: testTime}))
		fs, err := Open(region, Options{})
		require.NoError(t, err)
		a, err := fs.Getattr("/")
		require.NoError(t, err)
		assert.Equal(t, ModeDir|perm, a.Mode, "perm %#o", perm)
	}
}

func TestOpenRejectsBadImages(t *testing.T) {
	_, err := Open(disk.NewMem(4), Options{})
	assert.ErrorIs(t, err, ErrNotImage, "shorter than a superblock")

	_, err = Open(disk.NewMem(1024), Options{})
	assert.ErrorIs(t, err, ErrNotImage, "zeroed image")
	assert.ErrorIs(t, err, ErrCorruptedLog, "zeroed image")

	region := disk.NewMem(1024)
	copy(region.Bytes(), Superblock{Head: 4096}.Encode())
	_, err = Open(region, Options{})
	assert.ErrorIs(t, err, ErrCorruptedLog, "head past the region")

	region = disk.NewMem(1024)
	copy(region.Bytes(), Superblock{Head: uint64(SuperblockSize)}.Encode())
	_, err = Open(region, Options{})
	assert.ErrorIs(t, err, ErrCorruptedLog, "empty log has no root")

	region = disk.NewMem(0)
	require.NoError(t, Format(region, FormatOptions{}))
	file := Inode{Number: RootInodeNumber, Mode: ModeRegular | 0o644, Links: 1}
	copy(region.Bytes()[SuperblockSize:], file.Encode())
	_, err = Open(region, Options{})
	assert.ErrorIs(t, err, ErrNotImage, "root is a regular file")
}

func TestHeadTracksLogSize(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	_, err := fs.Mkdir("/a", 0o755, Cred{})
	require.NoError(t, err)
	_, err = fs.Mknod("/a/f", 0o644, Cred{})
	require.NoError(t, err)
	_, err = fs.Write("/a/f", []byte("payload"), 0)
	require.NoError(t, err)
	require.NoError(t, fs.Unlink("/a/f"))

	head, err := fs.Head()
	require.NoError(t, err)
	assert.Equal(t, SuperblockSize+logSize(t, fs), head)
}

func TestHeadNeverDecreases(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	last, err := fs.Head()
	require.NoError(t, err)

	step := func(err error) {
		t.Helper()
		require.NoError(t, err)
		head, err := fs.Head()
		require.NoError(t, err)
		assert.Greater(t, head, last)
		last = head
	}
	_, err = fs.Mknod("/f", 0o644, Cred{})
	step(err)
	_, err = fs.Write("/f", []byte("abc"), 0)
	step(err)
	step(fs.Truncate("/f", 1))
	step(fs.Unlink("/f"))
}

func TestSync(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	assert.NoError(t, fs.Sync(), "memory regions have nothing to flush")
}
