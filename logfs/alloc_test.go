package logfs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateAscending(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	for i := 1; i <= 3; i++ {
		a, err := fs.Mknod(fmt.Sprintf("/f%d", i), 0o644, Cred{})
		require.NoError(t, err)
		assert.Equal(t, InodeNumber(i), a.Number)
	}
}

func TestAllocateReusesUnlinkedFile(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	_, err := fs.Mknod("/f", 0o644, Cred{})
	require.NoError(t, err)
	require.NoError(t, fs.Unlink("/f"))

	n, err := fs.AllocateInodeNumber()
	require.NoError(t, err)
	assert.Equal(t, InodeNumber(1), n)
}

func TestAllocateReusesWrittenThenUnlinkedFile(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	_, err := fs.Mknod("/f", 0o644, Cred{})
	require.NoError(t, err)
	_, err = fs.Write("/f", []byte("abc"), 0)
	require.NoError(t, err)
	_, err = fs.Write("/f", []byte("def"), 3)
	require.NoError(t, err)
	require.NoError(t, fs.Unlink("/f"))

	a, err := fs.Mknod("/g", 0o644, Cred{})
	require.NoError(t, err)
	assert.Equal(t, InodeNumber(1), a.Number)
}

func TestAllocateNeverReusesGrownDirectory(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	_, err := fs.Mkdir("/d", 0o755, Cred{})
	require.NoError(t, err)
	_, err = fs.Mknod("/d/f", 0o644, Cred{})
	require.NoError(t, err)
	require.NoError(t, fs.Unlink("/d/f"))
	require.NoError(t, fs.Rmdir("/d"))

	// The version of /d from before the child was linked keeps its flag
	// clear, so 1 stays blocked while 2 is free again.
	a, err := fs.Mknod("/g", 0o644, Cred{})
	require.NoError(t, err)
	assert.Equal(t, InodeNumber(2), a.Number)

	_, err = fs.ResolvePath("/d")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllocateEmptyDirectoryIsReused(t *testing.T) {
	fs, _ := newTestFS(t, Options{})
	_, err := fs.Mkdir("/d", 0o755, Cred{})
	require.NoError(t, err)
	require.NoError(t, fs.Rmdir("/d"))

	n, err := fs.AllocateInodeNumber()
	require.NoError(t, err)
	assert.Equal(t, InodeNumber(1), n)
}

func TestAllocateExhausted(t *testing.T) {
	fs, _ := newTestFS(t, Options{MaxInodeNumber: 2})
	_, err := fs.Mknod("/a", 0o644, Cred{})
	require.NoError(t, err)
	_, err = fs.Mknod("/b", 0o644, Cred{})
	require.NoError(t, err)

	before, err := fs.Head()
	require.NoError(t, err)
	_, err = fs.Mknod("/c", 0o644, Cred{})
	assert.ErrorIs(t, err, ErrAllocationExhausted)

	after, err := fs.Head()
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed create appends nothing")
	ok, err := fs.Exists("/c")
	require.NoError(t, err)
	assert.False(t, ok)
}
