package wfs

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/dendrascience/wfs/logfs"
	"github.com/stretchr/testify/assert"
)

func TestErrno(t *testing.T) {
	tests := []struct {
		err       error
		want      syscall.Errno
		wantKnown bool
	}{
		{logfs.ErrNotFound, syscall.ENOENT, true},
		{fmt.Errorf("resolving %q: %w", "/x", logfs.ErrNotFound), syscall.ENOENT, true},
		{logfs.ErrExists, syscall.EEXIST, true},
		{logfs.ErrAllocationExhausted, syscall.ENOSPC, true},
		{logfs.ErrCorruptedLog, syscall.EIO, true},
		{logfs.ErrNotImage, syscall.EIO, true},
		{logfs.ErrNotDirectory, syscall.ENOTDIR, true},
		{logfs.ErrIsDirectory, syscall.EISDIR, true},
		{logfs.ErrNotEmpty, syscall.ENOTEMPTY, true},
		{logfs.ErrInvalidName, syscall.EINVAL, true},
		{logfs.ErrNameTooLong, syscall.ENAMETOOLONG, true},
		{logfs.ErrPathTooLong, syscall.ENAMETOOLONG, true},
		{logfs.ErrInvalidOffset, syscall.EINVAL, true},
		{logfs.ErrFileTooLarge, syscall.EFBIG, true},
		{logfs.ErrRootBusy, syscall.EBUSY, true},
		{fmt.Errorf("growing image: %w", syscall.ENOSPC), syscall.ENOSPC, true},
		{errors.New("something else"), syscall.EIO, false},
	}
	for _, tt := range tests {
		got, known := Errno(tt.err)
		assert.Equal(t, tt.want, got, "Errno(%v)", tt.err)
		assert.Equal(t, tt.wantKnown, known, "Errno(%v)", tt.err)
	}
}
