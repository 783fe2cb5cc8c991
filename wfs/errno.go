package wfs

import (
	"errors"
	"syscall"

	"github.com/dendrascience/wfs/logfs"
	log "github.com/sirupsen/logrus"
)

var errnos = []struct {
	err   error
	errno syscall.Errno
}{
	{logfs.ErrNotFound, syscall.ENOENT},
	{logfs.ErrExists, syscall.EEXIST},
	{logfs.ErrAllocationExhausted, syscall.ENOSPC},
	{logfs.ErrCorruptedLog, syscall.EIO},
	{logfs.ErrNotImage, syscall.EIO},
	{logfs.ErrNotDirectory, syscall.ENOTDIR},
	{logfs.ErrIsDirectory, syscall.EISDIR},
	{logfs.ErrNotEmpty, syscall.ENOTEMPTY},
	{logfs.ErrInvalidName, syscall.EINVAL},
	{logfs.ErrNameTooLong, syscall.ENAMETOOLONG},
	{logfs.ErrPathTooLong, syscall.ENAMETOOLONG},
	{logfs.ErrInvalidOffset, syscall.EINVAL},
	{logfs.ErrFileTooLarge, syscall.EFBIG},
	{logfs.ErrRootBusy, syscall.EBUSY},
}

// Errno returns the errno the kernel should see for an engine error, and
// whether err was one of the known engine errors. Unknown errors are EIO.
func Errno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	for _, e := range errnos {
		if errors.Is(err, e.err) {
			return e.errno, true
		}
	}
	return syscall.EIO, false
}

// errno logs err and converts it for bazil.
func (w *FS) errno(op, p string, err error) error {
	if err == nil {
		return nil
	}
	errno, known := Errno(err)
	entry := w.log.WithFields(log.Fields{"op": op, "path": p, "errno": errno})
	switch {
	case !known:
		entry.WithError(err).Error("unexpected filesystem error")
	case errno == syscall.EIO:
		entry.WithError(err).Warn("disk image is corrupt")
	default:
		entry.WithError(err).Debug("request failed")
	}
	return errno
}
