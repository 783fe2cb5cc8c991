package wfs

import (
	"os"

	"github.com/dendrascience/wfs/logfs"
)

// POSIX file type bits other than directory and regular file. The image
// stores whatever mknod was given; these are only needed to translate.
const (
	modeFIFO   uint32 = 0o010000
	modeChar   uint32 = 0o020000
	modeBlock  uint32 = 0o060000
	modeSocket uint32 = 0o140000

	modeSetuid uint32 = 0o4000
	modeSetgid uint32 = 0o2000
	modeSticky uint32 = 0o1000
)

var typeBits = []struct {
	unix uint32
	os   os.FileMode
}{
	{logfs.ModeDir, os.ModeDir},
	{modeFIFO, os.ModeNamedPipe},
	{modeChar, os.ModeDevice | os.ModeCharDevice},
	{modeBlock, os.ModeDevice},
	{modeSocket, os.ModeSocket},
}

var specialBits = []struct {
	unix uint32
	os   os.FileMode
}{
	{modeSetuid, os.ModeSetuid},
	{modeSetgid, os.ModeSetgid},
	{modeSticky, os.ModeSticky},
}

// FileMode converts a stored POSIX mode to an os.FileMode.
func FileMode(mode uint32) os.FileMode {
	m := os.FileMode(mode & 0o777)
	for _, b := range specialBits {
		if mode&b.unix != 0 {
			m |= b.os
		}
	}
	t := mode & logfs.ModeType
	for _, b := range typeBits {
		if t == b.unix {
			m |= b.os
		}
	}
	return m
}

// UnixMode converts an os.FileMode from the kernel to the stored POSIX mode.
// Anything that is not a directory, FIFO, device or socket is stored as a
// regular file.
func UnixMode(m os.FileMode) uint32 {
	mode := uint32(m.Perm())
	for _, b := range specialBits {
		if m&b.os != 0 {
			mode |= b.unix
		}
	}
	t := m & os.ModeType
	for _, b := range typeBits {
		if t == b.os {
			return mode | b.unix
		}
	}
	return mode | logfs.ModeRegular
}
