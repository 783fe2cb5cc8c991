package logfs

import (
	"errors"
	"fmt"
	"time"
)

// Attr is the caller-visible attribute set of a resolved node.
type Attr struct {
	Number InodeNumber
	Mode   uint32
	Links  uint32
	Size   uint64
	UID    uint32
	GID    uint32
	Atime  time.Time
	Mtime  time.Time
	Ctime  time.Time
}

// IsDir reports whether the attributes describe a directory.
func (a Attr) IsDir() bool {
	return a.Mode&ModeType == ModeDir
}

func attrOf(ino Inode) Attr {
	return Attr{
		Number: ino.Number,
		Mode:   ino.Mode,
		Links:  ino.Links,
		Size:   uint64(ino.Size),
		UID:    ino.UID,
		GID:    ino.GID,
		Atime:  time.Unix(int64(ino.Atime), 0),
		Mtime:  time.Unix(int64(ino.Mtime), 0),
		Ctime:  time.Unix(int64(ino.Ctime), 0),
	}
}

// Getattr returns the attributes of the node at path.
func (fs *FS) Getattr(path string) (Attr, error) {
	e, err := fs.ResolvePath(path)
	if err != nil {
		return Attr{}, err
	}
	return attrOf(e.Inode), nil
}

// Mknod creates an empty node at path. A mode without type bits creates a
// regular file.
func (fs *FS) Mknod(path string, mode uint32, cred Cred) (Attr, error) {
	if mode&ModeType == 0 {
		mode |= ModeRegular
	}
	e, err := fs.create(path, mode, cred)
	if err != nil {
		return Attr{}, err
	}
	return attrOf(e.Inode), nil
}

// Mkdir creates an empty directory at path with the permission bits of perm.
func (fs *FS) Mkdir(path string, perm uint32, cred Cred) (Attr, error) {
	e, err := fs.create(path, ModeDir|perm&ModePerm, cred)
	if err != nil {
		return Attr{}, err
	}
	return attrOf(e.Inode), nil
}

// Write stores data at off in the file at path and returns len(data).
// Bytes between the old end of file and off read as zero.
func (fs *FS) Write(path string, data []byte, off int64) (int, error) {
	return fs.write(path, data, off)
}

// Truncate sets the size of the file at path.
func (fs *FS) Truncate(path string, size int64) error {
	return fs.truncate(path, size)
}

// ReadAt copies file bytes starting at off into p and returns the number of
// bytes copied. Reading at or past the end of file returns 0.
func (fs *FS) ReadAt(path string, p []byte, off int64) (int, error) {
	e, err := fs.ResolvePath(path)
	if err != nil {
		return 0, err
	}
	if e.Inode.IsDir() {
		return 0, fmt.Errorf("reading %q: %w", path, ErrIsDirectory)
	}
	if off < 0 {
		return 0, fmt.Errorf("reading %q at %d: %w", path, off, ErrInvalidOffset)
	}
	data, err := fs.payload(e)
	if err != nil {
		return 0, err
	}
	if off >= int64(len(data)) {
		return 0, nil
	}
	return copy(p, data[off:]), nil
}

// ReadAll returns a copy of the whole stored payload of the file at path.
func (fs *FS) ReadAll(path string) ([]byte, error) {
	e, err := fs.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	if e.Inode.IsDir() {
		return nil, fmt.Errorf("reading %q: %w", path, ErrIsDirectory)
	}
	data, err := fs.payload(e)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// Readdir calls emit for each entry of the directory at path in stored
// order, stopping early if emit returns false.
func (fs *FS) Readdir(path string, emit func(DirEntry) bool) error {
	e, err := fs.ResolvePath(path)
	if err != nil {
		return err
	}
	entries, err := fs.dirEntries(e)
	if err != nil {
		return fmt.Errorf("listing %q: %w", path, err)
	}
	for _, d := range entries {
		if !emit(d) {
			break
		}
	}
	return nil
}

// ReadDirAll returns every entry of the directory at path in stored order.
func (fs *FS) ReadDirAll(path string) ([]DirEntry, error) {
	var out []DirEntry
	err := fs.Readdir(path, func(d DirEntry) bool {
		out = append(out, d)
		return true
	})
	return out, err
}

// Unlink removes the non-directory node at path from its parent.
func (fs *FS) Unlink(path string) error {
	return fs.remove(path, false)
}

// Rmdir removes the empty directory at path from its parent.
func (fs *FS) Rmdir(path string) error {
	return fs.remove(path, true)
}

// Exists reports whether path resolves.
func (fs *FS) Exists(path string) (bool, error) {
	_, err := fs.ResolvePath(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
