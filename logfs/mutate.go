package logfs

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// create adds a new zero-length node named by path and links it into its
// parent directory. The parent is resolved and room for both records is
// reserved before anything is appended, so a failed create leaves the log as
// it was.
func (fs *FS) create(path string, mode uint32, cred Cred) (Entry, error) {
	if _, err := fs.ResolvePath(path); err == nil {
		return Entry{}, fmt.Errorf("creating %q: %w", path, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return Entry{}, fmt.Errorf("creating %q: %w", path, err)
	}

	parent, name, err := fs.resolveParent(path)
	if err != nil {
		return Entry{}, fmt.Errorf("creating %q: %w", path, err)
	}
	n, err := fs.AllocateInodeNumber()
	if err != nil {
		return Entry{}, fmt.Errorf("creating %q: %w", path, err)
	}

	now := fs.now()
	ino := Inode{
		Number: n,
		Mode:   mode,
		UID:    cred.UID,
		GID:    cred.GID,
		Links:  1,
	}
	ino.touch(now)

	// The old parent version is superseded but, unlike write and unlink,
	// keeps its deleted flag clear.
	old, err := fs.payload(parent)
	if err != nil {
		return Entry{}, err
	}
	dir := parent.Inode
	dir.Deleted = false
	dir.Size += uint32(DirEntrySize)
	dir.touch(now)
	rec := newRecord(dir)
	copy(rec[InodeSize:], old)
	copy(rec[InodeSize+int64(len(old)):], DirEntry{Name: name, Number: n}.Encode())

	if err := fs.reserve(InodeSize + int64(len(rec))); err != nil {
		return Entry{}, fmt.Errorf("creating %q: %w", path, err)
	}
	child, err := fs.appendEntry(ino.Encode())
	if err != nil {
		return Entry{}, fmt.Errorf("creating %q: %w", path, err)
	}
	if _, err := fs.appendEntry(rec); err != nil {
		return Entry{}, fmt.Errorf("linking %q into inode %d: %w", name, parent.Inode.Number, err)
	}

	fs.log.WithFields(log.Fields{
		"op":     "create",
		"path":   path,
		"inode":  n,
		"parent": parent.Inode.Number,
		"mode":   fmt.Sprintf("%#o", mode),
	}).Debug("created node")
	return child, nil
}

// write appends a new version of the file at path with data copied over the
// old payload at off.
func (fs *FS) write(path string, data []byte, off int64) (int, error) {
	e, err := fs.ResolvePath(path)
	if err != nil {
		return 0, err
	}
	if e.Inode.IsDir() {
		return 0, fmt.Errorf("writing %q: %w", path, ErrIsDirectory)
	}
	if off < 0 {
		return 0, fmt.Errorf("writing %q at %d: %w", path, off, ErrInvalidOffset)
	}
	end := off + int64(len(data))
	if end > math.MaxUint32 {
		return 0, fmt.Errorf("writing %q up to %d: %w", path, end, ErrFileTooLarge)
	}

	old, err := fs.payload(e)
	if err != nil {
		return 0, err
	}
	ino := e.Inode
	ino.Deleted = false
	if uint32(end) > ino.Size {
		ino.Size = uint32(end)
	}
	ino.touch(fs.now())
	rec := newRecord(ino)
	copy(rec[InodeSize:], old)
	copy(rec[InodeSize+off:], data)
	if _, err := fs.appendEntry(rec); err != nil {
		return 0, fmt.Errorf("writing %q: %w", path, err)
	}
	if err := fs.markDeleted(e); err != nil {
		return 0, err
	}

	fs.log.WithFields(log.Fields{
		"op":     "write",
		"path":   path,
		"inode":  ino.Number,
		"offset": off,
		"len":    len(data),
		"size":   ino.Size,
	}).Debug("wrote file")
	return len(data), nil
}

// truncate appends a new version of the file at path cut or zero-extended
// to size.
func (fs *FS) truncate(path string, size int64) error {
	e, err := fs.ResolvePath(path)
	if err != nil {
		return err
	}
	if e.Inode.IsDir() {
		return fmt.Errorf("truncating %q: %w", path, ErrIsDirectory)
	}
	if size < 0 {
		return fmt.Errorf("truncating %q to %d: %w", path, size, ErrInvalidOffset)
	}
	if size > math.MaxUint32 {
		return fmt.Errorf("truncating %q to %d: %w", path, size, ErrFileTooLarge)
	}
	old, err := fs.payload(e)
	if err != nil {
		return err
	}
	ino := e.Inode
	ino.Deleted = false
	ino.Size = uint32(size)
	ino.touch(fs.now())
	rec := newRecord(ino)
	copy(rec[InodeSize:], old)
	if _, err := fs.appendEntry(rec); err != nil {
		return fmt.Errorf("truncating %q: %w", path, err)
	}
	if err := fs.markDeleted(e); err != nil {
		return err
	}
	fs.log.WithFields(log.Fields{"op": "truncate", "path": path, "inode": ino.Number, "size": size}).Debug("truncated file")
	return nil
}

// remove tombstones the node at path and appends a new version of its parent
// without the entries that refer to it. The node's own versions stay in the
// log. When dir is true the node must be an empty directory; otherwise it
// must not be a directory.
func (fs *FS) remove(path string, dir bool) error {
	target, err := fs.ResolvePath(path)
	if err != nil {
		return err
	}
	if target.Inode.Number == RootInodeNumber {
		return fmt.Errorf("removing %q: %w", path, ErrRootBusy)
	}
	switch {
	case dir && !target.Inode.IsDir():
		return fmt.Errorf("removing %q: %w", path, ErrNotDirectory)
	case dir && target.Inode.DirEntryCount() > 0:
		return fmt.Errorf("removing %q: %w", path, ErrNotEmpty)
	case !dir && target.Inode.IsDir():
		return fmt.Errorf("unlinking %q: %w", path, ErrIsDirectory)
	}

	parent, _, err := fs.resolveParent(path)
	if err != nil {
		return err
	}
	entries, err := fs.dirEntries(parent)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, d := range entries {
		if d.Number != target.Inode.Number {
			kept = append(kept, d)
		}
	}

	ino := parent.Inode
	ino.Deleted = false
	ino.Size = uint32(int64(len(kept)) * DirEntrySize)
	ino.touch(fs.now())
	rec := newRecord(ino)
	copy(rec[InodeSize:], EncodeDirEntries(kept))
	if _, err := fs.appendEntry(rec); err != nil {
		return fmt.Errorf("unlinking %q from inode %d: %w", path, parent.Inode.Number, err)
	}
	if err := fs.markDeleted(target); err != nil {
		return err
	}

	fs.log.WithFields(log.Fields{
		"op":     "remove",
		"path":   path,
		"inode":  target.Inode.Number,
		"parent": parent.Inode.Number,
	}).Debug("removed node")
	return nil
}
