package logfs

import (
	"bytes"
	"fmt"
)

// ResolvePath walks path from the root directory and returns the current
// entry of its last segment. The empty path and "/" resolve to the root.
func (fs *FS) ResolvePath(path string) (Entry, error) {
	segments, err := splitPath(path)
	if err != nil {
		return Entry{}, err
	}
	e, err := fs.resolveSegments(segments)
	if err != nil {
		return Entry{}, fmt.Errorf("resolving %q: %w", path, err)
	}
	return e, nil
}

func (fs *FS) resolveSegments(segments []string) (Entry, error) {
	cur, err := fs.ResolveEntry(RootInodeNumber)
	if err != nil {
		return Entry{}, err
	}
	for _, name := range segments {
		if !cur.Inode.IsDir() {
			return Entry{}, fmt.Errorf("inode %d: %w", cur.Inode.Number, ErrNotDirectory)
		}
		if cur.Inode.DirEntryCount() == 0 {
			return Entry{}, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		d, ok, err := fs.lookupName(cur, name)
		if err != nil {
			return Entry{}, err
		}
		if !ok {
			return Entry{}, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		if cur, err = fs.ResolveEntry(d.Number); err != nil {
			return Entry{}, err
		}
	}
	return cur, nil
}

// lookupName scans dir's entry array for name. Names are not unique by
// construction, so the first match wins.
func (fs *FS) lookupName(dir Entry, name string) (DirEntry, bool, error) {
	p, err := fs.payload(dir)
	if err != nil {
		return DirEntry{}, false, err
	}
	want := []byte(name)
	for i := 0; i < dir.Inode.DirEntryCount(); i++ {
		raw := p[int64(i)*DirEntrySize:]
		stored := raw[:MaxNameLen]
		if j := bytes.IndexByte(stored, 0); j >= 0 {
			stored = stored[:j]
		}
		if bytes.Equal(stored, want) {
			return DecodeDirEntry(raw), true, nil
		}
	}
	return DirEntry{}, false, nil
}

// dirEntries decodes the entry array of a directory entry.
func (fs *FS) dirEntries(dir Entry) ([]DirEntry, error) {
	if !dir.Inode.IsDir() {
		return nil, fmt.Errorf("inode %d: %w", dir.Inode.Number, ErrNotDirectory)
	}
	p, err := fs.payload(dir)
	if err != nil {
		return nil, err
	}
	return DecodeDirEntries(p), nil
}

// resolveParent resolves every segment but the last and returns the parent
// directory entry together with the final name.
func (fs *FS) resolveParent(path string) (Entry, string, error) {
	segments, err := splitPath(path)
	if err != nil {
		return Entry{}, "", err
	}
	if len(segments) == 0 {
		return Entry{}, "", ErrRootBusy
	}
	parent, err := fs.resolveSegments(segments[:len(segments)-1])
	if err != nil {
		return Entry{}, "", fmt.Errorf("resolving parent of %q: %w", path, err)
	}
	if !parent.Inode.IsDir() {
		return Entry{}, "", fmt.Errorf("parent of %q: %w", path, ErrNotDirectory)
	}
	return parent, segments[len(segments)-1], nil
}
