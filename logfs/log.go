package logfs

import "fmt"

// Entry locates one log entry: the offset of its inode header and the
// header itself. Offsets stay valid across region growth.
type Entry struct {
	Offset int64
	Inode  Inode
}

// PayloadOffset is the offset of the first payload byte.
func (e Entry) PayloadOffset() int64 {
	return e.Offset + InodeSize
}

// End is the offset just past the entry.
func (e Entry) End() int64 {
	return e.Offset + e.Inode.EntrySize()
}

// entryAt decodes the entry at off, checking that it ends at or before head.
func (fs *FS) entryAt(off, head int64) (Entry, error) {
	b, err := fs.span(off, InodeSize, head)
	if err != nil {
		return Entry{}, fmt.Errorf("entry header at %d: %w", off, err)
	}
	e := Entry{Offset: off, Inode: DecodeInode(b)}
	if e.End() > head {
		return Entry{}, fmt.Errorf("entry at %d (inode %d) ends at %d past head %d: %w",
			off, e.Inode.Number, e.End(), head, ErrCorruptedLog)
	}
	return e, nil
}

// Walk calls fn for every entry between the superblock and head, in append
// order. An error from fn ends the walk and is returned as is.
func (fs *FS) Walk(fn func(Entry) error) error {
	head, err := fs.Head()
	if err != nil {
		return err
	}
	for off := SuperblockSize; off < head; {
		e, err := fs.entryAt(off, head)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		off = e.End()
	}
	return nil
}

// ResolveEntry returns the current version of n: the last entry in the log
// carrying that number, whether or not its deleted flag is set.
func (fs *FS) ResolveEntry(n InodeNumber) (Entry, error) {
	var (
		found Entry
		ok    bool
	)
	err := fs.Walk(func(e Entry) error {
		if e.Inode.Number == n {
			found, ok = e, true
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, fmt.Errorf("inode %d: %w", n, ErrNotFound)
	}
	return found, nil
}

// Payload returns a copy of the bytes stored after e's header.
func (fs *FS) Payload(e Entry) ([]byte, error) {
	p, err := fs.payload(e)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}
