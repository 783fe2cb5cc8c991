package logfs

import (
	"fmt"
	"time"
)

// DefaultRootPerm is the permission of the root when FormatOptions.Perm is nil.
const DefaultRootPerm uint32 = 0o755

// FormatOptions describes the root directory written by Format.
type FormatOptions struct {
	Perm  *uint32 // permission bits of the root
	Owner Cred
	Time  time.Time // zero means now
}

// Format writes an empty filesystem to region: a superblock followed by a
// single root directory entry. Anything already in the region is discarded.
func Format(region Region, opts FormatOptions) error {
	need := SuperblockSize + InodeSize
	if err := region.Grow(need); err != nil {
		return fmt.Errorf("growing image to %d bytes: %w", need, err)
	}
	b := region.Bytes()
	if int64(len(b)) < need {
		return fmt.Errorf("image is %d bytes, need %d", len(b), need)
	}
	copy(b, Superblock{Head: uint64(SuperblockSize)}.Encode())

	perm := DefaultRootPerm
	if opts.Perm != nil {
		perm = *opts.Perm
	}
	if opts.Time.IsZero() {
		opts.Time = time.Now()
	}
	root := Inode{
		Number: RootInodeNumber,
		Mode:   ModeDir | perm&ModePerm,
		UID:    opts.Owner.UID,
		GID:    opts.Owner.GID,
		Links:  1,
	}
	root.touch(opts.Time)
	fs := newFS(region, Options{})
	if _, err := fs.appendEntry(root.Encode()); err != nil {
		return fmt.Errorf("writing root directory: %w", err)
	}
	return nil
}
