package logfs

import "fmt"

// AllocateInodeNumber returns the lowest number, counting up from 1, that no
// entry in the log holds with its deleted flag clear.
//
// A single live-flagged entry anywhere in the log blocks its number, even
// when a later version of the same number carries the tombstone. Existing
// images depend on this, so it is not the same test as "currently resolves
// to a live entry".
func (fs *FS) AllocateInodeNumber() (InodeNumber, error) {
	blocked := make(map[InodeNumber]struct{})
	err := fs.Walk(func(e Entry) error {
		if !e.Inode.Deleted {
			blocked[e.Inode.Number] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for n := int64(1); n <= int64(fs.maxInum); n++ {
		if _, ok := blocked[InodeNumber(n)]; !ok {
			return InodeNumber(n), nil
		}
	}
	return 0, fmt.Errorf("all numbers up to %d in use: %w", fs.maxInum, ErrAllocationExhausted)
}
