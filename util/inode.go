package util

import "github.com/dendrascience/wfs/logfs"

// FUSE reserves node id 0 and gives the root id 1, while the image numbers
// its root 0. Node ids are inode numbers shifted by one.

// NodeID returns the FUSE node id for an inode number.
func NodeID(n logfs.InodeNumber) uint64 {
	return uint64(n) + 1
}
