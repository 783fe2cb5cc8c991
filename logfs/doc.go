// Package logfs implements a log-structured filesystem stored in a single
// flat byte region.
//
// The region starts with a Superblock whose Head field marks the first free
// byte. Everything after it, up to Head, is an append-only log of entries:
// an Inode header followed by Size bytes of payload. A directory's payload is
// a packed array of fixed-size DirEntry records.
//
// Nothing in the log is ever moved or freed. Every mutation appends a new
// version of the affected inodes:
//   - Mknod and Mkdir append the new node and a new version of its parent
//     with one more directory entry.
//   - Write and Truncate append a new version of the file and set the
//     deleted flag of the previous version in place.
//   - Unlink and Rmdir append a new version of the parent without the
//     removed entry and set the deleted flag of the removed node in place.
//
// The current version of an inode number is the last entry in the log that
// carries it, regardless of its deleted flag. The deleted flag only matters
// to AllocateInodeNumber.
//
// There is no index: ResolveEntry scans the whole log, and ResolvePath does
// so once per path segment. An FS must not be used from more than one
// goroutine at a time.
package logfs
