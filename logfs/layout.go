package logfs

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tchajed/marshal"
)

// On-disk constants. Every field is little-endian and fixed width.
const (
	SuperblockSize int64 = 8
	InodeSize      int64 = 44
	MaxNameLen           = 256
	DirEntrySize   int64 = MaxNameLen + 4
	MaxPathLen           = 4096

	// RootInodeNumber always designates the root directory.
	RootInodeNumber InodeNumber = 0
	MaxInodeNumber  InodeNumber = math.MaxInt32

	// offset of the deleted field within an inode header
	deletedOffset int64 = 4
)

// Mode bits stored in Inode.Mode. These are the POSIX values and do not
// depend on the host the image is mounted on.
const (
	ModeType    uint32 = 0o170000
	ModeDir     uint32 = 0o040000
	ModeRegular uint32 = 0o100000
	ModePerm    uint32 = 0o7777
)

// InodeNumber is the stable identity shared by every version of a file or
// directory in the log.
type InodeNumber int32

// Superblock occupies the first SuperblockSize bytes of the image. The log
// starts right after it.
type Superblock struct {
	Head uint64 // first free byte of the log
}

// Encode returns the on-disk representation of the superblock.
func (sb Superblock) Encode() []byte {
	enc := marshal.NewEnc(uint64(SuperblockSize))
	enc.PutInt(sb.Head)
	return enc.Finish()
}

// DecodeSuperblock reads a superblock from the first SuperblockSize bytes of b.
func DecodeSuperblock(b []byte) Superblock {
	dec := marshal.NewDec(b[:SuperblockSize])
	return Superblock{Head: dec.GetInt()}
}

// Inode is the header at the start of every log entry. Size bytes of payload
// follow it: raw file contents, or a packed DirEntry array for directories.
type Inode struct {
	Number  InodeNumber
	Deleted bool
	Mode    uint32
	UID     uint32
	GID     uint32
	Flags   uint32
	Size    uint32
	Atime   uint32
	Mtime   uint32
	Ctime   uint32
	Links   uint32
}

// IsDir reports whether the inode describes a directory.
func (ino Inode) IsDir() bool {
	return ino.Mode&ModeType == ModeDir
}

// EntrySize is the number of log bytes taken by the entry this inode heads.
func (ino Inode) EntrySize() int64 {
	return InodeSize + int64(ino.Size)
}

// DirEntryCount is the number of directory entries held in the payload.
func (ino Inode) DirEntryCount() int {
	return int(int64(ino.Size) / DirEntrySize)
}

// touch stamps all three timestamps with t.
func (ino *Inode) touch(t time.Time) {
	s := uint32(t.Unix())
	ino.Atime = s
	ino.Mtime = s
	ino.Ctime = s
}

// Encode returns the on-disk representation of the inode header.
func (ino Inode) Encode() []byte {
	var deleted uint32
	if ino.Deleted {
		deleted = 1
	}
	enc := marshal.NewEnc(uint64(InodeSize))
	enc.PutInt32(uint32(ino.Number))
	enc.PutInt32(deleted)
	enc.PutInt32(ino.Mode)
	enc.PutInt32(ino.UID)
	enc.PutInt32(ino.GID)
	enc.PutInt32(ino.Flags)
	enc.PutInt32(ino.Size)
	enc.PutInt32(ino.Atime)
	enc.PutInt32(ino.Mtime)
	enc.PutInt32(ino.Ctime)
	enc.PutInt32(ino.Links)
	return enc.Finish()
}

// DecodeInode reads an inode header from the first InodeSize bytes of b.
func DecodeInode(b []byte) Inode {
	dec := marshal.NewDec(b[:InodeSize])
	var ino Inode
	ino.Number = InodeNumber(int32(dec.GetInt32()))
	ino.Deleted = dec.GetInt32() != 0
	ino.Mode = dec.GetInt32()
	ino.UID = dec.GetInt32()
	ino.GID = dec.GetInt32()
	ino.Flags = dec.GetInt32()
	ino.Size = dec.GetInt32()
	ino.Atime = dec.GetInt32()
	ino.Mtime = dec.GetInt32()
	ino.Ctime = dec.GetInt32()
	ino.Links = dec.GetInt32()
	return ino
}

// DirEntry is one (name, inode number) pair inside a directory payload.
type DirEntry struct {
	Name   string
	Number InodeNumber
}

// Encode returns the fixed-size on-disk representation of the entry.
// The name must already have passed ValidateName.
func (d DirEntry) Encode() []byte {
	b := make([]byte, DirEntrySize)
	copy(b[:MaxNameLen], d.Name)
	enc := marshal.NewEnc(4)
	enc.PutInt32(uint32(d.Number))
	copy(b[MaxNameLen:], enc.Finish())
	return b
}

// DecodeDirEntry reads a directory entry from the first DirEntrySize bytes of b.
func DecodeDirEntry(b []byte) DirEntry {
	dec := marshal.NewDec(b[MaxNameLen:DirEntrySize])
	return DirEntry{
		Name:   decodeName(b[:MaxNameLen]),
		Number: InodeNumber(int32(dec.GetInt32())),
	}
}

func decodeName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// EncodeDirEntries packs entries into a directory payload.
func EncodeDirEntries(entries []DirEntry) []byte {
	b := make([]byte, 0, int64(len(entries))*DirEntrySize)
	for _, d := range entries {
		b = append(b, d.Encode()...)
	}
	return b
}

// DecodeDirEntries unpacks a directory payload. Trailing bytes that do not
// form a whole entry are ignored.
func DecodeDirEntries(payload []byte) []DirEntry {
	n := int64(len(payload)) / DirEntrySize
	entries := make([]DirEntry, 0, n)
	for i := int64(0); i < n; i++ {
		entries = append(entries, DecodeDirEntry(payload[i*DirEntrySize:]))
	}
	return entries
}

// ValidateName checks that name can be stored in a DirEntry without loss.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	case len(name) > MaxNameLen:
		return fmt.Errorf("%d bytes exceeds %d: %w", len(name), MaxNameLen, ErrNameTooLong)
	case name == "." || name == "..":
		return fmt.Errorf("%q is reserved: %w", name, ErrInvalidName)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// splitPath breaks a slash separated path into its non-empty segments.
func splitPath(path string) ([]string, error) {
	if len(path) > MaxPathLen {
		return nil, fmt.Errorf("%d bytes exceeds %d: %w", len(path), MaxPathLen, ErrPathTooLong)
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s == "" {
			continue
		}
		if err := ValidateName(s); err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, nil
}
