package logfs

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Region is the contiguous byte region holding a disk image. The slice
// returned by Bytes is only valid until the next call to Grow.
type Region interface {
	Bytes() []byte
	// Grow makes Bytes at least size bytes long. New bytes read as zero.
	Grow(size int64) error
}

// Syncer is implemented by regions that can flush to stable storage.
type Syncer interface {
	Sync() error
}

// Options configures an FS.
type Options struct {
	// Clock supplies timestamps for new log entries. Defaults to time.Now.
	Clock func() time.Time

	// Logger receives debug traces of every mutation. Defaults to the
	// logrus standard logger.
	Logger log.FieldLogger

	// MaxInodeNumber lowers the allocation ceiling. Zero means
	// MaxInodeNumber.
	MaxInodeNumber InodeNumber
}

// Cred identifies the caller that owns newly created nodes.
type Cred struct {
	UID uint32
	GID uint32
}

// FS is a log-structured filesystem over a Region. All state lives in the
// region: there is no index or cache, so every lookup scans the log.
//
// FS is not safe for concurrent use; callers serialize operations.
type FS struct {
	region  Region
	now     func() time.Time
	log     log.FieldLogger
	maxInum InodeNumber
}

func newFS(region Region, opts Options) *FS {
	fs := &FS{
		region:  region,
		now:     opts.Clock,
		log:     opts.Logger,
		maxInum: opts.MaxInodeNumber,
	}
	if fs.now == nil {
		fs.now = time.Now
	}
	if fs.log == nil {
		fs.log = log.StandardLogger()
	}
	if fs.maxInum <= 0 {
		fs.maxInum = MaxInodeNumber
	}
	return fs
}

// Open attaches to a formatted image. It checks that head lies inside the
// region and that the root directory can be resolved. Every failure wraps
// ErrNotImage.
func Open(region Region, opts Options) (*FS, error) {
	fs := newFS(region, opts)
	b := region.Bytes()
	if int64(len(b)) < SuperblockSize {
		return nil, fmt.Errorf("image is %d bytes: %w", len(b), ErrNotImage)
	}
	if _, err := fs.Head(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotImage, err)
	}
	root, err := fs.ResolveEntry(RootInodeNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: no root directory: %w", ErrNotImage, ErrCorruptedLog)
	}
	if !root.Inode.IsDir() {
		return nil, fmt.Errorf("%w: root is not a directory: %w", ErrNotImage, ErrCorruptedLog)
	}
	return fs, nil
}

// Head returns the offset of the first free byte of the log.
func (fs *FS) Head() (int64, error) {
	b := fs.region.Bytes()
	if int64(len(b)) < SuperblockSize {
		return 0, fmt.Errorf("region shorter than superblock: %w", ErrCorruptedLog)
	}
	sb := DecodeSuperblock(b)
	if sb.Head < uint64(SuperblockSize) || sb.Head > uint64(len(b)) {
		return 0, fmt.Errorf("head %d outside [%d, %d]: %w", sb.Head, SuperblockSize, len(b), ErrCorruptedLog)
	}
	return int64(sb.Head), nil
}

func (fs *FS) setHead(head int64) {
	copy(fs.region.Bytes(), Superblock{Head: uint64(head)}.Encode())
}

// span returns the region bytes [off, off+n) after checking that they lie
// below limit.
func (fs *FS) span(off, n, limit int64) ([]byte, error) {
	b := fs.region.Bytes()
	if limit > int64(len(b)) {
		limit = int64(len(b))
	}
	if off < SuperblockSize || n < 0 || off+n > limit {
		return nil, fmt.Errorf("span [%d, %d) beyond %d: %w", off, off+n, limit, ErrCorruptedLog)
	}
	return b[off : off+n], nil
}

// payload returns the bytes following e's header. The slice aliases the
// region; copy it before growing.
func (fs *FS) payload(e Entry) ([]byte, error) {
	return fs.span(e.PayloadOffset(), int64(e.Inode.Size), int64(len(fs.region.Bytes())))
}

// reserve grows the region so that n more bytes fit past head.
func (fs *FS) reserve(n int64) error {
	head, err := fs.Head()
	if err != nil {
		return err
	}
	end := head + n
	if err := fs.region.Grow(end); err != nil {
		return fmt.Errorf("growing image to %d bytes: %w", end, err)
	}
	return nil
}

// appendEntry writes a complete entry (header and payload) at head and then
// publishes it by moving head past it.
func (fs *FS) appendEntry(rec []byte) (Entry, error) {
	head, err := fs.Head()
	if err != nil {
		return Entry{}, err
	}
	end := head + int64(len(rec))
	if err := fs.region.Grow(end); err != nil {
		return Entry{}, fmt.Errorf("growing image to %d bytes: %w", end, err)
	}
	b := fs.region.Bytes()
	if int64(len(b)) < end {
		return Entry{}, fmt.Errorf("region is %d bytes after growing to %d", len(b), end)
	}
	copy(b[head:end], rec)
	fs.setHead(end)
	return Entry{Offset: head, Inode: DecodeInode(rec)}, nil
}

// newRecord allocates a log record for ino with room for its payload.
func newRecord(ino Inode) []byte {
	rec := make([]byte, ino.EntrySize())
	copy(rec, ino.Encode())
	return rec
}

// markDeleted sets the tombstone flag of e in place. It is the only write
// that touches bytes below head.
func (fs *FS) markDeleted(e Entry) error {
	b, err := fs.span(e.Offset, InodeSize, int64(len(fs.region.Bytes())))
	if err != nil {
		return err
	}
	ino := DecodeInode(b)
	ino.Deleted = true
	copy(b[deletedOffset:deletedOffset+4], ino.Encode()[deletedOffset:deletedOffset+4])
	return nil
}

// Sync flushes the region if it supports it.
func (fs *FS) Sync() error {
	if s, ok := fs.region.(Syncer); ok {
		return s.Sync()
	}
	return nil
}
