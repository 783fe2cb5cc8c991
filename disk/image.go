//go:build darwin || linux

package disk

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Options configures how an image file is mapped.
type Options struct {
	// GrowChunk is the granularity the file is extended by. Zero uses
	// DefaultGrowChunk.
	GrowChunk int64

	// ReadOnly maps the file PROT_READ. Grow fails with ErrReadOnly.
	ReadOnly bool
}

// Image is a disk image file mapped MAP_SHARED into memory. Writes to Bytes
// land in the file through the page cache; Sync forces them out.
//
// Image is not safe for concurrent use.
type Image struct {
	path     string
	fd       int
	data     []byte
	chunk    int64
	readOnly bool
}

// OpenImage maps an existing image file.
func OpenImage(path string, opts Options) (*Image, error) {
	flags := unix.O_RDWR
	if opts.ReadOnly {
		flags = unix.O_RDONLY
	}
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening disk image %s: %w", path, err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stating disk image %s: %w", path, err)
	}
	img := newImage(path, fd, opts)
	if err := img.mapFile(stat.Size); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return img, nil
}

// CreateImage creates or truncates path and sizes it to size bytes, rounded
// up to the grow chunk. The new image is all zeros and still needs
// formatting.
func CreateImage(path string, size int64, opts Options) (*Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("disk image size must be positive, got %d", size)
	}
	opts.ReadOnly = false
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating disk image %s: %w", path, err)
	}
	img := newImage(path, fd, opts)
	size = roundUp(size, img.chunk)
	if err := unix.Ftruncate(fd, size); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("truncating new disk image to %d bytes: %w", size, err)
	}
	if err := img.mapFile(size); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return img, nil
}

func newImage(path string, fd int, opts Options) *Image {
	chunk := opts.GrowChunk
	if chunk <= 0 {
		chunk = DefaultGrowChunk
	}
	return &Image{path: path, fd: fd, chunk: chunk, readOnly: opts.ReadOnly}
}

func (img *Image) mapFile(size int64) error {
	if size == 0 {
		img.data = nil
		return nil
	}
	prot := unix.PROT_READ | unix.PROT_WRITE
	if img.readOnly {
		prot = unix.PROT_READ
	}
	data, err := unix.Mmap(img.fd, 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("memory-mapping disk image %s: %w", img.path, err)
	}
	img.data = data
	return nil
}

func (img *Image) unmap() error {
	if len(img.data) == 0 {
		return nil
	}
	err := unix.Munmap(img.data)
	img.data = nil
	if err != nil {
		return fmt.Errorf("unmapping disk image %s: %w", img.path, err)
	}
	return nil
}

// Bytes returns the current mapping. It is invalidated by Grow and Close.
func (img *Image) Bytes() []byte {
	return img.data
}

// Path returns the file the image was opened from.
func (img *Image) Path() string {
	return img.path
}

// Grow extends the file to at least size bytes and remaps it.
func (img *Image) Grow(size int64) error {
	if size <= int64(len(img.data)) {
		return nil
	}
	if img.readOnly {
		return fmt.Errorf("growing %s to %d bytes: %w", img.path, size, ErrReadOnly)
	}
	size = roundUp(size, img.chunk)
	if err := unix.Ftruncate(img.fd, size); err != nil {
		return fmt.Errorf("extending disk image %s to %d bytes: %w", img.path, size, err)
	}
	if err := img.unmap(); err != nil {
		return err
	}
	return img.mapFile(size)
}

// Sync flushes modified pages of the mapping to the file.
func (img *Image) Sync() error {
	if len(img.data) == 0 || img.readOnly {
		return nil
	}
	if err := unix.Msync(img.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("syncing disk image %s: %w", img.path, err)
	}
	return nil
}

// Close unmaps the image and closes the file descriptor.
func (img *Image) Close() error {
	var firstErr error
	if err := img.Sync(); err != nil {
		firstErr = err
	}
	if err := img.unmap(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := unix.Close(img.fd); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing disk image fd: %w", err)
	}
	img.fd = -1
	return firstErr
}
