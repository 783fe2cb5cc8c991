package disk

import (
	"errors"
	"fmt"
)

// DefaultGrowChunk is the granularity an Image grows by.
const DefaultGrowChunk int64 = 1 << 20

// ErrReadOnly is returned when growing a region opened read-only.
var ErrReadOnly = errors.New("disk image is read-only")

// Mem is a region held in ordinary memory. It is used for tests and for
// building images before writing them out.
type Mem struct {
	data []byte
}

// NewMem returns a zeroed region of size bytes.
func NewMem(size int) *Mem {
	return &Mem{data: make([]byte, size)}
}

// MemFrom wraps an existing image without copying it.
func MemFrom(data []byte) *Mem {
	return &Mem{data: data}
}

// Bytes returns the whole region.
func (m *Mem) Bytes() []byte {
	return m.data
}

// Grow extends the region with zero bytes until it is at least size bytes.
func (m *Mem) Grow(size int64) error {
	if size < 0 {
		return fmt.Errorf("negative region size %d", size)
	}
	if size <= int64(len(m.data)) {
		return nil
	}
	m.data = append(m.data, make([]byte, size-int64(len(m.data)))...)
	return nil
}

// roundUp rounds n up to a multiple of chunk.
func roundUp(n, chunk int64) int64 {
	if chunk <= 0 {
		return n
	}
	return (n + chunk - 1) / chunk * chunk
}
