package wfs

import (
	"context"
	"os"
	"path"
	"sync"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/wfs/logfs"
	"github.com/dendrascience/wfs/util"
	log "github.com/sirupsen/logrus"
)

// statfs block size reported to the kernel
const blockSize = 4096

// Options configures the FUSE layer.
type Options struct {
	// Logger receives request failures. Defaults to the logrus standard
	// logger.
	Logger log.FieldLogger

	// ReadOnly rejects every mutation with EROFS.
	ReadOnly bool
}

// FS implements the wfs FUSE filesystem on top of a logfs engine.
type FS struct {
	engine   *logfs.FS
	log      log.FieldLogger
	readOnly bool
	mu       sync.Mutex // serializes every call into engine
}

var (
	_ fs.FS         = (*FS)(nil)
	_ fs.FSStatfser = (*FS)(nil)
)

// NewFS wraps engine for serving with bazil.org/fuse.
func NewFS(engine *logfs.FS, opts Options) *FS {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &FS{
		engine:   engine,
		log:      logger,
		readOnly: opts.ReadOnly,
	}
}

// Root returns the root directory node
func (w *FS) Root() (fs.Node, error) {
	return &Dir{fs: w, path: "/"}, nil
}

// Statfs reports region usage. Blocks are blockSize bytes; free blocks are
// the mapped bytes past head.
func (w *FS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	w.mu.Lock()
	s, err := w.engine.Stats()
	w.mu.Unlock()
	if err != nil {
		return w.errno("statfs", "/", err)
	}
	resp.Bsize = blockSize
	resp.Frsize = blockSize
	resp.Blocks = uint64(s.RegionSize) / blockSize
	resp.Bfree = uint64(s.RegionSize-s.Head) / blockSize
	resp.Bavail = resp.Bfree
	resp.Files = uint64(logfs.MaxInodeNumber)
	resp.Ffree = resp.Files - uint64(s.LiveInodes)
	resp.Namelen = logfs.MaxNameLen
	return nil
}

// do runs fn with the engine lock held and maps its error to an errno.
func (w *FS) do(op, p string, fn func(*logfs.FS) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errno(op, p, fn(w.engine))
}

// mutate is do for operations that change the image.
func (w *FS) mutate(op, p string, fn func(*logfs.FS) error) error {
	if w.readOnly {
		return syscall.EROFS
	}
	return w.do(op, p, fn)
}

// node returns the Dir or File for the entry at p.
func (w *FS) node(p string, a logfs.Attr) fs.Node {
	if a.IsDir() {
		return &Dir{fs: w, path: p}
	}
	return &File{fs: w, path: p}
}

func fillAttr(a logfs.Attr, out *fuse.Attr) {
	out.Inode = util.NodeID(a.Number)
	out.Mode = FileMode(a.Mode)
	out.Nlink = a.Links
	out.Size = a.Size
	out.Blocks = (a.Size + 511) / 512
	out.BlockSize = blockSize
	out.Uid = a.UID
	out.Gid = a.GID
	out.Atime = a.Atime
	out.Mtime = a.Mtime
	out.Ctime = a.Ctime
}

func direntType(mode uint32) fuse.DirentType {
	switch FileMode(mode) & os.ModeType {
	case os.ModeDir:
		return fuse.DT_Dir
	case 0:
		return fuse.DT_File
	case os.ModeNamedPipe:
		return fuse.DT_FIFO
	case os.ModeSocket:
		return fuse.DT_Socket
	case os.ModeDevice:
		return fuse.DT_Block
	case os.ModeDevice | os.ModeCharDevice:
		return fuse.DT_Char
	default:
		return fuse.DT_Unknown
	}
}

func childPath(dir, name string) string {
	return path.Join(dir, name)
}
