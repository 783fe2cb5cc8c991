package wfs

import (
	"context"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/wfs/logfs"
)

// File implements both Node and Handle for files
type File struct {
	fs   *FS
	path string
}

var (
	_ fs.Node          = (*File)(nil)
	_ fs.HandleReader  = (*File)(nil)
	_ fs.HandleWriter  = (*File)(nil)
	_ fs.NodeSetattrer = (*File)(nil)
	_ fs.NodeFsyncer   = (*File)(nil)
)

// Attr returns file attributes
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	return f.fs.do("getattr", f.path, func(e *logfs.FS) error {
		attr, err := e.Getattr(f.path)
		if err != nil {
			return err
		}
		fillAttr(attr, a)
		return nil
	})
}

// Read copies up to req.Size bytes starting at req.Offset.
func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	buf := make([]byte, req.Size)
	return f.fs.do("read", f.path, func(e *logfs.FS) error {
		n, err := e.ReadAt(f.path, buf, req.Offset)
		if err != nil {
			return err
		}
		resp.Data = buf[:n]
		return nil
	})
}

// Write appends a new version of the file with req.Data at req.Offset.
func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	return f.fs.mutate("write", f.path, func(e *logfs.FS) error {
		n, err := e.Write(f.path, req.Data, req.Offset)
		if err != nil {
			return err
		}
		resp.Size = n
		return nil
	})
}

// Setattr handles size changes. Mode, owner and time changes are not
// recorded and the current attributes are returned unchanged.
func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Size() {
		err := f.fs.mutate("truncate", f.path, func(e *logfs.FS) error {
			return e.Truncate(f.path, int64(req.Size))
		})
		if err != nil {
			return err
		}
	}
	return f.Attr(ctx, &resp.Attr)
}

// Fsync flushes the disk image.
func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	return f.fs.do("fsync", f.path, func(e *logfs.FS) error {
		return e.Sync()
	})
}
