package wfs

import (
	"context"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/wfs/logfs"
	"github.com/dendrascience/wfs/util"
)

// Dir implements both Node and Handle for directories. It is addressed by
// path and resolved against the log on every call.
type Dir struct {
	fs   *FS
	path string
}

var (
	_ fs.Node               = (*Dir)(nil)
	_ fs.NodeStringLookuper = (*Dir)(nil)
	_ fs.HandleReadDirAller = (*Dir)(nil)
	_ fs.NodeCreater        = (*Dir)(nil)
	_ fs.NodeMknoder        = (*Dir)(nil)
	_ fs.NodeMkdirer        = (*Dir)(nil)
	_ fs.NodeRemover        = (*Dir)(nil)
	_ fs.NodeSetattrer      = (*Dir)(nil)
)

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	return d.fs.do("getattr", d.path, func(e *logfs.FS) error {
		attr, err := e.Getattr(d.path)
		if err != nil {
			return err
		}
		fillAttr(attr, a)
		return nil
	})
}

// Lookup resolves a name in this directory to a Dir or File node.
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	p := childPath(d.path, name)
	var node fs.Node
	err := d.fs.do("lookup", p, func(e *logfs.FS) error {
		if err := logfs.ValidateName(name); err != nil {
			return err
		}
		attr, err := e.Getattr(p)
		if err != nil {
			return err
		}
		node = d.fs.node(p, attr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// ReadDirAll lists directory contents in stored order
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	var dirents []fuse.Dirent
	err := d.fs.do("readdir", d.path, func(e *logfs.FS) error {
		entries, err := e.ReadDirAll(d.path)
		if err != nil {
			return err
		}
		for _, ent := range entries {
			dirent := fuse.Dirent{
				Inode: util.NodeID(ent.Number),
				Name:  ent.Name,
				Type:  fuse.DT_Unknown,
			}
			if cur, err := e.ResolveEntry(ent.Number); err == nil {
				dirent.Type = direntType(cur.Inode.Mode)
			}
			dirents = append(dirents, dirent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirents, nil
}

// Create creates a new regular file and returns it as both node and handle.
func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	p := childPath(d.path, req.Name)
	cred := logfs.Cred{UID: req.Header.Uid, GID: req.Header.Gid}
	err := d.fs.mutate("create", p, func(e *logfs.FS) error {
		attr, err := e.Mknod(p, UnixMode(req.Mode), cred)
		if err != nil {
			return err
		}
		fillAttr(attr, &resp.Attr)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	f := &File{fs: d.fs, path: p}
	return f, f, nil
}

// Mknod creates a node of any non-directory type. Only its mode is
// recorded; the device number is dropped.
func (d *Dir) Mknod(ctx context.Context, req *fuse.MknodRequest) (fs.Node, error) {
	p := childPath(d.path, req.Name)
	cred := logfs.Cred{UID: req.Header.Uid, GID: req.Header.Gid}
	var node fs.Node
	err := d.fs.mutate("mknod", p, func(e *logfs.FS) error {
		attr, err := e.Mknod(p, UnixMode(req.Mode), cred)
		if err != nil {
			return err
		}
		node = d.fs.node(p, attr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Mkdir creates a new directory
func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fs.Node, error) {
	p := childPath(d.path, req.Name)
	cred := logfs.Cred{UID: req.Header.Uid, GID: req.Header.Gid}
	err := d.fs.mutate("mkdir", p, func(e *logfs.FS) error {
		_, err := e.Mkdir(p, UnixMode(req.Mode)&logfs.ModePerm, cred)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Dir{fs: d.fs, path: p}, nil
}

// Remove unlinks a file or removes an empty directory.
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	p := childPath(d.path, req.Name)
	if req.Dir {
		return d.fs.mutate("rmdir", p, func(e *logfs.FS) error {
			return e.Rmdir(p)
		})
	}
	return d.fs.mutate("unlink", p, func(e *logfs.FS) error {
		return e.Unlink(p)
	})
}

// Setattr accepts and ignores attribute changes on directories.
func (d *Dir) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Size() {
		return syscall.EISDIR
	}
	return d.Attr(ctx, &resp.Attr)
}
