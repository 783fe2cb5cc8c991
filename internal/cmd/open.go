package cmd

import (
	"os"

	"github.com/dendrascience/wfs/disk"
	"github.com/dendrascience/wfs/logfs"
	log "github.com/sirupsen/logrus"
)

// openImage maps the image at path and attaches the engine to it. The
// caller closes the returned image.
func openImage(path string, cfg Config, readOnly bool) (*disk.Image, *logfs.FS, error) {
	img, err := disk.OpenImage(path, disk.Options{GrowChunk: cfg.GrowChunk, ReadOnly: readOnly})
	if err != nil {
		return nil, nil, err
	}
	engine, err := logfs.Open(img, logfs.Options{Logger: log.WithField("image", path)})
	if err != nil {
		img.Close()
		return nil, nil, err
	}
	return img, engine, nil
}

// callerCred is the owner given to nodes created by offline tools.
func callerCred() logfs.Cred {
	return logfs.Cred{UID: uint32(os.Getuid()), GID: uint32(os.Getgid())}
}
