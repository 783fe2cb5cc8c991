package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/dendrascience/wfs/version"
	"github.com/dendrascience/wfs/wfs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewMountCmd creates and returns the mount subcommand for the wfs CLI.
// It handles mounting disk images at specified mountpoints.
func NewMountCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount IMAGE MOUNTPOINT",
		Short: "Mount a wfs disk image",
		Long: `Mount a wfs disk image at the specified mountpoint.

IMAGE is the path to a disk image created with "wfs mkfs".
MOUNTPOINT is the directory where the filesystem will be mounted.

The image is unmounted and unmapped on SIGINT or SIGTERM.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(opts.cfg, args[0], args[1])
		},
	}

	cmd.Flags().Bool("allow-other", false, "Allow users other than the mounter to access the filesystem")
	cmd.Flags().String("fs-name", "wfs", "Filesystem name shown in the mount table")
	cmd.Flags().Bool("read-only", false, "Mount read-only and map the image without write access")

	return cmd
}

func runMount(cfg Config, imagePath, mountpoint string) error {
	log.Infof("wfs %s starting...", version.GetFullVersion())

	if pathsOverlap(imagePath, mountpoint) {
		return fmt.Errorf("image %s and mountpoint %s overlap", imagePath, mountpoint)
	}

	img, engine, err := openImage(imagePath, cfg, cfg.ReadOnly)
	if err != nil {
		return err
	}
	defer img.Close()

	options := []fuse.MountOption{
		fuse.FSName(cfg.FSName),
		fuse.Subtype("wfs"),
	}
	if cfg.AllowOther {
		options = append(options, fuse.AllowOther())
	}
	if cfg.ReadOnly {
		options = append(options, fuse.ReadOnly())
	}
	c, err := fuse.Mount(mountpoint, options...)
	if err != nil {
		return fmt.Errorf("mounting %s: %w", mountpoint, err)
	}
	defer c.Close()

	filesystem := wfs.NewFS(engine, wfs.Options{
		Logger:   log.WithField("mountpoint", mountpoint),
		ReadOnly: cfg.ReadOnly,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	served := make(chan struct{})
	defer close(served)
	go unmountOnSignal(sigChan, served, mountpoint, fuse.Unmount)

	log.WithFields(log.Fields{
		"version":    version.GetVersion(),
		"mountpoint": mountpoint,
		"image":      imagePath,
		"read_only":  cfg.ReadOnly,
	}).Info("wfs mounted")
	if err := fs.Serve(c, filesystem); err != nil {
		return fmt.Errorf("serving %s: %w", mountpoint, err)
	}

	if err := engine.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", imagePath, err)
	}
	log.Info("Shutdown complete")
	return nil
}

// unmountOnSignal unmounts mountpoint when a signal arrives and returns
// without doing anything once done is closed.
func unmountOnSignal(sigs <-chan os.Signal, done <-chan struct{}, mountpoint string, unmount func(string) error) {
	select {
	case sig := <-sigs:
		log.WithField("signal", sig).Info("Received signal, shutting down...")
		if err := unmount(mountpoint); err != nil {
			log.WithError(err).Error("unmount failed")
		}
	case <-done:
	}
}

// pathsOverlap reports whether one path is the other or lies beneath it.
func pathsOverlap(path1, path2 string) bool {
	a, b := absClean(path1), absClean(path2)
	return a == b || isWithin(a, b) || isWithin(b, a)
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// isWithin reports whether child lies strictly beneath parent.
func isWithin(child, parent string) bool {
	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(child, parent)
}
