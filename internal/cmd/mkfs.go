package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dendrascience/wfs/disk"
	"github.com/dendrascience/wfs/logfs"
	"github.com/spf13/cobra"
)

// NewMkfsCmd creates and returns the mkfs subcommand for the wfs CLI.
// It creates a disk image holding an empty root directory.
func NewMkfsCmd(opts *rootOptions) *cobra.Command {
	var (
		size     int64
		rootMode string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "mkfs IMAGE",
		Short: "Create and format a wfs disk image",
		Long: `Create a new disk image file and write an empty filesystem to it.

The image starts at --size bytes (rounded up to the grow chunk) and grows
by itself as the log fills. The root directory is owned by the caller.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMkfs(cmd.OutOrStdout(), opts.cfg, args[0], size, rootMode, force)
		},
	}

	cmd.Flags().Int64VarP(&size, "size", "s", disk.DefaultGrowChunk, "Initial image size in bytes")
	cmd.Flags().StringVar(&rootMode, "root-mode", "0755", "Permission bits of the root directory, in octal")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing image")

	return cmd
}

func runMkfs(out io.Writer, cfg Config, path string, size int64, rootMode string, force bool) error {
	perm, err := strconv.ParseUint(rootMode, 8, 32)
	if err != nil || uint32(perm)&^logfs.ModePerm != 0 {
		return fmt.Errorf("invalid root mode %q", rootMode)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; use --force to overwrite it", path)
		}
	}

	img, err := disk.CreateImage(path, size, disk.Options{GrowChunk: cfg.GrowChunk})
	if err != nil {
		return err
	}
	defer img.Close()

	rootPerm := uint32(perm)
	if err := logfs.Format(img, logfs.FormatOptions{Perm: &rootPerm, Owner: callerCred()}); err != nil {
		return fmt.Errorf("formatting %s: %w", path, err)
	}
	if err := img.Sync(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Formatted %s (%d bytes)\n", path, len(img.Bytes()))
	return nil
}
