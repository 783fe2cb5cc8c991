package cmd

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/dendrascience/wfs/logfs"
	"github.com/dendrascience/wfs/util"
	"github.com/dendrascience/wfs/wfs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewImportCmd creates and returns the import subcommand for the wfs CLI.
// It copies a host directory tree into an image.
func NewImportCmd(opts *rootOptions) *cobra.Command {
	var (
		dest    string
		verify  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "import IMAGE SOURCE_DIR",
		Short: "Copy a host directory tree into a wfs disk image",
		Long: `Copy the directories and regular files under SOURCE_DIR into a wfs
disk image, below --dest. Symlinks and special files are skipped.

Each file is stored with a single write. With --verify every file is read
back from the image and its SHA-256 compared with the host copy.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.OutOrStdout(), opts.cfg, args[0], args[1], dest, verify, verbose)
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "/", "Directory inside the image to import into")
	cmd.Flags().BoolVar(&verify, "verify", false, "Compare the hash of every imported file with its source")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runImport(out io.Writer, cfg Config, imagePath, source, dest string, verify, verbose bool) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", source)
	}

	img, engine, err := openImage(imagePath, cfg, false)
	if err != nil {
		return err
	}
	defer img.Close()

	cred := callerCred()
	if err := ensureDir(engine, dest, cred); err != nil {
		return err
	}

	var files, dirs int
	err = filepath.WalkDir(source, func(hostPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, hostPath)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := path.Join(dest, filepath.ToSlash(rel))

		fi, err := d.Info()
		if err != nil {
			return err
		}
		perm := wfs.UnixMode(fi.Mode()) & logfs.ModePerm
		switch {
		case d.IsDir():
			if _, err := engine.Mkdir(target, perm, cred); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			dirs++
		case d.Type().IsRegular():
			if err := importFile(engine, hostPath, target, perm, cred, verify); err != nil {
				return err
			}
			files++
		default:
			log.WithFields(log.Fields{"path": hostPath, "mode": fi.Mode()}).Warn("skipping non-regular file")
			return nil
		}
		if verbose {
			fmt.Fprintf(out, "%s -> %s\n", hostPath, target)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("importing %s: %w", source, err)
	}
	if err := engine.Sync(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d files and %d directories into %s\n", files, dirs, imagePath)
	return nil
}

func importFile(engine *logfs.FS, hostPath, target string, perm uint32, cred logfs.Cred, verify bool) error {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return err
	}
	if _, err := engine.Mknod(target, logfs.ModeRegular|perm, cred); err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if len(data) > 0 {
		if _, err := engine.Write(target, data, 0); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}
	if !verify {
		return nil
	}

	want, err := util.GetFileHash(hostPath)
	if err != nil {
		return err
	}
	stored, err := engine.ReadAll(target)
	if err != nil {
		return err
	}
	got, err := util.GetHash(bytes.NewReader(stored))
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: stored hash %s does not match source %s", target, got, want)
	}
	return nil
}
