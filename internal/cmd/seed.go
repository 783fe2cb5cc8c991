package cmd

import (
	"fmt"
	"io"

	"github.com/dendrascience/wfs/logfs"
	"github.com/dendrascience/wfs/util"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the wfs CLI.
// It fills an image with generated test files.
func NewSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		fileCount int
		dirCount  int
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "seed IMAGE",
		Short: "Fill a wfs disk image with generated test files",
		Long: `Generate test files inside an existing wfs disk image.

Files are named by random UUIDs and spread over --dirs top-level
directories by a color hash of their name. Each file contains a single
UUID line drawn from a pool of 50.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.OutOrStdout(), opts.cfg, args[0], fileCount, dirCount, verbose)
		},
	}

	cmd.Flags().IntVarP(&fileCount, "count", "c", 100, "Number of files to generate")
	cmd.Flags().IntVarP(&dirCount, "dirs", "d", 10, "Number of directories to spread files over")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runSeed(out io.Writer, cfg Config, path string, fileCount, dirCount int, verbose bool) error {
	if dirCount <= 0 {
		return fmt.Errorf("--dirs must be positive, got %d", dirCount)
	}
	img, engine, err := openImage(path, cfg, false)
	if err != nil {
		return err
	}
	defer img.Close()

	if verbose {
		fmt.Fprintf(out, "Generating %d test files in %s\n", fileCount, path)
	}

	// Generate pool of 50 UUIDs
	uuidPool := make([]string, 50)
	for i := range uuidPool {
		uuidPool[i] = uuid.New().String()
	}

	cred := callerCred()
	dirFileCounts := make(map[string]int)
	for i := 0; i < fileCount; i++ {
		name := uuid.New().String()
		if i%2 == 0 {
			name += ".json"
		} else {
			name += ".txt"
		}
		dir := fmt.Sprintf("/%03d", util.Bucket(name, dirCount))
		if dirFileCounts[dir] == 0 {
			if err := ensureDir(engine, dir, cred); err != nil {
				return err
			}
		}

		filePath := dir + "/" + name
		if _, err := engine.Mknod(filePath, 0o644, cred); err != nil {
			return fmt.Errorf("creating %s: %w", filePath, err)
		}
		content := uuidPool[i%len(uuidPool)] + "\n"
		if _, err := engine.Write(filePath, []byte(content), 0); err != nil {
			return fmt.Errorf("writing %s: %w", filePath, err)
		}
		dirFileCounts[dir]++

		if verbose && (i+1)%1000 == 0 {
			fmt.Fprintf(out, "Created %d/%d files...\n", i+1, fileCount)
		}
	}

	if err := engine.Sync(); err != nil {
		return err
	}
	log.WithFields(log.Fields{"image": path, "files": fileCount, "dirs": len(dirFileCounts)}).Debug("seeded image")

	if verbose {
		fmt.Fprintf(out, "Successfully created %d files\n", fileCount)
		fmt.Fprintf(out, "Files distributed across %d directories\n", len(dirFileCounts))

		// Show some statistics
		maxFiles, minFiles := 0, fileCount
		for _, count := range dirFileCounts {
			if count > maxFiles {
				maxFiles = count
			}
			if count < minFiles {
				minFiles = count
			}
		}
		fmt.Fprintf(out, "Directory file counts: min=%d, max=%d\n", minFiles, maxFiles)
	}
	return nil
}

// ensureDir creates dir unless something already exists at that path.
func ensureDir(engine *logfs.FS, dir string, cred logfs.Cred) error {
	ok, err := engine.Exists(dir)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := engine.Mkdir(dir, 0o755, cred); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
