package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dendrascience/wfs/util"
	"github.com/spf13/cobra"
)

// NewStatCmd creates and returns the stat subcommand for the wfs CLI.
// It summarizes the log of an image.
func NewStatCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "stat IMAGE",
		Short: "Summarize the log of a wfs disk image",
		Long: `Print statistics about the log of a wfs disk image: how many entries it
holds, how many of them are superseded versions, and how many files and
directories are live.

--json prints a metadata snapshot including a SHA-256 of the log, and
--output saves the same snapshot to a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(cmd.OutOrStdout(), opts.cfg, args[0], asJSON, output)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print a JSON metadata snapshot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Also save the JSON metadata snapshot to this file")

	return cmd
}

func runStat(out io.Writer, cfg Config, path string, asJSON bool, output string) error {
	img, engine, err := openImage(path, cfg, true)
	if err != nil {
		return err
	}
	defer img.Close()

	m, err := util.GenerateMetadata(engine, img.Bytes())
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if output != "" {
		if err := m.Save(output); err != nil {
			return fmt.Errorf("saving metadata: %w", err)
		}
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}

	s := m.Stats
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Image:\t%s\n", path)
	fmt.Fprintf(tw, "Image size:\t%d\n", s.RegionSize)
	fmt.Fprintf(tw, "Head:\t%d\n", s.Head)
	fmt.Fprintf(tw, "Entries:\t%d\n", s.Entries)
	fmt.Fprintf(tw, "Superseded entries:\t%d (%d bytes)\n", s.SupersededEntries, s.SupersededBytes)
	fmt.Fprintf(tw, "Inode numbers:\t%d\n", s.InodeNumbers)
	fmt.Fprintf(tw, "Live inodes:\t%d (%d directories, %d files)\n", s.LiveInodes, s.Directories, s.Files)
	fmt.Fprintf(tw, "Log SHA-256:\t%s\n", m.LogSHA256)
	return tw.Flush()
}
