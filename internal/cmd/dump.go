package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dendrascience/wfs/logfs"
	"github.com/dendrascience/wfs/wfs"
	"github.com/spf13/cobra"
)

// NewDumpCmd creates and returns the dump subcommand for the wfs CLI.
// It lists every log entry in append order.
func NewDumpCmd(opts *rootOptions) *cobra.Command {
	var entries bool

	cmd := &cobra.Command{
		Use:   "dump IMAGE",
		Short: "List every entry in the log of a wfs disk image",
		Long: `List every entry in the log of a wfs disk image in the order it was
appended, including superseded and tombstoned versions.

With --entries the directory entries stored in each directory version are
listed under it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.OutOrStdout(), opts.cfg, args[0], entries)
		},
	}

	cmd.Flags().BoolVarP(&entries, "entries", "e", false, "List the entries of each directory version")

	return cmd
}

func runDump(out io.Writer, cfg Config, path string, entries bool) error {
	img, engine, err := openImage(path, cfg, true)
	if err != nil {
		return err
	}
	defer img.Close()

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tINODE\tDELETED\tMODE\tSIZE\tLINKS\tUID:GID\tMTIME")
	err = engine.Walk(func(e logfs.Entry) error {
		ino := e.Inode
		fmt.Fprintf(tw, "%d\t%d\t%t\t%v\t%d\t%d\t%d:%d\t%s\n",
			e.Offset, ino.Number, ino.Deleted, wfs.FileMode(ino.Mode), ino.Size, ino.Links,
			ino.UID, ino.GID, time.Unix(int64(ino.Mtime), 0).UTC().Format(time.RFC3339))
		if !entries || !ino.IsDir() {
			return nil
		}
		payload, err := engine.Payload(e)
		if err != nil {
			return err
		}
		for _, d := range logfs.DecodeDirEntries(payload) {
			fmt.Fprintf(tw, "\t%s -> %d\n", d.Name, d.Number)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("dumping %s: %w", path, err)
	}
	return tw.Flush()
}
