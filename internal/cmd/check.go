package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewCheckCmd creates and returns the check subcommand for the wfs CLI.
// It walks the log of an image and reports structural problems.
func NewCheckCmd(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check IMAGE",
		Short: "Check a wfs disk image for corruption and consistency",
		Long: `Check a wfs disk image for corruption and consistency issues.

The image is opened read-only. Every log entry is decoded and bounds
checked, and every current directory is checked for entries that name
missing inodes, duplicate names and invalid names. The command fails when
any problem is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), opts.cfg, args[0], verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runCheck(out io.Writer, cfg Config, path string, verbose bool) error {
	img, engine, err := openImage(path, cfg, true)
	if err != nil {
		return err
	}
	defer img.Close()

	if verbose {
		fmt.Fprintf(out, "Checking %s\n", path)
	}
	report, err := engine.Check()
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if !report.OK() {
		fmt.Fprintf(out, "Image %s has %d problems:\n", path, len(report.Problems))
		for _, p := range report.Problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}

	fmt.Fprintf(out, "\nCheck complete:\n")
	fmt.Fprintf(out, "  Entries checked: %d\n", report.Entries)
	fmt.Fprintf(out, "  Problems: %d\n", len(report.Problems))

	if !report.OK() {
		return fmt.Errorf("%s: %d problems found", path, len(report.Problems))
	}
	return nil
}
