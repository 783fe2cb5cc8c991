package cmd

import (
	"os"

	"github.com/dendrascience/wfs/disk"
	"github.com/dendrascience/wfs/version"
	"github.com/spf13/cobra"
)

// rootOptions carries the resolved configuration to subcommands. It is
// filled in by the root command's PersistentPreRunE.
type rootOptions struct {
	configPath string
	cfg        Config
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	configureLogging(cfg)
	o.cfg = cfg
	return nil
}

// NewRootCmd creates and returns the root cobra command for the wfs CLI.
// It sets up all subcommands, command groups, and the shared configuration
// flags.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "wfs",
		Short: "wfs - a log-structured filesystem in a single disk image",
		Long: `wfs is a log-structured filesystem stored in one memory-mapped disk image
and served through FUSE.

Every change appends new versions of the affected files and directories to
the image; nothing is overwritten or reclaimed.

Use subcommands to perform different operations:
  - mkfs: Create and format a new disk image
  - mount: Mount a disk image at a mountpoint
  - check: Check a disk image for structural problems
  - stat: Summarize the log of a disk image
  - dump: List every entry in the log
  - seed: Fill a disk image with generated test files
  - import: Copy a host directory tree into a disk image`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(envVarPrefix+"_CONFIG_FILE"), "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Int64("grow-chunk", disk.DefaultGrowChunk, "Bytes to extend the image file by when the log outgrows it")

	groupUtilities := "utilities"
	groupFilesystem := "filesystem"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	mkfsCmd := NewMkfsCmd(opts)
	mountCmd := NewMountCmd(opts)
	checkCmd := NewCheckCmd(opts)
	statCmd := NewStatCmd(opts)
	dumpCmd := NewDumpCmd(opts)
	seedCmd := NewSeedCmd(opts)
	importCmd := NewImportCmd(opts)

	mkfsCmd.GroupID = groupFilesystem
	mountCmd.GroupID = groupFilesystem
	checkCmd.GroupID = groupFilesystem
	statCmd.GroupID = groupUtilities
	dumpCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	importCmd.GroupID = groupUtilities

	// Add subcommands
	rootCmd.AddCommand(mkfsCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)

	return rootCmd
}
