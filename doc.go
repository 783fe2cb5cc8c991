// Package main provides the wfs command-line interface.
//
// wfs is a log-structured filesystem kept in a single memory-mapped disk
// image and served through FUSE. Nothing in the image is overwritten: every
// change appends new versions of the files and directories it touches.
//
// The binary supports multiple subcommands:
//   - mkfs: Create and format a new disk image
//   - mount: Mount a disk image at a specified mountpoint
//   - check: Check a disk image for corruption and consistency
//   - stat: Summarize the log of a disk image
//   - dump: List every entry in the log
//   - seed: Fill a disk image with generated test files
//   - import: Copy a host directory tree into a disk image
package main
