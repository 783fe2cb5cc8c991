// Package cmd provides the command-line interface implementation for wfs.
//
// Each subcommand lives in its own file with a constructor returning a
// *cobra.Command; NewRootCmd wires them together and is executed through
// fang by the main package.
//
// Settings shared by the subcommands are described by Config and resolved
// once per run, before the subcommand starts, from defaults, an optional
// YAML file, WFS_* environment variables and command-line flags.
package cmd
