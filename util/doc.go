// Package util provides helpers shared by the wfs FUSE layer and the
// command-line tools.
//
// It maps image inode numbers to FUSE node ids, hashes host files and image
// logs with SHA-256, and produces the JSON Metadata snapshot printed by
// "wfs stat --json".
package util
