// Package disk provides the byte regions a wfs filesystem lives in.
//
// Image maps a disk image file into memory and grows it on demand; Mem keeps
// an image in ordinary memory. Both satisfy logfs.Region.
package disk
