package logfs

import "errors"

// Sentinel errors for package logfs.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Resolution errors
	ErrNotFound     = errors.New("no such entry")
	ErrExists       = errors.New("entry already exists")
	ErrNotDirectory = errors.New("not a directory")
	ErrIsDirectory  = errors.New("is a directory")
	ErrNotEmpty     = errors.New("directory not empty")
	ErrRootBusy     = errors.New("root directory cannot be removed")

	// Allocation errors
	ErrAllocationExhausted = errors.New("no free inode number")

	// Image errors
	ErrCorruptedLog = errors.New("corrupted log")
	ErrNotImage     = errors.New("not a wfs disk image")

	// Argument errors
	ErrInvalidName   = errors.New("invalid file name")
	ErrNameTooLong   = errors.New("file name too long")
	ErrPathTooLong   = errors.New("path too long")
	ErrInvalidOffset = errors.New("invalid file offset")
	ErrFileTooLarge  = errors.New("file too large")
)
