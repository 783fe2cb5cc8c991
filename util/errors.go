package util

import "errors"

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Host file errors
	ErrExpectedFile = errors.New("expected file, got directory")

	// Image errors
	ErrHeadOutOfRange = errors.New("head lies outside the image")
)
