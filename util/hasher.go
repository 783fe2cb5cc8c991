package util

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/taigrr/colorhash"
)

// Bucket spreads names over n buckets by their color hash.
func Bucket(name string, n int) int {
	if n <= 0 {
		return 0
	}
	b := colorhash.HashString(name) % n
	if b < 0 {
		b += n
	}
	return b
}

// GetFileHash hashes a host file and returns the hash as a hex string.
func GetFileHash(path string) (hash string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrExpectedFile
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return GetHash(file)
}

// GetHash calculates the SHA-256 hash of data from an io.Reader.
// It returns the hash as a hexadecimal string.
func GetHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
