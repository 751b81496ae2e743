// Package checksum computes digests of exported scripts and reads and
// writes them in the GNU coreutils sums format.
package checksum

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Algorithm represents a checksum hash algorithm.
type Algorithm string

const (
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmSHA512 Algorithm = "sha512"
)

// Digest is a lowercase hex encoded hash value.
type Digest string

// NewHash returns a new hash.Hash for the given algorithm.
func NewHash(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}

// DetectAlgorithm detects the hash algorithm from the digest length.
func DetectAlgorithm(d Digest) Algorithm {
	switch len(d) {
	case sha256.Size * 2:
		return AlgorithmSHA256
	case sha512.Size * 2:
		return AlgorithmSHA512
	default:
		return ""
	}
}

// Calculate calculates the digest of a file.
func Calculate(filePath string, algorithm Algorithm) (Digest, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return CalculateFromReader(f, algorithm)
}

// CalculateFromReader calculates the digest of everything read from r.
func CalculateFromReader(r io.Reader, algorithm Algorithm) (Digest, error) {
	h, err := NewHash(algorithm)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// Verify checks that the file at filePath hashes to expected. The
// algorithm follows from the digest length.
func Verify(filePath string, expected Digest) error {
	algorithm := DetectAlgorithm(expected)
	if algorithm == "" {
		return fmt.Errorf("could not determine hash algorithm for %q", expected)
	}
	actual, err := Calculate(filePath, algorithm)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", filePath, expected, actual)
	}
	return nil
}
