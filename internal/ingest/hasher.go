package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// HashBytes returns the hex sha256 digest of the given bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex sha256 digest of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return HashBytes(data), nil
}
