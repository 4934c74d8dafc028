// Package cache keeps generated output from being rebuilt or rewritten when
// nothing changed. Item description files and generation options are keyed
// by BLAKE2b digests; outputs are only written when their digest differs
// from the file on disk.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile computes a BLAKE2b-256 hash of the file contents
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher, _ := blake2b.New256(nil)
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes a BLAKE2b-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString computes a BLAKE2b-256 hash of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

// HashParts hashes several values so that no two different sequences
// collide by concatenation
func (fh *FileHasher) HashParts(parts ...string) string {
	hasher, _ := blake2b.New256(nil)
	for _, part := range parts {
		var size [8]byte
		binary.LittleEndian.PutUint64(size[:], uint64(len(part)))
		hasher.Write(size[:])
		io.WriteString(hasher, part)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
