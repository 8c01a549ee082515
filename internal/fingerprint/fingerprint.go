// Package fingerprint computes a cheap content identity for video files.
//
// Only the first and last MiB of files larger than 2 MiB are hashed, so two
// files that differ only in their middle bytes share a fingerprint. This is an
// accepted limitation: reading multi-gigabyte recordings in full on every
// dedup check is not.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const (
	// ChunkSize is the number of bytes read from each end of a large file.
	ChunkSize = 1 << 20
	// WholeFileLimit is the size up to which a file is hashed entirely.
	WholeFileLimit = 2 * ChunkSize
)

// Fingerprint is a hex md5 digest. The zero value means "not computable".
type Fingerprint string

// Compute fingerprints the file at path.
func Compute(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat video: %w", err)
	}

	h := md5.New()
	if info.Size() <= WholeFileLimit {
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("read video: %w", err)
		}
		return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
	}

	if _, err := io.Copy(h, io.NewSectionReader(f, 0, ChunkSize)); err != nil {
		return "", fmt.Errorf("read video head: %w", err)
	}
	if _, err := io.Copy(h, io.NewSectionReader(f, info.Size()-ChunkSize, ChunkSize)); err != nil {
		return "", fmt.Errorf("read video tail: %w", err)
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// MarshalJSON encodes an empty fingerprint as null.
func (f Fingerprint) MarshalJSON() ([]byte, error) {
	if f == "" {
		return []byte("null"), nil
	}
	return []byte(`"` + string(f) + `"`), nil
}

// UnmarshalJSON accepts a string or null.
func (f *Fingerprint) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("fingerprint: want string, got %s", s)
	}
	*f = Fingerprint(s[1 : len(s)-1])
	return nil
}
