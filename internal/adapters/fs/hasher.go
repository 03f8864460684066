package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ domain.InputHasher = (*Hasher)(nil)

// Hasher turns declared input paths into content-addressed descriptors.
// Editing a file changes the descriptor, which changes the owning rule's
// fingerprint and, transitively, every dependent's.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// HashInput returns "path@hash" for the declared path, relative to root.
// Directories digest every contained file; a path that does not exist is
// tried as a glob pattern before being reported missing.
func (h *Hasher) HashInput(root, path string) (string, error) {
	full := filepath.Join(root, path)

	digest := xxhash.New()
	if _, err := os.Stat(full); err != nil {
		if err := h.hashGlob(root, full, digest); err != nil {
			return "", err
		}
	} else if err := h.hashPath(root, full, digest); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s@%016x", path, digest.Sum64()), nil
}

// ComputeFileHash computes the xxhash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return digest.Sum64(), nil
}

func (h *Hasher) hashGlob(root, pattern string, digest *xxhash.Digest) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "invalid input pattern"), "path", pattern)
	}
	if len(matches) == 0 {
		return zerr.With(zerr.New("input not found"), "path", pattern)
	}
	for _, match := range matches {
		if err := h.hashPath(root, match, digest); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hasher) hashPath(root, path string, digest *xxhash.Digest) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}

	if !info.IsDir() {
		return h.hashFile(root, path, digest)
	}
	// A walk error must fail the whole input: hashing the files seen so far
	// would produce a clean-looking descriptor over a partial file set.
	for file, err := range h.walker.WalkFiles(path, nil) {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to walk input directory"), "path", path)
		}
		if err := h.hashFile(root, file, digest); err != nil {
			return err
		}
	}
	return nil
}

// hashFile digests the root-relative path alongside the content, so renames
// invalidate but the descriptor stays stable across checkout locations.
func (h *Hasher) hashFile(root, path string, digest *xxhash.Digest) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	_, _ = digest.WriteString(filepath.ToSlash(rel))
	_, _ = digest.Write([]byte{0})

	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(digest, binary.LittleEndian, sum); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
