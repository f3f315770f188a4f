package library

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/reusee/mmh3"
)

var hashAlgorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
	"mmh3":   func() hash.Hash { return mmh3.New128() },
}

// UnknownAlgorithm is a checksum algorithm name that is not supported.
type UnknownAlgorithm string

func (e UnknownAlgorithm) Error() string {
	return fmt.Sprintf("unknown checksum algorithm '%s'", string(e))
}

// Algorithms returns the names of the supported checksum algorithms.
func Algorithms() []string {
	return slices.Sorted(maps.Keys(hashAlgorithms))
}

func ValidateChecksums(algs []string) error {
	for _, alg := range algs {
		if _, found := hashAlgorithms[alg]; !found {
			return UnknownAlgorithm(alg)
		}
	}
	return nil
}

// Checksums reads the file once and returns the lowercase hex digest for
// every algorithm.
func Checksums(path string, algs []string) (map[string]string, error) {
	sums := make(map[string]string, len(algs))
	if len(algs) == 0 {
		return sums, nil
	}
	hashers := make(map[string]hash.Hash, len(algs))
	writers := make([]io.Writer, 0, len(algs))
	for _, alg := range algs {
		newHash, found := hashAlgorithms[alg]
		if !found {
			return nil, UnknownAlgorithm(alg)
		}
		if _, dup := hashers[alg]; dup {
			continue
		}
		h := newHash()
		hashers[alg] = h
		writers = append(writers, h)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := io.Copy(io.MultiWriter(writers...), f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for alg, h := range hashers {
		sums[alg] = hex.EncodeToString(h.Sum(nil))
	}
	return sums, nil
}
