package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.jpg")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	sums, err := Checksums(path, []string{"md5", "sha1", "sha256", "mmh3", "md5"})
	require.NoError(t, err)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", sums["md5"])
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", sums["sha1"])
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sums["sha256"])
	assert.Len(t, sums["mmh3"], 32)
	assert.Len(t, sums, 4)

	sums, err = Checksums(path, nil)
	require.NoError(t, err)
	assert.Empty(t, sums)
}

func TestUnknownAlgorithm(t *testing.T) {
	err := ValidateChecksums([]string{"md5", "crc32"})
	var unknown UnknownAlgorithm
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, UnknownAlgorithm("crc32"), unknown)
	assert.Contains(t, Algorithms(), "sha512")
	assert.NoError(t, ScanOptions{Checksums: Algorithms()}.Validate())
}
