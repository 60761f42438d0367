package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0644))

	sums, err := CalculateChecksums(path)
	require.NoError(t, err)

	assert.Equal(t, int64(6), sums.Size)
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", sums.MD5)
	assert.Equal(t, "f572d396fae9206628714fb2ce00f72e94f2258f", sums.SHA1)
	assert.Equal(t, digest.Digest("sha256:5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"), sums.SHA256)
	assert.Equal(t, digest.SHA512, sums.SHA512.Algorithm())
	require.NoError(t, sums.SHA512.Validate())
}

func TestCalculateChecksums_MissingFile(t *testing.T) {
	_, err := CalculateChecksums(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
