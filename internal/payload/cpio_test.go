package payload

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/rpmhdr/internal/testutil"
	"github.com/ralt/rpmhdr/rpm"
)

func TestList(t *testing.T) {
	t.Parallel()

	archive := testutil.Cpio(
		testutil.CpioFile{Name: "./usr", Mode: 040755},
		testutil.CpioFile{Name: "./usr/bin/hello", Mode: 0100755, Content: "#!/bin/sh\necho hello\n"},
		testutil.CpioFile{Name: "./usr/bin/hi", Mode: 0120777, Content: "hello"},
	)

	entries, err := List(bytes.NewReader(archive), DigestSHA256)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Name: "/usr", Type: TypeDirectory, Perm: 0755}, entries[0])
	assert.Equal(t, Entry{
		Name:   "/usr/bin/hello",
		Type:   TypeRegular,
		Perm:   0755,
		Size:   21,
		Digest: digest.FromString("#!/bin/sh\necho hello\n").Encoded(),
	}, entries[1])
	assert.Equal(t, TypeSymlink, entries[2].Type)
	assert.Equal(t, "hello", entries[2].LinkTo)
}

func TestList_DefaultsToMD5(t *testing.T) {
	t.Parallel()

	archive := testutil.Cpio(testutil.CpioFile{Name: "./etc/motd", Mode: 0100644, Content: "hello\n"})
	entries, err := List(bytes.NewReader(archive), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	sum := md5.Sum([]byte("hello\n"))
	assert.Equal(t, hex.EncodeToString(sum[:]), entries[0].Digest)
}

func TestList_UnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := List(bytes.NewReader(testutil.Cpio()), 99)
	assert.ErrorIs(t, err, rpm.ErrUnknownFiletype)
}

func TestList_Empty(t *testing.T) {
	t.Parallel()

	entries, err := List(bytes.NewReader(testutil.Cpio()), DigestSHA256)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"./usr/bin/foo": "/usr/bin/foo",
		"usr/bin/foo":   "/usr/bin/foo",
		"/etc/foo":      "/etc/foo",
		".":             "/",
		"./a//b/":       "/a/b",
		".bashrc":       "/.bashrc",
	} {
		assert.Equal(t, want, normalizeName(in), in)
	}
}
