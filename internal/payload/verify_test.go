package payload

import (
	"crypto/md5"
	"path"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/rpmhdr/internal/inspect"
	"github.com/ralt/rpmhdr/internal/rpmtag"
	"github.com/ralt/rpmhdr/internal/testutil"
	"github.com/ralt/rpmhdr/rpm"
)

// headerFile is one file as the header records it
type headerFile struct {
	path    string
	mode    uint16
	content string
	flags   uint32
}

var defaultFiles = []headerFile{
	{path: "/usr/bin/hello", mode: 0100755, content: "#!/bin/sh\necho hello\n"},
	{path: "/usr/share/doc/hello/README", mode: 0100644, content: "Say hello.\n"},
	{path: "/usr/bin/hi", mode: 0120777, content: "hello"},
}

func archiveOf(files []headerFile) []byte {
	var entries []testutil.CpioFile
	for _, f := range files {
		entries = append(entries, testutil.CpioFile{Name: "." + f.path, Mode: uint32(f.mode), Content: f.content})
	}
	return testutil.Cpio(entries...)
}

// writePackage assembles a package around archive whose header lists files.
// mutate may adjust both sections before they are serialized.
func writePackage(t *testing.T, archive []byte, c Compression, files []headerFile, mutate func(hdr, sig *testutil.Section)) *inspect.File {
	t.Helper()

	var (
		dirs     []string
		indexes  []uint32
		bases    []string
		sizes    []uint32
		modes    []uint16
		digests  []string
		linkTos  []string
		flags    []uint32
		dirIndex = map[string]uint32{}
	)
	for _, f := range files {
		dir, base := path.Split(f.path)
		idx, ok := dirIndex[dir]
		if !ok {
			idx = uint32(len(dirs))
			dirIndex[dir] = idx
			dirs = append(dirs, dir)
		}
		indexes = append(indexes, idx)
		bases = append(bases, base)
		sizes = append(sizes, uint32(len(f.content)))
		modes = append(modes, f.mode)
		flags = append(flags, f.flags)
		if f.mode&0170000 == 0100000 {
			digests = append(digests, digest.FromString(f.content).Encoded())
			linkTos = append(linkTos, "")
		} else {
			digests = append(digests, "")
			linkTos = append(linkTos, f.content)
		}
	}

	compressed := compress(t, archive, c)

	hdr := &testutil.Section{}
	hdr.AddString(rpmtag.Name, testutil.TypeString, "hello")
	hdr.AddInt32(rpmtag.FileSizes, sizes)
	hdr.AddInt16(rpmtag.FileModes, modes)
	hdr.AddStringArray(rpmtag.FileDigests, digests)
	hdr.AddStringArray(rpmtag.FileLinkTos, linkTos)
	hdr.AddInt32(rpmtag.FileFlags, flags)
	hdr.AddInt32(rpmtag.DirIndexes, indexes)
	hdr.AddStringArray(rpmtag.BaseNames, bases)
	hdr.AddStringArray(rpmtag.DirNames, dirs)
	hdr.AddString(rpmtag.PayloadFormat, testutil.TypeString, "cpio")
	hdr.AddString(rpmtag.PayloadCompressor, testutil.TypeString, c.String())
	hdr.AddInt32(rpmtag.FileDigestAlgo, []uint32{DigestSHA256})

	sig := &testutil.Section{}
	if mutate != nil {
		mutate(hdr, sig)
	}
	header := hdr.Bytes()
	if !sig.Has(rpmtag.SigSize) {
		sig.AddInt32(rpmtag.SigSize, []uint32{uint32(len(header) + len(compressed))})
	}
	if !sig.Has(rpmtag.SigPayloadSize) {
		sig.AddInt32(rpmtag.SigPayloadSize, []uint32{uint32(len(archive))})
	}
	if !sig.Has(rpmtag.SigMD5) {
		sum := md5.New()
		sum.Write(header)
		sum.Write(compressed)
		sig.AddBinary(rpmtag.SigMD5, sum.Sum(nil))
	}

	pkg := testutil.Package(testutil.Lead("hello-1.0-1"), sig, hdr, compressed)
	p := testutil.WriteFile(t, t.TempDir(), "hello.rpm", pkg)
	f, err := inspect.Open(p)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestCheck_Consistent(t *testing.T) {
	t.Parallel()

	archive := archiveOf(defaultFiles)
	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionXz, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			f := writePackage(t, archive, c, defaultFiles, nil)
			report, err := Check(f)
			require.NoError(t, err)
			assert.NoError(t, report.Err())
			assert.Equal(t, c, report.Compression)
			assert.Equal(t, int64(len(archive)), report.UncompressedSize)
			assert.Len(t, report.Entries, 3)
		})
	}
}

func TestCheck_FileMismatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		archive []headerFile
		header  []headerFile
		want    *rpm.Error
	}{
		{
			name: "digest",
			archive: []headerFile{
				{path: "/usr/bin/hello", mode: 0100755, content: "#!/bin/sh\necho HELLO\n"},
			},
			header: defaultFiles[:1],
			want:   rpm.ErrDigestMismatch,
		},
		{
			name: "size",
			archive: []headerFile{
				{path: "/usr/bin/hello", mode: 0100755, content: "#!/bin/sh\n"},
			},
			header: defaultFiles[:1],
			want:   rpm.ErrFileSize,
		},
		{
			name:    "missing",
			archive: defaultFiles[:1],
			header:  defaultFiles[:2],
			want:    rpm.ErrMissingFile,
		},
		{
			name:    "unmapped",
			archive: defaultFiles[:2],
			header:  defaultFiles[:1],
			want:    rpm.ErrUnmappedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := writePackage(t, archiveOf(tt.archive), CompressionGzip, tt.header, nil)
			report, err := Check(f)
			require.NoError(t, err)
			require.Len(t, report.Problems, 1)
			assert.ErrorIs(t, report.Problems[0], tt.want)
			assert.ErrorIs(t, report.Err(), tt.want)
		})
	}
}

func TestCheck_GhostAndDirectories(t *testing.T) {
	t.Parallel()

	header := append([]headerFile{
		{path: "/var/log/hello.log", mode: 0100644, flags: 1 << 6},
	}, defaultFiles...)
	archive := testutil.Cpio(
		testutil.CpioFile{Name: "./usr", Mode: 040755},
		testutil.CpioFile{Name: "./usr/bin/hello", Mode: 0100755, Content: defaultFiles[0].content},
		testutil.CpioFile{Name: "./usr/share/doc/hello/README", Mode: 0100644, Content: defaultFiles[1].content},
		testutil.CpioFile{Name: "./usr/bin/hi", Mode: 0120777, Content: "hello"},
	)

	f := writePackage(t, archive, CompressionZstd, header, nil)
	report, err := Check(f)
	require.NoError(t, err)
	assert.NoError(t, report.Err())
}

func TestCheck_SignatureMismatches(t *testing.T) {
	t.Parallel()

	archive := archiveOf(defaultFiles)

	t.Run("md5", func(t *testing.T) {
		t.Parallel()

		f := writePackage(t, archive, CompressionGzip, defaultFiles, func(_, sig *testutil.Section) {
			sig.AddBinary(rpmtag.SigMD5, make([]byte, md5.Size))
		})
		report, err := Check(f)
		require.NoError(t, err)
		require.Len(t, report.Problems, 1)
		assert.ErrorIs(t, report.Problems[0], rpm.ErrDigestMismatch)
	})

	t.Run("sizes", func(t *testing.T) {
		t.Parallel()

		f := writePackage(t, archive, CompressionGzip, defaultFiles, func(_, sig *testutil.Section) {
			sig.AddInt32(rpmtag.SigSize, []uint32{1})
			sig.AddInt32(rpmtag.SigPayloadSize, []uint32{2})
		})
		report, err := Check(f)
		require.NoError(t, err)
		require.Len(t, report.Problems, 2)
		for _, p := range report.Problems {
			assert.ErrorIs(t, p, rpm.ErrFileSize)
		}
	})

	t.Run("payload digest", func(t *testing.T) {
		t.Parallel()

		f := writePackage(t, archive, CompressionXz, defaultFiles, func(hdr, _ *testutil.Section) {
			hdr.AddStringArray(rpmtag.PayloadDigest, []string{digest.FromString("other").Encoded()})
			hdr.AddInt32(rpmtag.PayloadDigestAlgo, []uint32{DigestSHA256})
		})
		report, err := Check(f)
		require.NoError(t, err)
		require.Len(t, report.Problems, 1)
		assert.ErrorIs(t, report.Problems[0], rpm.ErrDigestMismatch)
	})
}

func TestCheck_PayloadDigestMatches(t *testing.T) {
	t.Parallel()

	archive := archiveOf(defaultFiles)
	compressed := compress(t, archive, CompressionNone)
	f := writePackage(t, archive, CompressionNone, defaultFiles, func(hdr, _ *testutil.Section) {
		hdr.AddStringArray(rpmtag.PayloadDigest, []string{digest.FromBytes(compressed).Encoded()})
	})
	report, err := Check(f)
	require.NoError(t, err)
	assert.NoError(t, report.Err())
}

func TestCheck_UnknownCompressor(t *testing.T) {
	t.Parallel()

	hdr := &testutil.Section{}
	hdr.AddString(rpmtag.PayloadCompressor, testutil.TypeString, "brotli")
	pkg := testutil.Package(testutil.Lead("x-1-1"), &testutil.Section{}, hdr, []byte("\x00\x01\x02\x03\x04\x05"))
	f, err := inspect.Open(testutil.WriteFile(t, t.TempDir(), "x.rpm", pkg))
	require.NoError(t, err)
	defer f.Close()

	_, err = Check(f)
	assert.ErrorIs(t, err, rpm.ErrUnknownFiletype)
	assert.True(t, rpm.KindOf(err).IsFileError())
}

func TestCheck_Built(t *testing.T) {
	t.Parallel()

	def := testutil.NewBuildPackage("hello", "1.0", map[string]string{
		"/usr/share/hello/greeting": "hello world\n",
		"/etc/hello.conf":           "greeting = hello\n",
	})
	data := testutil.BuildRPM(t, def)
	f, err := inspect.Open(testutil.WriteFile(t, t.TempDir(), "hello.rpm", data))
	require.NoError(t, err)
	defer f.Close()

	report, err := Check(f)
	require.NoError(t, err)
	assert.NoError(t, report.Err())
	assert.Equal(t, CompressionLzma, report.Compression)
	assert.Equal(t, int64(len(data)-f.Header.Size), report.CompressedSize)
}
