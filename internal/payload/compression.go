// Package payload decompresses RPM payloads, lists their cpio entries and
// checks them against the file list and digests recorded in the header.
package payload

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/ralt/rpmhdr/rpm"
)

// Compression identifies a payload compression format
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
	CompressionLzma
	CompressionZstd
)

// String returns the name rpm uses for the format in PAYLOADCOMPRESSOR
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXz:
		return "xz"
	case CompressionLzma:
		return "lzma"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

var magics = []struct {
	prefix []byte
	c      Compression
}{
	{[]byte{0x1f, 0x8b}, CompressionGzip},
	{[]byte("BZh"), CompressionBzip2},
	{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, CompressionXz},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, CompressionZstd},
	{[]byte{0x5d, 0x00, 0x00}, CompressionLzma},
	{[]byte("070701"), CompressionNone},
	{[]byte("070702"), CompressionNone},
}

// magicLen is the longest prefix Detect looks at
const magicLen = 6

// Detect recognizes the compression format from the first bytes of a
// payload. Uncompressed cpio archives are reported as CompressionNone.
func Detect(prefix []byte) (Compression, bool) {
	for _, m := range magics {
		if bytes.HasPrefix(prefix, m.prefix) {
			return m.c, true
		}
	}
	return CompressionNone, false
}

// FromHeader maps a PAYLOADCOMPRESSOR value to a Compression. Packages
// without the tag use gzip.
func FromHeader(name string) (Compression, error) {
	switch name {
	case "", "gzip":
		return CompressionGzip, nil
	case "bzip2":
		return CompressionBzip2, nil
	case "xz":
		return CompressionXz, nil
	case "lzma":
		return CompressionLzma, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return CompressionNone, rpm.FileError(rpm.KindUnknownFiletype,
			fmt.Errorf("unsupported payload compressor %q", name))
	}
}

// NewReader returns a reader decompressing r with c
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case CompressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case CompressionLzma:
		lr, err := lzma.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(lr), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, rpm.FileError(rpm.KindUnknownFiletype, fmt.Errorf("unsupported compression %d", c))
	}
}

// Open sniffs the payload format and returns a decompressing reader. The
// magic bytes win over the header's PAYLOADCOMPRESSOR value, which is only
// consulted when the prefix is not recognized.
func Open(r io.Reader, compressor string) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)
	prefix, err := br.Peek(magicLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, CompressionNone, rpm.IoError(err)
	}

	c, ok := Detect(prefix)
	if !ok {
		if c, err = FromHeader(compressor); err != nil {
			return nil, CompressionNone, err
		}
	}

	rc, err := NewReader(br, c)
	if err != nil {
		return nil, c, rpm.FileError(rpm.KindUnknownFiletype, fmt.Errorf("opening %s payload: %w", c, err))
	}
	return rc, c, nil
}
