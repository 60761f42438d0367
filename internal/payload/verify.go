package payload

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmhdr/internal/inspect"
	"github.com/ralt/rpmhdr/internal/rpmtag"
	"github.com/ralt/rpmhdr/rpm"
)

// Report is the outcome of checking a payload against its header
type Report struct {
	Compression      Compression
	CompressedSize   int64
	UncompressedSize int64
	Entries          []Entry

	// Problems holds one error per mismatch found. Each carries one of the
	// rpm file error kinds.
	Problems []error
}

// Err joins every problem into a single error, or returns nil
func (r *Report) Err() error {
	return errors.Join(r.Problems...)
}

func (r *Report) problem(kind rpm.ErrorKind, format string, args ...any) {
	r.Problems = append(r.Problems, rpm.FileError(kind, fmt.Errorf(format, args...)))
}

type counter struct {
	n int64
}

func (c *counter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// Check reads the whole payload of f and compares it with the header: the
// recorded sizes, the MD5 over header and payload, the payload digest and
// every file entry. Failures to read or decompress the payload are returned
// as the error; mismatches are collected in the report.
func Check(f *inspect.File) (*Report, error) {
	hdr := f.Header.Header
	sig := f.Header.Signature

	md5sum := md5.New()
	md5sum.Write(f.HeaderBytes())
	payloadSum := digest.SHA256.Digester()
	compressed := &counter{}
	raw := io.TeeReader(f.Payload(), io.MultiWriter(md5sum, payloadSum.Hash(), compressed))

	rc, c, err := Open(raw, inspect.StringTag(hdr, rpmtag.PayloadCompressor))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	uncompressed := &counter{}
	archive := io.TeeReader(rc, uncompressed)

	algo := uint32(inspect.IntTag(hdr, rpmtag.FileDigestAlgo))
	entries, err := List(archive, algo)
	if err != nil {
		return nil, err
	}

	// Consume everything after the trailer so both streams are fully counted.
	if _, err := io.Copy(io.Discard, archive); err != nil {
		return nil, rpm.IoError(err)
	}
	if _, err := io.Copy(io.Discard, raw); err != nil {
		return nil, rpm.IoError(err)
	}

	report := &Report{
		Compression:      c,
		CompressedSize:   compressed.n,
		UncompressedSize: uncompressed.n,
		Entries:          entries,
	}
	logrus.Debugf("%s: %s payload, %d bytes compressed, %d bytes uncompressed, %d entries",
		f.Path, c, report.CompressedSize, report.UncompressedSize, len(entries))

	headerSize := int64(len(f.HeaderBytes()))
	if want := inspect.IntTag(sig, rpmtag.SigSize); want != 0 && want != headerSize+report.CompressedSize {
		report.problem(rpm.KindFileSize, "header and payload are %d bytes, signature records %d",
			headerSize+report.CompressedSize, want)
	}
	if want := inspect.IntTag(sig, rpmtag.SigPayloadSize); want != 0 && want != report.UncompressedSize {
		report.problem(rpm.KindFileSize, "uncompressed payload is %d bytes, signature records %d",
			report.UncompressedSize, want)
	}
	if want := inspect.BinaryTag(sig, rpmtag.SigMD5); want != nil {
		if got := md5sum.Sum(nil); !bytes.Equal(got, want) {
			report.problem(rpm.KindDigestMismatch, "header and payload MD5 is %x, signature records %x", got, want)
		}
	}
	if want := inspect.StringTag(hdr, rpmtag.PayloadDigest); want != "" {
		algo := uint32(inspect.IntTag(hdr, rpmtag.PayloadDigestAlgo))
		if algo == 0 || algo == DigestSHA256 {
			if got := payloadSum.Digest().Encoded(); !strings.EqualFold(got, want) {
				report.problem(rpm.KindDigestMismatch, "payload SHA256 is %s, header records %s", got, want)
			}
		} else {
			logrus.Debugf("%s: skipping payload digest with algorithm %d", f.Path, algo)
		}
	}

	files, err := inspect.Files(hdr)
	if err != nil {
		return nil, err
	}
	report.compareFiles(files)

	return report, nil
}

// compareFiles matches archive entries with the header file list by path
func (r *Report) compareFiles(files []inspect.FileInfo) {
	inArchive := make(map[string]Entry, len(r.Entries))
	for _, e := range r.Entries {
		inArchive[e.Name] = e
	}
	inHeader := make(map[string]struct{}, len(files))

	for _, file := range files {
		inHeader[file.Path] = struct{}{}

		e, ok := inArchive[file.Path]
		if !ok {
			if !file.Ghost {
				r.problem(rpm.KindMissingFile, "%s is listed in the header but not in the payload", file.Path)
			}
			continue
		}
		if !file.IsRegular() || e.Type != TypeRegular {
			continue
		}
		if e.Size != file.Size {
			r.problem(rpm.KindFileSize, "%s is %d bytes, header records %d", file.Path, e.Size, file.Size)
			continue
		}
		if file.Digest != "" && !strings.EqualFold(e.Digest, file.Digest) {
			r.problem(rpm.KindDigestMismatch, "%s digest is %s, header records %s", file.Path, e.Digest, file.Digest)
		}
	}

	for _, e := range r.Entries {
		if _, ok := inHeader[e.Name]; ok {
			continue
		}
		// Some builders archive parent directories they never list.
		if e.Type == TypeDirectory {
			logrus.Debugf("payload directory %s is not listed in the header", e.Name)
			continue
		}
		r.problem(rpm.KindUnmappedFile, "%s is in the payload but not listed in the header", e.Name)
	}
}
