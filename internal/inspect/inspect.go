// Package inspect opens RPM files and turns their decoded header into
// package summaries, file lists and verification results.
package inspect

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmhdr/internal/models"
	"github.com/ralt/rpmhdr/internal/rpmtag"
	"github.com/ralt/rpmhdr/internal/signature"
	"github.com/ralt/rpmhdr/internal/utils"
	"github.com/ralt/rpmhdr/rpm"
)

// File is an opened RPM whose header has been decoded. The underlying file
// stays positioned at the start of the payload.
type File struct {
	Path   string
	Header *rpm.PackageHeader

	raw []byte
	f   *os.File
}

// Open reads and decodes the header region of the RPM at path
func Open(path string, opts ...rpm.Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.InspectError{Type: models.ErrFileOp, Package: path, Err: err}
	}

	var raw bytes.Buffer
	h, err := rpm.ReadHeader(io.TeeReader(f, &raw), opts...)
	if err != nil {
		f.Close()
		return nil, &models.InspectError{Type: models.ErrPackageParse, Package: path, Err: err}
	}

	logrus.Debugf("Decoded %s: %d signature tags, %d header tags, payload at %d",
		path, len(h.Signature.Tags), len(h.Header.Tags), h.Size)

	return &File{Path: path, Header: h, raw: raw.Bytes(), f: f}, nil
}

// Close closes the underlying file
func (f *File) Close() error {
	return f.f.Close()
}

// Payload returns the compressed payload stream. It can be consumed once.
func (f *File) Payload() io.Reader {
	return f.f
}

// HeaderBytes returns the header section exactly as stored in the file. This
// is the data covered by the header-only digests and signatures.
func (f *File) HeaderBytes() []byte {
	return f.raw[f.Header.Size-f.Header.Header.EncodedSize() : f.Header.Size]
}

// VerifyHeaderDigests checks the SHA1 and SHA256 digests of the header
// section recorded in the signature section. It returns the number of
// digests that were present.
func (f *File) VerifyHeaderDigests() (int, error) {
	sig := f.Header.Signature
	hdr := f.HeaderBytes()
	checked := 0

	if want := StringTag(sig, rpmtag.SigSHA1); want != "" {
		checked++
		sum := sha1.Sum(hdr)
		if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, want) {
			return checked, rpm.FileError(rpm.KindDigestMismatch,
				fmt.Errorf("header SHA1 is %s, signature section records %s", got, want))
		}
	}

	if want := StringTag(sig, rpmtag.SigSHA256); want != "" {
		checked++
		d := digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(want))
		if err := d.Validate(); err != nil {
			return checked, rpm.FileError(rpm.KindBadHeader, fmt.Errorf("header SHA256: %w", err))
		}
		v := d.Verifier()
		v.Write(hdr)
		if !v.Verified() {
			return checked, rpm.FileError(rpm.KindDigestMismatch,
				fmt.Errorf("header SHA256 does not match %s", d))
		}
	}

	return checked, nil
}

// VerifySignatures checks every header-only OpenPGP signature (the RSA and
// DSA tags) against keyring. It returns the number of signatures checked.
func (f *File) VerifySignatures(keyring openpgp.KeyRing) (int, error) {
	checked := 0
	for _, tag := range []uint32{rpmtag.SigRSA, rpmtag.SigDSA} {
		sig := BinaryTag(f.Header.Signature, tag)
		if sig == nil {
			continue
		}
		checked++
		signer, err := signature.Verify(keyring, f.HeaderBytes(), sig)
		if err != nil {
			return checked, &models.InspectError{
				Type:    models.ErrSignature,
				Package: f.Path,
				Err:     fmt.Errorf("%s: %w", rpmtag.Describe(rpmtag.SectionSignature, tag), err),
			}
		}
		logrus.Debugf("%s signed by key %s", f.Path, signature.KeyIDString(signer.PrimaryKey.KeyId))
	}
	return checked, nil
}

// Summary extracts the package metadata from the decoded header
func (f *File) Summary() *models.Package {
	hdr := f.Header.Header
	sig := f.Header.Signature

	pkg := &models.Package{
		Name:              StringTag(hdr, rpmtag.Name),
		Epoch:             uint32(IntTag(hdr, rpmtag.Epoch)),
		Version:           StringTag(hdr, rpmtag.Version),
		Release:           StringTag(hdr, rpmtag.Release),
		Architecture:      StringTag(hdr, rpmtag.Arch),
		Summary:           StringTag(hdr, rpmtag.Summary),
		Packager:          StringTag(hdr, rpmtag.Packager),
		Homepage:          StringTag(hdr, rpmtag.URL),
		License:           StringTag(hdr, rpmtag.License),
		Group:             StringTag(hdr, rpmtag.Group),
		SourceRPM:         StringTag(hdr, rpmtag.SourceRPM),
		Source:            f.Header.Lead.IsSource(),
		Requires:          StringSliceTag(hdr, rpmtag.RequireName),
		Provides:          StringSliceTag(hdr, rpmtag.ProvideName),
		PayloadFormat:     StringTag(hdr, rpmtag.PayloadFormat),
		PayloadCompressor: StringTag(hdr, rpmtag.PayloadCompressor),
		PayloadOffset:     int64(f.Header.Size),
		HeaderSHA1:        StringTag(sig, rpmtag.SigSHA1),
	}

	if t := IntTag(hdr, rpmtag.BuildTime); t > 0 {
		pkg.BuildTime = time.Unix(t, 0).UTC()
	}
	if s := StringTag(sig, rpmtag.SigSHA256); s != "" {
		pkg.HeaderSHA256 = digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(s))
	}

	files, err := Files(hdr)
	if err != nil {
		logrus.Warnf("%s: cannot read file list: %v", f.Path, err)
	}
	for _, file := range files {
		pkg.Files = append(pkg.Files, file.Path)
	}

	for _, tag := range rpmtag.OpenPGPSignatureTags {
		b := BinaryTag(sig, tag)
		if b == nil {
			continue
		}
		infos, err := signature.Describe(b)
		if err != nil {
			logrus.Warnf("%s: cannot parse %s: %v", f.Path, rpmtag.Describe(rpmtag.SectionSignature, tag), err)
			continue
		}
		for _, info := range infos {
			pkg.Signatures = append(pkg.Signatures, models.Signature{
				Tag:       tag,
				Version:   info.Version,
				KeyID:     info.KeyID,
				PubKey:    info.PubKeyAlgo,
				Hash:      info.Hash,
				CreatedAt: info.CreatedAt,
			})
		}
	}

	return pkg
}

// ParsePackage parses an RPM file and extracts metadata
func ParsePackage(path string, opts ...rpm.Option) (*models.Package, error) {
	// Calculate checksums
	checksums, err := utils.CalculateChecksums(path)
	if err != nil {
		return nil, &models.InspectError{
			Type:    models.ErrFileOp,
			Package: path,
			Err:     fmt.Errorf("failed to calculate checksums: %w", err),
		}
	}

	f, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pkg := f.Summary()

	// Set file information
	pkg.Filename = path
	pkg.Size = checksums.Size
	pkg.Digest = checksums.SHA256
	pkg.DigestSHA512 = checksums.SHA512
	pkg.MD5 = checksums.MD5
	pkg.SHA1 = checksums.SHA1

	return pkg, nil
}
