package payload

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path"
	"strings"

	"github.com/opencontainers/go-digest"
	cpio "github.com/surma/gocpio"

	"github.com/ralt/rpmhdr/rpm"
)

// File digest algorithms as recorded in FILEDIGESTALGO. Packages without
// the tag use MD5.
const (
	DigestMD5    uint32 = 1
	DigestSHA1   uint32 = 2
	DigestSHA256 uint32 = 8
	DigestSHA512 uint32 = 10
)

// EntryType is the kind of a cpio entry
type EntryType string

const (
	TypeRegular   EntryType = "file"
	TypeDirectory EntryType = "dir"
	TypeSymlink   EntryType = "symlink"
	TypeDevice    EntryType = "device"
	TypeFifo      EntryType = "fifo"
	TypeSocket    EntryType = "socket"
	TypeOther     EntryType = "other"
)

// Entry is one member of the payload archive
type Entry struct {
	Name   string // absolute path, as in the header file list
	Type   EntryType
	Perm   uint32
	Size   int64
	LinkTo string
	Digest string // hex digest of regular file contents
}

func newFileHasher(algo uint32) (hash.Hash, error) {
	switch algo {
	case 0, DigestMD5:
		return md5.New(), nil
	case DigestSHA1:
		return sha1.New(), nil
	case DigestSHA256:
		return digest.SHA256.Hash(), nil
	case DigestSHA512:
		return digest.SHA512.Hash(), nil
	default:
		return nil, rpm.FileError(rpm.KindUnknownFiletype, fmt.Errorf("unsupported file digest algorithm %d", algo))
	}
}

func entryType(t int64) EntryType {
	switch t {
	case cpio.TYPE_REG:
		return TypeRegular
	case cpio.TYPE_DIR:
		return TypeDirectory
	case cpio.TYPE_SYMLINK:
		return TypeSymlink
	case cpio.TYPE_BLK, cpio.TYPE_CHAR:
		return TypeDevice
	case cpio.TYPE_FIFO:
		return TypeFifo
	case cpio.TYPE_SOCK:
		return TypeSocket
	default:
		return TypeOther
	}
}

// normalizeName turns an archive member name ("./usr/bin/foo") into the
// absolute path the header records
func normalizeName(name string) string {
	if name == "." {
		return "/"
	}
	return path.Clean("/" + strings.TrimPrefix(name, "./"))
}

// List reads an uncompressed cpio archive to its trailer. Regular file
// contents are hashed with the given FILEDIGESTALGO algorithm.
func List(r io.Reader, algo uint32) ([]Entry, error) {
	if _, err := newFileHasher(algo); err != nil {
		return nil, err
	}

	cr := cpio.NewReader(r)
	var entries []Entry
	for {
		hdr, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rpm.FileError(rpm.KindBadHeader, fmt.Errorf("reading payload archive: %w", err))
		}
		if hdr.IsTrailer() {
			break
		}

		e := Entry{
			Name: normalizeName(hdr.Name),
			Type: entryType(int64(hdr.Type)),
			Perm: uint32(hdr.Mode) & 07777,
			Size: int64(hdr.Size),
		}

		switch e.Type {
		case TypeRegular:
			h, _ := newFileHasher(algo)
			n, err := io.Copy(h, cr)
			if err != nil {
				return nil, rpm.IoError(fmt.Errorf("reading %s: %w", e.Name, err))
			}
			e.Size = n
			e.Digest = hex.EncodeToString(h.Sum(nil))
		case TypeSymlink:
			target, err := io.ReadAll(cr)
			if err != nil {
				return nil, rpm.IoError(fmt.Errorf("reading %s: %w", e.Name, err))
			}
			e.LinkTo = string(target)
		default:
			if _, err := io.Copy(io.Discard, cr); err != nil {
				return nil, rpm.IoError(err)
			}
		}

		entries = append(entries, e)
	}
	return entries, nil
}
