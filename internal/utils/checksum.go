package utils

import (
	"crypto/md5"
	"crypto/sha1"
	_ "crypto/sha256" // registers the hashes go-digest relies on
	_ "crypto/sha512"
	"encoding/hex"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// Checksum contains various checksums for a file
type Checksum struct {
	MD5    string
	SHA1   string
	SHA256 digest.Digest
	SHA512 digest.Digest
	Size   int64
}

// CalculateChecksums calculates all checksums for a file in a single pass
func CalculateChecksums(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Get file info for size
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	md5Hash := md5.New()
	sha1Hash := sha1.New()
	sha256Digester := digest.SHA256.Digester()
	sha512Digester := digest.SHA512.Digester()

	// Use MultiWriter to calculate all hashes at once
	multiWriter := io.MultiWriter(md5Hash, sha1Hash, sha256Digester.Hash(), sha512Digester.Hash())

	// Stream file through all hashes
	if _, err := io.Copy(multiWriter, f); err != nil {
		return nil, err
	}

	return &Checksum{
		MD5:    hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1Hash.Sum(nil)),
		SHA256: sha256Digester.Digest(),
		SHA512: sha512Digester.Digest(),
		Size:   info.Size(),
	}, nil
}
