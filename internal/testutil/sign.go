package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// NewSigningKey returns a fresh Ed25519 OpenPGP key.
func NewSigningKey(tb testing.TB) *openpgp.Entity {
	tb.Helper()
	entity, err := openpgp.NewEntity("rpmhdr test", "", "test@example.org", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	if err != nil {
		tb.Fatalf("generating key: %v", err)
	}
	return entity
}

// SignDetached returns a binary detached signature over data, as rpmsign
// stores it in the RSA, DSA, PGP and GPG signature tags.
func SignDetached(tb testing.TB, entity *openpgp.Entity, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := openpgp.DetachSign(&buf, entity, bytes.NewReader(data), nil); err != nil {
		tb.Fatalf("signing: %v", err)
	}
	return buf.Bytes()
}

// ArmoredPublicKey returns the armored public key of entity.
func ArmoredPublicKey(tb testing.TB, entity *openpgp.Entity) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		tb.Fatal(err)
	}
	if err := entity.Serialize(w); err != nil {
		tb.Fatal(err)
	}
	if err := w.Close(); err != nil {
		tb.Fatal(err)
	}
	return buf.Bytes()
}

// SignedPackage returns a small package whose signature section carries the
// SHA1 of the header section and an OpenPGP signature over it in the RSA
// tag, plus the header section bytes that were signed.
func SignedPackage(tb testing.TB, entity *openpgp.Entity, payload []byte) (pkg, header []byte) {
	tb.Helper()

	hdr := &Section{}
	hdr.AddString(1000, TypeString, "signed")
	hdr.AddString(1001, TypeString, "2.0")
	hdr.AddString(1002, TypeString, "3")
	hdr.AddString(1022, TypeString, "noarch")
	hdr.AddString(1125, TypeString, "xz")
	header = hdr.Bytes()

	sig := &Section{}
	sig.AddBinary(268, SignDetached(tb, entity, header))
	sig.AddString(269, TypeString, SHA1Hex(header))

	return Package(Lead("signed-2.0-3"), sig, hdr, payload), header
}

// SignatureV3 returns an old-format version 3 RSA/SHA256 signature packet,
// as rpm 4.x releases built before 2014 stored them. The MPI is filler.
func SignatureV3(keyID uint64, created time.Time) []byte {
	body := []byte{3, 5, 0x00}
	body = binary.BigEndian.AppendUint32(body, uint32(created.Unix()))
	body = binary.BigEndian.AppendUint64(body, keyID)
	body = append(body, 1, 8) // RSA, SHA256
	body = append(body, 0xbe, 0xef)
	body = append(body, 0x00, 0x08, 0xff)
	return append([]byte{0x88, byte(len(body))}, body...)
}
