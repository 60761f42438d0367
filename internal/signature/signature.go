// Package signature describes and checks the OpenPGP signatures an RPM
// carries in its signature section.
package signature

import (
	"bytes"
	"crypto"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	pgperrors "github.com/ProtonMail/go-crypto/openpgp/errors"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// ErrNoSignature is returned by Describe when the data holds no signature
// packet.
var ErrNoSignature = errors.New("no OpenPGP signature packet")

// ErrUnsupportedVersion is returned by Verify for signature packets the
// OpenPGP library cannot check, such as the version 3 packets older rpmsign
// releases wrote.
var ErrUnsupportedVersion = errors.New("unsupported signature packet version")

const (
	packetTagSignature = 2

	// version, hashed length, type, creation time, key id, public key and
	// hash algorithms
	v3FixedSize = 17
)

// Info describes one signature packet
type Info struct {
	Version    int
	SigType    packet.SignatureType
	KeyID      uint64
	PubKeyAlgo string
	Hash       string
	CreatedAt  time.Time
}

// Describe parses the OpenPGP packets in b and returns one Info per
// signature packet. Other packet types are skipped. Nothing is verified.
//
// Version 4 and 5 packets are read by go-crypto. It refuses version 3, so
// those are decoded here from their fixed-size prefix.
func Describe(b []byte) ([]Info, error) {
	var infos []Info
	r := bytes.NewReader(b)
	for r.Len() > 0 {
		start := len(b) - r.Len()
		p, err := packet.Read(r)
		raw := b[start : len(b)-r.Len()]

		var unsupported pgperrors.UnsupportedError
		var unknown pgperrors.UnknownPacketTypeError
		switch {
		case err == nil:
		case errors.As(err, &unsupported):
			info, ok, v3err := describeV3(raw)
			if v3err != nil {
				return nil, v3err
			}
			if ok {
				infos = append(infos, info)
			}
			continue
		case errors.As(err, &unknown):
			continue
		default:
			return nil, fmt.Errorf("failed to read signature packet: %w", err)
		}

		if sig, ok := p.(*packet.Signature); ok {
			info := Info{
				Version:    sig.Version,
				SigType:    sig.SigType,
				PubKeyAlgo: algorithmName(sig.PubKeyAlgo),
				Hash:       sig.Hash.String(),
				CreatedAt:  sig.CreationTime.UTC(),
			}
			if sig.IssuerKeyId != nil {
				info.KeyID = *sig.IssuerKeyId
			}
			infos = append(infos, info)
		}
	}

	if len(infos) == 0 {
		return nil, ErrNoSignature
	}
	return infos, nil
}

// describeV3 decodes a complete version 3 signature packet (RFC 4880,
// section 5.2.2). ok is false when raw holds some other unsupported packet.
func describeV3(raw []byte) (info Info, ok bool, err error) {
	tag, body, err := splitPacket(raw)
	if err != nil {
		return Info{}, false, err
	}
	if tag != packetTagSignature || len(body) == 0 || body[0] != 3 {
		return Info{}, false, nil
	}
	if len(body) < v3FixedSize || body[1] != 5 {
		return Info{}, false, fmt.Errorf("failed to read signature packet: malformed version 3 signature")
	}
	return Info{
		Version:    3,
		SigType:    packet.SignatureType(body[2]),
		CreatedAt:  time.Unix(int64(binary.BigEndian.Uint32(body[3:7])), 0).UTC(),
		KeyID:      binary.BigEndian.Uint64(body[7:15]),
		PubKeyAlgo: algorithmName(packet.PublicKeyAlgorithm(body[15])),
		Hash:       hashName(body[16]),
	}, true, nil
}

// splitPacket separates the packet tag and body of a single packet whose
// framing go-crypto has already accepted.
func splitPacket(raw []byte) (tag byte, body []byte, err error) {
	if len(raw) < 2 || raw[0]&0x80 == 0 {
		return 0, nil, fmt.Errorf("failed to read signature packet: bad packet header")
	}

	hdr := 1
	if raw[0]&0x40 != 0 {
		// new format
		tag = raw[0] & 0x3f
		switch l := raw[1]; {
		case l < 192:
			hdr += 1
		case l < 224:
			hdr += 2
		case l == 255:
			hdr += 5
		default:
			return 0, nil, fmt.Errorf("failed to read signature packet: partial body length")
		}
	} else {
		// old format
		tag = (raw[0] & 0x3f) >> 2
		hdr += [4]int{1, 2, 4, 0}[raw[0]&3]
	}
	if hdr > len(raw) {
		return 0, nil, fmt.Errorf("failed to read signature packet: truncated header")
	}
	return tag, raw[hdr:], nil
}

// KeyIDString formats a key id the way gpg prints long key ids
func KeyIDString(id uint64) string {
	return fmt.Sprintf("%016X", id)
}

func algorithmName(algo packet.PublicKeyAlgorithm) string {
	switch algo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSASignOnly:
		return "RSA"
	case packet.PubKeyAlgoDSA:
		return "DSA"
	case packet.PubKeyAlgoECDSA:
		return "ECDSA"
	case packet.PubKeyAlgoEdDSA:
		return "EdDSA"
	default:
		return fmt.Sprintf("algorithm %d", algo)
	}
}

// OpenPGP hash algorithm ids (RFC 4880, section 9.4)
var hashes = map[byte]crypto.Hash{
	1:  crypto.MD5,
	2:  crypto.SHA1,
	3:  crypto.RIPEMD160,
	8:  crypto.SHA256,
	9:  crypto.SHA384,
	10: crypto.SHA512,
	11: crypto.SHA224,
}

func hashName(id byte) string {
	if h, ok := hashes[id]; ok {
		return h.String()
	}
	return fmt.Sprintf("hash %d", id)
}
