// Package rpmtag maps RPM tag ids to their names and names the tags the
// inspector reads. Decoding itself never consults these tables.
package rpmtag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sassoftware/go-rpmutils"
)

// Header section tags read by the inspector
const (
	HeaderImmutable   uint32 = 63
	I18NTable         uint32 = 100
	Name                     = uint32(rpmutils.NAME)
	Version                  = uint32(rpmutils.VERSION)
	Release                  = uint32(rpmutils.RELEASE)
	Epoch             uint32 = 1003
	Summary                  = uint32(rpmutils.SUMMARY)
	BuildTime                = uint32(rpmutils.BUILDTIME)
	License                  = uint32(rpmutils.LICENSE)
	Packager                 = uint32(rpmutils.PACKAGER)
	Group                    = uint32(rpmutils.GROUP)
	URL                      = uint32(rpmutils.URL)
	Arch                     = uint32(rpmutils.ARCH)
	OldFileNames      uint32 = 1027
	FileSizes         uint32 = 1028
	FileModes         uint32 = 1030
	FileDigests       uint32 = 1035
	FileLinkTos       uint32 = 1036
	FileFlags         uint32 = 1037
	SourceRPM         uint32 = 1044
	ProvideName       uint32 = 1047
	RequireName              = uint32(rpmutils.REQUIRENAME)
	DirIndexes        uint32 = 1116
	BaseNames         uint32 = 1117
	DirNames          uint32 = 1118
	PayloadFormat     uint32 = 1124
	PayloadCompressor uint32 = 1125
	LongFileSizes     uint32 = 5008
	FileDigestAlgo    uint32 = 5011
	PayloadDigest     uint32 = 5092
	PayloadDigestAlgo uint32 = 5093
)

// Signature section tags
const (
	SigHeaderSignatures uint32 = 62
	SigDSA              uint32 = 267
	SigRSA              uint32 = 268
	SigSHA1             uint32 = 269
	SigSHA256           uint32 = 273
	SigSize             uint32 = 1000
	SigPGP              uint32 = 1002
	SigMD5              uint32 = 1004
	SigGPG              uint32 = 1005
	SigPayloadSize      uint32 = 1007
)

// OpenPGPSignatureTags are the signature tags whose value is an OpenPGP
// signature packet. DSA and RSA cover the header only, PGP and GPG cover the
// header and the payload.
var OpenPGPSignatureTags = []uint32{SigDSA, SigRSA, SigPGP, SigGPG}

// Section selects one of the two tag namespaces.
type Section int

const (
	SectionHeader Section = iota
	SectionSignature
)

// String returns the string representation of Section
func (s Section) String() string {
	if s == SectionSignature {
		return "signature"
	}
	return "header"
}

func (s Section) names() map[uint32]string {
	if s == SectionSignature {
		return signatureNames
	}
	return headerNames
}

// NameOf returns the name of tag in the given section.
func NameOf(s Section, tag uint32) (string, bool) {
	name, ok := s.names()[tag]
	return name, ok
}

// Describe renders a tag as "NAME (id)", or just the id when it is unknown.
func Describe(s Section, tag uint32) string {
	if name, ok := NameOf(s, tag); ok {
		return fmt.Sprintf("%s (%d)", name, tag)
	}
	return strconv.FormatUint(uint64(tag), 10)
}

// Parse resolves a tag given either as a number (decimal or 0x-prefixed hex)
// or as a name such as "NAME" or "RPMTAG_NAME". Names are case-insensitive.
func Parse(s Section, text string) (uint32, error) {
	if n, err := strconv.ParseUint(text, 0, 32); err == nil {
		return uint32(n), nil
	}
	name := strings.ToUpper(text)
	name = strings.TrimPrefix(name, "RPMTAG_")
	name = strings.TrimPrefix(name, "RPMSIGTAG_")
	for tag, n := range s.names() {
		if n == name {
			return tag, nil
		}
	}
	return 0, fmt.Errorf("unknown %s tag %q", s, text)
}
