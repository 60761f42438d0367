package testutil

import (
	"bytes"
	"encoding/binary"
)

// ReferenceName is the lead name of the reference package.
const ReferenceName = "hardlink-1:1.0-23.fc24"

// Sizes of the reference package, matching a Fedora 24 hardlink build.
const (
	ReferenceSignatureStoreSize = 0x1484
	ReferenceHeaderCount        = 0x3e
	ReferenceHeaderStoreSize    = 0x17d2

	// ReferenceHeaderStoreOffset is where the header store starts in the
	// package bytes.
	ReferenceHeaderStoreOffset = 0x1968
)

// ReferenceSHA1 is the header SHA1 string stored in the signature section.
const ReferenceSHA1 = "4b3b8c2fd4fd1ee6a05a4b0ec7fa1d4b0a5bc3ee"

// ReferenceSignatureEntries is the signature table of the reference package.
var ReferenceSignatureEntries = []Entry{
	{Tag: 0x03e, Type: TypeBin, Offset: 0x1474, Count: 0x10},
	{Tag: 0x10c, Type: TypeBin, Offset: 0x0000, Count: 0x218},
	{Tag: 0x10d, Type: TypeString, Offset: 0x0218, Count: 0x1},
	{Tag: 0x3e8, Type: TypeInt32, Offset: 0x0244, Count: 0x1},
	{Tag: 0x3ea, Type: TypeBin, Offset: 0x0248, Count: 0x218},
	{Tag: 0x3ec, Type: TypeBin, Offset: 0x0460, Count: 0x10},
	{Tag: 0x3ef, Type: TypeInt32, Offset: 0x0470, Count: 0x1},
	{Tag: 0x3f0, Type: TypeBin, Offset: 0x0474, Count: 0x1000},
}

// ReferenceSignature returns the signature section of the reference package.
// rsa fills the RSA header signature slot (0x218 bytes); nil fills it with a
// byte pattern.
func ReferenceSignature(rsa []byte) *Section {
	store := make([]byte, ReferenceSignatureStoreSize)
	if rsa == nil {
		rsa = bytes.Repeat([]byte{0xAB}, 0x218)
	}
	copy(store[0x0000:0x0218], rsa)
	copy(store[0x0218:], ReferenceSHA1)
	binary.BigEndian.PutUint32(store[0x0244:], 0x3a7c)
	copy(store[0x0248:0x0460], bytes.Repeat([]byte{0xCD}, 0x218))
	for i := range 16 {
		store[0x0460+i] = byte(i + 1)
	}
	binary.BigEndian.PutUint32(store[0x0470:], 0x9d30)
	// the region trailer points back at the table
	copy(store[0x1474:], EntryBytes(Entry{Tag: 0x3e, Type: TypeBin, Offset: uint32(0xFFFFFF80), Count: 0x10}))

	entries := make([]Entry, len(ReferenceSignatureEntries))
	copy(entries, ReferenceSignatureEntries)
	return &Section{Entries: entries, Store: store}
}

// ReferenceHeader returns the header section of the reference package. The
// NAME tag (1000) is the second entry and sits at store offset 2.
func ReferenceHeader() *Section {
	s := &Section{}
	s.AddStringArray(100, []string{"C"})
	s.AddString(1000, TypeString, "hardlink")
	s.AddString(1001, TypeString, "1.0")
	s.AddString(1002, TypeString, "23.fc24")
	s.AddInt32(1003, []uint32{1})
	s.AddString(1004, TypeI18NString, "Create a tree of hardlinks")
	s.AddString(1005, TypeI18NString, "hardlink is used to create a tree of hard links.")
	s.AddInt32(1006, []uint32{1454000000})
	s.AddString(1007, TypeString, "buildhw-01.phx2.fedoraproject.org")
	s.AddInt32(1009, []uint32{17832})
	s.AddString(1010, TypeString, "Fedora Project")
	s.AddString(1011, TypeString, "Fedora Project")
	s.AddString(1014, TypeString, "GPL+")
	s.AddString(1015, TypeString, "Fedora Project")
	s.AddString(1016, TypeI18NString, "System Environment/Base")
	s.AddString(1020, TypeString, "http://pkgs.fedoraproject.org/cgit/hardlink.git/")
	s.AddString(1021, TypeString, "linux")
	s.AddString(1022, TypeString, "x86_64")
	s.AddInt32(1028, []uint32{15240, 2592})
	s.AddInt16(1030, []uint16{0o100755, 0o100644})
	s.AddInt16(1033, []uint16{0, 0})
	s.AddInt32(1034, []uint32{1454000000, 1454000000})
	s.AddStringArray(1035, []string{
		"5a1c3f2e0b8d47a69f1e2d3c4b5a69788796a5b4c3d2e1f0a1b2c3d4e5f60718",
		"0f1e2d3c4b5a69788796a5b4c3d2e1f00a1b2c3d4e5f607182930a1b2c3d4e5f",
	})
	s.AddStringArray(1036, []string{"", ""})
	s.AddInt32(1037, []uint32{0, 2})
	s.AddStringArray(1039, []string{"root", "root"})
	s.AddStringArray(1040, []string{"root", "root"})
	s.AddString(1044, TypeString, "hardlink-1.0-23.fc24.src.rpm")
	s.AddInt32(1045, []uint32{0xffffffff, 0xffffffff})
	s.AddStringArray(1047, []string{"hardlink", "hardlink(x86-64)"})
	s.AddInt32(1048, []uint32{0x4000, 0x1000000, 0x1000000, 0x1000000})
	s.AddStringArray(1049, []string{
		"libc.so.6()(64bit)",
		"rpmlib(CompressedFileNames)",
		"rpmlib(PayloadFilesHavePrefix)",
		"rpmlib(PayloadIsXz)",
	})
	s.AddStringArray(1050, []string{"", "3.0.4-1", "4.0-1", "5.2-1"})
	s.AddString(1064, TypeString, "4.13.0")
	s.AddInt32(1095, []uint32{1, 1})
	s.AddInt32(1096, []uint32{1, 2})
	s.AddStringArray(1097, []string{"", ""})
	s.AddInt32(1112, []uint32{0x8, 0x8})
	s.AddStringArray(1113, []string{"1:1.0-23.fc24", "1:1.0-23.fc24"})
	s.AddInt32(1116, []uint32{0, 1})
	s.AddStringArray(1117, []string{"hardlink", "hardlink.1.gz"})
	s.AddStringArray(1118, []string{"/usr/bin/", "/usr/share/man/man1/"})
	s.AddString(1122, TypeString, "-O2 -g -pipe -Wall")
	s.AddString(1124, TypeString, "cpio")
	s.AddString(1125, TypeString, "xz")
	s.AddString(1126, TypeString, "2")
	s.AddString(1132, TypeString, "x86_64-redhat-linux-gnu")
	s.AddInt32(5011, []uint32{8})
	for tag := uint32(5100); len(s.Entries) < ReferenceHeaderCount-1; tag++ {
		s.AddInt32(tag, []uint32{tag})
	}
	s.AddBinary(63, EntryBytes(Entry{Tag: 63, Type: TypeBin, Offset: uint32(0xFFFFFC20), Count: 0x10}))
	s.PadStore(ReferenceHeaderStoreSize)
	return s
}

// ReferencePackage returns the complete reference package with payload
// appended after the header region.
func ReferencePackage(payload []byte) []byte {
	return Package(Lead(ReferenceName), ReferenceSignature(nil), ReferenceHeader(), payload)
}
