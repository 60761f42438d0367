// Package testutil builds RPM header bytes in memory for tests.
package testutil

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Raw type codes as they appear on disk.
const (
	TypeNull        uint32 = 0
	TypeChar        uint32 = 1
	TypeInt8        uint32 = 2
	TypeInt16       uint32 = 3
	TypeInt32       uint32 = 4
	TypeInt64       uint32 = 5
	TypeString      uint32 = 6
	TypeBin         uint32 = 7
	TypeStringArray uint32 = 8
	TypeI18NString  uint32 = 9
)

// XZMagic is the start of an xz stream.
var XZMagic = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}

// Entry is a tag descriptor as written to disk. Type is the raw code so that
// tests can write invalid ones.
type Entry struct {
	Tag    uint32
	Type   uint32
	Offset uint32
	Count  uint32
}

// Lead returns a 96-byte lead for a binary x86 Linux package.
func Lead(name string) []byte {
	var lead struct {
		Magic         [4]byte
		Major, Minor  uint8
		Type          int16
		ArchNum       int16
		Name          [66]byte
		OSNum         int16
		SignatureType int16
		Reserved      [16]byte
	}
	lead.Magic = [4]byte{0xED, 0xAB, 0xEE, 0xDB}
	lead.Major = 3
	lead.ArchNum = 1
	copy(lead.Name[:65], name)
	lead.OSNum = 1
	lead.SignatureType = 5

	var buf bytes.Buffer
	mustWrite(&buf, &lead)
	return buf.Bytes()
}

// SectionHeader returns the 16-byte prologue of a section.
func SectionHeader(version uint8, count, size uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x8E, 0xAD, 0xE8, version, 0, 0, 0, 0})
	mustWrite(&buf, count)
	mustWrite(&buf, size)
	return buf.Bytes()
}

// EntryBytes returns the 16-byte encoding of e.
func EntryBytes(e Entry) []byte {
	var buf bytes.Buffer
	mustWrite(&buf, e)
	return buf.Bytes()
}

// Section accumulates tag entries and their store, laid out the way rpmbuild
// does it: integers aligned to their width, strings NUL-terminated.
type Section struct {
	Entries []Entry
	Store   []byte
}

func (s *Section) add(tag, typ, count uint32) {
	s.Entries = append(s.Entries, Entry{
		Tag:    tag,
		Type:   typ,
		Offset: uint32(len(s.Store)),
		Count:  count,
	})
}

// Has reports whether an entry with tag was added.
func (s *Section) Has(tag uint32) bool {
	for _, e := range s.Entries {
		if e.Tag == tag {
			return true
		}
	}
	return false
}

func (s *Section) align(n int) {
	for len(s.Store)%n != 0 {
		s.Store = append(s.Store, 0)
	}
}

// AddNull adds a null-typed entry.
func (s *Section) AddNull(tag uint32) {
	s.add(tag, TypeNull, 0)
}

// AddChar adds a char array.
func (s *Section) AddChar(tag uint32, data []byte) {
	s.add(tag, TypeChar, uint32(len(data)))
	s.Store = append(s.Store, data...)
}

// AddInt8 adds an int8 array.
func (s *Section) AddInt8(tag uint32, data []uint8) {
	s.add(tag, TypeInt8, uint32(len(data)))
	s.Store = append(s.Store, data...)
}

// AddInt16 adds an int16 array.
func (s *Section) AddInt16(tag uint32, data []uint16) {
	s.align(2)
	s.add(tag, TypeInt16, uint32(len(data)))
	for _, v := range data {
		s.Store = binary.BigEndian.AppendUint16(s.Store, v)
	}
}

// AddInt32 adds an int32 array.
func (s *Section) AddInt32(tag uint32, data []uint32) {
	s.align(4)
	s.add(tag, TypeInt32, uint32(len(data)))
	for _, v := range data {
		s.Store = binary.BigEndian.AppendUint32(s.Store, v)
	}
}

// AddInt64 adds an int64 array.
func (s *Section) AddInt64(tag uint32, data []uint64) {
	s.align(8)
	s.add(tag, TypeInt64, uint32(len(data)))
	for _, v := range data {
		s.Store = binary.BigEndian.AppendUint64(s.Store, v)
	}
}

// AddString adds a single string with the given raw type code (string or
// i18n string).
func (s *Section) AddString(tag, typ uint32, str string) {
	s.add(tag, typ, 1)
	s.Store = append(append(s.Store, str...), 0)
}

// AddStringArray adds a string array.
func (s *Section) AddStringArray(tag uint32, strs []string) {
	s.add(tag, TypeStringArray, uint32(len(strs)))
	for _, str := range strs {
		s.Store = append(append(s.Store, str...), 0)
	}
}

// AddBinary adds a binary blob.
func (s *Section) AddBinary(tag uint32, data []byte) {
	s.add(tag, TypeBin, uint32(len(data)))
	s.Store = append(s.Store, data...)
}

// PadStore grows the store with zero bytes to exactly size bytes.
func (s *Section) PadStore(size int) {
	if len(s.Store) > size {
		panic(fmt.Sprintf("testutil: store already %d bytes, cannot pad to %d", len(s.Store), size))
	}
	s.Store = append(s.Store, make([]byte, size-len(s.Store))...)
}

// Bytes returns the encoded section: prologue, entries and store.
func (s *Section) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(SectionHeader(1, uint32(len(s.Entries)), uint32(len(s.Store))))
	for _, e := range s.Entries {
		buf.Write(EntryBytes(e))
	}
	buf.Write(s.Store)
	return buf.Bytes()
}

// Package concatenates lead, signature section, alignment padding, header
// section and payload.
func Package(lead []byte, sig, hdr *Section, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Write(lead)
	buf.Write(sig.Bytes())
	buf.Write(make([]byte, (8-len(sig.Store)%8)%8))
	buf.Write(hdr.Bytes())
	buf.Write(payload)
	return buf.Bytes()
}

func mustWrite(buf *bytes.Buffer, v any) {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		panic(err)
	}
}

// SHA1Hex returns the hex SHA1 of b, as stored in the SHA1 signature tag.
func SHA1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
