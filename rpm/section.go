package rpm

import (
	"errors"
	"fmt"
	"iter"
)

// SectionMagic starts both the signature and the header section.
var SectionMagic = [3]byte{0x8E, 0xAD, 0xE8}

const (
	// SectionHeaderSize is the fixed width of a section prologue.
	SectionHeaderSize = 16

	// TagEntrySize is the fixed width of one tag descriptor.
	TagEntrySize = 16

	sectionReservedSize = 4
)

// ErrTagNotFound is returned by Section.Get when no entry carries the tag.
var ErrTagNotFound = errors.New("rpm: tag not found")

// SectionHeader is the prologue of a signature or header section.
type SectionHeader struct {
	Version uint8
	Count   uint32 // number of tag entries
	Size    uint32 // store length in bytes
}

// TagEntry describes where one value lives in the section store. For
// TypeBinary, Count is a byte length; for every other type it is an element
// count.
type TagEntry struct {
	Tag    uint32
	Type   TagType
	Offset uint32 // relative to the start of the store
	Count  uint32
}

// Section is one decoded signature or header section. Store aliases the input
// buffer; values are decoded from it on demand with Value or Get.
type Section struct {
	Header SectionHeader
	Tags   []TagEntry
	Store  []byte
}

// ParseSectionHeader decodes the 16-byte section prologue.
func ParseSectionHeader(b []byte) (SectionHeader, []byte, error) {
	c := newCursor(b)
	h, err := parseSectionHeader(c)
	if err != nil {
		return SectionHeader{}, nil, err
	}
	return h, c.rest(), nil
}

func parseSectionHeader(c *cursor) (SectionHeader, error) {
	var (
		h   SectionHeader
		err error
	)
	if err = c.magic(SectionMagic[:]); err != nil {
		return SectionHeader{}, err
	}
	if h.Version, err = c.u8(); err != nil {
		return SectionHeader{}, err
	}
	if err = c.skip(sectionReservedSize); err != nil {
		return SectionHeader{}, err
	}
	if h.Count, err = c.u32(); err != nil {
		return SectionHeader{}, err
	}
	if h.Size, err = c.u32(); err != nil {
		return SectionHeader{}, err
	}
	return h, nil
}

// ParseTagEntry decodes a single 16-byte tag descriptor.
func ParseTagEntry(b []byte) (TagEntry, []byte, error) {
	c := newCursor(b)
	e, err := parseTagEntry(c)
	if err != nil {
		return TagEntry{}, nil, err
	}
	return e, c.rest(), nil
}

func parseTagEntry(c *cursor) (TagEntry, error) {
	var (
		e   TagEntry
		err error
	)
	if e.Tag, err = c.u32(); err != nil {
		return TagEntry{}, err
	}
	typeOff := c.off
	code, err := c.u32()
	if err != nil {
		return TagEntry{}, err
	}
	if e.Type, err = ResolveTagType(code); err != nil {
		return TagEntry{}, badHeader(typeOff, err)
	}
	if e.Offset, err = c.u32(); err != nil {
		return TagEntry{}, err
	}
	if e.Count, err = c.u32(); err != nil {
		return TagEntry{}, err
	}
	return e, nil
}

// ParseTagEntries decodes exactly count consecutive tag descriptors, keeping
// their on-disk order. One unknown type code fails the whole table.
func ParseTagEntries(b []byte, count uint32) ([]TagEntry, []byte, error) {
	c := newCursor(b)
	tags, err := parseTagEntries(c, count)
	if err != nil {
		return nil, nil, err
	}
	return tags, c.rest(), nil
}

func parseTagEntries(c *cursor, count uint32) ([]TagEntry, error) {
	// The whole table must be present before anything is allocated for it.
	size := uint64(count) * TagEntrySize
	if size > uint64(c.remaining()) {
		return nil, incomplete(c.off, c.off+int(size))
	}
	tags := make([]TagEntry, 0, count)
	for range count {
		e, err := parseTagEntry(c)
		if err != nil {
			return nil, err
		}
		tags = append(tags, e)
	}
	return tags, nil
}

// ParseSection decodes a section prologue, its tag table and its store. No
// tag value is decoded.
func ParseSection(b []byte, opts ...Option) (*Section, []byte, error) {
	c := newCursor(b)
	s, err := parseSection(c, newOptions(opts))
	if err != nil {
		return nil, nil, err
	}
	return s, c.rest(), nil
}

func parseSection(c *cursor, o options) (*Section, error) {
	start := c.off
	h, err := parseSectionHeader(c)
	if err != nil {
		return nil, err
	}
	if h.Count > o.maxTags {
		return nil, &Error{
			Kind:   KindHeaderSize,
			Offset: start,
			Err:    fmt.Errorf("%d tags exceed limit of %d", h.Count, o.maxTags),
		}
	}
	if h.Size > o.maxStoreSize {
		return nil, &Error{
			Kind:   KindHeaderSize,
			Offset: start,
			Err:    fmt.Errorf("store of %d bytes exceeds limit of %d", h.Size, o.maxStoreSize),
		}
	}
	tags, err := parseTagEntries(c, h.Count)
	if err != nil {
		return nil, err
	}
	store, err := c.take(int(h.Size))
	if err != nil {
		return nil, err
	}
	return &Section{Header: h, Tags: tags, Store: store}, nil
}

// EncodedSize returns the number of bytes the section occupies on disk:
// prologue, tag table and store.
func (s *Section) EncodedSize() int {
	return SectionHeaderSize + len(s.Tags)*TagEntrySize + len(s.Store)
}

// Value decodes the value of e from the section store.
func (s *Section) Value(e TagEntry) (TagValue, error) {
	return DecodeValue(s.Store, e)
}

// Lookup returns the first entry carrying tag.
func (s *Section) Lookup(tag uint32) (TagEntry, bool) {
	for _, e := range s.Tags {
		if e.Tag == tag {
			return e, true
		}
	}
	return TagEntry{}, false
}

// Get decodes the value of the first entry carrying tag.
func (s *Section) Get(tag uint32) (TagValue, error) {
	e, ok := s.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTagNotFound, tag)
	}
	return s.Value(e)
}

// Tag is a tag entry together with its decoded value.
type Tag struct {
	TagEntry
	Value TagValue
}

// Entries yields every tag entry with its decoded value, in table order,
// paired with the decode error of that entry. A failed entry carries a nil
// Value; iteration continues unless the caller stops it.
func (s *Section) Entries() iter.Seq2[Tag, error] {
	return func(yield func(Tag, error) bool) {
		for _, e := range s.Tags {
			v, err := s.Value(e)
			if !yield(Tag{TagEntry: e, Value: v}, err) {
				return
			}
		}
	}
}
