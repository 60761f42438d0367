package rpm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/rpmhdr/internal/testutil"
)

func TestResolveTagType(t *testing.T) {
	t.Parallel()

	want := map[uint32]TagType{
		0:  TypeNull,
		1:  TypeChar,
		2:  TypeInt8,
		3:  TypeInt16,
		4:  TypeInt32,
		5:  TypeInt64,
		6:  TypeString,
		7:  TypeBinary,
		8:  TypeString,
		9:  TypeString,
		10: TypeBinary,
		11: TypeBinary,
	}
	for code, tt := range want {
		got, err := ResolveTagType(code)
		require.NoError(t, err, "code %d", code)
		assert.Equal(t, tt, got, "code %d", code)
	}

	for _, code := range []uint32{12, 0xAA, 0xffffffff} {
		_, err := ResolveTagType(code)
		assert.ErrorIs(t, err, ErrUnknownType, "code %d", code)
	}
}

func TestParseSectionHeader(t *testing.T) {
	t.Parallel()

	b := []byte{0x8E, 0xAD, 0xE8, 0x01, 0, 0, 0, 0, 0, 0, 0, 0x08, 0, 0, 0x14, 0x84}
	h, rest, err := ParseSectionHeader(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, SectionHeader{Version: 1, Count: 8, Size: 0x1484}, h)
}

func TestParseSectionHeader_Reference(t *testing.T) {
	t.Parallel()

	pkg := testutil.ReferencePackage(testutil.XZMagic)
	h, _, err := ParseSectionHeader(pkg[0x60:0x70])
	require.NoError(t, err)
	assert.Equal(t, SectionHeader{Version: 1, Count: 8, Size: 0x1484}, h)
}

func TestParseSectionHeader_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := ParseSectionHeader([]byte{0x8E, 0xAD, 0xE9, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrBadMagic)

	_, _, err = ParseSectionHeader([]byte{0x8E, 0xAD, 0xE8, 1, 0, 0})
	require.ErrorIs(t, err, ErrIncomplete)
	need, _ := NeedOf(err)
	assert.Equal(t, 8, need)

	_, _, err = ParseSectionHeader([]byte{0x8E, 0xAD, 0xE8, 1, 0, 0, 0, 0, 0, 0, 0, 1})
	need, _ = NeedOf(err)
	assert.Equal(t, 16, need)
}

func TestParseTagEntry_Reference(t *testing.T) {
	t.Parallel()

	pkg := testutil.ReferencePackage(testutil.XZMagic)
	e, rest, err := ParseTagEntry(pkg[0x70:0x80])
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, TagEntry{Tag: 0x3e, Type: TypeBinary, Offset: 0x1474, Count: 0x10}, e)
}

func TestParseTagEntry_BadType(t *testing.T) {
	t.Parallel()

	b := testutil.EntryBytes(testutil.Entry{Tag: 0xAA, Type: 0xAA, Offset: 0xCC, Count: 0xDD})
	_, _, err := ParseTagEntry(b)
	require.ErrorIs(t, err, ErrBadHeader)
	assert.ErrorIs(t, err, ErrUnknownType)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 4, rerr.Offset)
}

func TestParseTagEntries(t *testing.T) {
	t.Parallel()

	var b []byte
	for _, e := range testutil.ReferenceSignatureEntries {
		b = append(b, testutil.EntryBytes(e)...)
	}
	b = append(b, 0xFF)

	tags, rest, err := ParseTagEntries(b, uint32(len(testutil.ReferenceSignatureEntries)))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, rest)
	require.Len(t, tags, 8)
	assert.Equal(t, TagEntry{Tag: 0x10d, Type: TypeString, Offset: 0x218, Count: 1}, tags[2])
	assert.Equal(t, TagEntry{Tag: 0x3f0, Type: TypeBinary, Offset: 0x474, Count: 0x1000}, tags[7])
}

func TestParseTagEntries_BadTypeInBatch(t *testing.T) {
	t.Parallel()

	b := bytes.Join([][]byte{
		testutil.EntryBytes(testutil.Entry{Tag: 1000, Type: testutil.TypeString, Offset: 0, Count: 1}),
		testutil.EntryBytes(testutil.Entry{Tag: 1001, Type: 0xAA, Offset: 4, Count: 1}),
		testutil.EntryBytes(testutil.Entry{Tag: 1002, Type: testutil.TypeInt32, Offset: 8, Count: 1}),
	}, nil)

	tags, _, err := ParseTagEntries(b, 3)
	require.ErrorIs(t, err, ErrBadHeader)
	assert.Nil(t, tags)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, TagEntrySize+4, rerr.Offset)

	// The records around the bad one still decode on their own.
	first, _, err := ParseTagEntry(b[:TagEntrySize])
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), first.Tag)
	last, _, err := ParseTagEntry(b[2*TagEntrySize:])
	require.NoError(t, err)
	assert.Equal(t, TagEntry{Tag: 1002, Type: TypeInt32, Offset: 8, Count: 1}, last)
}

func TestParseTagEntries_Incomplete(t *testing.T) {
	t.Parallel()

	b := testutil.EntryBytes(testutil.Entry{Tag: 1000, Type: testutil.TypeString})
	_, _, err := ParseTagEntries(b, 3)
	require.ErrorIs(t, err, ErrIncomplete)
	need, _ := NeedOf(err)
	assert.Equal(t, 3*TagEntrySize, need)

	// A huge count asks for the whole table instead of allocating it.
	_, _, err = ParseTagEntries(b, 0xffffffff)
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestParseSection(t *testing.T) {
	t.Parallel()

	s := &testutil.Section{}
	s.AddString(1000, testutil.TypeString, "foo")
	s.AddInt32(1003, []uint32{7})
	b := append(s.Bytes(), 0x01, 0x02)

	sec, rest, err := ParseSection(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, rest)
	assert.Equal(t, SectionHeader{Version: 1, Count: 2, Size: uint32(len(s.Store))}, sec.Header)
	assert.Len(t, sec.Tags, 2)
	assert.Equal(t, s.Store, sec.Store)

	// The store is a view of the input, not a copy.
	storeStart := SectionHeaderSize + 2*TagEntrySize
	assert.Same(t, &b[storeStart], &sec.Store[0])
}

func TestParseSection_StoreIncomplete(t *testing.T) {
	t.Parallel()

	s := &testutil.Section{}
	s.AddString(1000, testutil.TypeString, "hello")
	b := s.Bytes()

	_, _, err := ParseSection(b[:len(b)-2])
	require.ErrorIs(t, err, ErrIncomplete)
	need, _ := NeedOf(err)
	assert.Equal(t, len(b), need)
}

func TestParseSection_HeaderSize(t *testing.T) {
	t.Parallel()

	t.Run("too many tags", func(t *testing.T) {
		t.Parallel()

		b := testutil.SectionHeader(1, 0x10000, 0)
		_, _, err := ParseSection(b)
		assert.ErrorIs(t, err, ErrHeaderSize)
	})

	t.Run("store too large", func(t *testing.T) {
		t.Parallel()

		b := testutil.SectionHeader(1, 0, 0x10000000)
		_, _, err := ParseSection(b)
		assert.ErrorIs(t, err, ErrHeaderSize)
	})

	t.Run("custom limits", func(t *testing.T) {
		t.Parallel()

		s := &testutil.Section{}
		s.AddInt32(1000, []uint32{1})
		s.AddInt32(1001, []uint32{2})
		b := s.Bytes()

		_, _, err := ParseSection(b, WithMaxTags(1))
		assert.ErrorIs(t, err, ErrHeaderSize)
		_, _, err = ParseSection(b, WithMaxStoreSize(4))
		assert.ErrorIs(t, err, ErrHeaderSize)
		_, _, err = ParseSection(b, WithMaxTags(2), WithMaxStoreSize(8))
		assert.NoError(t, err)
	})
}

func TestSection_LookupAndGet(t *testing.T) {
	t.Parallel()

	s := &testutil.Section{}
	s.AddString(1000, testutil.TypeString, "first")
	s.AddString(1001, testutil.TypeString, "other")
	s.AddString(1000, testutil.TypeString, "duplicate")
	sec, _, err := ParseSection(s.Bytes())
	require.NoError(t, err)

	e, ok := sec.Lookup(1000)
	require.True(t, ok)
	assert.Equal(t, uint32(0), e.Offset)

	v, err := sec.Get(1000)
	require.NoError(t, err)
	assert.Equal(t, StringValue{"first"}, v)

	_, ok = sec.Lookup(4242)
	assert.False(t, ok)
	_, err = sec.Get(4242)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestSection_Entries(t *testing.T) {
	t.Parallel()

	s := &testutil.Section{}
	s.AddString(1000, testutil.TypeString, "foo")
	s.AddInt16(1030, []uint16{0o644})
	s.Entries = append(s.Entries, testutil.Entry{Tag: 1099, Type: testutil.TypeInt64, Offset: 0, Count: 100})
	sec, _, err := ParseSection(s.Bytes())
	require.NoError(t, err)

	var (
		tags   []uint32
		values []TagValue
		errs   []error
	)
	for tag, err := range sec.Entries() {
		tags = append(tags, tag.Tag)
		values = append(values, tag.Value)
		errs = append(errs, err)
	}
	assert.Equal(t, []uint32{1000, 1030, 1099}, tags)
	assert.Equal(t, StringValue{"foo"}, values[0])
	assert.Equal(t, Int16Value{0o644}, values[1])
	assert.Nil(t, values[2])
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], ErrBadHeader)
}

func TestSection_EntriesStop(t *testing.T) {
	t.Parallel()

	s := &testutil.Section{}
	s.AddString(1000, testutil.TypeString, "foo")
	s.AddString(1001, testutil.TypeString, "1.0")
	sec, _, err := ParseSection(s.Bytes())
	require.NoError(t, err)

	seen := 0
	for range sec.Entries() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}
