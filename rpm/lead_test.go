package rpm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/rpmhdr/internal/testutil"
)

func TestParseLead_BadMagic(t *testing.T) {
	t.Parallel()

	_, _, err := ParseLead(make([]byte, LeadSize))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadMagic)
	assert.Equal(t, KindBadMagic, KindOf(err))
}

func TestParseLead_Incomplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		need  int
	}{
		{name: "empty", input: nil, need: 4},
		{name: "partial magic", input: []byte{0xED, 0xAB}, need: 4},
		{name: "partial magic that differs", input: []byte{0x00}, need: 4},
		{name: "after version", input: []byte{0xED, 0xAB, 0xEE, 0xDB, 0x03, 0x00}, need: 8},
		{name: "inside name", input: testutil.Lead(testutil.ReferenceName)[:20], need: 76},
		{name: "missing reserved", input: testutil.Lead(testutil.ReferenceName)[:80], need: 96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParseLead(tt.input)
			require.ErrorIs(t, err, ErrIncomplete)
			need, ok := NeedOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.need, need)
		})
	}
}

func TestParseLead_Reference(t *testing.T) {
	t.Parallel()

	pkg := testutil.ReferencePackage(testutil.XZMagic)
	lead, rest, err := ParseLead(pkg[:LeadSize])
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, Lead{
		Major:         3,
		Minor:         0,
		Type:          0,
		ArchNum:       1,
		Name:          "hardlink-1:1.0-23.fc24",
		OSNum:         1,
		SignatureType: 5,
	}, lead)
	assert.False(t, lead.IsSource())
}

func TestParseLead_ReturnsRest(t *testing.T) {
	t.Parallel()

	pkg := testutil.ReferencePackage(testutil.XZMagic)
	_, rest, err := ParseLead(pkg)
	require.NoError(t, err)
	assert.Equal(t, pkg[LeadSize:], rest)
}

func TestParseLead_Deterministic(t *testing.T) {
	t.Parallel()

	b := testutil.Lead("foo-1.0-1.noarch")
	first, _, err := ParseLead(b)
	require.NoError(t, err)
	second, _, err := ParseLead(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseLead_BadName(t *testing.T) {
	t.Parallel()

	t.Run("no terminator", func(t *testing.T) {
		t.Parallel()

		b := testutil.Lead("")
		for i := 10; i < 10+66; i++ {
			b[i] = 'x'
		}
		_, _, err := ParseLead(b)
		require.ErrorIs(t, err, ErrBadHeader)
		assert.ErrorContains(t, err, "offset 10")
	})

	t.Run("invalid utf8", func(t *testing.T) {
		t.Parallel()

		b := testutil.Lead("")
		b[10] = 0xff
		b[11] = 0xfe
		_, _, err := ParseLead(b)
		require.ErrorIs(t, err, ErrBadHeader)
	})
}

func TestParseLead_NameFillsField(t *testing.T) {
	t.Parallel()

	// 65 characters plus the terminator use the whole field.
	name := "a-very-long-package-name-that-fills-the-whole-lead-name-field-xyz"
	require.Len(t, name, 65)
	lead, _, err := ParseLead(testutil.Lead(name))
	require.NoError(t, err)
	assert.Equal(t, name, lead.Name)
}

func TestLead_IsSource(t *testing.T) {
	t.Parallel()

	b := testutil.Lead("foo-1.0-1.src")
	b[7] = 1
	lead, _, err := ParseLead(b)
	require.NoError(t, err)
	assert.True(t, lead.IsSource())
}
