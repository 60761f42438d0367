package rpm

import (
	"bytes"
	"testing"

	"github.com/ralt/rpmhdr/internal/testutil"
)

func FuzzParseHeader(f *testing.F) {
	f.Add(testutil.ReferencePackage(testutil.XZMagic))
	f.Add(testutil.Lead("foo-1-1"))
	f.Add([]byte{0xED, 0xAB, 0xEE, 0xDB})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, b []byte) {
		h, rest, err := ParseHeader(b, WithMaxStoreSize(1<<20))
		if err != nil {
			if h != nil || rest != nil {
				t.Fatalf("failed parse returned values: %v", err)
			}
			if need, ok := NeedOf(err); ok && need <= len(b) {
				t.Fatalf("incomplete with need %d <= input %d", need, len(b))
			}
			return
		}
		if h.Size+len(rest) != len(b) {
			t.Fatalf("size %d + rest %d != input %d", h.Size, len(rest), len(b))
		}
		for _, sec := range []*Section{h.Signature, h.Header} {
			for tag, err := range sec.Entries() {
				if (err == nil) == (tag.Value == nil) {
					t.Fatalf("tag %d: value %v with error %v", tag.Tag, tag.Value, err)
				}
				if err != nil && KindOf(err) != KindBadHeader {
					t.Fatalf("tag %d: unexpected error kind %v", tag.Tag, KindOf(err))
				}
			}
		}

		// The streaming reader must agree with the slice decoder.
		r := bytes.NewReader(b)
		rh, err := ReadHeader(r, WithMaxStoreSize(1<<20))
		if err != nil {
			t.Fatalf("ReadHeader failed where ParseHeader succeeded: %v", err)
		}
		if rh.Size != h.Size || r.Len() != len(rest) {
			t.Fatalf("ReadHeader stopped at %d, ParseHeader at %d", rh.Size, h.Size)
		}
	})
}

func FuzzDecodeValue(f *testing.F) {
	f.Add([]byte("abc\x00def\x00"), uint8(TypeString), uint32(0), uint32(2))
	f.Add([]byte{0, 0, 0, 1, 0, 0, 0, 2}, uint8(TypeInt32), uint32(4), uint32(1))
	f.Add([]byte{1, 2, 3}, uint8(TypeBinary), uint32(1), uint32(0xffffffff))

	f.Fuzz(func(t *testing.T, store []byte, typ uint8, offset, count uint32) {
		e := TagEntry{Type: TagType(typ % uint8(TypeBinary+1)), Offset: offset, Count: count}
		v, err := DecodeValue(store, e)
		if err != nil {
			if v != nil {
				t.Fatalf("value %v returned with error %v", v, err)
			}
			return
		}
		if v.Type() != e.Type {
			t.Fatalf("decoded %s as %s", e.Type, v.Type())
		}
	})
}
