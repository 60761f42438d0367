package rpm

import (
	"encoding/binary"
	"fmt"
)

// TagValue is the decoded value of one tag. The concrete type is one of
// NullValue, CharValue, Int8Value, Int16Value, Int32Value, Int64Value,
// StringValue or BinaryValue, and always matches the Type of the entry it
// was decoded from.
type TagValue interface {
	Type() TagType
	// Len is the element count, or the byte length for BinaryValue.
	Len() int
	isTagValue()
}

// The TagValue variants, one per TagType. Slices of one-byte elements alias
// the section store; wider integers and strings are copied out of it.
type (
	// NullValue is the value of a TypeNull entry.
	NullValue struct{}
	// CharValue holds TypeChar bytes.
	CharValue []byte
	// Int8Value holds TypeInt8 elements.
	Int8Value []uint8
	// Int16Value holds big-endian TypeInt16 elements.
	Int16Value []uint16
	// Int32Value holds big-endian TypeInt32 elements.
	Int32Value []uint32
	// Int64Value holds big-endian TypeInt64 elements.
	Int64Value []uint64
	// StringValue holds one string for TypeString entries and Count strings
	// for string arrays and i18n tables.
	StringValue []string
	// BinaryValue holds the raw bytes of a TypeBinary entry.
	BinaryValue []byte
)

// Type reports the TagType the value was decoded as.
func (NullValue) Type() TagType   { return TypeNull }
func (CharValue) Type() TagType   { return TypeChar }
func (Int8Value) Type() TagType   { return TypeInt8 }
func (Int16Value) Type() TagType  { return TypeInt16 }
func (Int32Value) Type() TagType  { return TypeInt32 }
func (Int64Value) Type() TagType  { return TypeInt64 }
func (StringValue) Type() TagType { return TypeString }
func (BinaryValue) Type() TagType { return TypeBinary }

// Len reports the element count, or the byte length for BinaryValue.
func (NullValue) Len() int     { return 0 }
func (v CharValue) Len() int   { return len(v) }
func (v Int8Value) Len() int   { return len(v) }
func (v Int16Value) Len() int  { return len(v) }
func (v Int32Value) Len() int  { return len(v) }
func (v Int64Value) Len() int  { return len(v) }
func (v StringValue) Len() int { return len(v) }
func (v BinaryValue) Len() int { return len(v) }

func (NullValue) isTagValue()   {}
func (CharValue) isTagValue()   {}
func (Int8Value) isTagValue()   {}
func (Int16Value) isTagValue()  {}
func (Int32Value) isTagValue()  {}
func (Int64Value) isTagValue()  {}
func (StringValue) isTagValue() {}
func (BinaryValue) isTagValue() {}

// DecodeValue decodes the value described by e from a section store. Offsets
// are store-relative, and so are the offsets reported in errors. The store is
// only read, so any number of values may be decoded from it concurrently.
func DecodeValue(store []byte, e TagEntry) (TagValue, error) {
	if uint64(e.Offset) > uint64(len(store)) {
		return nil, badHeader(int(e.Offset), fmt.Errorf("tag %d: offset beyond store of %d bytes", e.Tag, len(store)))
	}
	c := &cursor{buf: store, off: int(e.Offset)}

	switch e.Type {
	case TypeNull:
		return NullValue{}, nil
	case TypeChar:
		b, err := takeElems(c, e, 1)
		if err != nil {
			return nil, err
		}
		return CharValue(b), nil
	case TypeInt8:
		b, err := takeElems(c, e, 1)
		if err != nil {
			return nil, err
		}
		return Int8Value(b), nil
	case TypeInt16:
		b, err := takeElems(c, e, 2)
		if err != nil {
			return nil, err
		}
		v := make(Int16Value, e.Count)
		for i := range v {
			v[i] = binary.BigEndian.Uint16(b[2*i:])
		}
		return v, nil
	case TypeInt32:
		b, err := takeElems(c, e, 4)
		if err != nil {
			return nil, err
		}
		v := make(Int32Value, e.Count)
		for i := range v {
			v[i] = binary.BigEndian.Uint32(b[4*i:])
		}
		return v, nil
	case TypeInt64:
		b, err := takeElems(c, e, 8)
		if err != nil {
			return nil, err
		}
		v := make(Int64Value, e.Count)
		for i := range v {
			v[i] = binary.BigEndian.Uint64(b[8*i:])
		}
		return v, nil
	case TypeString:
		return decodeStrings(c, e)
	case TypeBinary:
		b, err := takeElems(c, e, 1)
		if err != nil {
			return nil, err
		}
		return BinaryValue(b), nil
	default:
		return nil, &Error{Kind: KindInternal, Err: fmt.Errorf("tag %d: unhandled %s", e.Tag, e.Type)}
	}
}

// takeElems takes e.Count elements of width bytes each from the store.
func takeElems(c *cursor, e TagEntry, width uint64) ([]byte, error) {
	size := uint64(e.Count) * width
	if size > uint64(c.remaining()) {
		return nil, badHeader(c.off, fmt.Errorf("tag %d: %s value of %d bytes overruns store", e.Tag, e.Type, size))
	}
	return c.take(int(size))
}

func decodeStrings(c *cursor, e TagEntry) (TagValue, error) {
	// Every string takes at least its terminator.
	if uint64(e.Count) > uint64(c.remaining()) {
		return nil, badHeader(c.off, fmt.Errorf("tag %d: %d strings overrun store", e.Tag, e.Count))
	}
	v := make(StringValue, 0, e.Count)
	for range e.Count {
		s, err := c.cstring()
		if err != nil {
			return nil, err
		}
		v = append(v, s)
	}
	return v, nil
}
