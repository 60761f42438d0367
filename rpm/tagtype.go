package rpm

import (
	"errors"
	"fmt"
)

// ErrUnknownType is wrapped by the BadHeader error reported for a tag entry
// whose type code is outside 0..11.
var ErrUnknownType = errors.New("unknown tag type")

// TagType selects how a tag's value is laid out in the store.
type TagType uint8

const (
	TypeNull TagType = iota
	TypeChar
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeString
	TypeBinary
)

// String returns the string representation of TagType
func (t TagType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeChar:
		return "char"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	default:
		return fmt.Sprintf("TagType(%d)", uint8(t))
	}
}

// ResolveTagType maps an on-disk type code to its decode strategy. The
// string-array and i18n-string codes decode exactly like plain strings, and
// codes 10 and 11 like binary blobs.
func ResolveTagType(code uint32) (TagType, error) {
	switch code {
	case 0:
		return TypeNull, nil
	case 1:
		return TypeChar, nil
	case 2:
		return TypeInt8, nil
	case 3:
		return TypeInt16, nil
	case 4:
		return TypeInt32, nil
	case 5:
		return TypeInt64, nil
	case 6, 8, 9:
		return TypeString, nil
	case 7, 10, 11:
		return TypeBinary, nil
	default:
		return 0, fmt.Errorf("%w %#x", ErrUnknownType, code)
	}
}
