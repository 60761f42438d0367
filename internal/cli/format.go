package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ralt/rpmhdr/rpm"
)

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func widen[T unsigned](v []T) []uint64 {
	out := make([]uint64, len(v))
	for i, x := range v {
		out[i] = uint64(x)
	}
	return out
}

// formatValue renders a decoded value on one line. Binary values longer
// than maxBinary bytes are cut.
func formatValue(v rpm.TagValue, maxBinary int) string {
	switch v := v.(type) {
	case rpm.NullValue:
		return "(null)"
	case rpm.CharValue:
		return strconv.Quote(string(v))
	case rpm.Int8Value:
		return formatInts(widen([]uint8(v)))
	case rpm.Int16Value:
		return formatInts(widen([]uint16(v)))
	case rpm.Int32Value:
		return formatInts(widen([]uint32(v)))
	case rpm.Int64Value:
		return formatInts(widen([]uint64(v)))
	case rpm.StringValue:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		if len(quoted) == 1 {
			return quoted[0]
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case rpm.BinaryValue:
		if len(v) > maxBinary {
			return fmt.Sprintf("%s... (%d bytes)", hex.EncodeToString(v[:maxBinary]), len(v))
		}
		return hex.EncodeToString(v)
	default:
		return "?"
	}
}

func formatInts(v []uint64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatUint(x, 10)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// jsonValue converts a decoded value to something encoding/json renders
// readably: integers as numbers, binary as hex
func jsonValue(v rpm.TagValue) any {
	switch v := v.(type) {
	case rpm.NullValue:
		return nil
	case rpm.CharValue:
		return string(v)
	case rpm.Int8Value:
		return widen([]uint8(v))
	case rpm.Int16Value:
		return widen([]uint16(v))
	case rpm.Int32Value:
		return widen([]uint32(v))
	case rpm.Int64Value:
		return widen([]uint64(v))
	case rpm.StringValue:
		return []string(v)
	case rpm.BinaryValue:
		return hex.EncodeToString(v)
	default:
		return nil
	}
}
