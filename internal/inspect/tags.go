package inspect

import (
	"strings"

	"github.com/ralt/rpmhdr/rpm"
)

// StringTag safely gets a string tag from a section
func StringTag(sec *rpm.Section, tag uint32) string {
	val, err := sec.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case rpm.StringValue:
		if len(v) > 0 {
			return v[0]
		}
	case rpm.CharValue:
		return string(v)
	}
	return ""
}

// IntTag safely gets the first integer of a tag from a section
func IntTag(sec *rpm.Section, tag uint32) int64 {
	ints := IntSliceTag(sec, tag)
	if len(ints) == 0 {
		return 0
	}
	return ints[0]
}

// IntSliceTag gets an integer array of any width from a section
func IntSliceTag(sec *rpm.Section, tag uint32) []int64 {
	val, err := sec.Get(tag)
	if err != nil {
		return nil
	}

	var out []int64
	switch v := val.(type) {
	case rpm.Int8Value:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case rpm.Int16Value:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case rpm.Int32Value:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case rpm.Int64Value:
		for _, i := range v {
			out = append(out, int64(i))
		}
	}
	return out
}

// StringArrayTag gets a string array exactly as stored, empty strings
// included, so that it stays index-aligned with the other file tags
func StringArrayTag(sec *rpm.Section, tag uint32) []string {
	val, err := sec.Get(tag)
	if err != nil {
		return nil
	}
	if v, ok := val.(rpm.StringValue); ok {
		return []string(v)
	}
	return nil
}

// StringSliceTag safely gets a string slice tag, dropping blank entries
func StringSliceTag(sec *rpm.Section, tag uint32) []string {
	var result []string
	for _, s := range StringArrayTag(sec, tag) {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

// BinaryTag gets a binary tag from a section
func BinaryTag(sec *rpm.Section, tag uint32) []byte {
	val, err := sec.Get(tag)
	if err != nil {
		return nil
	}
	if v, ok := val.(rpm.BinaryValue); ok {
		return v
	}
	return nil
}
