package rpm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

var (
	errNoTerminator = errors.New("string is not NUL-terminated")
	errInvalidUTF8  = errors.New("string is not valid UTF-8")
)

// cursor walks a byte slice front to back. Every read checks the remaining
// length first, so a short input yields Incomplete and never a panic. off
// counts from the start of buf, which is the input of the top-level decode
// call; that keeps Need and Offset values absolute across nested decoders.
type cursor struct {
	buf []byte
	off int
}

func newCursor(b []byte) *cursor {
	return &cursor{buf: b}
}

// rest returns the unconsumed suffix of the input.
func (c *cursor) rest() []byte {
	return c.buf[c.off:]
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

// need fails with Incomplete unless n more bytes are available.
func (c *cursor) need(n int) error {
	if n < 0 || c.remaining() < n {
		return incomplete(c.off, c.off+n)
	}
	return nil
}

// take consumes n raw bytes. The returned slice aliases the input and has its
// capacity clipped so appends by the caller cannot overwrite what follows.
func (c *cursor) take(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// skip discards n bytes.
func (c *cursor) skip(n int) error {
	_, err := c.take(n)
	return err
}

// magic consumes len(lit) bytes that must equal lit. Length is checked before
// content, so a short input is Incomplete even if its prefix already differs.
func (c *cursor) magic(lit []byte) error {
	start := c.off
	b, err := c.take(len(lit))
	if err != nil {
		return err
	}
	if !bytes.Equal(b, lit) {
		c.off = start
		return badMagic(start)
	}
	return nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) i16() (int16, error) {
	v, err := c.u16()
	return int16(v), err
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// cstrField consumes a fixed-width, NUL-padded text field and returns the
// text before the first NUL. The padding after it is discarded.
func (c *cursor) cstrField(width int) (string, error) {
	start := c.off
	b, err := c.take(width)
	if err != nil {
		return "", err
	}
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		return "", badHeader(start, errNoTerminator)
	}
	if !utf8.Valid(b[:n]) {
		return "", badHeader(start, errInvalidUTF8)
	}
	return string(b[:n]), nil
}

// cstring consumes a NUL-terminated string of unknown length, terminator
// included. The input is assumed complete, so a missing terminator is a
// structural error rather than Incomplete.
func (c *cursor) cstring() (string, error) {
	start := c.off
	n := bytes.IndexByte(c.rest(), 0)
	if n < 0 {
		return "", badHeader(start, errNoTerminator)
	}
	b := c.buf[c.off : c.off+n]
	if !utf8.Valid(b) {
		return "", badHeader(start, errInvalidUTF8)
	}
	c.off += n + 1
	return string(b), nil
}
