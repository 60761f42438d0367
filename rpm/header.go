package rpm

import (
	"errors"
	"fmt"
	"io"
)

// PackageHeader is everything in front of the payload: the lead, the
// signature section and the header section.
type PackageHeader struct {
	Lead      Lead
	Signature *Section
	Header    *Section

	// Size is the number of bytes the header region occupies, which is also
	// the payload offset.
	Size int
}

// sectionPadding is the number of bytes that follow a store of size bytes so
// the next section starts on an 8-byte boundary.
func sectionPadding(size uint32) int {
	return int((8 - size%8) % 8)
}

// ParseHeader decodes the lead, the signature section, the alignment padding
// and the header section at the start of b. The returned slice is the rest
// of b, i.e. the start of the payload.
func ParseHeader(b []byte, opts ...Option) (*PackageHeader, []byte, error) {
	c := newCursor(b)
	h, err := parseHeader(c, newOptions(opts))
	if err != nil {
		return nil, nil, err
	}
	return h, c.rest(), nil
}

func parseHeader(c *cursor, o options) (*PackageHeader, error) {
	lead, err := parseLead(c)
	if err != nil {
		return nil, err
	}
	sig, err := parseSection(c, o)
	if err != nil {
		return nil, err
	}
	if err := c.skip(sectionPadding(sig.Header.Size)); err != nil {
		return nil, err
	}
	hdr, err := parseSection(c, o)
	if err != nil {
		return nil, err
	}
	return &PackageHeader{
		Lead:      lead,
		Signature: sig,
		Header:    hdr,
		Size:      c.off,
	}, nil
}

// minHeaderSize is a lower bound for any complete header region.
const minHeaderSize = LeadSize + 2*SectionHeaderSize

// ReadHeader reads the header region from r and decodes it. It reads exactly
// the bytes the header occupies, so on success r is positioned at the start
// of the payload. Failures of r are reported as KindIo; a stream that ends
// inside the header is reported as KindIncomplete.
func ReadHeader(r io.Reader, opts ...Option) (*PackageHeader, error) {
	o := newOptions(opts)
	var buf []byte
	want := minHeaderSize
	for {
		n := len(buf)
		buf = append(buf, make([]byte, want-n)...)
		got, err := io.ReadFull(r, buf[n:])
		buf = buf[:n+got]
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, IoError(err)
		}
		eof := err != nil

		h, perr := parseHeader(newCursor(buf), o)
		if perr == nil {
			return h, nil
		}
		need, ok := NeedOf(perr)
		if !ok || eof {
			return nil, perr
		}
		if need <= len(buf) {
			return nil, &Error{Kind: KindInternal, Err: fmt.Errorf("decoder asked for %d bytes with %d available", need, len(buf))}
		}
		want = need
	}
}
