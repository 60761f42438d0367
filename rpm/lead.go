package rpm

// LeadSize is the fixed width of the lead in bytes.
const LeadSize = 96

// LeadMagic starts every RPM package.
var LeadMagic = [4]byte{0xED, 0xAB, 0xEE, 0xDB}

const (
	leadNameSize     = 66
	leadReservedSize = 16
)

// Lead is the fixed identification block at the start of a package. Modern
// tools only trust the header sections; the lead is kept for compatibility
// and for a quick name/arch peek.
type Lead struct {
	Major         uint8  // file format major version (3)
	Minor         uint8  // file format minor version (0)
	Type          int16  // 0 = binary, 1 = source
	ArchNum       int16  // 1 = x86, ...
	Name          string // name-version-release, NUL-padded on disk
	OSNum         int16  // 1 = Linux
	SignatureType int16  // 5 = header-style signature section follows
}

// IsSource reports whether the lead marks a source package.
func (l Lead) IsSource() bool {
	return l.Type == 1
}

// ParseLead decodes the 96-byte lead at the start of b and returns it along
// with the bytes that follow it.
func ParseLead(b []byte) (Lead, []byte, error) {
	c := newCursor(b)
	lead, err := parseLead(c)
	if err != nil {
		return Lead{}, nil, err
	}
	return lead, c.rest(), nil
}

func parseLead(c *cursor) (Lead, error) {
	var (
		l   Lead
		err error
	)
	if err = c.magic(LeadMagic[:]); err != nil {
		return Lead{}, err
	}
	if l.Major, err = c.u8(); err != nil {
		return Lead{}, err
	}
	if l.Minor, err = c.u8(); err != nil {
		return Lead{}, err
	}
	if l.Type, err = c.i16(); err != nil {
		return Lead{}, err
	}
	if l.ArchNum, err = c.i16(); err != nil {
		return Lead{}, err
	}
	if l.Name, err = c.cstrField(leadNameSize); err != nil {
		return Lead{}, err
	}
	if l.OSNum, err = c.i16(); err != nil {
		return Lead{}, err
	}
	if l.SignatureType, err = c.i16(); err != nil {
		return Lead{}, err
	}
	if err = c.skip(leadReservedSize); err != nil {
		return Lead{}, err
	}
	return l, nil
}
