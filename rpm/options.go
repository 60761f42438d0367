package rpm

const (
	// DefaultMaxTags is the largest tag count accepted in one section.
	DefaultMaxTags = 0xffff

	// DefaultMaxStoreSize is the largest store, in bytes, accepted in one
	// section.
	DefaultMaxStoreSize = 0x0fffffff
)

// Option configures section limits for ParseSection, ParseHeader and
// ReadHeader.
type Option func(*options)

type options struct {
	maxTags      uint32
	maxStoreSize uint32
}

func newOptions(opts []Option) options {
	o := options{
		maxTags:      DefaultMaxTags,
		maxStoreSize: DefaultMaxStoreSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxTags limits the tag count of a section. Sections declaring more
// entries fail with HeaderSize. Set limit to 0 to use DefaultMaxTags.
func WithMaxTags(limit uint32) Option {
	return func(o *options) {
		if limit == 0 {
			limit = DefaultMaxTags
		}
		o.maxTags = limit
	}
}

// WithMaxStoreSize limits the store size of a section. Sections declaring a
// larger store fail with HeaderSize. Set limit to 0 to use
// DefaultMaxStoreSize.
func WithMaxStoreSize(limit uint32) Option {
	return func(o *options) {
		if limit == 0 {
			limit = DefaultMaxStoreSize
		}
		o.maxStoreSize = limit
	}
}
