// Package rpm decodes the header region of RPM packages.
//
// An RPM file starts with a fixed 96-byte lead, followed by a signature
// section, padding to an 8-byte boundary, a header section and finally the
// compressed payload:
//
//	lead[96] | signature section | pad[0..7] | header section | payload
//
// Both sections share one layout: a 16-byte prologue (magic 8E AD E8,
// version, tag count, store size), a table of 16-byte tag entries and a
// store that the entries point into.
//
// Decoding never copies the input. Sections keep a sub-slice of the caller's
// buffer as their store and tag values are decoded from it only when asked
// for, via Section.Value or Section.Get, so large values such as file digest
// arrays cost nothing unless used. The caller must keep the buffer unchanged
// while decoded values are in use.
//
// Every failure is an *Error carrying an ErrorKind. KindIncomplete means the
// input ended early and carries the input length the decoder needs next;
// ReadHeader uses this to read a header from a stream without overshooting
// into the payload.
//
// The package only decodes structure. Tag numbers are opaque, digests and
// signatures are exposed as raw bytes and nothing is logged.
package rpm
