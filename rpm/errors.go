package rpm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a decoding failure.
type ErrorKind int

const (
	KindIncomplete ErrorKind = iota
	KindBadMagic
	KindBadHeader
	KindHeaderSize
	KindUnknownFiletype
	KindMissingFile
	KindDigestMismatch
	KindUnmappedFile
	KindFileSize
	KindInternal
	KindIo
)

// KindNone is what KindOf reports for a nil error.
const KindNone ErrorKind = -1

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindIncomplete:
		return "Incomplete"
	case KindBadMagic:
		return "BadMagic"
	case KindBadHeader:
		return "BadHeader"
	case KindHeaderSize:
		return "HeaderSize"
	case KindUnknownFiletype:
		return "UnknownFiletype"
	case KindMissingFile:
		return "MissingFile"
	case KindDigestMismatch:
		return "DigestMismatch"
	case KindUnmappedFile:
		return "UnmappedFile"
	case KindFileSize:
		return "FileSize"
	case KindInternal:
		return "Internal"
	case KindIo:
		return "Io"
	default:
		return "Unknown"
	}
}

// IsFileError reports whether the kind describes malformed package data, as
// opposed to a failing byte source or a decoder bug.
func (k ErrorKind) IsFileError() bool {
	return k >= KindBadMagic && k <= KindFileSize
}

func (k ErrorKind) message() string {
	switch k {
	case KindIncomplete:
		return "incomplete data"
	case KindBadMagic:
		return "bad RPM file magic"
	case KindBadHeader:
		return "bad or unreadable RPM header"
	case KindHeaderSize:
		return "header size too big"
	case KindUnknownFiletype:
		return "unknown file type"
	case KindMissingFile:
		return "missing file(s)"
	case KindDigestMismatch:
		return "digest mismatch"
	case KindUnmappedFile:
		return "archive file not in header"
	case KindFileSize:
		return "file too large for archive"
	case KindInternal:
		return "internal error"
	case KindIo:
		return "I/O error"
	default:
		return "unknown error"
	}
}

// Error is the failure type returned by every decoder in this package.
//
// Offset is the byte position, relative to the start of the input handed to
// the top-level decode call, at which the failure was detected. For
// KindIncomplete, Need is the minimum input length at which the failing step
// could make progress.
type Error struct {
	Kind   ErrorKind
	Offset int
	Need   int
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := "rpm: " + e.Kind.message()
	switch {
	case e.Kind == KindIncomplete:
		msg = fmt.Sprintf("%s: need %d bytes", msg, e.Need)
	case e.Kind.IsFileError() && e.Offset > 0:
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. This lets callers
// match against the Err* sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is. They carry no offset or cause.
var (
	ErrIncomplete      = &Error{Kind: KindIncomplete}
	ErrBadMagic        = &Error{Kind: KindBadMagic}
	ErrBadHeader       = &Error{Kind: KindBadHeader}
	ErrHeaderSize      = &Error{Kind: KindHeaderSize}
	ErrUnknownFiletype = &Error{Kind: KindUnknownFiletype}
	ErrMissingFile     = &Error{Kind: KindMissingFile}
	ErrDigestMismatch  = &Error{Kind: KindDigestMismatch}
	ErrUnmappedFile    = &Error{Kind: KindUnmappedFile}
	ErrFileSize        = &Error{Kind: KindFileSize}
	ErrInternal        = &Error{Kind: KindInternal}
	ErrIo              = &Error{Kind: KindIo}
)

// IoError wraps a failure from the byte source.
func IoError(err error) error {
	return &Error{Kind: KindIo, Err: err}
}

// FileError builds an error of a payload-level kind (MissingFile,
// DigestMismatch, ...) for collaborators that validate what follows the
// header, so they can report through the same taxonomy.
func FileError(kind ErrorKind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain. A nil error is
// KindNone; errors that do not come from this package are reported as
// KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// NeedOf returns the byte count requested by an Incomplete error, and false
// for any other error.
func NeedOf(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindIncomplete {
		return e.Need, true
	}
	return 0, false
}

func incomplete(offset, need int) error {
	return &Error{Kind: KindIncomplete, Offset: offset, Need: need}
}

func badMagic(offset int) error {
	return &Error{Kind: KindBadMagic, Offset: offset}
}

func badHeader(offset int, err error) error {
	return &Error{Kind: KindBadHeader, Offset: offset, Err: err}
}
