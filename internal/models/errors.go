package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrPackageParse ErrorType = iota
	ErrPayload
	ErrSignature
	ErrFileOp
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrPackageParse:
		return "PackageParse"
	case ErrPayload:
		return "Payload"
	case ErrSignature:
		return "Signature"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// InspectError represents an error while inspecting a package file
type InspectError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *InspectError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *InspectError) Unwrap() error {
	return e.Err
}
