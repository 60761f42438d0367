package scanner

import "context"

// PackageType represents the type of package
type PackageType int

const (
	TypeUnknown PackageType = iota
	TypeBinary
	TypeSource
)

// String returns the string representation of PackageType
func (pt PackageType) String() string {
	switch pt {
	case TypeBinary:
		return "binary"
	case TypeSource:
		return "source"
	default:
		return "unknown"
	}
}

// ScannedPackage represents a package file found during scanning
type ScannedPackage struct {
	Path string
	Type PackageType
	Size int64
	Name string // name recorded in the lead
}

// Scanner interface for detecting and scanning packages
type Scanner interface {
	// Scan recursively scans a directory for packages
	Scan(ctx context.Context, dir string) ([]ScannedPackage, error)

	// DetectType determines the package type of a file
	DetectType(path string) (PackageType, string, error)
}
