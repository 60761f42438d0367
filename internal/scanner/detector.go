package scanner

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmhdr/rpm"
)

// DetectPackageType reads the lead of the file at path. Files without the
// RPM magic are reported as TypeUnknown without an error; a lead that starts
// correctly but cannot be decoded is an error. The lead name is returned
// alongside the type.
func DetectPackageType(path string) (PackageType, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, "", err
	}
	defer f.Close()

	// Read the fixed-size lead for magic byte detection
	buf := make([]byte, rpm.LeadSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return TypeUnknown, "", err
	}

	lead, _, err := rpm.ParseLead(buf[:n])
	if errors.Is(err, rpm.ErrBadMagic) || (n < len(rpm.LeadMagic) && errors.Is(err, rpm.ErrIncomplete)) {
		if filepath.Ext(path) == ".rpm" {
			logrus.Warnf("%s has an .rpm extension but no RPM lead", path)
		}
		return TypeUnknown, "", nil
	}
	if err != nil {
		return TypeUnknown, "", err
	}

	if lead.IsSource() {
		return TypeSource, lead.Name, nil
	}
	return TypeBinary, lead.Name, nil
}
