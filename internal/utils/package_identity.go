package utils

import (
	"fmt"

	"github.com/ralt/rpmhdr/internal/models"
)

// PackageIdentity returns the NEVRA of a package:
// name-[epoch:]version-release.arch. Source packages use "src" as arch.
func PackageIdentity(pkg models.Package) string {
	arch := pkg.Architecture
	if pkg.Source {
		arch = "src"
	}
	evr := fmt.Sprintf("%s-%s", pkg.Version, pkg.Release)
	if pkg.Epoch > 0 {
		evr = fmt.Sprintf("%d:%s", pkg.Epoch, evr)
	}
	return fmt.Sprintf("%s-%s.%s", pkg.Name, evr, arch)
}

// DetectConflicts returns, for every identity carried by more than one
// package, the files that carry it
func DetectConflicts(packages []models.Package) map[string][]string {
	seen := make(map[string][]string)
	for _, pkg := range packages {
		id := PackageIdentity(pkg)
		seen[id] = append(seen[id], pkg.Filename)
	}

	conflicts := make(map[string][]string)
	for id, files := range seen {
		if len(files) > 1 {
			conflicts[id] = files
		}
	}
	return conflicts
}
