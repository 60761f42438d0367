package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	build "github.com/holocm/libpackagebuild"
	"github.com/holocm/libpackagebuild/filesystem"
	rpmbuild "github.com/holocm/libpackagebuild/rpm"
)

// NewBuildPackage returns a package definition for BuildRPM. files maps
// absolute paths to regular file contents.
func NewBuildPackage(name, version string, files map[string]string) *build.Package {
	pkg := &build.Package{
		Name:         name,
		Version:      version,
		Release:      1,
		Description:  name + " test package\nBuilt for rpmhdr tests.",
		Author:       "Test Packager <packager@example.org>",
		Architecture: build.ArchitectureAny,
		FSRoot:       filesystem.NewDirectory(),
	}
	pkg.FSRoot.Implicit = true

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		err := pkg.InsertFSNode(path, &filesystem.RegularFile{
			Content:  files[path],
			Metadata: filesystem.NodeMetadata{Mode: 0644},
		})
		if err != nil {
			panic(err)
		}
	}
	return pkg
}

// BuildRPM produces a complete RPM file for pkg. libpackagebuild compresses
// the payload with the xz binary, so the test is skipped when it is missing.
func BuildRPM(tb testing.TB, pkg *build.Package) []byte {
	tb.Helper()
	if _, err := exec.LookPath("xz"); err != nil {
		tb.Skip("xz binary not available, cannot build RPM fixtures")
	}
	data, err := rpmbuild.GeneratorFactory(pkg).Build()
	if err != nil {
		tb.Fatalf("building %s: %v", pkg.Name, err)
	}
	return data
}

// WriteFile writes data below dir and returns the full path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tb.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		tb.Fatal(err)
	}
	return path
}
