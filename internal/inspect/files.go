package inspect

import (
	"fmt"

	"github.com/ralt/rpmhdr/internal/rpmtag"
	"github.com/ralt/rpmhdr/rpm"
)

// fileFlagGhost marks files that are owned by the package but not shipped
// in the payload.
const fileFlagGhost = 1 << 6

// FileInfo is one entry of the file list recorded in the header
type FileInfo struct {
	Path   string
	Mode   uint32
	Size   int64
	Digest string
	LinkTo string
	Ghost  bool
}

// IsRegular reports whether the entry is a regular file
func (f FileInfo) IsRegular() bool {
	return f.Mode&0170000 == 0100000
}

// Files returns the file list of a header section. Paths are absolute.
func Files(hdr *rpm.Section) ([]FileInfo, error) {
	names, err := fileNames(hdr)
	if err != nil {
		return nil, err
	}

	sizes := IntSliceTag(hdr, rpmtag.LongFileSizes)
	if sizes == nil {
		sizes = IntSliceTag(hdr, rpmtag.FileSizes)
	}
	modes := IntSliceTag(hdr, rpmtag.FileModes)
	flags := IntSliceTag(hdr, rpmtag.FileFlags)
	digests := StringArrayTag(hdr, rpmtag.FileDigests)
	links := StringArrayTag(hdr, rpmtag.FileLinkTos)

	files := make([]FileInfo, len(names))
	for i, name := range names {
		f := FileInfo{Path: name}
		if i < len(sizes) {
			f.Size = sizes[i]
		}
		if i < len(modes) {
			f.Mode = uint32(modes[i])
		}
		if i < len(flags) {
			f.Ghost = flags[i]&fileFlagGhost != 0
		}
		if i < len(digests) {
			f.Digest = digests[i]
		}
		if i < len(links) {
			f.LinkTo = links[i]
		}
		files[i] = f
	}
	return files, nil
}

func fileNames(hdr *rpm.Section) ([]string, error) {
	base := StringArrayTag(hdr, rpmtag.BaseNames)
	if base == nil {
		return StringArrayTag(hdr, rpmtag.OldFileNames), nil
	}

	dirs := StringArrayTag(hdr, rpmtag.DirNames)
	indexes := IntSliceTag(hdr, rpmtag.DirIndexes)
	if len(indexes) != len(base) {
		return nil, rpm.FileError(rpm.KindBadHeader,
			fmt.Errorf("%d base names but %d directory indexes", len(base), len(indexes)))
	}

	names := make([]string, len(base))
	for i, b := range base {
		idx := indexes[i]
		if idx < 0 || idx >= int64(len(dirs)) {
			return nil, rpm.FileError(rpm.KindBadHeader,
				fmt.Errorf("directory index %d of %s out of range", idx, b))
		}
		names[i] = dirs[idx] + b
	}
	return names, nil
}
