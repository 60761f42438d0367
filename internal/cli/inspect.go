package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ralt/rpmhdr/internal/inspect"
	"github.com/ralt/rpmhdr/internal/models"
	"github.com/ralt/rpmhdr/internal/rpmtag"
	"github.com/ralt/rpmhdr/rpm"
)

type inspectOptions struct {
	values bool
	json   bool
	tags   []string
}

// newInspectCmd creates the inspect command
func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Show the lead and tag tables of RPM files",
		Long: `Decodes the lead, the signature section and the header section of each
file and prints every tag entry with its name, type, store offset and count.
With --values the tag values are decoded as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("values") {
				opts.values = a.cfg.ShowValues
			}
			filter, err := parseTagFilter(opts.tags)
			if err != nil {
				return &models.InspectError{Type: models.ErrInvalidConfig, Err: err}
			}

			for _, path := range args {
				if err := a.inspectFile(cmd.OutOrStdout(), path, opts, filter); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.values, "values", false, "Decode and print tag values")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print JSON instead of text")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "Only show these tags, by name or number")

	return cmd
}

// tagFilter selects tags per section. A nil filter selects everything.
type tagFilter map[rpmtag.Section]map[uint32]bool

func parseTagFilter(tags []string) (tagFilter, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	filter := tagFilter{
		rpmtag.SectionSignature: {},
		rpmtag.SectionHeader:    {},
	}
	for _, text := range tags {
		found := false
		for section, set := range filter {
			if tag, err := rpmtag.Parse(section, text); err == nil {
				set[tag] = true
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown tag %q", text)
		}
	}
	return filter, nil
}

func (f tagFilter) selects(section rpmtag.Section, tag uint32) bool {
	return f == nil || f[section][tag]
}

func (a *app) inspectFile(w io.Writer, path string, opts inspectOptions, filter tagFilter) error {
	f, err := inspect.Open(path, a.cfg.ParseOptions()...)
	if err != nil {
		return err
	}
	defer f.Close()

	if opts.json {
		return writeJSON(w, f, opts.values, filter)
	}

	h := f.Header
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "Lead: %s (format %d.%d, %s, arch %d, os %d, signature type %d)\n",
		h.Lead.Name, h.Lead.Major, h.Lead.Minor, leadKind(h.Lead), h.Lead.ArchNum, h.Lead.OSNum, h.Lead.SignatureType)

	a.writeSection(w, "Signature", rpmtag.SectionSignature, h.Signature, opts.values, filter)
	a.writeSection(w, "Header", rpmtag.SectionHeader, h.Header, opts.values, filter)

	fmt.Fprintf(w, "Payload offset: %d\n\n", h.Size)
	return nil
}

func leadKind(l rpm.Lead) string {
	if l.IsSource() {
		return "source"
	}
	return "binary"
}

func (a *app) writeSection(w io.Writer, title string, section rpmtag.Section, sec *rpm.Section, values bool, filter tagFilter) {
	fmt.Fprintf(w, "%s: version %d, %d tags, %d byte store\n",
		title, sec.Header.Version, sec.Header.Count, sec.Header.Size)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if values {
		fmt.Fprintln(tw, "  TAG\tTYPE\tOFFSET\tCOUNT\tVALUE")
	} else {
		fmt.Fprintln(tw, "  TAG\tTYPE\tOFFSET\tCOUNT")
	}

	for _, e := range sec.Tags {
		if !filter.selects(section, e.Tag) {
			continue
		}
		line := fmt.Sprintf("  %s\t%s\t%d\t%d", rpmtag.Describe(section, e.Tag), e.Type, e.Offset, e.Count)
		if values {
			v, err := sec.Value(e)
			if err != nil {
				line += "\terror: " + err.Error()
			} else {
				line += "\t" + formatValue(v, a.cfg.MaxBinaryDump)
			}
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
}

type jsonTag struct {
	Tag    uint32 `json:"tag"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type"`
	Offset uint32 `json:"offset"`
	Count  uint32 `json:"count"`
	Value  any    `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

type jsonSection struct {
	Version uint8     `json:"version"`
	Count   uint32    `json:"count"`
	Size    uint32    `json:"size"`
	Tags    []jsonTag `json:"tags"`
}

type jsonPackage struct {
	Path          string          `json:"path"`
	Lead          rpm.Lead        `json:"lead"`
	Signature     jsonSection     `json:"signature"`
	Header        jsonSection     `json:"header"`
	PayloadOffset int             `json:"payload_offset"`
	Summary       *models.Package `json:"summary"`
}

func newJSONSection(section rpmtag.Section, sec *rpm.Section, values bool, filter tagFilter) jsonSection {
	out := jsonSection{
		Version: sec.Header.Version,
		Count:   sec.Header.Count,
		Size:    sec.Header.Size,
		Tags:    []jsonTag{},
	}
	for _, e := range sec.Tags {
		if !filter.selects(section, e.Tag) {
			continue
		}
		name, _ := rpmtag.NameOf(section, e.Tag)
		t := jsonTag{Tag: e.Tag, Name: name, Type: e.Type.String(), Offset: e.Offset, Count: e.Count}
		if values {
			if v, err := sec.Value(e); err != nil {
				t.Error = err.Error()
			} else {
				t.Value = jsonValue(v)
			}
		}
		out.Tags = append(out.Tags, t)
	}
	return out
}

func writeJSON(w io.Writer, f *inspect.File, values bool, filter tagFilter) error {
	h := f.Header
	out := jsonPackage{
		Path:          f.Path,
		Lead:          h.Lead,
		Signature:     newJSONSection(rpmtag.SectionSignature, h.Signature, values, filter),
		Header:        newJSONSection(rpmtag.SectionHeader, h.Header, values, filter),
		PayloadOffset: h.Size,
		Summary:       f.Summary(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
