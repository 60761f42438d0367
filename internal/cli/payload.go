package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ralt/rpmhdr/internal/inspect"
	"github.com/ralt/rpmhdr/internal/models"
	"github.com/ralt/rpmhdr/internal/payload"
	"github.com/ralt/rpmhdr/internal/rpmtag"
)

// newPayloadCmd creates the payload command
func newPayloadCmd(a *app) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "payload FILE",
		Short: "List the archive that follows the header",
		Long: `Detects the payload compression at the end of the header region,
decompresses the cpio archive and lists its entries. With --verify the
entries are also checked against the file list, sizes and digests recorded
in the header.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPayload(cmd.OutOrStdout(), args[0], verify)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Check the payload against the header")

	return cmd
}

func (a *app) runPayload(w io.Writer, path string, verify bool) error {
	f, err := inspect.Open(path, a.cfg.ParseOptions()...)
	if err != nil {
		return err
	}
	defer f.Close()

	payloadErr := func(err error) error {
		return &models.InspectError{Type: models.ErrPayload, Package: path, Err: err}
	}

	if verify {
		report, err := payload.Check(f)
		if err != nil {
			return payloadErr(err)
		}
		fmt.Fprintf(w, "Payload: %s, %d bytes at offset %d, %d bytes uncompressed\n",
			report.Compression, report.CompressedSize, f.Header.Size, report.UncompressedSize)
		writeEntries(w, report.Entries)
		for _, p := range report.Problems {
			fmt.Fprintf(w, "problem: %v\n", p)
		}
		if err := report.Err(); err != nil {
			return payloadErr(fmt.Errorf("%d problems found", len(report.Problems)))
		}
		return nil
	}

	hdr := f.Header.Header
	rc, c, err := payload.Open(f.Payload(), inspect.StringTag(hdr, rpmtag.PayloadCompressor))
	if err != nil {
		return payloadErr(err)
	}
	defer rc.Close()

	entries, err := payload.List(rc, uint32(inspect.IntTag(hdr, rpmtag.FileDigestAlgo)))
	if err != nil {
		return payloadErr(err)
	}

	fmt.Fprintf(w, "Payload: %s at offset %d\n", c, f.Header.Size)
	writeEntries(w, entries)
	return nil
}

func writeEntries(w io.Writer, entries []payload.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		switch e.Type {
		case payload.TypeRegular:
			fmt.Fprintf(tw, "%s\t%04o\t%d\t%s\t%s\n", e.Type, e.Perm, e.Size, e.Name, e.Digest)
		case payload.TypeSymlink:
			fmt.Fprintf(tw, "%s\t%04o\t\t%s -> %s\t\n", e.Type, e.Perm, e.Name, e.LinkTo)
		default:
			fmt.Fprintf(tw, "%s\t%04o\t\t%s\t\n", e.Type, e.Perm, e.Name)
		}
	}
	tw.Flush()
}
