package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/rpmhdr/internal/inspect"
	"github.com/ralt/rpmhdr/internal/models"
	"github.com/ralt/rpmhdr/internal/scanner"
	"github.com/ralt/rpmhdr/internal/utils"
)

// newScanCmd creates the scan command
func newScanCmd(a *app) *cobra.Command {
	var (
		workers int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "scan DIR",
		Short: "Summarize every RPM found below a directory",
		Long: `Walks DIR, detects RPM files by their lead, decodes their headers
concurrently and prints one line per package: its name-epoch:version-release.arch,
the SHA256 digest of the file and its path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}
			return a.runScan(cmd.Context(), cmd.OutOrStdout(), args[0], workers, asJSON)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Number of packages decoded in parallel")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")

	return cmd
}

func (a *app) runScan(ctx context.Context, w io.Writer, dir string, workers int, asJSON bool) error {
	// Step 1: Scan for packages
	logrus.Infof("Scanning directory: %s", dir)
	sc := scanner.NewFileSystemScanner()
	scanned, err := sc.Scan(ctx, dir)
	if err != nil {
		return &models.InspectError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	if len(scanned) == 0 {
		logrus.Warn("No packages found in input directory")
		return nil
	}

	// Step 2: Parse packages
	opts := a.cfg.ParseOptions()
	results, err := scanner.Process(ctx, scanned, workers, func(_ context.Context, p scanner.ScannedPackage) (*models.Package, error) {
		logrus.Debugf("Parsing %s package: %s", p.Type, p.Path)
		return inspect.ParsePackage(p.Path, opts...)
	})
	if err != nil {
		return err
	}

	var packages []models.Package
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			logrus.Warnf("Failed to parse %s: %v", r.Package.Path, r.Err)
			failed++
			continue
		}
		packages = append(packages, *r.Value)
	}

	// Step 3: Report duplicates
	conflicts := utils.DetectConflicts(packages)
	ids := make([]string, 0, len(conflicts))
	for id := range conflicts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		logrus.Warnf("%s is carried by %d files: %s", id, len(conflicts[id]), strings.Join(conflicts[id], ", "))
	}

	// Step 4: Print
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(packages); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, pkg := range packages {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", utils.PackageIdentity(pkg), pkg.Digest, pkg.Filename)
		}
		tw.Flush()
	}

	logrus.Infof("Decoded %d of %d packages", len(packages), len(results))
	if failed > 0 {
		return &models.InspectError{
			Type: models.ErrPackageParse,
			Err:  fmt.Errorf("%d of %d packages could not be decoded", failed, len(results)),
		}
	}
	return nil
}
