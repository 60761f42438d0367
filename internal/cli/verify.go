package cli

import (
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/rpmhdr/internal/inspect"
	"github.com/ralt/rpmhdr/internal/models"
	"github.com/ralt/rpmhdr/internal/payload"
	"github.com/ralt/rpmhdr/internal/signature"
)

type verifyOptions struct {
	keyring   string
	noPayload bool
}

// newVerifyCmd creates the verify command
func newVerifyCmd(a *app) *cobra.Command {
	var opts verifyOptions

	cmd := &cobra.Command{
		Use:   "verify FILE...",
		Short: "Check the digests and signatures of RPM files",
		Long: `Checks the header digests recorded in the signature section, the
OpenPGP header signatures when a keyring is given, and the payload against
the sizes, MD5 and per-file digests the package records.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var keyring openpgp.EntityList
			if opts.keyring != "" {
				var err error
				keyring, err = signature.LoadKeyRing(opts.keyring)
				if err != nil {
					return &models.InspectError{Type: models.ErrInvalidConfig, Err: err}
				}
				logrus.Debugf("Loaded %d keys from %s", len(keyring), opts.keyring)
			}

			failed := 0
			for _, path := range args {
				if !a.verifyFile(cmd.OutOrStdout(), path, keyring, opts) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d packages failed verification", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.keyring, "keyring", "k", "", "Public key file used to check header signatures")
	cmd.Flags().BoolVar(&opts.noPayload, "no-payload", false, "Skip the payload checks")

	return cmd
}

// verifyFile prints one line per check and reports whether all passed
func (a *app) verifyFile(w io.Writer, path string, keyring openpgp.EntityList, opts verifyOptions) bool {
	f, err := inspect.Open(path, a.cfg.ParseOptions()...)
	if err != nil {
		fmt.Fprintf(w, "%s: FAILED: %v\n", path, err)
		return false
	}
	defer f.Close()

	ok := true
	check := func(what string, err error) {
		if err != nil {
			ok = false
			fmt.Fprintf(w, "%s: %s FAILED: %v\n", path, what, err)
			return
		}
		fmt.Fprintf(w, "%s: %s OK\n", path, what)
	}

	n, err := f.VerifyHeaderDigests()
	if n > 0 || err != nil {
		check("header digests", err)
	}

	if keyring != nil {
		n, err := f.VerifySignatures(keyring)
		if n == 0 && err == nil {
			ok = false
			fmt.Fprintf(w, "%s: signatures FAILED: no header signature\n", path)
		} else {
			check("signatures", err)
		}
	}

	if !opts.noPayload {
		report, err := payload.Check(f)
		if err == nil {
			err = report.Err()
		}
		check("payload", err)
	}

	return ok
}
