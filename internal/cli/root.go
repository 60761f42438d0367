package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/rpmhdr/internal/config"
)

// app carries the state shared by all subcommands
type app struct {
	configPath string
	cfg        config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:   "rpmhdr",
		Short: "Decode and verify RPM package headers",
		Long: `Rpmhdr decodes the lead, signature section and header section of RPM
package files without installing or extracting them.

It can print every tag with its decoded value, summarize whole directories
of packages, list payload archives and verify the digests and signatures a
package carries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				level, _ := cfg.Level()
				logrus.SetLevel(level)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a TOML configuration file")

	// Add subcommands
	rootCmd.AddCommand(
		newInspectCmd(a),
		newScanCmd(a),
		newPayloadCmd(a),
		newVerifyCmd(a),
	)

	return rootCmd
}
