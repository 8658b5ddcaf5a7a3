// Package cli implements the quickpad-backup command-line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	exitSuccess  = 0
	exitRunError = 1
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configFile string
}

var flags rootFlags

// NewRootCmd creates the top-level "quickpad-backup" command with all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quickpad-backup",
		Short: "Archive the QuickPad data directory and upload it to object storage",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "configuration file (YAML, optional)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitRunError)
	}
	os.Exit(exitSuccess)
}
