package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumber-lang/lumber/pkg/lumber"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lumber",
	Short: "Run ground-fact Lumber programs against a query",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			lumber.SetLogOutput(os.Stderr)
			lumber.SetLogLevel(logrus.DebugLevel)
		}
		return nil
	},
}

// Execute runs the lumber CLI, returning any error encountered.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace definition lookups, commits, and native dispatch")
	rootCmd.AddCommand(runCmd)
}
