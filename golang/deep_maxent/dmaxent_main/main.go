package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	verbose    bool
	configFile string
}

func newRootCmd() *cobra.Command {
	options := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "dmaxent",
		Short:         "Deep maximum entropy density estimation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&options.verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&options.configFile, "config", "", "JSON or YAML file with fit settings")

	cmd.AddCommand(newFitCmd(options), newPlotCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
