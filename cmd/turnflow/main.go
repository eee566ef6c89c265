package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath    string
	maxIterations int
	metricsAddr   string
}

func main() {
	if err := newRootCmd(appOptions{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts appOptions) *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:          "turnflow",
		Short:        "Run tool-using conversations with a language model",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to turnflow.yaml (default: $AGT_CONFIG or ./turnflow.yaml)")
	root.PersistentFlags().IntVar(&flags.maxIterations, "max-iterations", 0, "override the per-run iteration cap")
	root.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(newAskCmd(&flags, opts))
	root.AddCommand(newChatCmd(&flags, opts))
	return root
}
