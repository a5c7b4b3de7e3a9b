// Package cli wires the genesis-editor commands.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/config"
)

// NewRootCmd builds the command tree. Output goes to the command's
// configured writers so tests can capture it.
func NewRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "genesis-editor",
		Short:         "Multi-track timeline editing engine",
		Long:          "genesis-editor serves a local HTTP API for editing multi-track video timelines and\ninspects or exports interchange documents from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return config.LoadDotEnv()
			}
			return config.LoadDotEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")

	root.AddCommand(
		newServeCmd(),
		newInspectCmd(),
		newEDLCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command against os.Args and writes any error to
// errOut.
func Execute(errOut io.Writer) int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "genesis-editor %s (commit %s, built %s)\n",
				config.Version, config.GitCommit, config.BuildTime)
		},
	}
}
