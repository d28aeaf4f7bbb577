package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "upctl",
		Short:         "upctl - operator tooling for the unified payment orchestrator",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("catalog", "", "Rail catalog YAML (defaults to the built-in catalog)")
	rootCmd.PersistentFlags().String("reference", "INR", "Reference currency")
	rootCmd.PersistentFlags().String("rates", "", "Static rates as FROM_TO=rate pairs; empty uses the public rate API")

	rootCmd.AddCommand(railsCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(symbolsCmd())

	return rootCmd
}
