package main

import (
	"fmt"
	"strings"

	"github.com/SscSPs/unified_pay/internal/adapters/fx"
	"github.com/spf13/cobra"
)

func symbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List the currency and asset codes offered to clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fx.PopularSymbols(), " "))
			return nil
		},
	}
}
