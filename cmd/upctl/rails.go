package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func railsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rails",
		Short: "Print the rail catalog in routing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			rails, err := loadRails(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tMIN\tMAX\tINTL\tFEE%\tMINUTES\tRELIABILITY\tREFUND")
			for _, rail := range rails {
				maxAmount := "-"
				if rail.MaxAmount != nil {
					maxAmount = rail.MaxAmount.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%.2f\t%d\t%.2f\t%t\n",
					rail.Method, rail.MinAmount, maxAmount, rail.SupportsInternational,
					rail.AvgFeePercent, rail.AvgSettlementMinutes, rail.ReliabilityScore, rail.SupportsRefund)
			}
			return w.Flush()
		},
	}
}
