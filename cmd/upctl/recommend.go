package main

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/unified_pay/internal/core/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Score every rail for a payment context and print the winner",
		RunE:  runRecommend,
	}

	cmd.Flags().String("amount", "", "Payment amount (required)")
	cmd.Flags().String("currency", "", "Payment currency (defaults to the reference currency)")
	cmd.Flags().Bool("instant", true, "Payer needs instant settlement")
	cmd.Flags().Bool("domestic", true, "Payment is domestic")
	cmd.Flags().Bool("low-fee", true, "Merchant prefers low fees")
	cmd.Flags().Bool("allow-crypto", false, "Allow the crypto rail")
	cmd.Flags().String("prefer", "", "Preferred payment method")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	rawAmount, _ := cmd.Flags().GetString("amount")
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q: %w", rawAmount, err)
	}
	currency, _ := cmd.Flags().GetString("currency")
	instant, _ := cmd.Flags().GetBool("instant")
	domestic, _ := cmd.Flags().GetBool("domestic")
	lowFee, _ := cmd.Flags().GetBool("low-fee")
	allowCrypto, _ := cmd.Flags().GetBool("allow-crypto")
	asJSON, _ := cmd.Flags().GetBool("json")

	req := dto.RecommendRailRequest{
		Amount:                amount,
		Currency:              currency,
		IsDomestic:            &domestic,
		NeedInstant:           &instant,
		MerchantPrefersLowFee: &lowFee,
		AllowCrypto:           &allowCrypto,
	}
	if prefer, _ := cmd.Flags().GetString("prefer"); prefer != "" {
		req.PreferredMethod = &prefer
	}

	eng, err := newEngine(cmd, services.DefaultPaymentDefaults())
	if err != nil {
		return err
	}
	resp, err := eng.payments.Preview(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.FXRate != nil {
		fmt.Fprintf(out, "Converted %s %s to %s %s at %s\n",
			resp.OriginalAmount, resp.OriginalCurrency, resp.Amount, resp.ReferenceCurrency, resp.FXRate)
	}
	for _, row := range resp.Scores {
		if !row.Eligible {
			fmt.Fprintf(out, "  %s  ineligible\n", methodLabel(row.Method))
			continue
		}
		fmt.Fprintf(out, "  %s  %7.2f\n", methodLabel(row.Method), row.Score)
	}
	fmt.Fprintf(out, "Recommended: %s\n", resp.Recommended)
	return nil
}
