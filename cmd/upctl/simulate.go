package main

import (
	"fmt"

	"github.com/SscSPs/unified_pay/internal/core/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one payment through an in-memory ledger and print the outcome",
		Long: `Opens a sender and a receiver account, initiates a payment between them,
settles it and prints the transaction together with both balances.`,
		RunE: runSimulate,
	}

	cmd.Flags().String("sender-balance", "1000", "Opening balance of the sender")
	cmd.Flags().String("receiver-balance", "500", "Opening balance of the receiver")
	cmd.Flags().String("amount", "100", "Payment amount")
	cmd.Flags().String("currency", "", "Payment currency (defaults to the reference currency)")
	cmd.Flags().String("rail", "", "Explicit rail, skipping the routing engine")

	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	senderBalance, err := decimalFlag(cmd, "sender-balance")
	if err != nil {
		return err
	}
	receiverBalance, err := decimalFlag(cmd, "receiver-balance")
	if err != nil {
		return err
	}
	amount, err := decimalFlag(cmd, "amount")
	if err != nil {
		return err
	}
	currency, _ := cmd.Flags().GetString("currency")

	eng, err := newEngine(cmd, services.DefaultPaymentDefaults())
	if err != nil {
		return err
	}

	sender, err := eng.ledger.OpenAccount(ctx, "sender", senderBalance)
	if err != nil {
		return err
	}
	receiver, err := eng.ledger.OpenAccount(ctx, "receiver", receiverBalance)
	if err != nil {
		return err
	}

	req := dto.InitiatePaymentRequest{
		SenderAccountID:   sender.AccountID,
		ReceiverAccountID: receiver.AccountID,
		Amount:            amount,
		Currency:          currency,
	}
	if rail, _ := cmd.Flags().GetString("rail"); rail != "" {
		req.Rail = &rail
	}

	txn, err := eng.payments.Initiate(ctx, req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initiated %s: %s %s via %s\n", txn.TransactionID, txn.Amount, txn.OriginalCurrency, txn.Rail)

	settled, err := eng.payments.Settle(ctx, txn.TransactionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Status: %s\n", settled.Status)
	if settled.FailureReason != "" {
		fmt.Fprintf(out, "Reason: %s\n", settled.FailureReason)
	}

	for _, acc := range []struct{ label, id string }{{"Sender", sender.AccountID}, {"Receiver", receiver.AccountID}} {
		bal, err := eng.ledger.GetBalance(ctx, acc.id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s balance: %s\n", acc.label, bal.StringFixed(2))
	}
	return nil
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return d, nil
}
