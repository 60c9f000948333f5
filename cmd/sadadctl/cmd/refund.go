package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/GTDGit/sadad_api/internal/service"
)

var refundReason string

var refundCmd = &cobra.Command{
	Use:   "refund <invoice-id> <amount>",
	Short: "Request a refund for a paid invoice",
	Long: `Request a refund of amount KWD against an invoice.

Examples:
  sadadctl refund 1234 5.250 --reason "damaged item"`,
	Args: cobra.ExactArgs(2),
	RunE: runRefund,
}

func init() {
	rootCmd.AddCommand(refundCmd)

	refundCmd.Flags().StringVar(&refundReason, "reason", "", "Reason sent with the refund")
}

func runRefund(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	client, err := newGateway(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := service.NewPaymentService(client, nil).Refund(ctx, &service.RefundRequest{
		InvoiceID: args[0],
		Amount:    amount,
		Reason:    refundReason,
	})
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) {
		fmt.Fprintf(w, "refund %s\n%s\n", result.RefundID, result.Raw)
	})
}
