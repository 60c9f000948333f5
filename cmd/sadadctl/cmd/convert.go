package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/GTDGit/sadad_api/internal/service"
)

var convertCmd = &cobra.Command{
	Use:   "convert <currency> <amount>",
	Short: "Convert an amount into KWD",
	Long: `Convert an amount into KWD with the gateway rate table. KWD itself is looked
up too, so the result always follows the gateway's decimal placement.

Examples:
  sadadctl convert USD 10
  sadadctl convert eur 7.25 -f text`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

type convertOutput struct {
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	AmountKWD string `json:"amountKwd"`
}

func runConvert(cmd *cobra.Command, args []string) error {
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

	conv, err := service.NewPaymentService(client, nil).Convert(ctx, args[0], amount)
	if err != nil {
		return err
	}

	out := convertOutput{Currency: conv.Currency, Amount: amount.String(), AmountKWD: conv.String()}
	return render(cmd, out, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s = %s KWD\n", out.Amount, out.Currency, out.AmountKWD)
	})
}
