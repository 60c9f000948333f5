package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "List the gateway currency table",
	Long: `List the currencies Sadad can convert into KWD, as returned by the gateway.

Examples:
  sadadctl rates
  sadadctl rates -f text`,
	Args: cobra.NoArgs,
	RunE: runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}

func runRates(cmd *cobra.Command, args []string) error {
	client, err := newGateway(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	rates, err := client.CurrencyRates(ctx)
	if err != nil {
		return err
	}

	return render(cmd, rates, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tRATE\tPLACES")
		for _, r := range rates {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Code, r.ConversionRate.String(), r.DecimalPlacement)
		}
		tw.Flush()
	})
}
