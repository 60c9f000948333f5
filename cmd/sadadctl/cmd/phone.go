package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GTDGit/sadad_api/pkg/sadad"
)

var phoneCmd = &cobra.Command{
	Use:   "phone <number>",
	Short: "Normalize a customer phone number",
	Long: `Normalize a phone number the way invoices send it: Arabic-Indic and
Persian digits become ASCII and everything except digits is dropped. The
result must have between 3 and 14 digits. No credentials are needed.

Examples:
  sadadctl phone "+965 5551 2345"
  sadadctl phone ٩٦٥٥٥٥١٢٣٤٥`,
	Args: cobra.ExactArgs(1),
	RunE: runPhone,
}

func init() {
	rootCmd.AddCommand(phoneCmd)
}

type phoneOutput struct {
	Input string `json:"input"`
	Phone string `json:"phone"`
}

func runPhone(cmd *cobra.Command, args []string) error {
	phone, err := sadad.ValidatePhone(args[0])
	if err != nil {
		return err
	}

	out := phoneOutput{Input: args[0], Phone: phone}
	return render(cmd, out, func(w io.Writer) {
		fmt.Fprintln(w, out.Phone)
	})
}
