package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/GTDGit/sadad_api/internal/service"
)

var (
	invoiceRef      string
	invoiceAmount   string
	invoiceCurrency string
	invoiceName     string
	invoiceMobile   string
	invoiceEmail    string
	invoiceLang     string
	invoiceItems    []string
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create and inspect invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice and print its payment URL",
	Long: `Create a single invoice. Amounts in another currency are converted into KWD
with the gateway rate table first. Items are given as name:quantity:amount.

Examples:
  sadadctl invoice create --ref ORD-1 --amount 12.5 --mobile 96555512345
  sadadctl invoice create --ref ORD-2 --amount 40 --currency USD \
    --item "Blue mug:2:20" --lang en`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceGetCmd = &cobra.Command{
	Use:   "get <invoice-id>",
	Short: "Show the gateway view of an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceGet,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceGetCmd)

	f := invoiceCreateCmd.Flags()
	f.StringVar(&invoiceRef, "ref", "", "Merchant reference number")
	f.StringVar(&invoiceAmount, "amount", "", "Invoice amount")
	f.StringVar(&invoiceCurrency, "currency", "KWD", "Currency of --amount")
	f.StringVar(&invoiceName, "name", "", "Customer name")
	f.StringVar(&invoiceMobile, "mobile", "", "Customer mobile number")
	f.StringVar(&invoiceEmail, "email", "", "Customer email")
	f.StringVar(&invoiceLang, "lang", "", "Payment page language (ar, en)")
	f.StringArrayVar(&invoiceItems, "item", nil, "Line item as name:quantity:amount (repeatable)")
	_ = invoiceCreateCmd.MarkFlagRequired("ref")
	_ = invoiceCreateCmd.MarkFlagRequired("amount")
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(invoiceAmount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", invoiceAmount, err)
	}

	req := &service.CreateInvoiceRequest{
		RefNumber:      invoiceRef,
		Amount:         amount,
		Currency:       invoiceCurrency,
		CustomerName:   invoiceName,
		CustomerMobile: invoiceMobile,
		CustomerEmail:  invoiceEmail,
		Lang:           invoiceLang,
	}
	for _, raw := range invoiceItems {
		item, err := parseItem(raw)
		if err != nil {
			return err
		}
		req.Items = append(req.Items, item)
	}

	client, err := newGateway(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := service.NewPaymentService(client, nil).CreateInvoice(ctx, req)
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) {
		fmt.Fprintf(w, "invoice %s (%s KWD)\n%s\n", result.InvoiceID, result.AmountKWD.StringFixed(3), result.InvoiceURL)
	})
}

func runInvoiceGet(cmd *cobra.Command, args []string) error {
	client, err := newGateway(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	info, err := service.NewPaymentService(client, nil).GetInvoice(ctx, args[0])
	if err != nil {
		return err
	}

	return render(cmd, info, func(w io.Writer) {
		fmt.Fprintf(w, "invoice %s key %s\n%s\n", info.InvoiceID, info.PayKey, info.Raw)
	})
}

// parseItem reads name:quantity:amount. The name may itself contain colons.
func parseItem(raw string) (service.InvoiceItemRequest, error) {
	var item service.InvoiceItemRequest

	i := strings.LastIndex(raw, ":")
	if i < 0 {
		return item, fmt.Errorf("invalid item %q: want name:quantity:amount", raw)
	}
	head, amountPart := raw[:i], raw[i+1:]
	j := strings.LastIndex(head, ":")
	if j <= 0 {
		return item, fmt.Errorf("invalid item %q: want name:quantity:amount", raw)
	}
	item.Name = strings.TrimSpace(head[:j])

	qty, err := strconv.Atoi(strings.TrimSpace(head[j+1:]))
	if err != nil || qty < 1 {
		return item, fmt.Errorf("invalid item %q: quantity must be a positive integer", raw)
	}
	item.Quantity = qty

	if item.Amount, err = decimal.NewFromString(strings.TrimSpace(amountPart)); err != nil {
		return item, fmt.Errorf("invalid item %q: %w", raw, err)
	}
	return item, nil
}
