package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the outcome of a CreateInvoice attempt as stored in the ledger.
type InvoiceStatus string

const (
	InvoiceStatusCreated InvoiceStatus = "Created"
	InvoiceStatusFailed  InvoiceStatus = "Failed"
)

// Invoice is the ledger record of one CreateInvoice attempt. AmountKWD is what the
// gateway was asked to collect; SourceCurrency and SourceAmount are what the caller sent.
type Invoice struct {
	ID               int64           `db:"id" json:"-"`
	RefNumber        string          `db:"ref_number" json:"refNumber"`
	GatewayInvoiceID *string         `db:"gateway_invoice_id" json:"invoiceId,omitempty"`
	InvoiceURL       *string         `db:"invoice_url" json:"invoiceUrl,omitempty"`
	Status           InvoiceStatus   `db:"status" json:"status"`
	AmountKWD        decimal.Decimal `db:"amount_kwd" json:"amountKwd"`
	SourceCurrency   string          `db:"source_currency" json:"sourceCurrency"`
	SourceAmount     decimal.Decimal `db:"source_amount" json:"sourceAmount"`
	CustomerName     *string         `db:"customer_name" json:"customerName,omitempty"`
	CustomerMobile   *string         `db:"customer_mobile" json:"customerMobile,omitempty"`
	IsSandbox        bool            `db:"is_sandbox" json:"-"`
	FailedReason     *string         `db:"failed_reason" json:"failedReason,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"-"`
}

// RefundStatus is the outcome of a refund request as stored in the ledger.
type RefundStatus string

const (
	RefundStatusAccepted RefundStatus = "Accepted"
	RefundStatusFailed   RefundStatus = "Failed"
)

// Refund is the ledger record of one refund request, with both bodies kept for disputes.
type Refund struct {
	ID               int64           `db:"id" json:"-"`
	GatewayInvoiceID string          `db:"gateway_invoice_id" json:"invoiceId"`
	GatewayRefundID  *string         `db:"gateway_refund_id" json:"refundId,omitempty"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Reason           *string         `db:"reason" json:"reason,omitempty"`
	Status           RefundStatus    `db:"status" json:"status"`
	Request          json.RawMessage `db:"request" json:"-"`
	Response         json.RawMessage `db:"response" json:"-"`
	IsSandbox        bool            `db:"is_sandbox" json:"-"`
	FailedReason     *string         `db:"failed_reason" json:"failedReason,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
}
