package sadad

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount encoded as a bare JSON number.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MarshalJSON writes the amount unquoted.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// InvoiceRequest is the body of an invoice insert call. Extra carries top-level fields
// the client does not model; Invoices always wins over an Extra entry of the same name.
type InvoiceRequest struct {
	Invoices []InvoiceLine  `json:"Invoices"`
	Extra    map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the encoded request.
func (r InvoiceRequest) MarshalJSON() ([]byte, error) {
	type request InvoiceRequest
	return mergeExtra(request(r), r.Extra)
}

// firstRef returns the first line's reference number, used to correlate log lines.
func (r InvoiceRequest) firstRef() string {
	if len(r.Invoices) == 0 {
		return ""
	}
	return r.Invoices[0].RefNumber
}

// InvoiceLine is one invoice inside an insert request. RefNumber is the caller's own
// order reference. Extra holds fields the client does not model; they are merged into
// the JSON object and never override modelled fields.
type InvoiceLine struct {
	RefNumber      string         `json:"ref_Number"`
	Amount         Money          `json:"amount"`
	CustomerName   string         `json:"customer_Name,omitempty"`
	CustomerMobile string         `json:"customer_Mobile,omitempty"`
	CustomerEmail  string         `json:"customer_Email,omitempty"`
	Lang           string         `json:"lang,omitempty"`
	CurrencyCode   string         `json:"currency_Code,omitempty"`
	Items          []InvoiceItem  `json:"items,omitempty"`
	Extra          map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the encoded line.
func (l InvoiceLine) MarshalJSON() ([]byte, error) {
	type line InvoiceLine
	return mergeExtra(line(l), l.Extra)
}

// InvoiceItem is a line item shown on the payment page.
type InvoiceItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Amount   Money  `json:"amount"`
}

// CreatedInvoice is the result of CreateInvoice.
type CreatedInvoice struct {
	InvoiceID  string `json:"invoiceId"`
	InvoiceURL string `json:"invoiceUrl"`
}

// InvoiceInfo is the result of GetInvoiceInfo. Raw is the full gateway response.
type InvoiceInfo struct {
	InvoiceID string          `json:"invoiceId"`
	PayKey    string          `json:"key"`
	Raw       json.RawMessage `json:"raw"`
}

// RefundRequest is the body of a refund insert call.
type RefundRequest struct {
	InvoiceID string         `json:"invoiceId"`
	Amount    Money          `json:"amount"`
	Reason    string         `json:"reason,omitempty"`
	Extra     map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the encoded request.
func (r RefundRequest) MarshalJSON() ([]byte, error) {
	type refund RefundRequest
	return mergeExtra(refund(r), r.Extra)
}

// RefundResult is the result of RefundInvoice. Raw is the full gateway response.
type RefundResult struct {
	RefundID string          `json:"refundId"`
	Raw      json.RawMessage `json:"raw"`
}

func mergeExtra(v any, extra map[string]any) ([]byte, error) {
	known, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return known, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(fields)+len(extra))
	for k, v := range extra {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = b
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}
