package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/sadad_api/internal/models"
	"github.com/GTDGit/sadad_api/internal/utils"
	"github.com/GTDGit/sadad_api/pkg/sadad"
)

// Gateway is the part of *sadad.Client the payment service drives.
type Gateway interface {
	AcquireRefreshToken(ctx context.Context) (string, error)
	CreateInvoice(ctx context.Context, req sadad.InvoiceRequest, refreshToken string) (*sadad.CreatedInvoice, error)
	GetInvoiceInfo(ctx context.Context, invoiceID, refreshToken string) (*sadad.InvoiceInfo, error)
	RefundInvoice(ctx context.Context, req sadad.RefundRequest, refreshToken string) (*sadad.RefundResult, error)
	CurrencyRates(ctx context.Context) ([]sadad.CurrencyRate, error)
	Convert(ctx context.Context, code string, amount decimal.Decimal) (*sadad.Conversion, error)
	Sandbox() bool
}

// Ledger records invoices and refunds. *repository.InvoiceRepository implements it.
type Ledger interface {
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	CreateRefund(ctx context.Context, ref *models.Refund) error
	GetByGatewayID(ctx context.Context, gatewayID string, sandbox bool) (*models.Invoice, error)
	ListByRefNumber(ctx context.Context, refNumber string) ([]models.Invoice, error)
}

// PaymentService contains business logic for invoicing through Sadad.
type PaymentService struct {
	gateway Gateway
	ledger  Ledger
	session *tokenSession
}

// NewPaymentService constructs a PaymentService. ledger may be nil, in which case
// nothing is recorded.
func NewPaymentService(gateway Gateway, ledger Ledger) *PaymentService {
	return &PaymentService{
		gateway: gateway,
		ledger:  ledger,
		session: newTokenSession(gateway),
	}
}

// InvoiceItemRequest is one line item on the payment page.
type InvoiceItemRequest struct {
	Name     string          `json:"name" binding:"required"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreateInvoiceRequest input. Currency defaults to KWD. The amount is converted with the
// Sadad rate table before the invoice is created, KWD included.
type CreateInvoiceRequest struct {
	RefNumber      string               `json:"refNumber" binding:"required,max=100"`
	Amount         decimal.Decimal      `json:"amount"`
	Currency       string               `json:"currency" binding:"omitempty,len=3"`
	CustomerName   string               `json:"customerName" binding:"max=255"`
	CustomerMobile string               `json:"customerMobile"`
	CustomerEmail  string               `json:"customerEmail" binding:"omitempty,email"`
	Lang           string               `json:"lang" binding:"omitempty,oneof=ar en"`
	Items          []InvoiceItemRequest `json:"items" binding:"dive"`
}

// InvoiceResult is returned to the API caller after a successful CreateInvoice.
type InvoiceResult struct {
	InvoiceID      string          `json:"invoiceId"`
	InvoiceURL     string          `json:"invoiceUrl"`
	AmountKWD      decimal.Decimal `json:"amountKwd"`
	SourceCurrency string          `json:"sourceCurrency"`
	SourceAmount   decimal.Decimal `json:"sourceAmount"`
	CustomerMobile string          `json:"customerMobile,omitempty"`
}

// InvoiceDetails is the gateway view of an invoice plus its ledger record, if any.
type InvoiceDetails struct {
	*sadad.InvoiceInfo
	Record *models.Invoice `json:"record,omitempty"`
}

// RefundRequest input.
type RefundRequest struct {
	InvoiceID string          `json:"invoiceId" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}

// CreateInvoice validates the customer phone, converts the amount into KWD, creates the
// invoice and records the attempt in the ledger.
func (s *PaymentService) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*InvoiceResult, error) {
	refNumber := strings.TrimSpace(req.RefNumber)
	if refNumber == "" {
		return nil, utils.ErrInvalidRefNumber
	}
	if !req.Amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}

	mobile, err := sadad.ValidatePhone(req.CustomerMobile)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = sadad.SettlementCurrency
	}
	// KWD goes through the rate table too so it is rounded to the gateway's placement.
	conv, err := s.gateway.Convert(ctx, currency, req.Amount)
	if err != nil {
		return nil, err
	}
	amountKWD := conv.Amount
	log.Info().
		Str("ref_number", refNumber).
		Str("currency", currency).
		Str("source_amount", req.Amount.String()).
		Str("amount_kwd", conv.String()).
		Msg("Converted invoice amount")

	line := sadad.InvoiceLine{
		RefNumber:      refNumber,
		Amount:         sadad.NewMoney(amountKWD),
		CustomerName:   req.CustomerName,
		CustomerMobile: mobile,
		CustomerEmail:  req.CustomerEmail,
		Lang:           req.Lang,
	}
	for _, item := range req.Items {
		line.Items = append(line.Items, sadad.InvoiceItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Amount:   sadad.NewMoney(item.Amount),
		})
	}

	var created *sadad.CreatedInvoice
	err = s.withSession(ctx, func(refreshToken string) error {
		var err error
		created, err = s.gateway.CreateInvoice(ctx, sadad.InvoiceRequest{Invoices: []sadad.InvoiceLine{line}}, refreshToken)
		return err
	})

	record := &models.Invoice{
		RefNumber:      refNumber,
		Status:         models.InvoiceStatusCreated,
		AmountKWD:      amountKWD,
		SourceCurrency: currency,
		SourceAmount:   req.Amount,
		CustomerName:   optional(req.CustomerName),
		CustomerMobile: optional(mobile),
		IsSandbox:      s.gateway.Sandbox(),
	}
	if err != nil {
		record.Status = models.InvoiceStatusFailed
		record.FailedReason = optional(err.Error())
	} else {
		record.GatewayInvoiceID = optional(created.InvoiceID)
		record.InvoiceURL = optional(created.InvoiceURL)
	}
	s.recordInvoice(ctx, record)

	if err != nil {
		return nil, err
	}
	return &InvoiceResult{
		InvoiceID:      created.InvoiceID,
		InvoiceURL:     created.InvoiceURL,
		AmountKWD:      amountKWD,
		SourceCurrency: currency,
		SourceAmount:   req.Amount,
		CustomerMobile: mobile,
	}, nil
}

// GetInvoice fetches the gateway view of an invoice and attaches the ledger record.
// A ledger failure is logged and leaves Record empty.
func (s *PaymentService) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceDetails, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, utils.ErrInvalidInvoiceID
	}

	var info *sadad.InvoiceInfo
	err := s.withSession(ctx, func(refreshToken string) error {
		var err error
		info, err = s.gateway.GetInvoiceInfo(ctx, invoiceID, refreshToken)
		return err
	})
	if err != nil {
		return nil, err
	}

	details := &InvoiceDetails{InvoiceInfo: info}
	if s.ledger != nil {
		record, err := s.ledger.GetByGatewayID(ctx, invoiceID, s.gateway.Sandbox())
		if err != nil {
			log.Warn().Err(err).Str("invoice_id", invoiceID).Msg("Failed to load ledger record")
		}
		details.Record = record
	}
	return details, nil
}

// InvoiceHistory lists every recorded attempt for a caller reference, newest first.
func (s *PaymentService) InvoiceHistory(ctx context.Context, refNumber string) ([]models.Invoice, error) {
	refNumber = strings.TrimSpace(refNumber)
	if refNumber == "" {
		return nil, utils.ErrInvalidRefNumber
	}
	if s.ledger == nil {
		return nil, utils.ErrLedgerDisabled
	}

	invoices, err := s.ledger.ListByRefNumber(ctx, refNumber)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return invoices, nil
}

// Refund requests a refund and records both the request and the gateway answer.
func (s *PaymentService) Refund(ctx context.Context, req *RefundRequest) (*sadad.RefundResult, error) {
	invoiceID := strings.TrimSpace(req.InvoiceID)
	if invoiceID == "" {
		return nil, utils.ErrInvalidInvoiceID
	}
	if !req.Amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}

	refund := sadad.RefundRequest{
		InvoiceID: invoiceID,
		Amount:    sadad.NewMoney(req.Amount),
		Reason:    req.Reason,
	}

	var result *sadad.RefundResult
	err := s.withSession(ctx, func(refreshToken string) error {
		var err error
		result, err = s.gateway.RefundInvoice(ctx, refund, refreshToken)
		return err
	})

	body, _ := json.Marshal(refund)
	record := &models.Refund{
		GatewayInvoiceID: invoiceID,
		Amount:           req.Amount,
		Reason:           optional(req.Reason),
		Status:           models.RefundStatusAccepted,
		Request:          body,
		IsSandbox:        s.gateway.Sandbox(),
	}
	if err != nil {
		record.Status = models.RefundStatusFailed
		record.FailedReason = optional(err.Error())
	} else {
		record.GatewayRefundID = optional(result.RefundID)
		record.Response = result.Raw
	}
	s.recordRefund(ctx, record)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Currencies returns the Sadad currency list.
func (s *PaymentService) Currencies(ctx context.Context) ([]sadad.CurrencyRate, error) {
	return s.gateway.CurrencyRates(ctx)
}

// Convert converts amount of code into KWD using the gateway rate table.
func (s *PaymentService) Convert(ctx context.Context, code string, amount decimal.Decimal) (*sadad.Conversion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, utils.ErrInvalidCurrency
	}
	return s.gateway.Convert(ctx, code, amount)
}

// ValidatePhone normalizes a customer phone number.
func (s *PaymentService) ValidatePhone(input string) (string, error) {
	return sadad.ValidatePhone(input)
}

// withSession runs fn with the shared refresh token. An authentication failure drops
// the token so the next call re-acquires it; the failed call is not retried.
func (s *PaymentService) withSession(ctx context.Context, fn func(refreshToken string) error) error {
	refreshToken, err := s.session.get(ctx)
	if err != nil {
		return err
	}

	err = fn(refreshToken)
	if errors.Is(err, sadad.ErrAuthentication) {
		s.session.invalidate(refreshToken, err)
	}
	return err
}

func (s *PaymentService) recordInvoice(ctx context.Context, inv *models.Invoice) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.CreateInvoice(ctx, inv); err != nil {
		log.Error().Err(err).Str("ref_number", inv.RefNumber).Msg("Failed to record invoice")
	}
}

func (s *PaymentService) recordRefund(ctx context.Context, ref *models.Refund) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.CreateRefund(ctx, ref); err != nil {
		log.Error().Err(err).Str("invoice_id", ref.GatewayInvoiceID).Msg("Failed to record refund")
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GatewayStatus reports the refresh-token session for health checks without calling
// the gateway: idle before first use, connected while a token is held, disconnected
// after the last acquisition or call failed authentication.
func (s *PaymentService) GatewayStatus() string {
	return s.session.status()
}
