package sadad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// invoiceState tracks one CreateInvoice call in the audit log.
type invoiceState string

const (
	stateDraft       invoiceState = "draft"
	stateSubmitted   invoiceState = "submitted"
	stateCreated     invoiceState = "created"
	stateURLComposed invoiceState = "url_composed"
	stateFailed      invoiceState = "failed"
)

const logSeparator = " -------------------------------------------------------- "

// CreateInvoice inserts the invoice, then looks it up to obtain the pay key, and
// returns the gateway invoice id with the customer-facing payment URL.
// The lookup never happens unless the insert returned an invoice id.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest, refreshToken string) (*CreatedInvoice, error) {
	ref := req.firstRef()
	c.logger.Log().Msg(logSeparator)
	logger := c.logger.With().Str("ref_number", ref).Logger()

	body, _ := json.Marshal(req)
	logger.Log().
		Str("state", string(stateDraft)).
		RawJSON("request", sanitizeForLog(body)).
		Msg("Create Invoice Request orderId# " + ref)

	if len(req.Invoices) == 0 {
		return nil, c.failInvoice(logger, fmt.Errorf("%w: request has no invoice lines", ErrInvoiceCreation))
	}

	headers, err := c.bearerHeaders(ctx, refreshToken)
	if err != nil {
		return nil, c.failInvoice(logger, err)
	}

	logger.Debug().Str("state", string(stateSubmitted)).Msg("submitting invoice")
	p, _, err := c.doRequest(ctx, http.MethodPost, c.endpoints.api(pathInvoiceNew), headers, req)
	if err != nil {
		return nil, c.failInvoice(logger, err)
	}
	if gwErr := p.gatewayError(); gwErr != nil {
		return nil, c.failInvoice(logger, gwErr)
	}
	invoiceID := p.field("invoiceId")
	if invoiceID == "" {
		return nil, c.failInvoice(logger, ErrInvoiceCreation)
	}

	logger.Log().
		Str("state", string(stateCreated)).
		Str("invoice_id", invoiceID).
		RawJSON("response", sanitizeForLog(p.raw)).
		Msg("Create Invoice Response orderId# " + ref)

	info, err := c.GetInvoiceInfo(ctx, invoiceID, refreshToken)
	if err != nil {
		return nil, c.failInvoice(logger, err)
	}

	created := &CreatedInvoice{
		InvoiceID:  invoiceID,
		InvoiceURL: c.endpoints.PayBaseURL + "/" + info.PayKey,
	}
	logger.Log().
		Str("state", string(stateURLComposed)).
		Str("invoice_id", invoiceID).
		Str("invoice_url", created.InvoiceURL).
		Msg("invoice ready")
	return created, nil
}

func (c *Client) failInvoice(logger zerolog.Logger, err error) error {
	logger.Error().Str("state", string(stateFailed)).Err(err).Msg("invoice creation failed")
	return err
}

// GetInvoiceInfo fetches an invoice by gateway id. The pay key is required.
func (c *Client) GetInvoiceInfo(ctx context.Context, invoiceID, refreshToken string) (*InvoiceInfo, error) {
	c.logger.Log().Msg(logSeparator)
	c.logger.Log().Str("invoice_id", invoiceID).Msg("In Invoice Info inv# " + invoiceID)

	headers, err := c.bearerHeaders(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoints.api(pathInvoiceByID) + "?id=" + url.QueryEscape(invoiceID)
	p, _, err := c.doRequest(ctx, http.MethodGet, endpoint, headers, nil)
	if err != nil {
		return nil, err
	}
	c.logger.Log().
		Str("invoice_id", invoiceID).
		RawJSON("response", sanitizeForLog(p.raw)).
		Msg("inv# " + invoiceID + " response")

	if gwErr := p.gatewayError(); gwErr != nil {
		return nil, gwErr
	}
	key := p.field("key")
	if key == "" {
		return nil, ErrInvoiceNotFound
	}

	return &InvoiceInfo{
		InvoiceID: invoiceID,
		PayKey:    key,
		Raw:       p.raw,
	}, nil
}

// RefundInvoice requests a refund. Request and response bodies are always written to
// the audit log when one is configured.
func (c *Client) RefundInvoice(ctx context.Context, req RefundRequest, refreshToken string) (*RefundResult, error) {
	c.logger.Log().Msg(logSeparator)

	body, _ := json.Marshal(req)
	c.logger.Log().
		Str("invoice_id", req.InvoiceID).
		RawJSON("request", sanitizeForLog(body)).
		Msg("Refund Invoice Request")

	headers, err := c.bearerHeaders(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	p, _, err := c.doRequest(ctx, http.MethodPost, c.endpoints.api(pathRefundNew), headers, req)
	if err != nil {
		return nil, err
	}
	c.logger.Log().
		Str("invoice_id", req.InvoiceID).
		RawJSON("response", sanitizeForLog(p.raw)).
		Msg("Refund Invoice response")

	if gwErr := p.gatewayError(); gwErr != nil {
		return nil, gwErr
	}
	refundID := p.field("refund_Id")
	if refundID == "" {
		return nil, ErrRefund
	}

	return &RefundResult{RefundID: refundID, Raw: p.raw}, nil
}
