package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/sadad_api/internal/models"
)

// InvoiceRepository handles data access for the invoice and refund ledger.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// nullableJSON converts an empty body to nil so PostgreSQL stores NULL.
func nullableJSON(v []byte) interface{} {
	if len(v) == 0 {
		return nil
	}
	return string(v)
}

// CreateInvoice inserts an invoice row and fills in its id and timestamps.
func (r *InvoiceRepository) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	const q = `
        INSERT INTO invoices (
            ref_number, gateway_invoice_id, invoice_url, status, amount_kwd,
            source_currency, source_amount, customer_name, customer_mobile,
            is_sandbox, failed_reason, created_at, updated_at
        ) VALUES (
            $1,$2,$3,$4,$5,
            $6,$7,$8,$9,
            $10,$11,NOW(),NOW()
        ) RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q,
		inv.RefNumber, inv.GatewayInvoiceID, inv.InvoiceURL, inv.Status, inv.AmountKWD,
		inv.SourceCurrency, inv.SourceAmount, inv.CustomerName, inv.CustomerMobile,
		inv.IsSandbox, inv.FailedReason,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByGatewayID returns the invoice recorded for a gateway invoice id, or nil.
func (r *InvoiceRepository) GetByGatewayID(ctx context.Context, gatewayID string, sandbox bool) (*models.Invoice, error) {
	const q = `
        SELECT * FROM invoices
        WHERE gateway_invoice_id = $1 AND is_sandbox = $2`

	var inv models.Invoice
	if err := r.db.GetContext(ctx, &inv, q, gatewayID, sandbox); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// ListByRefNumber returns every attempt recorded for a caller reference, newest first.
func (r *InvoiceRepository) ListByRefNumber(ctx context.Context, refNumber string) ([]models.Invoice, error) {
	const q = `
        SELECT * FROM invoices
        WHERE ref_number = $1
        ORDER BY created_at DESC`

	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, q, refNumber); err != nil {
		return nil, err
	}
	return invoices, nil
}

// CreateRefund inserts a refund row.
func (r *InvoiceRepository) CreateRefund(ctx context.Context, ref *models.Refund) error {
	const q = `
        INSERT INTO refunds (
            gateway_invoice_id, gateway_refund_id, amount, reason, status,
            request, response, is_sandbox, failed_reason, created_at
        ) VALUES (
            $1,$2,$3,$4,$5,
            $6,$7,$8,$9,NOW()
        ) RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, q,
		ref.GatewayInvoiceID, ref.GatewayRefundID, ref.Amount, ref.Reason, ref.Status,
		nullableJSON(ref.Request), nullableJSON(ref.Response), ref.IsSandbox, ref.FailedReason,
	).Scan(&ref.ID, &ref.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert refund: %w", err)
	}
	return nil
}
