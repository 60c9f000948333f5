package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken     = errors.New("INVALID_TOKEN")
	ErrInvalidRefNumber = errors.New("INVALID_REF_NUMBER")
	ErrInvalidAmount    = errors.New("INVALID_AMOUNT")
	ErrInvalidInvoiceID = errors.New("INVALID_INVOICE_ID")
	ErrInvalidCurrency  = errors.New("INVALID_CURRENCY")
	ErrLedgerDisabled   = errors.New("LEDGER_DISABLED")
)
