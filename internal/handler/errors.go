package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/sadad_api/internal/utils"
	"github.com/GTDGit/sadad_api/pkg/sadad"
)

// handleError maps service and gateway errors onto the response envelope.
func handleError(c *gin.Context, err error) {
	var gwErr *sadad.GatewayError

	switch {
	case errors.Is(err, utils.ErrInvalidRefNumber):
		utils.Error(c, http.StatusBadRequest, "INVALID_REF_NUMBER", "refNumber is required")
	case errors.Is(err, utils.ErrInvalidAmount):
		utils.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be greater than zero")
	case errors.Is(err, utils.ErrInvalidInvoiceID):
		utils.Error(c, http.StatusBadRequest, "INVALID_INVOICE_ID", "invoiceId is required")
	case errors.Is(err, utils.ErrInvalidCurrency):
		utils.Error(c, http.StatusBadRequest, "INVALID_CURRENCY", "currency code is required")
	case errors.Is(err, utils.ErrLedgerDisabled):
		utils.Error(c, http.StatusServiceUnavailable, "LEDGER_DISABLED", "Invoice ledger is not configured")
	case errors.Is(err, sadad.ErrInvalidPhone):
		utils.Error(c, http.StatusBadRequest, "INVALID_PHONE", "Phone number must have between 3 and 14 digits")
	case errors.Is(err, sadad.ErrCurrencyNotFound):
		utils.Error(c, http.StatusUnprocessableEntity, "CURRENCY_NOT_FOUND", err.Error())
	// Token failures can wrap a GatewayError, so they are matched first.
	case errors.Is(err, sadad.ErrAuthentication):
		utils.Error(c, http.StatusBadGateway, "GATEWAY_AUTH_FAILED", "Could not authenticate with Sadad")
	case errors.As(err, &gwErr):
		utils.GatewayError(c, http.StatusUnprocessableEntity, "GATEWAY_REJECTED", "Sadad rejected the request", gwErr.Code)
	case errors.Is(err, sadad.ErrInvoiceNotFound):
		utils.Error(c, http.StatusNotFound, "INVOICE_NOT_FOUND", "Invoice not found")
	case errors.Is(err, sadad.ErrInvoiceCreation):
		utils.Error(c, http.StatusBadGateway, "INVOICE_NOT_CREATED", "Sadad did not return an invoice id")
	case errors.Is(err, sadad.ErrRefund):
		utils.Error(c, http.StatusBadGateway, "REFUND_FAILED", "Sadad did not return a refund id")
	case errors.Is(err, sadad.ErrRateFetch):
		utils.Error(c, http.StatusBadGateway, "RATES_UNAVAILABLE", "Currency list is unavailable")
	case errors.Is(err, sadad.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		utils.Error(c, http.StatusGatewayTimeout, "GATEWAY_UNREACHABLE", "Sadad could not be reached")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
