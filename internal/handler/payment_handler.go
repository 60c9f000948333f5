package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/sadad_api/internal/models"
	"github.com/GTDGit/sadad_api/internal/service"
	"github.com/GTDGit/sadad_api/internal/utils"
	"github.com/GTDGit/sadad_api/pkg/sadad"
)

// PaymentService is implemented by *service.PaymentService.
type PaymentService interface {
	CreateInvoice(ctx context.Context, req *service.CreateInvoiceRequest) (*service.InvoiceResult, error)
	GetInvoice(ctx context.Context, invoiceID string) (*service.InvoiceDetails, error)
	InvoiceHistory(ctx context.Context, refNumber string) ([]models.Invoice, error)
	Refund(ctx context.Context, req *service.RefundRequest) (*sadad.RefundResult, error)
	Currencies(ctx context.Context) ([]sadad.CurrencyRate, error)
	Convert(ctx context.Context, code string, amount decimal.Decimal) (*sadad.Conversion, error)
	ValidatePhone(input string) (string, error)
	GatewayStatus() string
}

// PaymentHandler handles invoice, refund, currency and phone endpoints.
type PaymentHandler struct {
	payments PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateInvoice handles POST /v1/invoices
func (h *PaymentHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "MISSING_FIELD", "Invalid request body")
		return
	}

	result, err := h.payments.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, "Invoice created", result)
}

// GetInvoice handles GET /v1/invoices/:invoiceId
func (h *PaymentHandler) GetInvoice(c *gin.Context) {
	info, err := h.payments.GetInvoice(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Invoice retrieved", info)
}

// ListInvoices handles GET /v1/invoices?refNumber=ORD-1
func (h *PaymentHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.payments.InvoiceHistory(c.Request.Context(), c.Query("refNumber"))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Invoices retrieved", invoices)
}

// CreateRefund handles POST /v1/refunds
func (h *PaymentHandler) CreateRefund(c *gin.Context) {
	var req service.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "MISSING_FIELD", "Invalid request body")
		return
	}

	result, err := h.payments.Refund(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, "Refund requested", result)
}

// ListCurrencies handles GET /v1/currencies
func (h *PaymentHandler) ListCurrencies(c *gin.Context) {
	rates, err := h.payments.Currencies(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Currencies retrieved", rates)
}

// ConvertCurrency handles GET /v1/currencies/convert?code=USD&amount=10.00
func (h *PaymentHandler) ConvertCurrency(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be a decimal number")
		return
	}

	conv, err := h.payments.Convert(c.Request.Context(), c.Query("code"), amount)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Amount converted", gin.H{
		"currency": conv.Currency,
		"amount":   conv.String(),
	})
}

// ValidatePhone handles POST /v1/phone/validate
func (h *PaymentHandler) ValidatePhone(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "MISSING_FIELD", "Invalid request body")
		return
	}

	phone, err := h.payments.ValidatePhone(req.Phone)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Phone number is valid", gin.H{"phone": phone})
}
