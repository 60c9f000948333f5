package sadad

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoiceRequest() InvoiceRequest {
	return InvoiceRequest{
		Invoices: []InvoiceLine{{
			RefNumber:      "ORDER-1001",
			Amount:         NewMoney(decimal.RequireFromString("12.500")),
			CustomerName:   "Fatima",
			CustomerMobile: "96551234567",
			Items: []InvoiceItem{
				{Name: "Coffee", Quantity: 2, Amount: NewMoney(decimal.RequireFromString("6.250"))},
			},
		}},
	}
}

func TestCreateInvoice(t *testing.T) {
	transport := newFakeTransport().
		on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
		on(pathInvoiceNew, `{"isValid":true,"response":{"invoiceId":1234}}`).
		on(pathInvoiceByID, `{"response":{"invoiceId":1234,"key":"PAYKEY"}}`)
	c := newTestClient(t, transport)

	created, err := c.CreateInvoice(context.Background(), sampleInvoiceRequest(), "rt")
	require.NoError(t, err)
	assert.Equal(t, "1234", created.InvoiceID)
	assert.Equal(t, "https://sandbox.sadadpay.net/pay/PAYKEY", created.InvoiceURL)

	assert.Equal(t, []string{
		pathAccessToken,
		pathInvoiceNew,
		pathAccessToken,
		pathInvoiceByID + "?id=1234",
	}, transport.paths())

	insert := transport.requests[1]
	assert.Equal(t, http.MethodPost, insert.method)
	assert.Contains(t, insert.headers, "Authorization: Bearer at")
	assert.JSONEq(t, `{"Invoices":[{
		"ref_Number":"ORDER-1001",
		"amount":12.5,
		"customer_Name":"Fatima",
		"customer_Mobile":"96551234567",
		"items":[{"name":"Coffee","quantity":2,"amount":6.25}]
	}]}`, string(insert.body))

	lookup := transport.requests[3]
	assert.Equal(t, http.MethodGet, lookup.method)
	assert.Nil(t, lookup.body)
}

func TestCreateInvoiceLivePayURL(t *testing.T) {
	transport := newFakeTransport().
		on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
		on(pathInvoiceNew, `{"response":{"invoiceId":"77"}}`).
		on(pathInvoiceByID, `{"response":{"key":"K"}}`)
	c, err := NewClient(Config{ClientID: "id", ClientSecret: "secret", Sandbox: Bool(false), Transport: transport})
	require.NoError(t, err)

	created, err := c.CreateInvoice(context.Background(), sampleInvoiceRequest(), "rt")
	require.NoError(t, err)
	assert.Equal(t, "https://sadadpay.net/pay/K", created.InvoiceURL)
}

func TestCreateInvoiceMissingInvoiceIDStopsBeforeLookup(t *testing.T) {
	transport := newFakeTransport().
		on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
		on(pathInvoiceNew, `{"response":{"status":"queued"}}`).
		on(pathInvoiceByID, `{"response":{"key":"K"}}`)
	c := newTestClient(t, transport)

	created, err := c.CreateInvoice(context.Background(), sampleInvoiceRequest(), "rt")
	require.Error(t, err)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrInvoiceCreation)
	assert.Equal(t, []string{pathAccessToken, pathInvoiceNew}, transport.paths())
}

func TestCreateInvoiceErrorKeyWins(t *testing.T) {
	transport := newFakeTransport().
		on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
		on(pathInvoiceNew, `{"errorKey":"AMOUNT_NOT_VALID","response":{"invoiceId":1}}`)
	c := newTestClient(t, transport)

	_, err := c.CreateInvoice(context.Background(), sampleInvoiceRequest(), "rt")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "AMOUNT_NOT_VALID", gwErr.Code)
	assert.Equal(t, []string{pathAccessToken, pathInvoiceNew}, transport.paths())
}

func TestCreateInvoiceEmptyRequest(t *testing.T) {
	transport := newFakeTransport()
	c := newTestClient(t, transport)

	_, err := c.CreateInvoice(context.Background(), InvoiceRequest{}, "rt")
	assert.ErrorIs(t, err, ErrInvoiceCreation)
	assert.Empty(t, transport.requests)
}

func TestCreateInvoiceAuthFailure(t *testing.T) {
	transport := newFakeTransport().on(pathAccessToken, `{"response":{}}`)
	c := newTestClient(t, transport)

	_, err := c.CreateInvoice(context.Background(), sampleInvoiceRequest(), "revoked")
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, []string{pathAccessToken}, transport.paths())
}

func TestCreateInvoiceLookupWithoutKey(t *testing.T) {
	transport := newFakeTransport().
		on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
		on(pathInvoiceNew, `{"response":{"invoiceId":5}}`).
		on(pathInvoiceByID, `{"response":{"invoiceId":5}}`)
	c := newTestClient(t, transport)

	_, err := c.CreateInvoice(context.Background(), sampleInvoiceRequest(), "rt")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestGetInvoiceInfo(t *testing.T) {
	body := `{"response":{"invoiceId":9,"key":"PK-9","status":"Paid","newField":{"a":1}}}`
	transport := newFakeTransport().
		on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
		on(pathInvoiceByID, body)
	c := newTestClient(t, transport)

	info, err := c.GetInvoiceInfo(context.Background(), "9 & 10", "rt")
	require.NoError(t, err)
	assert.Equal(t, "PK-9", info.PayKey)
	assert.Equal(t, "9 & 10", info.InvoiceID)
	assert.JSONEq(t, body, string(info.Raw))
	assert.Equal(t, "https://apisandbox.sadadpay.net/api/Invoice/getbyid?id=9+%26+10", transport.requests[1].url)
}

func TestGetInvoiceInfoFailures(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		transport := newFakeTransport().
			on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
			on(pathInvoiceByID, `{"response":{"key":""}}`)
		_, err := newTestClient(t, transport).GetInvoiceInfo(context.Background(), "1", "rt")
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	t.Run("error key", func(t *testing.T) {
		transport := newFakeTransport().
			on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
			on(pathInvoiceByID, `{"errorKey":"NOT_FOUND","response":{"key":"K"}}`)
		_, err := newTestClient(t, transport).GetInvoiceInfo(context.Background(), "1", "rt")
		var gwErr *GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, "NOT_FOUND", gwErr.Code)
	})

	t.Run("transport", func(t *testing.T) {
		transport := newFakeTransport().
			on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
			onError(pathInvoiceByID, errors.New("timeout"))
		_, err := newTestClient(t, transport).GetInvoiceInfo(context.Background(), "1", "rt")
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestRefundInvoice(t *testing.T) {
	body := `{"response":{"refund_Id":"RF-1","amount":5}}`
	transport := newFakeTransport().
		on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
		on(pathRefundNew, body)
	c := newTestClient(t, transport)

	req := RefundRequest{
		InvoiceID: "INV-1",
		Amount:    NewMoney(decimal.RequireFromString("5.000")),
		Reason:    "damaged",
		Extra:     map[string]any{"notifyCustomer": true, "invoiceId": "ignored"},
	}
	result, err := c.RefundInvoice(context.Background(), req, "rt")
	require.NoError(t, err)
	assert.Equal(t, "RF-1", result.RefundID)
	assert.JSONEq(t, body, string(result.Raw))

	sent := transport.requests[1]
	assert.Equal(t, http.MethodPost, sent.method)
	assert.JSONEq(t, `{"invoiceId":"INV-1","amount":5,"reason":"damaged","notifyCustomer":true}`, string(sent.body))
}

func TestRefundInvoiceFailures(t *testing.T) {
	t.Run("missing refund id", func(t *testing.T) {
		transport := newFakeTransport().
			on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
			on(pathRefundNew, `{"response":{"refund_Id":0}}`)
		_, err := newTestClient(t, transport).RefundInvoice(context.Background(), RefundRequest{InvoiceID: "1"}, "rt")
		assert.ErrorIs(t, err, ErrRefund)
	})

	t.Run("error key", func(t *testing.T) {
		transport := newFakeTransport().
			on(pathAccessToken, `{"response":{"accessToken":"at"}}`).
			on(pathRefundNew, `{"errorKey":"REFUND_EXCEEDS_AMOUNT"}`)
		_, err := newTestClient(t, transport).RefundInvoice(context.Background(), RefundRequest{InvoiceID: "1"}, "rt")
		var gwErr *GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, "REFUND_EXCEEDS_AMOUNT", gwErr.Code)
	})
}

func TestInvoiceLineExtraDoesNotOverrideKnownFields(t *testing.T) {
	line := InvoiceLine{
		RefNumber: "A-1",
		Amount:    NewMoney(decimal.NewFromInt(3)),
		Extra:     map[string]any{"ref_Number": "spoofed", "customer_Civil_Id": "2850101"},
	}

	data, err := json.Marshal(line)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ref_Number":"A-1","amount":3,"customer_Civil_Id":"2850101"}`, string(data))
}

func TestInvoiceRequestExtraPassesThrough(t *testing.T) {
	req := InvoiceRequest{
		Invoices: []InvoiceLine{{RefNumber: "A-1", Amount: NewMoney(decimal.NewFromInt(2))}},
		Extra:    map[string]any{"notificationChannel": "sms", "Invoices": []string{"spoofed"}},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Invoices":[{"ref_Number":"A-1","amount":2}],"notificationChannel":"sms"}`, string(data))
}
