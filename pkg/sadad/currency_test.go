package sadad

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currencyList = `{"response":[
	{"code":"USD","conversionRate":0.30,"decimalPlacement":3,"name":"US Dollar"},
	{"code":"EUR","conversionRate":0.33,"decimalPlacement":3},
	{"code":"usd","conversionRate":9,"decimalPlacement":0},
	{"code":"JPY","conversionRate":0.002,"decimalPlacement":-2}
]}`

func TestConvert(t *testing.T) {
	transport := newFakeTransport().on(pathCurrencies, currencyList)
	c := newTestClient(t, transport)

	conv, err := c.Convert(context.Background(), "USD", decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	assert.Equal(t, "3.000", conv.String())
	assert.Equal(t, SettlementCurrency, conv.Currency)
	assert.Equal(t, int32(3), conv.Places)

	req := transport.requests[0]
	assert.Equal(t, "https://apisandbox.sadadpay.net/api/Common/getcurrencies", req.url)
	assert.Equal(t, []string{"Content-Type: application/json"}, req.headers)
	assert.Nil(t, req.body)
}

func TestConvertMatching(t *testing.T) {
	rates := []CurrencyRate{}
	require.NoError(t, json.Unmarshal([]byte(`[
		{"code":"USD","conversionRate":0.30,"decimalPlacement":3},
		{"code":"usd","conversionRate":9,"decimalPlacement":0},
		{"code":"JPY","conversionRate":0.002,"decimalPlacement":-2},
		{"code":"BHD","conversionRate":0.8125,"decimalPlacement":3}
	]`), &rates))

	tests := []struct {
		name   string
		code   string
		amount string
		want   string
	}{
		{"case insensitive", "uSd", "10.00", "3.000"},
		{"first match wins", "USD", "1", "0.300"},
		{"negative placement clamps to zero", "JPY", "1000", "2"},
		{"rounds down below half", "BHD", "0.0026", "0.002"},
		{"half rounds away from zero", "BHD", "0.004", "0.003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := convertWith(rates, tt.code, decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, conv.String())
		})
	}
}

func TestConvertNotFound(t *testing.T) {
	rates := []CurrencyRate{
		{Code: "USD", ConversionRate: decimal.RequireFromString("0.3"), DecimalPlacement: 3},
	}

	t.Run("missing code", func(t *testing.T) {
		_, err := convertWith(rates, "GBP", decimal.NewFromInt(5))
		var notFound *CurrencyNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "GBP", notFound.Code)
		assert.ErrorIs(t, err, ErrCurrencyNotFound)
	})

	t.Run("zero result", func(t *testing.T) {
		_, err := convertWith(rates, "USD", decimal.Zero)
		assert.ErrorIs(t, err, ErrCurrencyNotFound)
	})

	t.Run("rounds to zero", func(t *testing.T) {
		_, err := convertWith(rates, "USD", decimal.RequireFromString("0.001"))
		assert.ErrorIs(t, err, ErrCurrencyNotFound)
	})
}

func TestFetchRatesFailures(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		transport := newFakeTransport().onStatus(pathCurrencies, 500, `{"response":[]}`)
		_, err := FetchRates(context.Background(), transport, true)
		var fetchErr *RateFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, 500, fetchErr.StatusCode)
		assert.ErrorIs(t, err, ErrRateFetch)
	})

	t.Run("error key", func(t *testing.T) {
		transport := newFakeTransport().on(pathCurrencies, `{"errorKey":"SERVICE_DOWN"}`)
		_, err := FetchRates(context.Background(), transport, false)
		var gwErr *GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, "SERVICE_DOWN", gwErr.Code)
		assert.Equal(t, "https://api.sadadpay.net/api/Common/getcurrencies", transport.requests[0].url)
	})

	t.Run("null response", func(t *testing.T) {
		transport := newFakeTransport().on(pathCurrencies, `{"response":null}`)
		_, err := FetchRates(context.Background(), transport, true)
		assert.ErrorIs(t, err, ErrRateFetch)
	})

	t.Run("not a list", func(t *testing.T) {
		transport := newFakeTransport().on(pathCurrencies, `{"response":{"code":"USD"}}`)
		_, err := FetchRates(context.Background(), transport, true)
		assert.ErrorIs(t, err, ErrRateFetch)
	})

	t.Run("transport", func(t *testing.T) {
		transport := newFakeTransport().onError(pathCurrencies, errors.New("dns"))
		_, err := FetchRates(context.Background(), transport, true)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestCurrencyRatesKeepRawEntries(t *testing.T) {
	c := newTestClient(t, newFakeTransport().on(pathCurrencies, currencyList))

	rates, err := c.CurrencyRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 4)

	data, err := json.Marshal(rates[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"USD","conversionRate":0.30,"decimalPlacement":3,"name":"US Dollar"}`, string(data))
}

type countingCache struct {
	inner  *MemoryRateCache
	loads  atomic.Int32
	stores atomic.Int32
	fail   bool
}

func (c *countingCache) Load(ctx context.Context, sandbox bool) ([]CurrencyRate, bool, error) {
	c.loads.Add(1)
	if c.fail {
		return nil, false, errors.New("cache down")
	}
	return c.inner.Load(ctx, sandbox)
}

func (c *countingCache) Store(ctx context.Context, sandbox bool, rates []CurrencyRate) error {
	c.stores.Add(1)
	if c.fail {
		return errors.New("cache down")
	}
	return c.inner.Store(ctx, sandbox, rates)
}

func TestRateTableUsesCache(t *testing.T) {
	transport := newFakeTransport().on(pathCurrencies, currencyList)
	cache := &countingCache{inner: NewMemoryRateCache(time.Minute)}
	table := NewRateTable(true, transport, WithRateCache(cache))

	for i := 0; i < 3; i++ {
		conv, err := table.Convert(context.Background(), "EUR", decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, "33.000", conv.String())
	}

	assert.Len(t, transport.requests, 1)
	assert.Equal(t, int32(3), cache.loads.Load())
	assert.Equal(t, int32(1), cache.stores.Load())
}

func TestRateTableCacheFailureFallsThrough(t *testing.T) {
	transport := newFakeTransport().on(pathCurrencies, currencyList)
	table := NewRateTable(true, transport, WithRateCache(&countingCache{fail: true}))

	rates, err := table.Rates(context.Background())
	require.NoError(t, err)
	assert.Len(t, rates, 4)
	assert.Len(t, transport.requests, 1)
}

func TestRateTableWithoutCacheFetchesEveryTime(t *testing.T) {
	transport := newFakeTransport().on(pathCurrencies, currencyList)
	table := NewRateTable(false, transport, WithRateCache(nil))

	for i := 0; i < 2; i++ {
		_, err := table.Rates(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, transport.requests, 2)
}

func TestRefreshRatesBypassesCache(t *testing.T) {
	transport := newFakeTransport().on(pathCurrencies, currencyList)
	cache := &countingCache{inner: NewMemoryRateCache(time.Minute)}
	c, err := NewClient(Config{
		ClientID:     "merchant",
		ClientSecret: "s3cret",
		Sandbox:      Bool(true),
		Transport:    transport,
		RateCache:    cache,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := c.RefreshRates(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, transport.requests, 2)
	assert.Equal(t, int32(0), cache.loads.Load())
	assert.Equal(t, int32(2), cache.stores.Load())

	_, err = c.CurrencyRates(context.Background())
	require.NoError(t, err)
	assert.Len(t, transport.requests, 2)
}
