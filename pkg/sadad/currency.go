package sadad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CurrencyRate is one entry of the gateway currency list. ConversionRate converts one
// unit of Code into the settlement currency. Raw keeps the entry as received.
type CurrencyRate struct {
	Code             string          `json:"code"`
	ConversionRate   decimal.Decimal `json:"conversionRate"`
	DecimalPlacement int32           `json:"decimalPlacement"`
	Raw              json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the inspected fields and keeps the raw entry.
func (r *CurrencyRate) UnmarshalJSON(data []byte) error {
	type rate CurrencyRate
	var v rate
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = CurrencyRate(v)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw entry back unchanged when there is one.
func (r CurrencyRate) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type rate CurrencyRate
	return json.Marshal(rate(r))
}

// Conversion is an amount expressed in the settlement currency.
type Conversion struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Places   int32           `json:"places"`
}

// String formats the amount in fixed-point notation with exactly Places decimals.
func (c Conversion) String() string {
	return c.Amount.StringFixed(c.Places)
}

// FetchRates loads the currency list. The endpoint is public; no token is sent.
func FetchRates(ctx context.Context, transport Transport, sandbox bool) ([]CurrencyRate, error) {
	endpoint := EndpointsFor(sandbox).api(pathCurrencies)
	data, status, err := transport.Send(ctx, http.MethodGet, endpoint, []string{"Content-Type: application/json"}, nil)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &RateFetchError{StatusCode: status}
	}

	p := decodePayload(data)
	if gwErr := p.gatewayError(); gwErr != nil {
		return nil, gwErr
	}

	if len(p.response) == 0 || string(p.response) == "null" {
		return nil, fmt.Errorf("%w: response has no currency list", ErrRateFetch)
	}
	var rates []CurrencyRate
	if err := json.Unmarshal(p.response, &rates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateFetch, err)
	}
	return rates, nil
}

// RateTable fetches currency rates for one mode and converts amounts with them.
type RateTable struct {
	sandbox   bool
	transport Transport
	cache     RateCache
	logger    zerolog.Logger
}

// RateTableOption configures a RateTable.
type RateTableOption func(*RateTable)

// WithRateCache serves rates from cache when possible. A nil cache is ignored.
func WithRateCache(cache RateCache) RateTableOption {
	return func(t *RateTable) {
		t.cache = cache
	}
}

func withRateLogger(logger zerolog.Logger) RateTableOption {
	return func(t *RateTable) {
		t.logger = logger
	}
}

// NewRateTable creates a RateTable. A nil transport uses NewHTTPTransport(nil).
func NewRateTable(sandbox bool, transport Transport, opts ...RateTableOption) *RateTable {
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}
	t := &RateTable{
		sandbox:   sandbox,
		transport: transport,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Rates returns the currency list, from the cache when it holds a fresh copy.
// Cache failures are logged and fall through to the gateway.
func (t *RateTable) Rates(ctx context.Context) ([]CurrencyRate, error) {
	if t.cache != nil {
		rates, ok, err := t.cache.Load(ctx, t.sandbox)
		if err != nil {
			t.logger.Warn().Err(err).Msg("rate cache load failed")
		} else if ok {
			return rates, nil
		}
	}

	return t.Refresh(ctx)
}

// Refresh fetches the currency list from the gateway, skipping the cache read, and
// stores the result in the cache.
func (t *RateTable) Refresh(ctx context.Context) ([]CurrencyRate, error) {
	rates, err := FetchRates(ctx, t.transport, t.sandbox)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if err := t.cache.Store(ctx, t.sandbox, rates); err != nil {
			t.logger.Warn().Err(err).Msg("rate cache store failed")
		}
	}
	return rates, nil
}

// Convert converts amount of code into the settlement currency, rounded half away from
// zero to the currency's decimal placement.
//
// A result of exactly zero is reported as CurrencyNotFoundError, the same as a missing
// currency; callers cannot tell a zero amount from an unusable currency.
func (t *RateTable) Convert(ctx context.Context, code string, amount decimal.Decimal) (*Conversion, error) {
	rates, err := t.Rates(ctx)
	if err != nil {
		return nil, err
	}
	return convertWith(rates, code, amount)
}

func convertWith(rates []CurrencyRate, code string, amount decimal.Decimal) (*Conversion, error) {
	rate, ok := findRate(rates, code)
	if !ok {
		return nil, &CurrencyNotFoundError{Code: code}
	}

	places := rate.DecimalPlacement
	if places < 0 {
		places = 0
	}
	converted := amount.Mul(rate.ConversionRate).Round(places)
	if converted.IsZero() {
		return nil, &CurrencyNotFoundError{Code: code}
	}

	return &Conversion{
		Currency: SettlementCurrency,
		Amount:   converted,
		Places:   places,
	}, nil
}

// findRate returns the first entry whose code matches case-insensitively.
func findRate(rates []CurrencyRate, code string) (CurrencyRate, bool) {
	for _, r := range rates {
		if strings.EqualFold(r.Code, code) {
			return r, true
		}
	}
	return CurrencyRate{}, false
}

// CurrencyRates returns the currency list for the client's mode.
func (c *Client) CurrencyRates(ctx context.Context) ([]CurrencyRate, error) {
	return c.rates.Rates(ctx)
}

// RefreshRates reloads the currency list from the gateway and updates the rate cache.
func (c *Client) RefreshRates(ctx context.Context) ([]CurrencyRate, error) {
	return c.rates.Refresh(ctx)
}

// Convert converts amount of code into the settlement currency.
func (c *Client) Convert(ctx context.Context, code string, amount decimal.Decimal) (*Conversion, error) {
	return c.rates.Convert(ctx, code, amount)
}
