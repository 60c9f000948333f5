package sadad

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// SettlementCurrency is the currency Sadad settles invoices in.
	SettlementCurrency = "KWD"

	liveAPIBaseURL    = "https://api.sadadpay.net/api"
	livePayBaseURL    = "https://sadadpay.net/pay"
	sandboxAPIBaseURL = "https://apisandbox.sadadpay.net/api"
	sandboxPayBaseURL = "https://sandbox.sadadpay.net/pay"
)

// Gateway API paths, relative to Endpoints.APIBaseURL.
const (
	pathRefreshToken = "/User/GenerateRefreshToken"
	pathAccessToken  = "/User/GenerateAccessToken"
	pathInvoiceNew   = "/Invoice/insert"
	pathInvoiceByID  = "/Invoice/getbyid"
	pathRefundNew    = "/Refund/insert"
	pathCurrencies   = "/Common/getcurrencies"
)

// Config holds the settings NewClient validates. Sandbox has no default: a nil value
// is a configuration error.
type Config struct {
	ClientID     string
	ClientSecret string
	Sandbox      *bool

	// LogPath appends audit lines to a file. LogWriter is used when LogPath is empty.
	// With neither set, audit logging is disabled. Audit records carry no level, so
	// only zerolog.SetGlobalLevel(zerolog.Disabled) suppresses them; diagnostic lines
	// (debug responses, failures) still follow the global level.
	LogPath   string
	LogWriter io.Writer

	// Transport defaults to NewHTTPTransport(nil).
	Transport Transport
	// RateCache is optional; without it every conversion fetches the currency list.
	RateCache RateCache
}

// Bool returns a pointer to v, for Config.Sandbox.
func Bool(v bool) *bool {
	return &v
}

// Endpoints are the gateway base URLs for one mode.
type Endpoints struct {
	APIBaseURL string
	PayBaseURL string
}

// EndpointsFor returns the sandbox or live base URLs.
func EndpointsFor(sandbox bool) Endpoints {
	if sandbox {
		return Endpoints{APIBaseURL: sandboxAPIBaseURL, PayBaseURL: sandboxPayBaseURL}
	}
	return Endpoints{APIBaseURL: liveAPIBaseURL, PayBaseURL: livePayBaseURL}
}

func (e Endpoints) api(path string) string {
	return e.APIBaseURL + path
}

// Client is the SadadPay API client. It is immutable after NewClient and safe for
// concurrent use; build a second Client for different credentials.
type Client struct {
	clientID     string
	clientSecret string
	sandbox      bool
	endpoints    Endpoints
	transport    Transport
	rates        *RateTable
	logger       zerolog.Logger
	logFile      *os.File
}

// NewClient validates cfg and builds a Client. No network activity happens here.
func NewClient(cfg Config) (*Client, error) {
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, &ConfigError{Field: "clientId", Message: "must be a non-empty string"}
	}
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	if clientSecret == "" {
		return nil, &ConfigError{Field: "clientSecret", Message: "must be a non-empty string"}
	}
	if cfg.Sandbox == nil {
		return nil, &ConfigError{Field: "sandbox", Message: "must be set explicitly to true or false"}
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}

	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		sandbox:      *cfg.Sandbox,
		endpoints:    EndpointsFor(*cfg.Sandbox),
		transport:    transport,
		logger:       zerolog.Nop(),
	}

	sink := cfg.LogWriter
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, &ConfigError{Field: "log", Message: err.Error()}
		}
		c.logFile = f
		sink = f
	}
	if sink != nil {
		c.logger = newAuditLogger(sink)
	}

	c.rates = NewRateTable(c.sandbox, transport, WithRateCache(cfg.RateCache), withRateLogger(c.logger))
	return c, nil
}

// Sandbox reports whether the client talks to the sandbox gateway.
func (c *Client) Sandbox() bool {
	return c.sandbox
}

// Endpoints returns the base URLs derived from the sandbox flag.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Close releases the audit log file, if one was opened.
func (c *Client) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

func (c *Client) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
}

// doRequest sends one request and decodes the gateway envelope. Only transport
// failures are returned as errors; field checks belong to the caller.
func (c *Client) doRequest(ctx context.Context, method, url string, headers []string, body any) (*payload, int, error) {
	start := time.Now()
	data, status, err := c.transport.Send(ctx, method, url, headers, body)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("endpoint", url).Msg("gateway request failed")
		return nil, status, &TransportError{URL: url, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", url).
		Int("status_code", status).
		Dur("latency", time.Since(start)).
		RawJSON("response", sanitizeForLog(data)).
		Msg("gateway response")

	return decodePayload(data), status, nil
}

// newAuditLogger writes one line per event with a UTC timestamp. Writes are
// serialized so concurrent operations can share one sink.
func newAuditLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.SyncWriter(w)).Hook(utcTimestamp{})
}

type utcTimestamp struct{}

func (utcTimestamp) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Time("time", time.Now().UTC())
}
