package sadad

import (
	"errors"
	"fmt"
)

// Error kinds returned by the client. Typed errors below match these with errors.Is.
var (
	ErrConfiguration    = errors.New("sadad: invalid configuration")
	ErrAuthentication   = errors.New("sadad: authentication failed")
	ErrTransport        = errors.New("sadad: transport failure")
	ErrInvoiceCreation  = errors.New("sadad: invoice could not be created")
	ErrInvoiceNotFound  = errors.New("sadad: invoice info not found")
	ErrRefund           = errors.New("sadad: refund could not be created")
	ErrRateFetch        = errors.New("sadad: currency list could not be loaded")
	ErrCurrencyNotFound = errors.New("sadad: currency not found")
	ErrInvalidPhone     = errors.New("sadad: phone number must have between 3 and 14 digits")
)

// ConfigError reports a missing or malformed configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sadad: invalid configuration %q: %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// GatewayError carries the gateway's own errorKey, unchanged.
type GatewayError struct {
	Code string
}

func (e *GatewayError) Error() string {
	return "sadad: gateway error " + e.Code
}

// AuthError reports a failed token request. Stage is "refresh" or "access".
type AuthError struct {
	Stage string
	Cause error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("sadad: could not generate %s token; check client id, secret and sandbox mode", e.Stage)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AuthError) Is(target error) bool { return target == ErrAuthentication }

func (e *AuthError) Unwrap() error { return e.Cause }

// TransportError wraps a failure of the transport collaborator.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sadad: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// RateFetchError reports a non-successful HTTP status from the currency list endpoint.
type RateFetchError struct {
	StatusCode int
}

func (e *RateFetchError) Error() string {
	return fmt.Sprintf("sadad: currency list could not be loaded (status %d)", e.StatusCode)
}

func (e *RateFetchError) Is(target error) bool { return target == ErrRateFetch }

// CurrencyNotFoundError is returned when a currency is missing from the rate table or
// converts to zero.
type CurrencyNotFoundError struct {
	Code string
}

func (e *CurrencyNotFoundError) Error() string {
	return fmt.Sprintf("sadad: currency %s is not in the Sadad currency list", e.Code)
}

func (e *CurrencyNotFoundError) Is(target error) bool { return target == ErrCurrencyNotFound }
