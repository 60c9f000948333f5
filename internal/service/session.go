package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Gateway session states reported by PaymentService.GatewayStatus.
const (
	GatewayIdle         = "idle"
	GatewayConnected    = "connected"
	GatewayDisconnected = "disconnected"
)

// refreshTokenSource issues refresh tokens from the merchant credentials.
type refreshTokenSource interface {
	AcquireRefreshToken(ctx context.Context) (string, error)
}

// tokenSession holds the refresh token shared by every request of the process.
// It is acquired on first use and dropped after an authentication failure, so the
// next request acquires a new one. Failed calls are never retried here.
type tokenSession struct {
	source refreshTokenSource

	mu      sync.Mutex
	token   string
	lastErr error
}

func newTokenSession(source refreshTokenSource) *tokenSession {
	return &tokenSession{source: source}
}

// get returns the current refresh token, acquiring one if needed. The lock is held
// across the acquisition so concurrent first requests share a single token call.
func (s *tokenSession) get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	token, err := s.source.AcquireRefreshToken(ctx)
	if err != nil {
		s.lastErr = err
		return "", err
	}
	log.Info().Msg("Sadad refresh token acquired")
	s.token = token
	s.lastErr = nil
	return token, nil
}

// invalidate drops token if it is still the current one and records cause.
func (s *tokenSession) invalidate(token string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == token {
		s.token = ""
		s.lastErr = cause
		log.Warn().Err(cause).Msg("Sadad refresh token rejected, will re-acquire on next request")
	}
}

// status reports the session without contacting the gateway.
func (s *tokenSession) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.token != "":
		return GatewayConnected
	case s.lastErr != nil:
		return GatewayDisconnected
	default:
		return GatewayIdle
	}
}
