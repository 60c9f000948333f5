package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/sadad_api/pkg/sadad"
)

// RateRefresher reloads the currency list and stores it in the rate cache.
// *sadad.Client implements it.
type RateRefresher interface {
	RefreshRates(ctx context.Context) ([]sadad.CurrencyRate, error)
	Sandbox() bool
}

// RateInvalidator drops a cached currency list. *cache.RateCache implements it.
type RateInvalidator interface {
	Invalidate(ctx context.Context, sandbox bool) error
}

// RateSyncWorker keeps the shared rate cache warm so invoice requests rarely wait on
// the currency endpoint. When the gateway answers without a usable list, the cached
// copy is dropped so conversions stop using rates the gateway no longer serves.
type RateSyncWorker struct {
	rates    RateRefresher
	cache    RateInvalidator
	interval time.Duration
}

// NewRateSyncWorker constructs a RateSyncWorker. cache may be nil.
func NewRateSyncWorker(rates RateRefresher, cache RateInvalidator, interval time.Duration) *RateSyncWorker {
	return &RateSyncWorker{
		rates:    rates,
		cache:    cache,
		interval: interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *RateSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting rate sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Rate sync worker stopped")
			return
		}
	}
}

func (w *RateSyncWorker) run(ctx context.Context) {
	start := time.Now()
	rates, err := w.rates.RefreshRates(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh Sadad currency rates")
		if rejected(err) {
			w.invalidate(ctx)
		}
		return
	}

	log.Info().
		Int("currencies", len(rates)).
		Dur("duration", time.Since(start)).
		Msg("Sadad currency rates refreshed")
}

// rejected reports whether the gateway answered without a usable list. Transport
// failures keep the cached copy.
func rejected(err error) bool {
	var gwErr *sadad.GatewayError
	return errors.Is(err, sadad.ErrRateFetch) || errors.As(err, &gwErr)
}

func (w *RateSyncWorker) invalidate(ctx context.Context) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Invalidate(ctx, w.rates.Sandbox()); err != nil {
		log.Warn().Err(err).Msg("Failed to drop cached Sadad currency rates")
		return
	}
	log.Warn().Bool("sandbox", w.rates.Sandbox()).Msg("Dropped cached Sadad currency rates")
}
