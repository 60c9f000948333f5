package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/sadad_api/pkg/sadad"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshRates(context.Context) ([]sadad.CurrencyRate, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return []sadad.CurrencyRate{{Code: "USD"}}, nil
}

func (r *countingRefresher) Sandbox() bool { return true }

type recordingInvalidator struct {
	mu    sync.Mutex
	modes []bool
	err   error
}

func (i *recordingInvalidator) Invalidate(_ context.Context, sandbox bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.modes = append(i.modes, sandbox)
	return i.err
}

func (i *recordingInvalidator) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.modes)
}

func TestRateSyncWorkerRunsUntilCanceled(t *testing.T) {
	refresher := &countingRefresher{}
	w := NewRateSyncWorker(refresher, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRateSyncWorkerSurvivesErrors(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("gateway down")}
	w := NewRateSyncWorker(refresher, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestRateSyncWorkerDropsRejectedRates(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		dropped bool
	}{
		{"bad status", &sadad.RateFetchError{StatusCode: 503}, true},
		{"error key", &sadad.GatewayError{Code: "SERVICE_DOWN"}, true},
		{"transport", &sadad.TransportError{URL: "u", Err: errors.New("reset")}, false},
		{"success", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &recordingInvalidator{}
			w := NewRateSyncWorker(&countingRefresher{err: tt.err}, inv, time.Minute)

			w.run(context.Background())

			if !tt.dropped {
				assert.Zero(t, inv.count())
				return
			}
			require.Equal(t, 1, inv.count())
			assert.True(t, inv.modes[0])
		})
	}
}

func TestRateSyncWorkerInvalidateFailureIsLogged(t *testing.T) {
	inv := &recordingInvalidator{err: errors.New("redis down")}
	w := NewRateSyncWorker(&countingRefresher{err: &sadad.RateFetchError{StatusCode: 500}}, inv, time.Minute)

	assert.NotPanics(t, func() { w.run(context.Background()) })
	assert.Equal(t, 1, inv.count())
}
