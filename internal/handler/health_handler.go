package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/sadad_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability is reported by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	payments PaymentService
	sandbox  bool
	deps     map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. deps holds optional backing services
// (ledger database, rate cache) keyed by name.
func NewHealthHandler(payments PaymentService, sandbox bool, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{payments: payments, sandbox: sandbox, deps: deps}
}

// GetHealth responds with service, gateway and dependency status. The gateway status
// comes from the token session; health checks never call Sadad.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	mode := "live"
	if h.sandbox {
		mode = "sandbox"
	}
	gatewayStatus := h.payments.GatewayStatus()

	deps := gin.H{}
	for name, dep := range h.deps {
		status := "connected"
		if err := dep.Ping(ctx); err != nil {
			status = "disconnected"
		}
		deps[name] = status
	}

	utils.Success(c, http.StatusOK, "Service is healthy", gin.H{
		"status":       "healthy",
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"sadad":        gin.H{"status": gatewayStatus, "mode": mode},
		"dependencies": deps,
	})
}
