package service

import (
	"io"
	"net/http"

	"github.com/GTDGit/sadad_api/internal/config"
	"github.com/GTDGit/sadad_api/pkg/sadad"
)

// NewSadadClient builds the gateway client from configuration. rateCache may be nil.
// auditLog receives audit lines when cfg.LogPath is empty; it may be nil.
func NewSadadClient(cfg *config.SadadConfig, rateCache sadad.RateCache, auditLog io.Writer) (*sadad.Client, error) {
	return sadad.NewClient(sadad.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Sandbox:      sadad.Bool(cfg.Sandbox),
		LogPath:      cfg.LogPath,
		LogWriter:    auditLog,
		Transport:    sadad.NewHTTPTransport(&http.Client{Timeout: cfg.HTTPTimeout}),
		RateCache:    rateCache,
	})
}
