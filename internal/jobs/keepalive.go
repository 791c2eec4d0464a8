package jobs

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// KeepAlive periodically pings the service's own health endpoint. Free-tier
// hosts put idle services to sleep; a regular request keeps them warm.
type KeepAlive struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// NewKeepAlive creates a keep-alive pinger for the given URL.
func NewKeepAlive(url string, interval time.Duration, logger *slog.Logger) *KeepAlive {
	return &KeepAlive{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Run pings until the context is canceled.
func (k *KeepAlive) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	k.logger.Info("keep-alive started", "url", k.url, "interval", k.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.ping(ctx)
		}
	}
}

func (k *KeepAlive) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		k.logger.Error("keep-alive request build failed", "error", err)
		return
	}

	resp, err := k.client.Do(req)
	if err != nil {
		k.logger.Warn("keep-alive ping failed", "error", err)
		return
	}
	resp.Body.Close()

	k.logger.Debug("keep-alive ping", "status", resp.StatusCode)
}
