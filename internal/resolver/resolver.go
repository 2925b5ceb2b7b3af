// Package resolver follows HTTP redirects ahead of playback and download so
// the audio pipeline and the transfer layer receive final, stable URLs.
package resolver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/monitoring"
)

// Resolver resolves logical track URLs to their final delivery URLs.
type Resolver struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Resolver. timeout bounds each individual probe.
func New(client *http.Client, timeout time.Duration, logger *zap.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, timeout: timeout, logger: logger}
}

// Resolve probes rawURL with a HEAD request and returns the final URL after
// redirects. Resolution never fails the caller: on any error, or when no
// distinct final URL exists, the input URL is returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	start := time.Now()
	defer func() {
		monitoring.ResolveDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		monitoring.ResolveFailures.Inc()
		return rawURL
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("redirect probe failed, keeping original URL",
			zap.String("url", rawURL),
			zap.Error(err))
		monitoring.ResolveFailures.Inc()
		return rawURL
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	if final == "" || final == rawURL {
		return rawURL
	}

	r.logger.Debug("resolved redirect",
		zap.String("from", rawURL),
		zap.String("to", final))
	return final
}

// ResolveAll resolves every URL concurrently and returns the results in input
// order. Total latency is bounded by the slowest single probe; a stuck probe
// degrades to its original URL once the per-probe timeout fires.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) []string {
	out := make([]string, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			out[i] = r.Resolve(ctx, u)
		}(i, u)
	}
	wg.Wait()

	return out
}
