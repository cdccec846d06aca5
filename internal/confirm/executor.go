// Package confirm executes confirmation links and classifies what the
// resulting page says about the verification.
package confirm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/restuaku/vet/internal/domain"
	"github.com/restuaku/vet/internal/metrics"
)

const (
	executeTimeout = 30 * time.Second
	maxPageBytes   = 1 << 20 // 1 MiB is plenty for a result page
)

// A realistic browser identity. The provider serves different markup to
// clients it does not recognize.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// HTTPExecutor follows a confirmation link with a plain redirect-following
// GET. It reports only the response text; a provider that renders its result
// client-side needs a script-capable executor instead.
type HTTPExecutor struct {
	http *http.Client
}

func NewHTTPExecutor() *HTTPExecutor {
	return &HTTPExecutor{
		http: &http.Client{Timeout: executeTimeout},
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, url string) (*domain.PageResult, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues("confirmation").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create confirmation request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confirmation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation response: %w", err)
	}

	return &domain.PageResult{
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		Text:       string(body),
	}, nil
}
