package sampler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/learnstreak/pkg/logger"
)

// maxErrorBody bounds how much of a failed response is kept for the log.
const maxErrorBody = 512

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// getJSON performs a GET request and decodes a 200 response into out.
func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

// postJSON performs a POST request with a JSON body and decodes a 200
// response into out.
func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

type batchRequest struct {
	Requests []History `json:"requests"`
}

type batchResponse struct {
	Summaries []Summary `json:"summaries"`
}

// submitHistories posts histories in batches with at most cfg.Workers
// requests in flight. Failed batches are counted and logged, not fatal.
func submitHistories(ctx context.Context, cfg *Config, client *HTTPClient, histories []History, stats *Stats) (map[string]Summary, error) {
	logger.Get().Info(ctx, "submitting histories",
		logger.Int("subjects", len(histories)),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("workers", cfg.Workers),
	)

	var (
		mu        sync.Mutex
		summaries = make(map[string]Summary, len(histories))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for start := 0; start < len(histories); start += cfg.BatchSize {
		batch := histories[start:min(start+cfg.BatchSize, len(histories))]
		g.Go(func() error {
			var resp batchResponse
			err := client.postJSON(gctx, "/v1/progress/batch", batchRequest{Requests: batch}, &resp)

			mu.Lock()
			defer mu.Unlock()
			stats.BatchesSent++
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				stats.BatchesFailed++
				logger.Get().Warn(gctx, "batch failed", logger.Int("size", len(batch)), logger.Error(err))
				return nil
			}
			for _, s := range resp.Summaries {
				summaries[s.SubjectID] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Get().Info(ctx, "submission completed",
		logger.Int("batches", stats.BatchesSent),
		logger.Int("failed", stats.BatchesFailed),
		logger.Int("summaries", len(summaries)),
	)
	return summaries, nil
}
