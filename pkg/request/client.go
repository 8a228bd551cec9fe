package request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"stormglass/pkg/config"
	"stormglass/pkg/tracker"
	"stormglass/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("Stormglass Weather Viewer (stormglass/%s)", version.Version)

// Client handles HTTP GET requests with per-host serialization,
// retries and exponential backoff.
type Client struct {
	httpClient *http.Client
	tracker    *tracker.Tracker

	retries   int
	baseDelay time.Duration
	maxDelay  time.Duration

	// One queue/worker per host keeps us polite towards each provider.
	queues map[string]chan job
	mu     sync.Mutex
}

type job struct {
	req      *http.Request
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client.
func New(cfg *config.RequestConfig, t *tracker.Tracker) *Client {
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	baseDelay := time.Duration(cfg.Backoff.BaseDelay)
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	maxDelay := time.Duration(cfg.Backoff.MaxDelay)
	if maxDelay <= 0 {
		maxDelay = 10 * time.Second
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		tracker:    t,
		retries:    retries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		queues:     make(map[string]chan job),
	}
}

// Get performs a GET request through the host queue.
func (c *Client) Get(ctx context.Context, u string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	host := parsedURL.Host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	respChan := make(chan jobResult, 1)
	c.dispatch(host, job{req: req, respChan: respChan})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

// dispatch sends the job to the host's queue, creating the queue/worker if needed.
func (c *Client) dispatch(host string, j job) {
	c.mu.Lock()
	q, ok := c.queues[host]
	if !ok {
		q = make(chan job, 16)
		c.queues[host] = q
		go c.worker(host, q)
	}
	c.mu.Unlock()

	select {
	case q <- j:
	case <-j.req.Context().Done():
		// Caller gave up before we could enqueue.
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for a specific host sequentially.
func (c *Client) worker(host string, q <-chan job) {
	for j := range q {
		if j.req.Context().Err() != nil {
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		body, err := c.executeWithBackoff(j.req)
		if err == nil {
			c.tracker.TrackSuccess(host)
		} else {
			c.tracker.TrackFailure(host)
		}
		j.respChan <- jobResult{body: body, err: err}
	}
}

// executeWithBackoff attempts the request, retrying transport errors and
// retryable status codes (429, 5xx) with exponential backoff.
func (c *Client) executeWithBackoff(req *http.Request) ([]byte, error) {
	host := req.URL.Host

	for attempt := 0; attempt < c.retries; attempt++ {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		slog.Debug("network request", "host", host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			slog.Warn("request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			c.tracker.TrackRetry(host)
			if err := c.sleep(req.Context(), attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			slog.Warn("retryable status, backing off", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			c.tracker.TrackRetry(host)
			if err := c.sleep(req.Context(), attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded for %s", req.URL)
}

// sleep waits the exponential delay for the given attempt, capped at maxDelay.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.baseDelay << uint(attempt)
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
