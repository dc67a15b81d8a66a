package backend

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/seoforge/seoforge/internal/common"
	"github.com/seoforge/seoforge/internal/llm"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = time.Second

	shortCallTimeout  = 8 * time.Second
	mediumCallTimeout = 15 * time.Second
	longCallTimeout   = 30 * time.Second
)

// Client implements Backend on top of a chat provider. Transient provider
// failures (timeout, network, 429, 5xx) are retried with exponential backoff
// and jitter; other statuses and malformed payloads fail immediately.
type Client struct {
	provider  llm.Provider
	attempts  int
	baseDelay time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ Backend = (*Client)(nil)

type Option func(*Client)

// WithAttempts overrides the retry budget per call.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithBaseDelay overrides the backoff base delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

func New(provider llm.Provider, opts ...Option) *Client {
	c := &Client{
		provider:  provider,
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) complete(ctx context.Context, task string, timeout time.Duration, system, user string) (string, error) {
	logger := common.Logger()
	messages := []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := c.provider.Chat(callCtx, messages)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retriable(err) {
			logger.Warn("backend: call failed permanently", "task", task, "attempt", attempt, "error", err)
			return "", err
		}
		if attempt == c.attempts {
			break
		}
		delay := c.backoff(attempt)
		logger.Warn("backend: transient failure, retrying", "task", task, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	logger.Error("backend: call failed after retries", "task", task, "attempts", c.attempts, "error", lastErr)
	return "", lastErr
}

// backoff returns base*2^(attempt-1) plus up to one base delay of jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.baseDelay << uint(attempt-1)
	c.rngMu.Lock()
	jitter := time.Duration(c.rng.Int63n(int64(c.baseDelay)))
	c.rngMu.Unlock()
	return delay + jitter
}

// retriable classifies a provider error. Statuses 429 and 5xx plus
// status-less failures (timeouts, connection resets) are transient; any
// other attached status is permanent.
func retriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if status := llm.StatusFromError(err); status != 0 {
		return status == 429 || status >= 500
	}
	return true
}

const jsonOnly = " Respond with a single JSON object and no surrounding prose."
