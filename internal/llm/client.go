// Package llm is the streaming client for the upstream text generator. It
// speaks the OpenAI-compatible chat-completions protocol and hands the
// response to callers as a channel of fragments, so the rest of the system
// never sees the transport.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of an upstream error response is read back for
// the error message.
const maxErrorBody = 4 * 1024

// doneSentinel terminates an SSE completion stream.
const doneSentinel = "[DONE]"

// Fragment is one incremental piece of generated text. The stream ends with
// either a Done fragment or an Err fragment, never both; the channel closes
// right after.
type Fragment struct {
	Content string
	Done    bool
	Err     error
}

// Client talks to one OpenAI-compatible completion endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	retry      RetryConfig
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its timeout bounds the whole
// stream, not just the connection.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetry sets the connection retry settings.
func WithRetry(cfg RetryConfig) Option {
	return func(client *Client) {
		client.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a generator client. An empty apiKey is allowed so the
// server can boot without credentials; Configured reports the difference and
// unauthenticated calls fail upstream.
func NewClient(baseURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		retry:   DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether a generator credential is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the model name sent upstream.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// chatChunk is the slice of a streamed completion we care about.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Stream sends the prompt and returns the generator's fragment sequence.
// Connection failures are retried per the retry config; once fragments are
// flowing the stream is never restarted. The returned channel is always
// closed, and canceling ctx tears the stream down.
func (c *Client) Stream(ctx context.Context, prompt string) (<-chan Fragment, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   true,
	})
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("marshal request: %w", err))
	}

	resp, err := c.connect(ctx, body)
	if err != nil {
		return nil, err
	}

	ch := make(chan Fragment, 100)
	go c.consume(ctx, resp, ch)
	return ch, nil
}

// connect opens the completion stream, retrying transient failures.
func (c *Client) connect(ctx context.Context, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		resp, err := c.open(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if IsFatal(err) {
			return nil, err
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		wait := c.retry.backoff(attempt)
		c.logger.Warn("generator connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// open performs a single connection attempt.
func (c *Client) open(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("call generator: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, classifyHTTPError(resp.StatusCode, msg)
	}

	return resp, nil
}

// consume parses SSE lines off the open response into fragments. It owns the
// response body and the channel.
func (c *Client) consume(ctx context.Context, resp *http.Response, ch chan<- Fragment) {
	defer close(ch)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == doneSentinel {
			send(ctx, ch, Fragment{Done: true})
			return
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue // skip malformed lines
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		if content := chunk.Choices[0].Delta.Content; content != "" {
			if !send(ctx, ch, Fragment{Content: content}) {
				return
			}
		}
	}

	// a canceled request surfaces here as a read error
	if err := scanner.Err(); err != nil {
		send(ctx, ch, Fragment{Err: NewTransientError(fmt.Errorf("stream interrupted: %w", err))})
		return
	}

	// upstream closed without a [DONE] sentinel; treat as completion
	send(ctx, ch, Fragment{Done: true})
}

// send delivers a fragment unless the caller has gone away.
func send(ctx context.Context, ch chan<- Fragment, f Fragment) bool {
	select {
	case ch <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// classifyHTTPError sorts an upstream HTTP error into transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	excerpt := string(body)
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "..."
	}

	err := fmt.Errorf("generator API error (status %d): %s", statusCode, excerpt)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		statusCode == http.StatusBadRequest:
		return NewFatalError(err)
	default:
		return NewFatalError(err)
	}
}
