// Package agent provides the text-generation capability the AI-assisted
// review rules delegate to: submit a prompt, receive a completion, bounded
// by a timeout, failing with an error rather than a panic.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Options bound a single generation request.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Result is a completed generation.
type Result struct {
	Content      string
	FinishReason string
}

// Generator is the capability interface the rules consume.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Result, error)
}

// Client talks to an anthropic- or openai-style completion API with rate
// limiting and bounded retries.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	apiType    string // "anthropic" or "openai"
	httpClient *http.Client
	maxRetries int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithRetry sets the maximum number of retries per request.
func WithRetry(maxRetries int) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

// WithTimeout bounds each HTTP request. The slowest providers need up to
// five minutes.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		transport := c.httpClient.Transport
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}
}

// WithRateLimit configures the request rate limiter.
func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

// WithAPIConfig points the client at a provider endpoint and model.
func WithAPIConfig(baseURL, model string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
		c.model = model
		if strings.Contains(baseURL, "openai") {
			c.apiType = "openai"
		} else {
			c.apiType = "anthropic"
		}
	}
}

// WithLogger configures a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a generation client with pooled connections.
func NewClient(apiKey string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://api.anthropic.com/v1",
		model:   "claude-3-5-sonnet-20241022",
		apiType: "anthropic",
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: transport,
		},
		maxRetries: 3,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		logger:     slog.Default().With("component", "ai_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("AI client initialized",
		"api_type", c.apiType,
		"base_url", c.baseURL,
		"model", c.model,
		"max_retries", c.maxRetries,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

// Generate submits the prompt and returns the completion, retrying with
// linear backoff on failure.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (*Result, error) {
	requestID := fmt.Sprintf("gen_%d", time.Now().UnixNano())
	startTime := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Error("rate limit wait failed",
			"request_id", requestID,
			"error", err)
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	c.logger.Debug("rate limit passed for generation request",
		"request_id", requestID,
		"wait_duration_ms", time.Since(startTime).Milliseconds(),
		"prompt_length", len(prompt),
		"max_tokens", opts.MaxTokens,
		"api_type", c.apiType,
		"model", c.model)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				c.logger.Warn("request cancelled during backoff",
					"request_id", requestID,
					"attempt", attempt)
				return nil, ctx.Err()
			}
		}

		attemptStart := time.Now()
		result, err := c.doRequest(ctx, prompt, opts)
		if err == nil {
			c.logger.Info("generation request successful",
				"request_id", requestID,
				"attempt", attempt,
				"duration_ms", time.Since(attemptStart).Milliseconds(),
				"response_length", len(result.Content),
				"finish_reason", result.FinishReason,
				"total_duration_ms", time.Since(startTime).Milliseconds())
			return result, nil
		}

		lastErr = err
		c.logger.Warn("generation request failed, will retry",
			"request_id", requestID,
			"attempt", attempt,
			"duration_ms", time.Since(attemptStart).Milliseconds(),
			"error", err)
	}

	c.logger.Error("generation request failed after max retries",
		"request_id", requestID,
		"max_retries", c.maxRetries,
		"total_duration_ms", time.Since(startTime).Milliseconds(),
		"last_error", lastErr)

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, prompt string, opts Options) (*Result, error) {
	if c.apiType == "openai" {
		return c.doOpenAIRequest(ctx, prompt, opts)
	}
	return c.doAnthropicRequest(ctx, prompt, opts)
}

func (c *Client) doOpenAIRequest(ctx context.Context, prompt string, opts Options) (*Result, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
	}

	respBody, err := c.post(ctx, "/chat/completions", requestBody)
	if err != nil {
		return nil, err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &Result{
		Content:      response.Choices[0].Message.Content,
		FinishReason: response.Choices[0].FinishReason,
	}, nil
}

func (c *Client) doAnthropicRequest(ctx context.Context, prompt string, opts Options) (*Result, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
	}

	respBody, err := c.post(ctx, "/messages", requestBody)
	if err != nil {
		return nil, err
	}

	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return &Result{
		Content:      response.Content[0].Text,
		FinishReason: response.StopReason,
	}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, requestBody map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiType == "openai" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	} else {
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	}

	httpStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("HTTP response received",
		"endpoint", endpoint,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(httpStart).Milliseconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
