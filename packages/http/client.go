package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/gqltester/packages/canonical"
)

const (
	// DefaultTimeout bounds a single attempt
	DefaultTimeout = 120 * time.Second
	// DefaultMaxAttempts is how often the primary server is tried before giving up
	DefaultMaxAttempts = 4
	// DefaultUserAgent is sent when no version-specific agent is configured
	DefaultUserAgent = "gqltester/dev"
	// RequestIDHeader carries a unique id per attempt for server-side log correlation
	RequestIDHeader = "X-Request-ID"
)

// Query is the payload of one GraphQL request. Variables is sent as the
// literal JSON text from the fixture.
type Query struct {
	Text      string
	Variables string
}

type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	userAgent      string
	maxAttempts    int
	retryDelay     time.Duration
	limiter        *rate.Limiter
	defaultHeaders map[string]string
	logger         *zap.Logger
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		userAgent:      DefaultUserAgent,
		maxAttempts:    DefaultMaxAttempts,
		defaultHeaders: make(map[string]string),
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Every attempt opens its own connection.
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DisableKeepAlives: true,
	}

	c.httpClient = &http.Client{
		Transport: transport,
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithUserAgent(agent string) ClientOption {
	return func(c *Client) {
		if agent != "" {
			c.userAgent = agent
		}
	}
}

// WithMaxAttempts sets the attempt ceiling used by ExecuteWithRetry
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the pause between two attempts of ExecuteWithRetry
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithRateLimit caps the number of requests per second across all callers
// of this client. A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithDefaultHeaders sets extra headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Execute sends q to url exactly once. A non-200 status is not an error;
// only transport failures are.
func (c *Client) Execute(ctx context.Context, url string, q Query) (*Response, error) {
	if err := ValidateURL(url); err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := neturl.Values{}
	form.Set("query", q.Text)
	form.Set("variables", q.Variables)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	text, _ := canonical.Bytes(body)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Canonical:  text,
		RequestID:  requestID,
		Duration:   duration,
	}, nil
}

// ExecuteWithRetry tries q up to the attempt ceiling and stops at the first
// HTTP 200. It returns the last response (nil if the last attempt failed in
// transport), the number of attempts made and the last transport error.
func (c *Client) ExecuteWithRetry(ctx context.Context, url string, q Query) (*Response, int, error) {
	var (
		resp     *Response
		err      error
		attempts int
	)

	for attempts < c.maxAttempts {
		if attempts > 0 && c.retryDelay > 0 {
			select {
			case <-ctx.Done():
				return resp, attempts, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		attempts++
		resp, err = c.Execute(ctx, url, q)
		if err == nil && resp.IsOK() {
			return resp, attempts, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp, attempts, ctxErr
		}

		if err != nil {
			c.logger.Debug("attempt failed",
				zap.String("url", url),
				zap.Int("attempt", attempts),
				zap.Error(err))
		} else {
			c.logger.Debug("attempt returned non-200",
				zap.String("url", url),
				zap.Int("attempt", attempts),
				zap.Int("status", resp.StatusCode),
				zap.String("request_id", resp.RequestID))
		}
	}

	return resp, attempts, err
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
