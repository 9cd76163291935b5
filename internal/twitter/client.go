package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/dghubble/oauth1"

	"github.com/nao1215/tweetcollector/internal/config"
	"github.com/nao1215/tweetcollector/internal/model"
)

const (
	// DefaultBaseURL is the root of the v1.1 REST API.
	DefaultBaseURL = "https://api.twitter.com/1.1"

	// MaxLookupIDs is the largest number of ids statuses/lookup accepts per call.
	MaxLookupIDs = 100

	// statusesLookupPath is the lookup endpoint relative to the base URL.
	statusesLookupPath = "statuses/lookup.json"

	// rateLimitResetHeader carries the epoch second the current window resets.
	rateLimitResetHeader = "x-rate-limit-reset"

	// rateLimitPadding is added to the reset time to absorb clock skew.
	rateLimitPadding = 5 * time.Second

	// defaultRateLimitWait is used when the reset header is missing or invalid.
	defaultRateLimitWait = 15 * time.Minute
)

// Client calls the statuses/lookup endpoint.
type Client struct {
	httpClient      *http.Client
	transport       http.RoundTripper
	baseURL         string
	retryCount      int
	retryDelay      time.Duration
	waitOnRateLimit bool
	maxRateLimit    time.Duration
	logger          *slog.Logger
	metrics         *Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTransport sets the round tripper beneath the OAuth signing layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithRetry sets how many times a failed request is retried and the delay
// between attempts.
func WithRetry(count int, delay time.Duration) Option {
	return func(c *Client) {
		if count >= 0 {
			c.retryCount = count
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithWaitOnRateLimit makes the client block until the rate-limit window
// resets instead of failing with a 429. Each wait is capped at maxWait.
func WithWaitOnRateLimit(wait bool, maxWait time.Duration) Option {
	return func(c *Client) {
		c.waitOnRateLimit = wait
		if maxWait > 0 {
			c.maxRateLimit = maxWait
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the Prometheus collectors to update.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client that signs requests with creds.
func NewClient(creds config.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:         DefaultBaseURL,
		retryCount:      config.DefaultRetryCount,
		retryDelay:      config.DefaultRetryDelay,
		waitOnRateLimit: true,
		maxRateLimit:    defaultRateLimitWait,
		logger:          slog.Default(),
		now:             time.Now,
		sleep:           sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	// oauth1 picks its base transport from the context.
	ctx := context.Background()
	if c.transport != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, &http.Client{Transport: c.transport})
	}
	oauthConfig := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	c.httpClient = oauthConfig.Client(ctx, token)

	return c
}

// StatusesLookup fetches the full documents of up to MaxLookupIDs tweets.
// Documents are returned in the order the API sent them. Ids of deleted or
// protected tweets are silently absent from the result.
func (c *Client) StatusesLookup(ctx context.Context, ids []model.ID) ([]model.LookupRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxLookupIDs {
		return nil, fmt.Errorf("statuses/lookup accepts at most %d ids, got %d", MaxLookupIDs, len(ids))
	}

	endpoint := c.lookupURL(ids)

	var records []model.LookupRecord
	operation := func() error {
		recs, err := c.doWithRateLimit(ctx, endpoint)
		if err == nil {
			records = recs
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.retryCount)), //nolint:gosec // retryCount is validated non-negative
		ctx,
	)
	notify := func(err error, next time.Duration) {
		c.metrics.incRetries()
		c.logger.Warn("statuses/lookup failed, retrying", "error", err, "delay", next)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return records, nil
}

// lookupURL builds the request URL for ids.
func (c *Client) lookupURL(ids []model.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}

	params := url.Values{}
	params.Set("id", strings.Join(parts, ","))
	params.Set("include_entities", "true")
	params.Set("tweet_mode", "extended")

	return c.baseURL + "/" + statusesLookupPath + "?" + params.Encode()
}

// doWithRateLimit performs one request, waiting out rate-limit windows when
// configured to. Waiting does not consume the retry budget.
func (c *Client) doWithRateLimit(ctx context.Context, endpoint string) ([]model.LookupRecord, error) {
	for {
		records, resp, err := c.do(ctx, endpoint)
		if err == nil {
			return records, nil
		}

		var apiErr *APIError
		if !c.waitOnRateLimit || !errors.As(err, &apiErr) || !apiErr.RateLimited() {
			return nil, err
		}

		wait := c.rateLimitWait(resp)
		c.metrics.incRateLimitWaits()
		c.logger.Warn("rate limit reached, waiting for reset", "wait", wait.Round(time.Second))
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// do performs a single HTTP request.
func (c *Client) do(ctx context.Context, endpoint string) ([]model.LookupRecord, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest("error", c.now().Sub(start))
		return nil, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observeRequest("error", c.now().Sub(start))
		return nil, resp, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.observeRequest(strconv.Itoa(resp.StatusCode), c.now().Sub(start))
		return nil, resp, newAPIError(resp.StatusCode, body)
	}
	c.metrics.observeRequest("ok", c.now().Sub(start))

	var records []model.LookupRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, resp, fmt.Errorf("decode response: %w", err)
	}
	return records, resp, nil
}

// rateLimitWait returns how long to wait before the rate-limit window resets.
func (c *Client) rateLimitWait(resp *http.Response) time.Duration {
	wait := c.maxRateLimit
	if resp != nil {
		if reset, err := strconv.ParseInt(resp.Header.Get(rateLimitResetHeader), 10, 64); err == nil {
			wait = time.Unix(reset, 0).Sub(c.now()) + rateLimitPadding
		}
	}
	if wait < 0 {
		wait = 0
	}
	if wait > c.maxRateLimit {
		wait = c.maxRateLimit
	}
	return wait
}

// sleepContext sleeps for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
