package produce

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/farmstand/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultRate        = 10
	defaultBurst       = 10
	defaultMaxRetries  = 3
	defaultBackoffBase = 500 * time.Millisecond

	// maxBodyBytes caps how much of a response is read into memory
	maxBodyBytes = 4 << 20
)

// Query outcomes reported to the observer
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// QueryObserver receives the outcome and latency of every produce query
type QueryObserver interface {
	ObserveProduceQuery(outcome string, elapsed time.Duration)
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-attempt HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit sets the sustained request rate and burst
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithMaxRetries sets the total number of attempts per query
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// Client handles communication with the produce query service
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	debug       bool
	observer    QueryObserver
	logger      *zap.Logger
}

// NewClient creates a new produce query service client
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(defaultRate), defaultBurst),
		maxRetries:  defaultMaxRetries,
		backoffBase: defaultBackoffBase,
		logger:      logger.Named("produce"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDebug toggles logging of every request URL and response status
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetObserver attaches a query observer
func (c *Client) SetObserver(o QueryObserver) {
	c.observer = o
}

func (c *Client) debugLog(msg string, fields ...zap.Field) {
	if !c.debug {
		return
	}
	c.logger.Info(msg, fields...)
}

// exponentialBackoff returns the wait before retry number attempt (1-based)
func exponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// readLimitedBody reads at most limit bytes
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// QueryProduce asks the produce query service for listings matching query.
// Transport errors, 429 and 5xx responses are retried with exponential
// backoff. A 400 is returned as domain.ErrInvalidRequest without retrying.
func (c *Client) QueryProduce(ctx context.Context, query domain.ProduceQuery) (*domain.ProduceQueryResponse, error) {
	start := time.Now()
	outcome := OutcomeError
	defer func() {
		if c.observer != nil {
			c.observer.ObserveProduceQuery(outcome, time.Since(start))
		}
	}()

	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProduceAPIFailure, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, exponentialBackoff(c.backoffBase, attempt-1)); err != nil {
				outcome = OutcomeCancelled
				return nil, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				outcome = OutcomeCancelled
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		status, body, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				outcome = OutcomeCancelled
				return nil, ctx.Err()
			}
			c.logger.Warn("produce request failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrProduceAPIFailure, err)
			continue
		}

		c.debugLog("produce response",
			zap.String("url", reqURL),
			zap.Int("status", status),
			zap.Int("attempt", attempt))

		switch {
		case status == http.StatusOK:
			resp, err := decodeQueryResponse(body)
			if err != nil {
				return nil, err
			}
			outcome = OutcomeSuccess
			return resp, nil

		case status == http.StatusBadRequest:
			outcome = OutcomeInvalid
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, upstreamMessage(body))

		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			c.logger.Warn("produce service error",
				zap.Int("attempt", attempt),
				zap.Int("status", status),
				zap.String("message", upstreamMessage(body)))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProduceAPIFailure, status)

		default:
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProduceAPIFailure, status, upstreamMessage(body))
		}
	}

	c.logger.Error("all produce query attempts failed",
		zap.String("produce", query.Produce),
		zap.String("zip", query.Zip),
		zap.Int("attempts", c.maxRetries))
	return nil, lastErr
}

// doRequest executes a GET and returns the status and a bounded body
func (c *Client) doRequest(ctx context.Context, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Farmstand/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// buildURL encodes query as /query_produce parameters. Empty fields are omitted.
func (c *Client) buildURL(query domain.ProduceQuery) (string, error) {
	u, err := url.Parse(c.baseURL + "/query_produce")
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base url %q", c.baseURL)
	}

	params := url.Values{}
	if p := strings.TrimSpace(query.Produce); p != "" {
		params.Set("produce", p)
	}
	if z := strings.TrimSpace(query.Zip); z != "" {
		params.Set("zip", z)
	}
	if query.Lat != nil && query.Lon != nil {
		params.Set("lat", strconv.FormatFloat(*query.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*query.Lon, 'f', -1, 64))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
