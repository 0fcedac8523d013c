package nbastats

import (
	"context"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hooplake/hooplake/internal/platform/logging"
	"github.com/hooplake/hooplake/internal/platform/resilience"
)

// Error taxonomy, testable with errors.Is. Transient and rate-limited errors
// are retried by Get; permanent errors are surfaced immediately.
var (
	ErrTransient   = crerr.New("nbastats: transient upstream error")
	ErrPermanent   = crerr.New("nbastats: permanent upstream error")
	ErrRateLimited = crerr.New("nbastats: rate limited")
	ErrCircuitOpen = resilience.ErrCircuitOpen
)

const (
	backoffBase = 500 * time.Millisecond
	backoffMax  = 10 * time.Second
	jitterMax   = 500 * time.Millisecond
)

type Config struct {
	BaseURL        string
	Proxy          string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	MaxRetries     int
	RateLimit      float64
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client executes stats-API requests with token-bucket rate limiting, jitter,
// exponential backoff and Retry-After handling.
type Client struct {
	cfg     Config
	httpCli *http.Client
	limiter *resilience.RateLimiter
	breaker *resilience.CircuitBreaker
	flight  resilience.SingleFlight
	logger  *logging.Logger

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, crerr.New("nbastats: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 5
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	cfg.CircuitBreaker = resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, crerr.Wrap(err, "nbastats: parse proxy url")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &Client{
		cfg: cfg,
		httpCli: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		limiter: resilience.NewRateLimiter(cfg.RateLimit),
		logger:  logger,
		sleep:   sleepContext,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(jitterMax)))
		},
	}
	if cfg.CircuitBreaker.Enabled {
		client.breaker = resilience.NewCircuitBreaker(
			cfg.CircuitBreaker.FailureThreshold,
			cfg.CircuitBreaker.OpenTimeout,
			cfg.CircuitBreaker.HalfOpenMaxReq,
		)
	}
	return client, nil
}

// Get fetches one endpoint. Concurrent identical requests are coalesced.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, http.Header, error) {
	fullURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	type response struct {
		body    []byte
		headers http.Header
	}
	v, err, _ := c.flight.Do(fullURL, func() (any, error) {
		body, headers, err := c.execute(ctx, endpoint, fullURL)
		if err != nil {
			return nil, err
		}
		return response{body: body, headers: headers}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	resp := v.(response)
	return resp.body, resp.headers, nil
}

func (c *Client) execute(ctx context.Context, endpoint, fullURL string) ([]byte, http.Header, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if c.breaker != nil {
			if err := c.breaker.Allow(); err != nil {
				return nil, nil, err
			}
		}
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, nil, err
		}
		if err := c.sleep(ctx, c.jitter()); err != nil {
			return nil, nil, err
		}

		body, headers, err := c.doRequest(ctx, fullURL)
		if err == nil {
			if c.breaker != nil {
				c.breaker.RecordSuccess()
			}
			return body, headers, nil
		}
		if c.breaker != nil {
			c.breaker.RecordFailure()
		}
		lastErr = err

		if crerr.Is(err, ErrPermanent) || ctx.Err() != nil {
			return nil, nil, err
		}

		if attempt == c.cfg.MaxRetries {
			break
		}

		wait := backoffDelay(attempt)
		if crerr.Is(err, ErrRateLimited) {
			if retryAfter := retryAfterDuration(headers); retryAfter > 0 {
				if sleepErr := c.sleep(ctx, retryAfter); sleepErr != nil {
					return nil, nil, sleepErr
				}
			}
		}
		c.logger.WarnContext(ctx, "nbastats request failed, retrying",
			"endpoint", endpoint, "attempt", attempt, "backoff", wait.String(), "error", err)
		if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
			return nil, nil, sleepErr
		}
	}
	return nil, nil, crerr.Wrapf(lastErr, "nbastats: %s failed after %d attempts", endpoint, c.cfg.MaxRetries)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nil, crerr.Mark(crerr.Wrap(err, "build request"), ErrPermanent)
	}
	setBrowserHeaders(req)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, nil, crerr.Mark(crerr.Wrap(err, "execute request"), ErrTransient)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resp.Header, crerr.Mark(crerr.Wrap(err, "read body"), ErrTransient)
		}
		return body, resp.Header, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resp.Header, crerr.Mark(crerr.Newf("status %d", resp.StatusCode), ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, resp.Header, crerr.Mark(crerr.Newf("status %d", resp.StatusCode), ErrTransient)
	default:
		return nil, resp.Header, crerr.Mark(crerr.Newf("status %d", resp.StatusCode), ErrPermanent)
	}
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://stats.nba.com/")
	req.Header.Set("Origin", "https://stats.nba.com")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")
	req.Header.Set("Connection", "keep-alive")
}

func backoffDelay(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	if delay < backoffBase {
		delay = backoffBase
	}
	if delay > backoffMax {
		delay = backoffMax
	}
	return delay
}

func retryAfterDuration(headers http.Header) time.Duration {
	if headers == nil {
		return 0
	}
	raw := strings.TrimSpace(headers.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
