package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errNoBaseURL     = errors.New("no base url configured")
)

// StatusError is a non-2xx answer from a provider API. An API that answered
// is authoritative, so status errors are never retried against another base URL.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return weather.ErrLocationNotFound
	case e.Code == http.StatusTooManyRequests:
		return errRateLimited
	case e.Code >= 500:
		return errServerError
	default:
		return errUnexpected
	}
}

// retryable reports whether another attempt against the same URL may succeed.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Option tunes a provider.
type Option func(*base)

// WithBaseURLs replaces the provider endpoints. Later entries are fallbacks
// used only when earlier ones cannot be reached.
func WithBaseURLs(urls ...string) Option {
	return func(b *base) {
		if len(urls) > 0 {
			b.baseURLs = urls
		}
	}
}

// WithBackoff replaces the retry schedule.
func WithBackoff(cfg BackoffConfig) Option {
	return func(b *base) { b.httpCfg.Backoff = cfg }
}

// WithLanguage sets the language of provider descriptions.
func WithLanguage(lang string) Option {
	return func(b *base) { b.lang = lang }
}

// base carries what every provider shares.
type base struct {
	name     string
	baseURLs []string
	lang     string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func newBase(name string, client *http.Client, defaultURL string, opts []Option) base {
	b := base{
		name:     name,
		baseURLs: []string{defaultURL},
		lang:     "en",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// A well-formed client error says nothing about provider health.
				var se *StatusError
				return err == nil || (errors.As(err, &se) && !se.retryable())
			},
		}),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Name returns the provider name.
func (b *base) Name() string {
	return b.name
}

// getJSON fetches path with query values from the first reachable base URL
// and decodes the body into out.
func (b *base) getJSON(ctx context.Context, path string, values url.Values, out interface{}) error {
	if len(b.baseURLs) == 0 {
		return errNoBaseURL
	}

	var lastErr error
	for _, baseURL := range b.baseURLs {
		u := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
		if len(values) > 0 {
			u += "?" + values.Encode()
		}

		buildRequest := func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, u, nil)
		}

		resp, err := doRequestWithResilience(ctx, b.httpCfg, b.circuit, buildRequest)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) || errors.Is(err, errCircuitOpen) || ctx.Err() != nil {
				return err
			}
			lastErr = err
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%s: decode response: %w", b.name, err)
		}
		return nil
	}
	return lastErr
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. Client errors (4xx other than 429) are returned at once.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				resp.Body.Close()
				return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}

		if attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
