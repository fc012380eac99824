package tle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/model"
)

const (
	// DefaultBaseURL is CelesTrak's general-perturbations query endpoint.
	DefaultBaseURL = "https://celestrak.org/NORAD/elements/gp.php"

	maxBodyBytes = 50 << 20
	tracerName   = "github.com/signalsfoundry/debris-tracker/internal/tle"
)

// ErrNotFound is returned by FetchByName when the response has no entry
// with the requested name.
var ErrNotFound = errors.New("object not found")

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// retryable reports whether a request that failed with this status is worth
// repeating.
func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// FetcherConfig tunes HTTP behaviour.
type FetcherConfig struct {
	Timeout      time.Duration // per attempt
	MaxAttempts  uint
	RetryInitial time.Duration
	// MinInterval spaces consecutive requests; 0 disables pacing.
	MinInterval time.Duration
}

// DefaultFetcherConfig returns the built-in HTTP settings. config.Default
// starts from these.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:      30 * time.Second,
		MaxAttempts:  3,
		RetryInitial: 500 * time.Millisecond,
		MinInterval:  250 * time.Millisecond,
	}
}

// Fetcher retrieves raw TLE documents from CelesTrak.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        FetcherConfig
	log        logging.Logger
}

// NewFetcher creates a Fetcher for the given base URL.
func NewFetcher(baseURL string, cfg FetcherConfig, log logging.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logging.Noop()
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Fetcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		cfg:        cfg,
		log:        log,
	}
}

// FetchGroup downloads every element set in a CelesTrak group such as
// "active", "stations" or "starlink".
func (f *Fetcher) FetchGroup(ctx context.Context, group string) ([]byte, error) {
	u, err := f.queryURL(url.Values{"GROUP": {group}, "FORMAT": {"tle"}})
	if err != nil {
		return nil, err
	}
	return f.get(ctx, u)
}

// FetchByName looks up a single object by its catalog name. When the
// response lists several entries, the first whose name matches
// case-insensitively wins.
func (f *Fetcher) FetchByName(ctx context.Context, name string) (model.SpaceObject, error) {
	u, err := f.queryURL(url.Values{"NAME": {name}, "FORMAT": {"tle"}})
	if err != nil {
		return model.SpaceObject{}, err
	}
	body, err := f.get(ctx, u)
	if err != nil {
		return model.SpaceObject{}, err
	}

	lines, err := readLines(strings.NewReader(string(body)))
	if err != nil {
		return model.SpaceObject{}, err
	}
	for i := 0; i+2 < len(lines); i++ {
		if strings.EqualFold(lines[i], name) && isLine1(lines[i+1]) && isLine2(lines[i+2]) {
			obj, err := newObject(name, lines[i+1], lines[i+2])
			if err != nil {
				return model.SpaceObject{}, fmt.Errorf("invalid TLE for %s: %w", name, err)
			}
			return obj, nil
		}
	}
	return model.SpaceObject{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (f *Fetcher) queryURL(params url.Values) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// get performs a paced GET with exponential-backoff retry on network
// errors, 5xx and 429. Other statuses fail immediately.
func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tle.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", u))

	eb := backoff.NewExponentialBackOff()
	if f.cfg.RetryInitial > 0 {
		eb.InitialInterval = f.cfg.RetryInitial
	}

	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		b, err := f.once(ctx, u)
		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, backoff.Permanent(err)
		}
		return b, err
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(f.cfg.MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			f.log.Warn(ctx, "TLE fetch failed, retrying",
				logging.String("url", u),
				logging.Int("attempt", attempt),
				logging.Duration("wait", wait),
				logging.Err(err),
			)
		}),
	)
	span.SetAttributes(attribute.Int("tle.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("tle.bytes", len(body)))
	return body, nil
}

func (f *Fetcher) once(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching TLE data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, backoff.Permanent(fmt.Errorf("response exceeds %d byte limit", maxBodyBytes))
	}
	return body, nil
}
