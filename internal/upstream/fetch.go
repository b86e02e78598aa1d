package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ebitech02/WanderWise/internal/metrics"
)

// maxBodyBytes caps upstream response bodies. A full RestCountries region
// listing is a few hundred KiB.
const maxBodyBytes = 8 << 20

// Options are shared by every client.
type Options struct {
	// Timeout bounds each call, on top of the caller's context.
	Timeout time.Duration
	// HTTPClient defaults to a client without its own timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// endpoint performs GETs against one upstream service behind its own
// circuit breaker. The breaker never retries; a NotFound answer counts as a
// success for it.
type endpoint struct {
	service string
	client  *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

func newEndpoint(service string, opts Options) *endpoint {
	opts = opts.withDefaults()
	logger := opts.Logger.With("upstream", service)

	metrics.CircuitBreakerState.WithLabelValues(service).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        service,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || callerGone(err)
		},
	})

	return &endpoint{
		service: service,
		client:  opts.HTTPClient,
		timeout: opts.Timeout,
		breaker: cb,
		logger:  logger,
	}
}

// getJSON fetches rawURL and decodes the body into dst. Errors wrap either
// ErrNotFound (HTTP 404) or ErrUnavailable.
func (e *endpoint) getJSON(ctx context.Context, rawURL string, dst any) error {
	start := time.Now()
	body, err := e.get(ctx, rawURL)
	if err == nil {
		if jerr := json.Unmarshal(body, dst); jerr != nil {
			err = fmt.Errorf("%w: %s: decode body: %v", ErrUnavailable, e.service, jerr)
		}
	}

	status := Success
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		status = NotFound
	default:
		status = Unavailable
	}
	metrics.RecordUpstream(e.service, status.String(), time.Since(start))
	if status == Unavailable {
		e.logger.Warn("upstream call failed", "error", err)
	}
	return err
}

// callerGone reports whether err is the caller's own cancellation or
// deadline. Those are not failures of the upstream.
func callerGone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// callerErr wraps the caller's context error with %w so the breaker can tell
// it apart from the per-call timeout, which is only wrapped with %v.
func (e *endpoint) callerErr(ctx context.Context) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, e.service, ctx.Err())
}

func (e *endpoint) get(callerCtx context.Context, rawURL string) ([]byte, error) {
	if callerCtx.Err() != nil {
		return nil, e.callerErr(callerCtx)
	}
	body, err := e.breaker.Execute(func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(callerCtx, e.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: build request: %v", ErrUnavailable, e.service, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			if callerCtx.Err() != nil {
				return nil, e.callerErr(callerCtx)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, e.service, err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				e.logger.Debug("close response body", "error", err)
			}
		}()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s: %s", ErrNotFound, e.service, req.URL.Path)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrUnavailable, e.service, resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			if callerCtx.Err() != nil {
				return nil, e.callerErr(callerCtx)
			}
			return nil, fmt.Errorf("%w: %s: read body: %v", ErrUnavailable, e.service, err)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, e.service, err)
	}
	return body, err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
