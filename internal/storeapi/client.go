// Package storeapi is the HTTP client for the remote storefront API.
//
// The client is the only component that talks to the network. Every call
// takes a context, attaches the bearer token from the injected TokenSource
// where the endpoint requires it, and maps non-2xx responses to *StatusError.
package storeapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/session"
)

// DefaultBaseURL is the production storefront API.
const DefaultBaseURL = "https://e-comapi-production.up.railway.app"

const instrumentationName = "github.com/xenking/kart-storefront/internal/storeapi"

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 512

// TokenSource provides the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Message)
}

// Is matches session.ErrUnauthorized for 401 and 403 answers.
func (e *StatusError) Is(target error) bool {
	return target == session.ErrUnauthorized &&
		(e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var sErr *StatusError
	return errors.As(err, &sErr) && sErr.Code == code
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	// Timeout bounds each request. Zero leaves it to the transport.
	Timeout time.Duration
	// Transport is the base round tripper, http.DefaultTransport if nil.
	Transport      http.RoundTripper
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Client calls the storefront API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	tracer  trace.Tracer

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a Client for baseURL. The URL is fixed for the lifetime of
// the client.
func New(baseURL string, tokens TokenSource, opts Options) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = otel.GetMeterProvider()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	meter := opts.MeterProvider.Meter(instrumentationName)
	requests, err := meter.Int64Counter("storeapi.requests",
		metric.WithDescription("Storefront API requests by operation and status"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create requests counter")
	}
	duration, err := meter.Float64Histogram("storeapi.request.duration",
		metric.WithDescription("Storefront API request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: otelhttp.NewTransport(base,
				otelhttp.WithTracerProvider(opts.TracerProvider),
				otelhttp.WithMeterProvider(opts.MeterProvider),
			),
		},
		tokens:   tokens,
		tracer:   opts.TracerProvider.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}, nil
}

// Carts returns the cart service view of the client.
func (c *Client) Carts() *Carts { return &Carts{c: c} }

// Products returns the catalog service view of the client.
func (c *Client) Products() *Products { return &Products{c: c} }

// Auth returns the authentication service view of the client.
func (c *Client) Auth() *Auth { return &Auth{c: c} }

// call describes a single API request.
type call struct {
	op     string
	method string
	path   string
	// token is attached as a bearer credential when non-empty.
	token string
	body  []byte
	// decode reads the response body. Nil discards it.
	decode func(d *jx.Decoder) error
}

func (c *Client) bearer() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) do(ctx context.Context, rc call) (rerr error) {
	ctx, span := c.tracer.Start(ctx, "storeapi."+rc.op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status := 0
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("op", rc.op),
			attribute.Int("status", status),
		)
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, time.Since(start).Seconds(), attrs)

		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
			zctx.From(ctx).Debug("Store API call failed",
				zap.String("op", rc.op),
				zap.Int("status", status),
				zap.Error(rerr),
			)
		}
	}()

	var body io.Reader
	if rc.body != nil {
		body = bytes.NewReader(rc.body)
	}
	req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+rc.path, body)
	if err != nil {
		return errors.Wrapf(err, "%s: create request", rc.op)
	}
	req.Header.Set("Accept", "application/json")
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rc.token != "" {
		req.Header.Set("Authorization", "Bearer "+rc.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s: send request", rc.op)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s: read response", rc.op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Op:      rc.op,
			Code:    resp.StatusCode,
			Message: errorMessage(data),
		}
	}

	if rc.decode == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := rc.decode(jx.DecodeBytes(data)); err != nil {
		return errors.Wrapf(err, "%s: decode response", rc.op)
	}
	return nil
}
