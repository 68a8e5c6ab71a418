// Package catalog is a client for the remote product catalog REST service.
//
// Every call is a single attempt: there are no retries and no client-side
// timeout. Calls are bounded only by the context they are given.
package catalog

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/catalog-admin/internal/domain/product"
)

// maxBody caps how much of a response body is read, including error bodies
// kept for diagnostics.
const maxBody = 4 << 20

// Options configures a Client.
type Options struct {
	// Transport is the underlying round tripper. Defaults to
	// http.DefaultTransport. It is always wrapped with otelhttp.
	Transport      http.RoundTripper
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Client talks to the catalog service rooted at a base URL. The product
// collection lives at <base>/products.
type Client struct {
	base     *url.URL
	http     *http.Client
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewClient creates a Client for the catalog service at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse catalog url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("catalog url %q must be absolute", baseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	var otelOpts []otelhttp.Option
	otelOpts = append(otelOpts, otelhttp.WithMeterProvider(mp))
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}

	meter := mp.Meter("github.com/xenking/catalog-admin/internal/catalog")
	requests, err := meter.Int64Counter("catalog.requests",
		metric.WithDescription("Catalog service calls by operation and outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create requests counter")
	}
	duration, err := meter.Float64Histogram("catalog.request.duration",
		metric.WithDescription("Catalog service call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}

	return &Client{
		base:     u,
		http:     &http.Client{Transport: otelhttp.NewTransport(transport, otelOpts...)},
		requests: requests,
		duration: duration,
	}, nil
}

// List returns every product in the catalog in the order the service
// returns them.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	status, body, err := c.do(ctx, "list", http.MethodGet, c.collection(nil), nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if status != http.StatusOK {
		return nil, &FetchError{Status: status, Body: string(body)}
	}
	products, err := decodeProducts(body)
	if err != nil {
		return nil, &FetchError{Status: status, Body: string(body), Err: err}
	}
	return products, nil
}

// Ping checks that the catalog answers a minimal list request.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{"page": {"1"}, "limit": {"1"}}
	status, body, err := c.do(ctx, "ping", http.MethodGet, c.collection(q), nil)
	if err != nil {
		return &FetchError{Err: err}
	}
	if status != http.StatusOK {
		return &FetchError{Status: status, Body: string(body)}
	}
	return nil
}

// Create stores a new product and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, draft product.Draft) (product.Product, error) {
	return c.mutate(ctx, OpCreate, http.MethodPost, c.collection(nil), encodeDraft(draft))
}

// Update replaces the product identified by id.
func (c *Client) Update(ctx context.Context, id string, draft product.Draft) (product.Product, error) {
	return c.mutate(ctx, OpUpdate, http.MethodPut, c.item(id), encodeDraft(draft))
}

// Delete removes the product identified by id and returns the confirmation
// payload echoed by the service.
func (c *Client) Delete(ctx context.Context, id string) (product.Product, error) {
	return c.mutate(ctx, OpDelete, http.MethodDelete, c.item(id), nil)
}

func (c *Client) mutate(ctx context.Context, op Op, method, target string, payload []byte) (product.Product, error) {
	status, body, err := c.do(ctx, string(op), method, target, payload)
	if err != nil {
		return product.Product{}, &MutationError{Op: op, Err: err}
	}
	if status < 200 || status > 299 {
		return product.Product{}, &MutationError{Op: op, Status: status, Body: string(body)}
	}
	p, err := decodeProductBytes(body)
	if err != nil {
		return product.Product{}, &MutationError{Op: op, Status: status, Body: string(body), Err: err}
	}
	return p, nil
}

// do performs one request and returns the status and (capped) body.
func (c *Client) do(ctx context.Context, op, method, target string, payload []byte) (status int, body []byte, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		switch {
		case err != nil:
			outcome = "transport_error"
		case status < 200 || status > 299:
			outcome = "http_error"
		}
		attrs := metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("outcome", outcome),
		)
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "%s %s", method, req.URL.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "read response")
	}
	return resp.StatusCode, body, nil
}

func (c *Client) collection(q url.Values) string {
	u := c.base.JoinPath("products")
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) item(id string) string {
	return c.base.JoinPath("products", url.PathEscape(id)).String()
}
