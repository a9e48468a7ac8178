package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 8 * time.Second
	tracerName     = "finitefield.org/bangalore-local/internal/catalog"
)

// Client issues fetch-style JSON calls against the directory backend.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTracer overrides the tracer used for backend spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// NewClient constructs a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories fetches GET /api/categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "categories", "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Locations fetches GET /api/locations.
func (c *Client) Locations(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "locations", "/api/locations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Businesses fetches GET /api/businesses with the non-empty fields of q.
func (c *Client) Businesses(ctx context.Context, q Query) ([]Business, error) {
	var out []Business
	if err := c.getJSON(ctx, "businesses", "/api/businesses", q.Values(), &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = out[i].Sanitized()
	}
	return out, nil
}

// SubmitContact posts the form-encoded fields to /submit-contact.
func (c *Client) SubmitContact(ctx context.Context, form url.Values) (ContactReply, error) {
	const op = "submit-contact"
	ctx, span := c.startSpan(ctx, op, http.MethodPost, "/submit-contact")
	defer span.End()

	endpoint := c.baseURL + "/submit-contact"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return ContactReply{}, recordErr(span, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var reply ContactReply
	if err := c.do(req, op, span, &reply); err != nil {
		return ContactReply{}, err
	}
	return reply, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	ctx, span := c.startSpan(ctx, op, http.MethodGet, path)
	defer span.End()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return recordErr(span, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, op, span, out)
}

func (c *Client) do(req *http.Request, op string, span trace.Span, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return recordErr(span, &NetworkError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return recordErr(span, &HTTPError{Op: op, Status: resp.StatusCode, Body: drainError(resp.Body)})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return recordErr(span, fmt.Errorf("catalog: decode %s: %w", op, err))
	}
	return nil
}

func (c *Client) startSpan(ctx context.Context, op, method, path string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "catalog."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
