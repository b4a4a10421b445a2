package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dropDatabas3/socialconnect/internal/metrics"
	"github.com/dropDatabas3/socialconnect/internal/observability/tracing"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "socialconnect"

	maxErrorBody = 512
)

// Client is the HTTP client shared by every adapter.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
}

// NewClient builds a Client. A zero timeout uses DefaultTimeout and an empty
// userAgent uses DefaultUserAgent.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	c := &Client{timeout: timeout, userAgent: userAgent}
	c.http = &http.Client{Transport: &uaTransport{ua: userAgent, next: http.DefaultTransport}}
	return c
}

// WithHTTP returns a copy of c sending requests through h. The user agent is
// still applied.
func (c *Client) WithHTTP(h *http.Client) *Client {
	cp := *c
	next := h.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc := *h
	hc.Transport = &uaTransport{ua: c.userAgent, next: next}
	cp.http = &hc
	return &cp
}

// HTTP returns the underlying client, for libraries that take one.
func (c *Client) HTTP() *http.Client { return c.http }

func (c *Client) Timeout() time.Duration { return c.timeout }

// RequestOption customizes an outbound request.
type RequestOption func(*http.Request)

// Bearer sets "Authorization: Bearer <token>".
func Bearer(token string) RequestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func Header(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Params merges v into the request query string.
func Params(v url.Values) RequestOption {
	return func(r *http.Request) {
		q := r.URL.Query()
		for k, vals := range v {
			for _, val := range vals {
				q.Add(k, val)
			}
		}
		r.URL.RawQuery = q.Encode()
	}
}

// GetJSON performs one GET against endpoint and decodes the JSON body into
// out. Any failure is returned as a *ProviderError tagged with provider/op.
func (c *Client) GetJSON(ctx context.Context, provider Name, op, endpoint string, out any, opts ...RequestOption) error {
	return c.Call(ctx, provider, op, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		for _, o := range opts {
			o(req)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return decodeJSON(resp, out)
	})
}

// Call runs fn under the per-call timeout, a tracing span and the latency
// histogram, and wraps its error as a *ProviderError.
func (c *Client) Call(ctx context.Context, provider Name, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracing.Tracer().Start(ctx, "provider."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", string(provider)),
			attribute.String("provider.op", op),
		))
	defer span.End()

	start := time.Now()
	err := Wrap(provider, op, fn(ctx))
	metrics.ObserveProviderRequest(string(provider), op, resultLabel(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func decodeJSON(resp *http.Response, out any) error {
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func resultLabel(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case IsTimeout(err):
		return "timeout"
	case errors.As(err, &se):
		return fmt.Sprintf("status_%d", se.Code)
	default:
		return "error"
	}
}

type uaTransport struct {
	ua   string
	next http.RoundTripper
}

func (t *uaTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", t.ua)
	}
	return t.next.RoundTrip(r)
}
