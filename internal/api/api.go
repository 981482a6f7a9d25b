package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prappser/recruitment_client/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const (
	headerAuthorization = "Authorization"
	headerBearer        = "Bearer"
	headerRequestID     = "X-Request-ID"

	RecruitmentPrefix = "/api/recruitment"
	AuthPrefix        = "/auth"
)

// TokenSource provides the bearer token attached to authenticated requests.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource with a fixed token.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

type Config struct {
	BaseURL         string
	RequestTimeout  time.Duration
	MaxConnsPerHost int
	// Dial overrides the connection dialer, used with in-memory listeners.
	Dial fasthttp.DialFunc
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	tokens  TokenSource
}

type Request struct {
	// Operation names the call for logs and metrics.
	Operation string
	Method    string
	Path      string
	Body      any
	// Public requests are sent without a bearer token.
	Public bool
}

type Response struct {
	StatusCode int
	Body       []byte
}

// ErrTransport marks a request that produced no HTTP response.
var ErrTransport = errors.New("transport error")

func NewClient(config Config, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		timeout: config.RequestTimeout,
		tokens:  tokens,
		http: &fasthttp.Client{
			Name:            "recruitment-client",
			MaxConnsPerHost: config.MaxConnsPerHost,
			Dial:            config.Dial,
			ReadTimeout:     config.RequestTimeout,
			WriteTimeout:    config.RequestTimeout,
		},
	}
}

// Do sends the request and returns the response for any status code. The
// error is non-nil only when no response was received; it wraps
// ErrTransport in that case.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, r.Operation, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	requestID := uuid.NewString()
	req.SetRequestURI(c.baseURL + r.Path)
	req.Header.SetMethod(r.Method)
	req.Header.SetContentType("application/json")
	req.Header.Set(headerRequestID, requestID)

	if !r.Public && c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read auth token: %w", err)
		}
		if token != "" {
			req.Header.Set(headerAuthorization, headerBearer+" "+token)
		}
	}

	if r.Body != nil {
		body, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", r.Operation, err)
		}
		req.SetBodyRaw(body)
	}

	start := time.Now()
	err := c.send(ctx, req, resp)
	elapsed := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(r.Operation).Observe(elapsed.Seconds())

	if err != nil {
		metrics.APIRequests.WithLabelValues(r.Operation, metrics.CodeLabel(0)).Inc()
		log.Error().Err(err).
			Str("operation", r.Operation).
			Str("requestId", requestID).
			Msg("Request failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, r.Operation, err)
	}

	metrics.APIRequests.WithLabelValues(r.Operation, metrics.CodeLabel(resp.StatusCode())).Inc()
	log.Debug().
		Str("operation", r.Operation).
		Str("method", r.Method).
		Str("path", r.Path).
		Str("requestId", requestID).
		Int("status", resp.StatusCode()).
		Dur("elapsed", elapsed).
		Msg("Request completed")

	// resp is released on return
	body := append([]byte(nil), resp.Body()...)
	return &Response{StatusCode: resp.StatusCode(), Body: body}, nil
}

func (c *Client) send(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return c.http.DoDeadline(req, resp, deadline)
	}
	return c.http.DoTimeout(req, resp, c.timeout)
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// Text is the trimmed response body.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Body))
}

// TextOr returns the response text, or fallback when the body is empty.
func (r *Response) TextOr(fallback string) string {
	if text := r.Text(); text != "" {
		return text
	}
	return fallback
}

// StatusLine renders "<code> <reason phrase>", e.g. "404 Not Found".
func (r *Response) StatusLine() string {
	return fmt.Sprintf("%d %s", r.StatusCode, fasthttp.StatusMessage(r.StatusCode))
}
