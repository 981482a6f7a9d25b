package api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type capturedRequest struct {
	method        string
	path          string
	authorization string
	requestID     string
	body          []byte
}

func startServer(t *testing.T, handler fasthttp.RequestHandler) (Config, chan capturedRequest) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	captured := make(chan capturedRequest, 8)

	server := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		captured <- capturedRequest{
			method:        string(ctx.Method()),
			path:          string(ctx.Path()),
			authorization: string(ctx.Request.Header.Peek(headerAuthorization)),
			requestID:     string(ctx.Request.Header.Peek(headerRequestID)),
			body:          append([]byte(nil), ctx.PostBody()...),
		}
		handler(ctx)
	}}
	go func() {
		_ = server.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
	})

	return Config{
		BaseURL:        "http://api.test/",
		RequestTimeout: 2 * time.Second,
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}, captured
}

type failingTokens struct{}

func (failingTokens) Token() (string, error) {
	return "", errors.New("token store unavailable")
}

func TestClient_Do_ShouldAttachBearerTokenAndRequestID(t *testing.T) {
	// given
	config, captured := startServer(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString(`{"ok":true}`)
	})
	client := NewClient(config, StaticToken("abc.def.ghi"))

	// when
	resp, err := client.Do(context.Background(), Request{
		Operation: "test",
		Method:    fasthttp.MethodPut,
		Path:      RecruitmentPrefix + "/applications/7/status",
		Body:      map[string]any{"status": "ACCEPTED", "version": 3},
	})

	// then
	require.NoError(t, err)
	assert.True(t, resp.OK())

	var decoded struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.Decode(&decoded))
	assert.True(t, decoded.OK)

	req := <-captured
	assert.Equal(t, fasthttp.MethodPut, req.method)
	assert.Equal(t, "/api/recruitment/applications/7/status", req.path)
	assert.Equal(t, "Bearer abc.def.ghi", req.authorization)
	assert.NotEmpty(t, req.requestID)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.body, &body))
	assert.Equal(t, "ACCEPTED", body["status"])
	assert.EqualValues(t, 3, body["version"])
}

func TestClient_Do_ShouldNotSendTokenOnPublicRequests(t *testing.T) {
	// given
	config, captured := startServer(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusCreated)
	})
	client := NewClient(config, StaticToken("abc"))

	// when
	_, err := client.Do(context.Background(), Request{
		Operation: "register",
		Method:    fasthttp.MethodPost,
		Path:      AuthPrefix + "/register",
		Public:    true,
	})

	// then
	require.NoError(t, err)
	assert.Empty(t, (<-captured).authorization)
}

func TestClient_Do_ShouldReturnResponseForErrorStatus(t *testing.T) {
	// given
	config, _ := startServer(t, func(ctx *fasthttp.RequestCtx) {
		ctx.Error("  version mismatch \n", fasthttp.StatusConflict)
	})
	client := NewClient(config, nil)

	// when
	resp, err := client.Do(context.Background(), Request{Operation: "test", Method: fasthttp.MethodGet, Path: "/x"})

	// then
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, fasthttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, "version mismatch", resp.Text())
	assert.Equal(t, "409 Conflict", resp.StatusLine())
}

func TestResponse_TextOr_ShouldFallBackOnEmptyBody(t *testing.T) {
	// given
	resp := &Response{StatusCode: fasthttp.StatusBadRequest, Body: []byte("   ")}

	// when
	text := resp.TextOr("Failed to update application status")

	// then
	assert.Equal(t, "Failed to update application status", text)
}

func TestClient_Do_ShouldWrapTransportErrorWhenServerIsGone(t *testing.T) {
	// given
	ln := fasthttputil.NewInmemoryListener()
	require.NoError(t, ln.Close())
	client := NewClient(Config{
		BaseURL:        "http://api.test",
		RequestTimeout: time.Second,
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}, nil)

	// when
	resp, err := client.Do(context.Background(), Request{Operation: "test", Method: fasthttp.MethodGet, Path: "/x"})

	// then
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_Do_ShouldFailFastOnCancelledContext(t *testing.T) {
	// given
	config, captured := startServer(t, func(ctx *fasthttp.RequestCtx) {})
	client := NewClient(config, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	_, err := client.Do(ctx, Request{Operation: "test", Method: fasthttp.MethodGet, Path: "/x"})

	// then
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, captured, 0)
}

func TestClient_Do_ShouldFailWhenTokenSourceFails(t *testing.T) {
	// given
	config, _ := startServer(t, func(ctx *fasthttp.RequestCtx) {})
	client := NewClient(config, failingTokens{})

	// when
	_, err := client.Do(context.Background(), Request{Operation: "test", Method: fasthttp.MethodGet, Path: "/x"})

	// then
	assert.ErrorContains(t, err, "token store unavailable")
}
