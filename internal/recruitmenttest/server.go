// Package recruitmenttest runs an in-memory fake of the recruitment and
// auth HTTP services for tests.
package recruitmenttest

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prappser/recruitment_client/internal/api"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const (
	BaseURL             = "http://recruitment.test"
	RecruiterSecretCode = "recruit-2026"
)

type RecordedRequest struct {
	Method        string
	Path          string
	Body          []byte
	Authorization string
}

type injectedFailure struct {
	statusCode int
	body       string
}

type Server struct {
	store  *Store
	secret []byte
	ln     *fasthttputil.InmemoryListener
	srv    *fasthttp.Server

	mu       sync.Mutex
	failures []injectedFailure
	requests []RecordedRequest
	// beforeHandle runs for every request before routing.
	beforeHandle func(path string)
}

// NewServer starts a fake API that is stopped when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		store:  NewStore(),
		secret: []byte("recruitmenttest-signing-key"),
		ln:     fasthttputil.NewInmemoryListener(),
	}
	s.srv = &fasthttp.Server{
		Handler: s.handle,
		Name:    "recruitmenttest",
	}

	go func() {
		_ = s.srv.Serve(s.ln)
	}()
	t.Cleanup(func() {
		_ = s.ln.Close()
	})
	return s
}

func (s *Server) Store() *Store {
	return s.store
}

// APIConfig points an api.Client at this server.
func (s *Server) APIConfig() api.Config {
	return api.Config{
		BaseURL:         BaseURL,
		RequestTimeout:  5 * time.Second,
		MaxConnsPerHost: 4,
		Dial: func(addr string) (net.Conn, error) {
			return s.ln.Dial()
		},
	}
}

// FailNext makes the next request fail with statusCode and body,
// regardless of path. Calls queue up.
func (s *Server) FailNext(statusCode int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, injectedFailure{statusCode: statusCode, body: body})
}

// BeforeHandle installs a hook that runs ahead of every request.
func (s *Server) BeforeHandle(hook func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeHandle = hook
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// CreateUser registers a user directly in the store and returns a token
// for it.
func (s *Server) CreateUser(username string, role int) (*User, string) {
	user, err := s.store.CreateUser(User{
		Username: username,
		Password: "secret-" + username,
		Email:    username + "@example.com",
		Pnr:      "19900101-1234",
		Role:     role,
	})
	if err != nil {
		panic(err)
	}
	return user, s.IssueToken(user)
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        string(ctx.Method()),
		Path:          string(ctx.Path()),
		Body:          append([]byte(nil), ctx.PostBody()...),
		Authorization: string(ctx.Request.Header.Peek(headerAuthorization)),
	})
	hook := s.beforeHandle
	var failure *injectedFailure
	if len(s.failures) > 0 {
		failure = &s.failures[0]
		s.failures = s.failures[1:]
	}
	s.mu.Unlock()

	if hook != nil {
		hook(string(ctx.Path()))
	}
	if failure != nil {
		ctx.SetStatusCode(failure.statusCode)
		ctx.SetBodyString(failure.body)
		return
	}

	s.route(ctx)
}
