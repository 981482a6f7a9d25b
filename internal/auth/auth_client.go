package auth

import (
	"context"
	"net/http"

	"github.com/prappser/recruitment_client/internal/api"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

type Doer interface {
	Do(ctx context.Context, r api.Request) (*api.Response, error)
}

type Client struct {
	doer Doer
}

func NewClient(doer Doer) *Client {
	return &Client{doer: doer}
}

// Register creates an applicant account and returns the server's
// confirmation text.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	resp, err := c.post(ctx, "register", api.AuthPrefix+"/register", req)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		if resp.StatusCode == http.StatusConflict {
			return "", &Error{Code: CodeUsernameTaken, StatusCode: resp.StatusCode}
		}
		return "", &Error{Code: CodeRegistrationFailed, StatusCode: resp.StatusCode}
	}
	return resp.Text(), nil
}

// RegisterRecruiter creates a recruiter account guarded by a secret code.
func (c *Client) RegisterRecruiter(ctx context.Context, req RecruiterRegisterRequest) (string, error) {
	resp, err := c.post(ctx, "register_recruiter", api.AuthPrefix+"/register/recruiter", req)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		switch resp.StatusCode {
		case http.StatusForbidden:
			return "", &Error{Code: CodeInvalidSecretCode, StatusCode: resp.StatusCode}
		case http.StatusConflict:
			return "", &Error{Code: CodeUsernameTaken, StatusCode: resp.StatusCode}
		}
		return "", &Error{Code: CodeRegistrationFailed, StatusCode: resp.StatusCode}
	}
	return resp.Text(), nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := c.post(ctx, "login", api.AuthPrefix+"/login", req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &Error{Code: CodeInvalidCredentials, StatusCode: resp.StatusCode}
		}
		return nil, &Error{Code: CodeLoginFailed, StatusCode: resp.StatusCode}
	}

	var loginResp LoginResponse
	if err := resp.Decode(&loginResp); err != nil || loginResp.Token == "" {
		log.Error().Err(err).Msg("Login response carried no token")
		return nil, &Error{Code: CodeLoginFailed, StatusCode: resp.StatusCode, Err: err}
	}
	return &loginResp, nil
}

// RequestOldUserReset asks for password reset instructions for an account
// migrated from the old system. The answer never reveals whether email is
// known.
func (c *Client) RequestOldUserReset(ctx context.Context, email string) (string, error) {
	resp, err := c.post(ctx, "old_user_reset", api.RecruitmentPrefix+"/migrated-user", oldUserResetRequest{Email: email})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return OldUserResetMessage, nil
	}
	return resp.TextOr(OldUserResetMessage), nil
}

func (c *Client) post(ctx context.Context, operation, path string, body any) (*api.Response, error) {
	resp, err := c.doer.Do(ctx, api.Request{
		Operation: operation,
		Method:    fasthttp.MethodPost,
		Path:      path,
		Body:      body,
		Public:    true,
	})
	if err != nil {
		return nil, &Error{Code: CodeServerError, Err: err}
	}
	return resp, nil
}
