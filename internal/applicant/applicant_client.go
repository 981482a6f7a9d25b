package applicant

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prappser/recruitment_client/internal/api"
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

func (c *Client) Competences(ctx context.Context) ([]Competence, error) {
	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "list_competences",
		Method:    fasthttp.MethodGet,
		Path:      api.RecruitmentPrefix + "/competences",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch competences: %w", err)
	}
	if !resp.OK() {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: "Failed to fetch competences: " + resp.StatusLine()}
	}

	var competences []Competence
	if err := resp.Decode(&competences); err != nil {
		return nil, err
	}
	return competences, nil
}

// Submit sends a first application.
func (c *Client) Submit(ctx context.Context, form ApplicationForm) error {
	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "submit_application",
		Method:    fasthttp.MethodPost,
		Path:      api.RecruitmentPrefix + "/applications",
		Body:      form,
	})
	if err != nil {
		return fmt.Errorf("failed to submit application: %w", err)
	}
	if !resp.OK() {
		return &RequestError{StatusCode: resp.StatusCode, Message: resp.TextOr("Failed to submit application")}
	}
	return nil
}

// MyApplication returns ErrApplicationNotFound when the applicant has not
// applied yet.
func (c *Client) MyApplication(ctx context.Context) (*Application, error) {
	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "get_my_application",
		Method:    fasthttp.MethodGet,
		Path:      api.RecruitmentPrefix + "/applications/me",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrApplicationNotFound
	}
	if !resp.OK() {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: resp.TextOr("Failed to load application")}
	}

	var application Application
	if err := resp.Decode(&application); err != nil {
		return nil, err
	}
	return &application, nil
}

// UpdateMyApplication replaces the stored application with form.
func (c *Client) UpdateMyApplication(ctx context.Context, form ApplicationForm) error {
	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "update_my_application",
		Method:    fasthttp.MethodPut,
		Path:      api.RecruitmentPrefix + "/applications/me",
		Body:      form,
	})
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if !resp.OK() {
		return &RequestError{StatusCode: resp.StatusCode, Message: resp.TextOr("Failed to update application")}
	}
	return nil
}
