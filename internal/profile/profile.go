package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/prappser/recruitment_client/internal/api"
	"github.com/valyala/fasthttp"
)

const defaultUpdateMessage = "Profile update failed"

var ErrNothingToUpdate = errors.New("nothing to update")

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Pnr   string `json:"pnr,omitempty" validate:"omitempty,pnr"`
}

type Doer interface {
	Do(ctx context.Context, r api.Request) (*api.Response, error)
}

type Client struct {
	doer Doer
}

func NewClient(doer Doer) *Client {
	return &Client{doer: doer}
}

func (c *Client) UpdateProfile(ctx context.Context, req UpdateRequest) error {
	if req.Email == "" && req.Pnr == "" {
		return ErrNothingToUpdate
	}

	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "update_profile",
		Method:    fasthttp.MethodPut,
		Path:      api.RecruitmentPrefix + "/profile",
		Body:      req,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", defaultUpdateMessage, err)
	}
	if !resp.OK() {
		return errors.New(resp.TextOr(defaultUpdateMessage))
	}
	return nil
}
