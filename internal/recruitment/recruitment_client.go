package recruitment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prappser/recruitment_client/internal/api"
	"github.com/prappser/recruitment_client/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// Doer sends API requests. *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, r api.Request) (*api.Response, error)
}

// Fetcher loads a single application with its current version.
type Fetcher interface {
	GetApplication(ctx context.Context, personID int64) (*ApplicationDetail, error)
}

// Updater performs a conditional status change.
type Updater interface {
	UpdateStatus(ctx context.Context, personID int64, status Status, version int64) error
}

// Lister loads application summaries.
type Lister interface {
	ListApplications(ctx context.Context) ([]ApplicationSummary, error)
}

type Client struct {
	doer Doer
}

func NewClient(doer Doer) *Client {
	return &Client{doer: doer}
}

func (c *Client) ListApplications(ctx context.Context) ([]ApplicationSummary, error) {
	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "list_applications",
		Method:    fasthttp.MethodGet,
		Path:      api.RecruitmentPrefix + "/applications",
	})
	if err != nil {
		return nil, transportError("Failed to fetch applications", err)
	}
	if !resp.OK() {
		return nil, &APIError{
			Code:       CodeTransport,
			Message:    "Failed to fetch applications: " + resp.StatusLine(),
			StatusCode: resp.StatusCode,
		}
	}

	var summaries []ApplicationSummary
	if err := resp.Decode(&summaries); err != nil {
		return nil, transportError("Failed to fetch applications", err)
	}
	return summaries, nil
}

// GetApplication fetches one application. A 404 is reported as
// ErrNotFoundOrUnauthorized since the API hides records the caller may not
// see; every other failure is ErrTransport.
func (c *Client) GetApplication(ctx context.Context, personID int64) (*ApplicationDetail, error) {
	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "get_application",
		Method:    fasthttp.MethodGet,
		Path:      applicationPath(personID),
	})
	if err != nil {
		return nil, transportError("Failed to fetch application", err)
	}
	if !resp.OK() {
		code := CodeTransport
		if resp.StatusCode == http.StatusNotFound {
			code = CodeNotFoundOrUnauthorized
		}
		return nil, &APIError{
			Code:       code,
			Message:    "Failed to fetch application: " + resp.StatusLine(),
			StatusCode: resp.StatusCode,
		}
	}

	var detail ApplicationDetail
	if err := resp.Decode(&detail); err != nil {
		return nil, transportError("Failed to fetch application", err)
	}
	return &detail, nil
}

// UpdateStatus sends the status change conditioned on version. It never
// returns a record: on success the caller's copy is at version+1.
func (c *Client) UpdateStatus(ctx context.Context, personID int64, status Status, version int64) error {
	if !status.Valid() {
		return &APIError{Code: CodeUpdateRejected, Message: fmt.Sprintf("Invalid status %q", status)}
	}

	resp, err := c.doer.Do(ctx, api.Request{
		Operation: "update_status",
		Method:    fasthttp.MethodPut,
		Path:      applicationPath(personID) + "/status",
		Body:      statusUpdateRequest{Status: status, Version: version},
	})
	if err != nil {
		return transportError(defaultUpdateStatusMessage, err)
	}

	switch {
	case resp.OK():
		metrics.StatusUpdates.WithLabelValues(metrics.OutcomeSuccess).Inc()
		return nil
	case resp.StatusCode == http.StatusConflict:
		metrics.StatusUpdates.WithLabelValues(metrics.OutcomeConflict).Inc()
		log.Info().
			Int64("personId", personID).
			Int64("version", version).
			Msg("Status update rejected by version check")
		return &APIError{
			Code:       CodeVersionConflict,
			Message:    resp.TextOr(versionConflictMessage),
			StatusCode: resp.StatusCode,
		}
	default:
		metrics.StatusUpdates.WithLabelValues(metrics.OutcomeRejected).Inc()
		return &APIError{
			Code:       CodeUpdateRejected,
			Message:    resp.TextOr(defaultUpdateStatusMessage),
			StatusCode: resp.StatusCode,
		}
	}
}

func applicationPath(personID int64) string {
	return fmt.Sprintf("%s/applications/%d", api.RecruitmentPrefix, personID)
}

func transportError(message string, err error) *APIError {
	return &APIError{Code: CodeTransport, Message: message + ": " + err.Error(), Err: err}
}
