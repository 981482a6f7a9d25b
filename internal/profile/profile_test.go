package profile

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prappser/recruitment_client/internal/api"
	"github.com/prappser/recruitment_client/internal/recruitmenttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestClient(t *testing.T) (*Client, *recruitmenttest.Server) {
	t.Helper()
	server := recruitmenttest.NewServer(t)
	_, token := server.CreateUser("ada", recruitmenttest.RoleApplicant)
	return NewClient(api.NewClient(server.APIConfig(), api.StaticToken(token))), server
}

func TestClient_UpdateProfile_ShouldSendOnlySetFields(t *testing.T) {
	// given
	client, server := newTestClient(t)

	// when
	err := client.UpdateProfile(context.Background(), UpdateRequest{Email: "new@example.com"})

	// then
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(server.Requests()[0].Body, &body))
	assert.Equal(t, map[string]any{"email": "new@example.com"}, body)
}

func TestClient_UpdateProfile_ShouldRejectEmptyRequest(t *testing.T) {
	// given
	client, server := newTestClient(t)

	// when
	err := client.UpdateProfile(context.Background(), UpdateRequest{})

	// then
	assert.ErrorIs(t, err, ErrNothingToUpdate)
	assert.Empty(t, server.Requests())
}

func TestClient_UpdateProfile_ShouldExposeServerText(t *testing.T) {
	// given
	client, server := newTestClient(t)
	server.FailNext(fasthttp.StatusConflict, "Email already in use")

	// when
	err := client.UpdateProfile(context.Background(), UpdateRequest{Email: "taken@example.com"})

	// then
	assert.EqualError(t, err, "Email already in use")
}

func TestClient_UpdateProfile_ShouldFallBackToDefaultMessage(t *testing.T) {
	// given
	client, server := newTestClient(t)
	server.FailNext(fasthttp.StatusInternalServerError, "")

	// when
	err := client.UpdateProfile(context.Background(), UpdateRequest{Pnr: "19901212-1234"})

	// then
	assert.EqualError(t, err, "Profile update failed")
}
