package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prappser/recruitment_client/internal/api"
	"github.com/prappser/recruitment_client/internal/auth"
	"github.com/prappser/recruitment_client/internal/recruitmenttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, username string, role int) string {
	t.Helper()
	claims := tokenClaims{
		Role: role,
		ID:   7,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Unix(1900000000, 0)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return token
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, subscriber *Subscriber) AuthEvent {
	t.Helper()
	select {
	case event := <-subscriber.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no auth event received")
		return AuthEvent{}
	}
}

func TestProfileFromToken_ShouldDecodeClaimsWithoutVerification(t *testing.T) {
	// given
	token := signToken(t, "grace", RoleRecruiter)

	// when
	profile, err := ProfileFromToken(token)

	// then
	require.NoError(t, err)
	assert.Equal(t, "grace", profile.Username)
	assert.Equal(t, RoleRecruiter, profile.RoleID)
	assert.EqualValues(t, 7, profile.UserID)
	assert.True(t, profile.IsRecruiter())
	assert.False(t, profile.IsApplicant())
	assert.Equal(t, "recruiter", profile.RoleName())
	assert.Equal(t, int64(1900000000), profile.ExpiresAt.Unix())
}

func TestProfileFromToken_ShouldRejectGarbage(t *testing.T) {
	// when
	profile, err := ProfileFromToken("not-a-token")

	// then
	assert.Error(t, err)
	assert.Nil(t, profile)
}

func TestFileStore_ShouldPersistAndClearToken(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileStore(path)

	// when
	empty, errEmpty := store.Token()
	require.NoError(t, store.SetToken("abc"))
	stored, errStored := NewFileStore(path).Token()
	info, errStat := os.Stat(path)
	require.NoError(t, store.Clear())
	cleared, errCleared := store.Token()

	// then
	assert.NoError(t, errEmpty)
	assert.Empty(t, empty)
	assert.NoError(t, errStored)
	assert.Equal(t, "abc", stored)
	require.NoError(t, errStat)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.NoError(t, errCleared)
	assert.Empty(t, cleared)
	assert.NoError(t, store.Clear())
}

func TestHub_ShouldDeliverEventsToAllSubscribers(t *testing.T) {
	// given
	hub := runHub(t)
	first := hub.Subscribe()
	second := hub.Subscribe()

	// when
	hub.Publish(AuthEvent{Type: EventLogout})

	// then
	assert.Equal(t, EventLogout, receive(t, first).Type)
	event := receive(t, second)
	assert.Equal(t, EventLogout, event.Type)
	assert.False(t, event.At.IsZero())
}

func TestHub_Unsubscribe_ShouldCloseEvents(t *testing.T) {
	// given
	hub := runHub(t)
	subscriber := hub.Subscribe()

	// when
	hub.Unsubscribe(subscriber)

	// then
	_, open := <-subscriber.Events()
	assert.False(t, open)
}

func TestManager_Login_ShouldStoreTokenAndAnnounceLogin(t *testing.T) {
	// given
	server := recruitmenttest.NewServer(t)
	server.CreateUser("grace", recruitmenttest.RoleRecruiter)
	hub := runHub(t)
	subscriber := hub.Subscribe()
	store := NewMemoryStore()
	manager := NewManager(auth.NewClient(api.NewClient(server.APIConfig(), store)), store, hub)

	// when
	profile, err := manager.Login(context.Background(), "grace", "secret-grace")

	// then
	require.NoError(t, err)
	assert.Equal(t, "grace", profile.Username)
	assert.True(t, manager.IsRecruiter())
	token, _ := store.Token()
	assert.NotEmpty(t, token)

	event := receive(t, subscriber)
	assert.Equal(t, EventLogin, event.Type)
	assert.Equal(t, "grace", event.User.Username)
}

func TestManager_Login_ShouldKeepStoreEmptyOnFailure(t *testing.T) {
	// given
	server := recruitmenttest.NewServer(t)
	store := NewMemoryStore()
	manager := NewManager(auth.NewClient(api.NewClient(server.APIConfig(), store)), store, nil)

	// when
	_, err := manager.Login(context.Background(), "nobody", "secret")

	// then
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Nil(t, manager.CurrentUser())
}

func TestManager_Logout_ShouldClearTokenAndAnnounceLogout(t *testing.T) {
	// given
	hub := runHub(t)
	subscriber := hub.Subscribe()
	store := NewMemoryStore()
	require.NoError(t, store.SetToken(signToken(t, "ada", RoleApplicant)))
	manager := NewManager(nil, store, hub)
	require.Equal(t, "ada", manager.CurrentUser().Username)

	// when
	err := manager.Logout()

	// then
	require.NoError(t, err)
	assert.Nil(t, manager.CurrentUser())
	event := receive(t, subscriber)
	assert.Equal(t, EventLogout, event.Type)
	assert.Nil(t, event.User)
}

func TestWatcher_ShouldAnnounceTokenWrittenByAnotherProcess(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path)
	hub := runHub(t)
	subscriber := hub.Subscribe()
	watcher, err := NewWatcher(store, hub)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	// when
	require.NoError(t, NewFileStore(path).SetToken(signToken(t, "ada", RoleApplicant)))

	// then
	event := receive(t, subscriber)
	assert.Equal(t, EventExternal, event.Type)
	require.NotNil(t, event.User)
	assert.Equal(t, "ada", event.User.Username)
}
