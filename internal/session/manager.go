package session

import (
	"context"
	"fmt"

	"github.com/prappser/recruitment_client/internal/auth"
	"github.com/rs/zerolog/log"
)

type Authenticator interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
}

// Manager ties login and logout to the token store and announces both on
// the hub.
type Manager struct {
	authenticator Authenticator
	store         TokenStore
	hub           *Hub
}

func NewManager(authenticator Authenticator, store TokenStore, hub *Hub) *Manager {
	return &Manager{
		authenticator: authenticator,
		store:         store,
		hub:           hub,
	}
}

func (m *Manager) Login(ctx context.Context, username, password string) (*UserProfile, error) {
	resp, err := m.authenticator.Login(ctx, auth.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if err := m.store.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	profile, err := ProfileFromToken(resp.Token)
	if err != nil {
		log.Warn().Err(err).Msg("Signed in but token claims are unreadable")
	}
	m.publish(AuthEvent{Type: EventLogin, User: profile})
	return profile, nil
}

func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.publish(AuthEvent{Type: EventLogout})
	return nil
}

// CurrentUser is nil when nobody is signed in or the token is unreadable.
func (m *Manager) CurrentUser() *UserProfile {
	token, err := m.store.Token()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read session token")
		return nil
	}
	if token == "" {
		return nil
	}
	profile, err := ProfileFromToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring unreadable session token")
		return nil
	}
	return profile
}

func (m *Manager) IsRecruiter() bool {
	return m.CurrentUser().IsRecruiter()
}

func (m *Manager) Token() (string, error) {
	return m.store.Token()
}

func (m *Manager) publish(event AuthEvent) {
	if m.hub == nil {
		return
	}
	m.hub.Publish(event)
}
