package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleRecruiter = 1
	RoleApplicant = 2
)

// UserProfile is what the client shows about the signed-in user. It is
// read from the token without verifying the signature, so it must never be
// used for authorization decisions; the API does those.
type UserProfile struct {
	Username  string    `json:"username"`
	RoleID    int       `json:"roleId"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (p *UserProfile) IsRecruiter() bool {
	return p != nil && p.RoleID == RoleRecruiter
}

func (p *UserProfile) IsApplicant() bool {
	return p != nil && p.RoleID == RoleApplicant
}

func (p *UserProfile) RoleName() string {
	switch p.RoleID {
	case RoleRecruiter:
		return "recruiter"
	case RoleApplicant:
		return "applicant"
	}
	return "unknown"
}

type tokenClaims struct {
	Role int   `json:"role"`
	ID   int64 `json:"id"`
	jwt.RegisteredClaims
}

// ProfileFromToken decodes the claims of token without verification.
func ProfileFromToken(token string) (*UserProfile, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	profile := &UserProfile{
		Username: claims.Subject,
		RoleID:   claims.Role,
		UserID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		profile.ExpiresAt = claims.ExpiresAt.Time
	}
	return profile, nil
}
