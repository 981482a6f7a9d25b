package recruitmenttest

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const (
	headerAuthorization = "Authorization"
	headerBearer        = "Bearer"
	userValueKey        = "user"
)

type Claims struct {
	Role int   `json:"role"`
	ID   int64 `json:"id"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for user the way the real auth service does:
// sub is the username, role and id are custom claims.
func (s *Server) IssueToken(user *User) string {
	now := time.Now()
	claims := Claims{
		Role: user.Role,
		ID:   user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("failed to sign test token: %v", err))
	}
	return token
}

func (s *Server) validateToken(tokenString string) (*User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	user, err := s.store.userByUsername(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("unknown user %q: %w", claims.Subject, err)
	}
	return user, nil
}

func (s *Server) requireAuth(handler fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		parts := strings.Split(string(ctx.Request.Header.Peek(headerAuthorization)), " ")
		if len(parts) != 2 || parts[0] != headerBearer {
			ctx.Error("Unauthorized", fasthttp.StatusUnauthorized)
			return
		}

		user, err := s.validateToken(parts[1])
		if err != nil {
			log.Debug().Err(err).Msg("Authentication failed")
			ctx.Error("Unauthorized", fasthttp.StatusUnauthorized)
			return
		}

		ctx.SetUserValue(userValueKey, user)
		handler(ctx)
	}
}

// requireRole answers deniedStatus when the caller has another role.
func (s *Server) requireRole(role int, deniedStatus int, handler fasthttp.RequestHandler) fasthttp.RequestHandler {
	return s.requireAuth(func(ctx *fasthttp.RequestCtx) {
		if currentUser(ctx).Role != role {
			ctx.Error(fasthttp.StatusMessage(deniedStatus), deniedStatus)
			return
		}
		handler(ctx)
	})
}

func currentUser(ctx *fasthttp.RequestCtx) *User {
	user, _ := ctx.UserValue(userValueKey).(*User)
	return user
}
