package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/models"
)

// Claims is the body of an actor's bearer token
type Claims struct {
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`
	Superuser bool     `json:"superuser,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the actor the workflow acts for
func (c *Claims) Actor() *models.Actor {
	roles := make([]models.Role, 0, len(c.Roles))
	for _, r := range c.Roles {
		roles = append(roles, models.ParseRole(r))
	}
	return &models.Actor{
		ID:        c.Subject,
		Name:      c.Name,
		Email:     c.Email,
		Roles:     roles,
		Superuser: c.Superuser,
	}
}

var errNoToken = errors.New("missing bearer token")

// Authenticator verifies HS256 bearer tokens issued for this service
type Authenticator struct {
	secret    []byte
	directory *Directory
}

// NewAuthenticator returns an authenticator for secret. Every verified actor
// with an email is remembered in dir, which may be nil.
func NewAuthenticator(secret string, dir *Directory) *Authenticator {
	return &Authenticator{secret: []byte(secret), directory: dir}
}

// Issue signs a token for actor that expires after ttl
func (a *Authenticator) Issue(actor models.Actor, ttl time.Duration) (string, error) {
	roles := make([]string, 0, len(actor.Roles))
	for _, r := range actor.Roles {
		roles = append(roles, string(r))
	}
	now := time.Now()
	claims := Claims{
		Name:      actor.Name,
		Email:     actor.Email,
		Roles:     roles,
		Superuser: actor.Superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses and checks a token, returning its actor
func (a *Authenticator) Verify(token string) (*models.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}
	return claims.Actor(), nil
}

// Middleware rejects requests without a valid bearer token and otherwise
// puts the actor on the request context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			config.WriteError(w, http.StatusUnauthorized, config.CodeAuth, "Authentication credentials were not provided.", nil)
			return
		}
		actor, err := a.Verify(token)
		if err != nil {
			zap.S().Debugw("rejected bearer token", "path", r.URL.Path, "error", err)
			config.WriteError(w, http.StatusUnauthorized, config.CodeAuth, "Invalid or expired token.", nil)
			return
		}
		a.directory.Remember(actor)
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// a websocket handshake, so upgrades may carry the token as ?token= instead.
func bearerToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errNoToken
		}
		return strings.TrimSpace(token), nil
	}
	if websocket.IsWebSocketUpgrade(r) {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
	}
	return "", errNoToken
}

type contextKey int

const actorKey contextKey = iota

// WithActor returns a copy of ctx carrying actor
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the authenticated actor, if any
func ActorFrom(ctx context.Context) (*models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*models.Actor)
	return actor, ok && actor != nil
}
