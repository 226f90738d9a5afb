package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
)

const testSecret = "test-secret"

func echoActor(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := api.ActorFrom(r.Context())
		require.True(t, ok)
		_ = json.NewEncoder(w).Encode(actor)
	})
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorEnvelope {
	var env models.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestAuthenticator_IssueAndVerify(t *testing.T) {
	auth := api.NewAuthenticator(testSecret, nil)
	token, err := auth.Issue(models.Actor{
		ID:    "u1",
		Name:  "Dana",
		Email: "dana@example.com",
		Roles: []models.Role{models.RoleDetective},
	}, time.Hour)
	require.NoError(t, err)

	actor, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", actor.ID)
	assert.Equal(t, "dana@example.com", actor.Email)
	assert.Equal(t, []models.Role{models.RoleDetective}, actor.Roles)
	assert.False(t, actor.Superuser)
}

func TestAuthenticator_VerifyNormalizesLegacyRole(t *testing.T) {
	claims := api.Claims{
		Roles:            []string{"Sergent"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u2"},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	actor, err := api.NewAuthenticator(testSecret, nil).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleSergeant}, actor.Roles)
}

func TestAuthenticator_VerifyRejects(t *testing.T) {
	auth := api.NewAuthenticator(testSecret, nil)

	other, err := api.NewAuthenticator("another-secret", nil).Issue(models.Actor{ID: "u1"}, time.Hour)
	require.NoError(t, err)
	_, err = auth.Verify(other)
	assert.Error(t, err, "wrong secret")

	expired, err := auth.Issue(models.Actor{ID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = auth.Verify(expired)
	assert.Error(t, err, "expired")

	noSubject, err := auth.Issue(models.Actor{}, time.Hour)
	require.NoError(t, err)
	_, err = auth.Verify(noSubject)
	assert.Error(t, err, "missing subject")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.Verify(none)
	assert.Error(t, err, "alg none")
}

func TestAuthenticator_Middleware(t *testing.T) {
	dir := api.NewDirectory()
	auth := api.NewAuthenticator(testSecret, dir)
	token, err := auth.Issue(models.Actor{ID: "u1", Email: "u1@example.com", Roles: []models.Role{models.RoleOfficer}}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	auth.Middleware(echoActor(t)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var actor models.Actor
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &actor))
	assert.Equal(t, "u1", actor.ID)

	email, ok := dir.Email("u1")
	assert.True(t, ok)
	assert.Equal(t, "u1@example.com", email)
}

func TestAuthenticator_MiddlewareUnauthorized(t *testing.T) {
	auth := api.NewAuthenticator(testSecret, nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	for name, header := range map[string]string{
		"missing": "",
		"scheme":  "Basic abc",
		"garbage": "Bearer not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			auth.Middleware(next).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			env := decodeEnvelope(t, rr)
			assert.Equal(t, "auth_error", env.Error.Code)
			assert.Equal(t, http.StatusUnauthorized, env.Error.StatusCode)
		})
	}
}

func TestAuthenticator_QueryTokenOnlyForWebsocket(t *testing.T) {
	auth := api.NewAuthenticator(testSecret, nil)
	token, err := auth.Issue(models.Actor{ID: "u1"}, time.Hour)
	require.NoError(t, err)

	plain := httptest.NewRequest(http.MethodGet, "/ws/notifications?token="+token, nil)
	rr := httptest.NewRecorder()
	auth.Middleware(echoActor(t)).ServeHTTP(rr, plain)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	upgrade := httptest.NewRequest(http.MethodGet, "/ws/notifications?token="+token, nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	rr = httptest.NewRecorder()
	auth.Middleware(echoActor(t)).ServeHTTP(rr, upgrade)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDirectory_SkipsActorsWithoutEmail(t *testing.T) {
	dir := api.NewDirectory()
	dir.Remember(&models.Actor{ID: "u1"})
	_, ok := dir.Email("u1")
	assert.False(t, ok)

	var none *api.Directory
	none.Remember(&models.Actor{ID: "u1", Email: "x@example.com"})
	_, ok = none.Email("u1")
	assert.False(t, ok)
}
