package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/api/handlers"
	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/databases/memory"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

var (
	admin     = models.Actor{ID: "admin-1", Roles: []models.Role{models.RoleAdmin}}
	cadet     = models.Actor{ID: "cadet-1", Roles: []models.Role{models.RoleCadet}}
	officer   = models.Actor{ID: "officer-1", Email: "officer@example.com", Roles: []models.Role{models.RoleOfficer}}
	detective = models.Actor{ID: "detective-1", Roles: []models.Role{models.RoleDetective}}
	sergeant  = models.Actor{ID: "sergeant-1", Roles: []models.Role{models.RoleSergeant}}
	captain   = models.Actor{ID: "captain-1", Roles: []models.Role{models.RoleCaptain}}
	chief     = models.Actor{ID: "chief-1", Roles: []models.Role{models.RoleChief}}
	judge     = models.Actor{ID: "judge-1", Roles: []models.Role{models.RoleJudge}}
	citizen   = models.Actor{ID: "citizen-1", Roles: []models.Role{models.RoleCitizen}}
	neighbour = models.Actor{ID: "citizen-2", Roles: []models.Role{models.RoleCitizen}}
)

const testSecret = "handler-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "http://cases.test"},
		Cloudinary: config.CloudinaryConfig{
			CloudName: "demo",
			APIKey:    "key-1",
			APISecret: "secret-1",
			Folder:    "crime-scenes",
		},
	}
}

// newTestApp builds the full router over the in-memory store
func newTestApp(t *testing.T) *handlers.App {
	t.Helper()
	hub := handlers.NewNotificationHub()
	app := &handlers.App{
		Config:   testConfig(),
		Auth:     api.NewAuthenticator(testSecret, api.NewDirectory()),
		Hub:      hub,
		Registry: prometheus.NewRegistry(),
	}
	app.Services = workflow.New(memory.New().Stores(), workflow.Options{
		Metrics:    workflow.NewMetrics(app.Registry),
		Deliverers: []workflow.Deliverer{hub},
	})
	app.Router = app.New()
	return app
}

func tokenFor(t *testing.T, app *handlers.App, actor models.Actor) string {
	t.Helper()
	token, err := app.Auth.Issue(actor, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends body as JSON through the router on behalf of actor. A nil actor
// sends no token.
func do(t *testing.T, app *handlers.App, actor *models.Actor, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, app, *actor))
	}
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
}

func requireError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) models.ErrorEnvelope {
	t.Helper()
	requireStatus(t, rr, status)
	env := decode[models.ErrorEnvelope](t, rr)
	require.Equal(t, code, env.Error.Code)
	require.Equal(t, status, env.Error.StatusCode)
	return env
}

func openCase(t *testing.T, app *handlers.App, level int) models.Case {
	t.Helper()
	rr := do(t, app, &officer, http.MethodPost, "/api/v1/cases", map[string]interface{}{
		"title":       "Burglary",
		"crime_level": level,
	})
	requireStatus(t, rr, http.StatusCreated)
	return decode[models.Case](t, rr)
}
