package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/api/handlers"
	"github.com/linesmerrill/police-case-api/models"
)

func TestCase_CreateCaseHandler(t *testing.T) {
	app := newTestApp(t)

	cs := openCase(t, app, 2)
	assert.Equal(t, models.CaseOpen, cs.Details.Status)
	assert.Equal(t, officer.ID, cs.Details.CreatedBy)
	assert.Equal(t, 2, cs.Details.CrimeLevel)

	rr := do(t, app, &citizen, http.MethodPost, "/api/v1/cases", map[string]interface{}{"title": "x"})
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &officer, http.MethodPost, "/api/v1/cases", map[string]interface{}{"title": ""})
	requireError(t, rr, http.StatusBadRequest, "validation_error")

	rr = do(t, app, &officer, http.MethodPost, "/api/v1/cases", map[string]interface{}{"title": "x", "crime_level": 9})
	env := requireError(t, rr, http.StatusBadRequest, "validation_error")
	assert.NotNil(t, env.Error.Details)
}

func TestCase_CreateCaseHandlerMalformedBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, app, officer))
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)

	requireError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestCase_Unauthenticated(t *testing.T) {
	app := newTestApp(t)

	rr := do(t, app, nil, http.MethodGet, "/api/v1/cases", nil)
	requireError(t, rr, http.StatusUnauthorized, "auth_error")
}

func TestCase_CaseByIDHandler(t *testing.T) {
	app := newTestApp(t)
	cs := openCase(t, app, 1)

	req, err := http.NewRequest("GET", "/api/v1/cases/"+cs.ID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"id": cs.ID.Hex()})
	req = req.WithContext(api.WithActor(req.Context(), &detective))

	c := handlers.Case{Service: app.Services.Cases}
	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CaseByIDHandler)
	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	got := decode[models.Case](t, rr)
	assert.Equal(t, cs.ID, got.ID)
}

func TestCase_CaseByIDHandlerHidesOtherCitizensCases(t *testing.T) {
	app := newTestApp(t)

	rr := do(t, app, &citizen, http.MethodPost, "/api/v1/cases/from_complaint", map[string]interface{}{
		"title":   "Stolen bike",
		"details": "Taken from the rack.",
	})
	requireStatus(t, rr, http.StatusCreated)
	cs := decode[models.Case](t, rr)
	assert.Equal(t, models.CaseUnderReview, cs.Details.Status)

	rr = do(t, app, &citizen, http.MethodGet, "/api/v1/cases/"+cs.ID.Hex(), nil)
	requireStatus(t, rr, http.StatusOK)

	rr = do(t, app, &neighbour, http.MethodGet, "/api/v1/cases/"+cs.ID.Hex(), nil)
	requireError(t, rr, http.StatusNotFound, "not_found")

	rr = do(t, app, &officer, http.MethodGet, "/api/v1/cases/not-an-id", nil)
	requireError(t, rr, http.StatusNotFound, "not_found")
}

func TestCase_CasesHandler(t *testing.T) {
	app := newTestApp(t)
	openCase(t, app, 1)
	openCase(t, app, 2)

	rr := do(t, app, &officer, http.MethodGet, "/api/v1/cases?status=open", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Len(t, decode[[]models.Case](t, rr), 2)

	rr = do(t, app, &officer, http.MethodGet, "/api/v1/cases?status=CLOSED", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.JSONEq(t, "[]", rr.Body.String())

	rr = do(t, app, &citizen, http.MethodGet, "/api/v1/cases", nil)
	requireError(t, rr, http.StatusForbidden, "forbidden")
}

func TestCase_UpdateAndDelete(t *testing.T) {
	app := newTestApp(t)
	cs := openCase(t, app, 1)
	path := "/api/v1/cases/" + cs.ID.Hex()

	rr := do(t, app, &detective, http.MethodPatch, path, map[string]interface{}{"title": "Armed burglary"})
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, "Armed burglary", decode[models.Case](t, rr).Details.Title)

	rr = do(t, app, &officer, http.MethodDelete, path, nil)
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &admin, http.MethodDelete, path, nil)
	requireStatus(t, rr, http.StatusNoContent)

	rr = do(t, app, &officer, http.MethodGet, path, nil)
	requireError(t, rr, http.StatusNotFound, "not_found")
}

func TestCase_ComplaintStrikeAndResubmit(t *testing.T) {
	app := newTestApp(t)

	rr := do(t, app, &citizen, http.MethodPost, "/api/v1/cases/from_complaint", map[string]interface{}{
		"title":   "Noise",
		"details": "Loud music every night.",
	})
	requireStatus(t, rr, http.StatusCreated)
	cs := decode[models.Case](t, rr)
	path := "/api/v1/cases/" + cs.ID.Hex()

	rr = do(t, app, &cadet, http.MethodPost, path+"/complaint_strike", map[string]interface{}{"reason": "Address missing"})
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, models.CaseDraft, decode[models.Case](t, rr).Details.Status)

	rr = do(t, app, &neighbour, http.MethodPost, path+"/complaint_resubmit", map[string]interface{}{"details": "x"})
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &citizen, http.MethodPost, path+"/complaint_resubmit", map[string]interface{}{"details": "Loud music at 12 Elm St."})
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, models.CaseUnderReview, decode[models.Case](t, rr).Details.Status)
}

func TestCase_CrimeSceneFlow(t *testing.T) {
	app := newTestApp(t)

	rr := do(t, app, &officer, http.MethodPost, "/api/v1/cases/from_crime_scene", map[string]interface{}{
		"title":  "Hit and run",
		"report": "Vehicle left the scene heading north.",
	})
	requireStatus(t, rr, http.StatusCreated)
	cs := decode[models.Case](t, rr)
	require.Equal(t, models.CaseUnderReview, cs.Details.Status)

	rr = do(t, app, &admin, http.MethodPost, "/api/v1/cases/"+cs.ID.Hex()+"/crime_scene_approve", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, models.CaseOpen, decode[models.Case](t, rr).Details.Status)
}

func TestCase_DossierHandler(t *testing.T) {
	app := newTestApp(t)
	cs := openCase(t, app, 2)

	rr := do(t, app, &detective, http.MethodPost, "/api/v1/suspects/case/"+cs.ID.Hex(), map[string]interface{}{"full_name": "Vic Vandal"})
	requireStatus(t, rr, http.StatusCreated)

	rr = do(t, app, &captain, http.MethodGet, "/api/v1/cases/"+cs.ID.Hex()+"/dossier", nil)
	requireStatus(t, rr, http.StatusOK)
	d := decode[models.Dossier](t, rr)
	assert.Equal(t, cs.ID, d.Case.ID)
	assert.Len(t, d.Suspects, 1)
}
