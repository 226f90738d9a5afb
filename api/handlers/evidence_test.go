package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/models"
)

func TestEvidence_Handlers(t *testing.T) {
	app := newTestApp(t)
	cs := openCase(t, app, 2)
	id := cs.ID.Hex()

	rr := do(t, app, &detective, http.MethodPost, "/api/v1/evidence", map[string]interface{}{
		"case":          id,
		"title":         "Van",
		"evidence_type": "VEHICLE",
		"plate_number":  "12A345",
		"serial_number": "SN-1",
	})
	env := requireError(t, rr, http.StatusBadRequest, "validation_error")
	assert.Equal(t, "Vehicle evidence cannot have both plate_number and serial_number.", env.Error.Message)

	rr = do(t, app, &detective, http.MethodPost, "/api/v1/evidence", map[string]interface{}{
		"case":          id,
		"title":         "Van",
		"evidence_type": "VEHICLE",
		"plate_number":  "12A345",
	})
	requireStatus(t, rr, http.StatusCreated)
	ev := decode[models.Evidence](t, rr)
	assert.Equal(t, "12A345", ev.Details.PlateNumber)

	rr = do(t, app, &citizen, http.MethodPost, "/api/v1/evidence", map[string]interface{}{"case": id, "title": "Knife"})
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &officer, http.MethodGet, "/api/v1/evidence?case_id="+id, nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Len(t, decode[[]models.Evidence](t, rr), 1)

	rr = do(t, app, &officer, http.MethodGet, "/api/v1/evidence?case="+openCase(t, app, 1).ID.Hex(), nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Empty(t, decode[[]models.Evidence](t, rr))

	rr = do(t, app, &officer, http.MethodGet, "/api/v1/evidence/"+ev.ID.Hex(), nil)
	requireStatus(t, rr, http.StatusOK)

	rr = do(t, app, &detective, http.MethodDelete, "/api/v1/evidence/"+ev.ID.Hex(), nil)
	requireStatus(t, rr, http.StatusNoContent)
	rr = do(t, app, &officer, http.MethodGet, "/api/v1/evidence/"+ev.ID.Hex(), nil)
	requireError(t, rr, http.StatusNotFound, "not_found")
}

func TestBoard_Handlers(t *testing.T) {
	app := newTestApp(t)
	base := "/api/v1/cases/" + openCase(t, app, 2).ID.Hex() + "/detective_board"

	rr := do(t, app, &officer, http.MethodGet, base, nil)
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &detective, http.MethodGet, base, nil)
	requireStatus(t, rr, http.StatusOK)
	board := decode[models.DetectiveBoard](t, rr)
	assert.Equal(t, detective.ID, board.Details.CreatedBy)

	rr = do(t, app, &detective, http.MethodPost, base+"/items", map[string]interface{}{"title": "A", "x": 1.5})
	requireStatus(t, rr, http.StatusCreated)
	a := decode[models.BoardItem](t, rr)
	rr = do(t, app, &detective, http.MethodPost, base+"/items", map[string]interface{}{"item_type": "EVIDENCE", "ref_model": "Evidence", "ref_id": "e-1"})
	requireStatus(t, rr, http.StatusCreated)
	b := decode[models.BoardItem](t, rr)

	rr = do(t, app, &detective, http.MethodPost, base+"/items", map[string]interface{}{"ref_id": "e-1"})
	requireError(t, rr, http.StatusBadRequest, "validation_error")

	rr = do(t, app, &detective, http.MethodPatch, base+"/items/"+a.ID.Hex(), map[string]interface{}{"y": 9})
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, 9.0, decode[models.BoardItem](t, rr).Y)

	rr = do(t, app, &detective, http.MethodPost, base+"/links", map[string]interface{}{
		"source_id": a.ID.Hex(),
		"target_id": b.ID.Hex(),
		"label":     "found at",
	})
	requireStatus(t, rr, http.StatusCreated)
	link := decode[models.BoardLink](t, rr)
	assert.Equal(t, b.ID, link.TargetID)

	rr = do(t, app, &detective, http.MethodDelete, base+"/links/"+link.ID.Hex(), nil)
	requireStatus(t, rr, http.StatusNoContent)
	rr = do(t, app, &detective, http.MethodDelete, base+"/items/"+b.ID.Hex(), nil)
	requireStatus(t, rr, http.StatusNoContent)
	rr = do(t, app, &detective, http.MethodDelete, base+"/items/"+b.ID.Hex(), nil)
	requireError(t, rr, http.StatusNotFound, "not_found")

	rr = do(t, app, &detective, http.MethodGet, base, nil)
	requireStatus(t, rr, http.StatusOK)
	board = decode[models.DetectiveBoard](t, rr)
	require.Len(t, board.Details.Items, 1)
	assert.Empty(t, board.Details.Links)
}

func TestStats_Handler(t *testing.T) {
	app := newTestApp(t)
	openCase(t, app, 2)

	rr := do(t, app, nil, http.MethodGet, "/api/v1/stats", nil)
	requireStatus(t, rr, http.StatusUnauthorized)

	rr = do(t, app, &citizen, http.MethodGet, "/api/v1/stats", nil)
	requireStatus(t, rr, http.StatusOK)
	stats := decode[map[string]interface{}](t, rr)
	assert.EqualValues(t, 1, stats["cases_total"])
	assert.EqualValues(t, 1, stats["cases_open"])
	assert.Equal(t, map[string]interface{}{"OPEN": float64(1)}, stats["cases_by_status"])
	assert.EqualValues(t, 0, stats["tips_pending"])
}
