package handlers_test

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/api/handlers"
	"github.com/linesmerrill/police-case-api/config"
)

var hexSignature = regexp.MustCompile(`^[0-9a-f]{40,64}$`)

func TestCloudinaryHandler_Sign(t *testing.T) {
	fixed := time.Unix(1760000000, 0)
	h := handlers.CloudinaryHandler{
		Config: config.CloudinaryConfig{CloudName: "demo", APIKey: "key-1", APISecret: "secret-1", Folder: "crime-scenes"},
		Now:    func() time.Time { return fixed },
	}

	sig, err := h.Sign("abc")
	require.NoError(t, err)
	assert.Equal(t, "1760000000", sig.Timestamp)
	assert.Equal(t, "crime-scenes/abc", sig.Folder)
	assert.Equal(t, "key-1", sig.APIKey)
	assert.Equal(t, "https://api.cloudinary.com/v1_1/demo/auto/upload", sig.UploadURL)
	assert.Regexp(t, hexSignature, sig.Signature)

	again, err := h.Sign("abc")
	require.NoError(t, err)
	assert.Equal(t, sig.Signature, again.Signature)

	other, err := h.Sign("def")
	require.NoError(t, err)
	assert.NotEqual(t, sig.Signature, other.Signature)

	h.Config.APISecret = "secret-2"
	rotated, err := h.Sign("abc")
	require.NoError(t, err)
	assert.NotEqual(t, sig.Signature, rotated.Signature)
}

func TestCloudinaryHandler_UploadSignatureHandler(t *testing.T) {
	app := newTestApp(t)
	cs := openCase(t, app, 1)
	path := "/api/v1/cases/" + cs.ID.Hex() + "/crime_scene/upload-signature"

	rr := do(t, app, &citizen, http.MethodPost, path, nil)
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &officer, http.MethodPost, "/api/v1/cases/000000000000000000000000/crime_scene/upload-signature", nil)
	requireError(t, rr, http.StatusNotFound, "not_found")

	rr = do(t, app, &officer, http.MethodPost, path, nil)
	requireStatus(t, rr, http.StatusOK)
	sig := decode[handlers.UploadSignature](t, rr)
	assert.Equal(t, "crime-scenes/"+cs.ID.Hex(), sig.Folder)
	assert.Equal(t, "demo", sig.CloudName)
	assert.NotEmpty(t, sig.Signature)
}

func TestCloudinaryHandler_NotConfigured(t *testing.T) {
	app := newTestApp(t)
	app.Config.Cloudinary = config.CloudinaryConfig{}
	app.Registry = nil
	app.Router = app.New()
	cs := openCase(t, app, 1)

	rr := do(t, app, &officer, http.MethodPost, "/api/v1/cases/"+cs.ID.Hex()+"/crime_scene/upload-signature", nil)
	requireError(t, rr, http.StatusServiceUnavailable, "server_error")
}
