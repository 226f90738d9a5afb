package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	cldapi "github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

// mediaUploaders may upload crime-scene media
var mediaUploaders = []models.Role{
	models.RoleOfficer, models.RoleDetective, models.RoleSergeant, models.RoleCaptain,
	models.RoleSupervisor, models.RoleChief, models.RoleAdmin,
}

// UploadSignature lets a client upload one file straight to cloudinary
type UploadSignature struct {
	CloudName string `json:"cloud_name"`
	APIKey    string `json:"api_key"`
	Timestamp string `json:"timestamp"`
	Folder    string `json:"folder"`
	Signature string `json:"signature"`
	UploadURL string `json:"upload_url"`
}

// CloudinaryHandler signs crime-scene media uploads
type CloudinaryHandler struct {
	Cases  *workflow.CaseService
	Config config.CloudinaryConfig
	// Now defaults to time.Now
	Now func() time.Time
}

// Sign returns the signed upload parameters for a case's media folder
func (c CloudinaryHandler) Sign(caseID string) (*UploadSignature, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	timestamp := strconv.FormatInt(now().Unix(), 10)
	folder := caseID
	if c.Config.Folder != "" {
		folder = c.Config.Folder + "/" + caseID
	}

	signature, err := cldapi.SignParameters(url.Values{
		"timestamp": []string{timestamp},
		"folder":    []string{folder},
	}, c.Config.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload: %w", err)
	}
	return &UploadSignature{
		CloudName: c.Config.CloudName,
		APIKey:    c.Config.APIKey,
		Timestamp: timestamp,
		Folder:    folder,
		Signature: signature,
		UploadURL: fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/auto/upload", c.Config.CloudName),
	}, nil
}

// UploadSignatureHandler signs an upload into the case's media folder
func (c CloudinaryHandler) UploadSignatureHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	if !workflow.HasRole(actor, mediaUploaders...) {
		writeError(w, r, workflow.Errorf(workflow.KindForbidden, "You do not have permission to perform this action."))
		return
	}
	if c.Config.CloudName == "" || c.Config.APISecret == "" {
		config.WriteError(w, http.StatusServiceUnavailable, config.CodeServer, "Media uploads are not configured.", nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	cs, err := c.Cases.Get(ctx, actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	sig, err := c.Sign(cs.ID.Hex())
	if err != nil {
		config.ErrorStatus("failed to sign upload", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}
