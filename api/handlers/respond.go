package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

// maxBody caps request bodies
const maxBody = 1 << 20

// writeJSON marshals v and writes it with status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// writeError maps a workflow error onto the error envelope. Server errors are
// logged with their cause and answered with the generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	werr := workflow.AsError(err)
	if werr.Kind == workflow.KindServer {
		zap.S().Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	var details interface{}
	if len(werr.Details) > 0 {
		details = werr.Details
	}
	config.WriteError(w, werr.Kind.StatusCode(), string(werr.Kind), werr.Message, details)
}

// decodeJSON reads the body into v. An empty body leaves v at its zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		config.WriteError(w, http.StatusBadRequest, config.CodeBadRequest, "Malformed request body.",
			map[string]string{"body": err.Error()})
		return false
	}
	return true
}

// actorOf returns the authenticated actor. Routes behind the auth middleware
// always have one; a missing actor is answered with 401.
func actorOf(w http.ResponseWriter, r *http.Request) (*models.Actor, bool) {
	actor, ok := api.ActorFrom(r.Context())
	if !ok {
		config.WriteError(w, http.StatusUnauthorized, config.CodeAuth, "Authentication credentials were not provided.", nil)
	}
	return actor, ok
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// respond writes v with status, or the error envelope when err is set
func respond(w http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}
