package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/workflow"
)

// Board exposes the detective board of a case
type Board struct {
	Service *workflow.BoardService
}

// BoardHandler returns the case's board, creating it on first use
func (b Board) BoardHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	board, err := b.Service.Board(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, board, err)
}

// CreateItemHandler pins an item to the board
func (b Board) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.BoardItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	item, err := b.Service.AddItem(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusCreated, item, err)
}

// UpdateItemHandler patches a pin
func (b Board) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.BoardItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vars := mux.Vars(r)
	item, err := b.Service.UpdateItem(ctx, actor, vars["id"], vars["item_id"], in)
	respond(w, r, http.StatusOK, item, err)
}

// DeleteItemHandler unpins an item and its links
func (b Board) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vars := mux.Vars(r)
	if err := b.Service.DeleteItem(ctx, actor, vars["id"], vars["item_id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateLinkHandler strings two pins together
func (b Board) CreateLinkHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.BoardLinkInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	link, err := b.Service.AddLink(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusCreated, link, err)
}

// DeleteLinkHandler cuts a link
func (b Board) DeleteLinkHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vars := mux.Vars(r)
	if err := b.Service.DeleteLink(ctx, actor, vars["id"], vars["link_id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
