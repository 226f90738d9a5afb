package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

const (
	writeWait      = 10 * time.Second
	maxClientFrame = 512
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// clients authenticate with a bearer token, so the origin carries no authority
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Notification exposes the actor's case notifications
type Notification struct {
	Service *workflow.NotificationService
}

// NotificationsHandler lists the actor's notifications, newest first
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := n.Service.List(ctx, actor)
	if list == nil {
		list = []models.CaseNotification{}
	}
	respond(w, r, http.StatusOK, list, err)
}

// MarkReadHandler marks one of the actor's notifications read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cn, err := n.Service.MarkRead(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, cn, err)
}

type wsClient struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	mu sync.Mutex
}

func (c *wsClient) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// NotificationHub pushes notifications to the websocket connections of their
// recipients. A user may hold several connections.
type NotificationHub struct {
	mu      sync.Mutex
	clients map[string]map[*wsClient]struct{}
}

// NewNotificationHub returns a hub with no connections
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{clients: map[string]map[*wsClient]struct{}{}}
}

// Deliver implements workflow.Deliverer
func (h *NotificationHub) Deliver(_ context.Context, n models.CaseNotification) {
	userID := n.Details.RecipientID
	h.mu.Lock()
	targets := make([]*wsClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		err := c.send(map[string]interface{}{
			"event": "new_notification",
			"data":  n,
		})
		if err != nil {
			zap.S().Warnw("failed to push notification", "user", userID, "error", err)
			h.remove(userID, c)
		}
	}
}

// Connected returns how many connections userID holds
func (h *NotificationHub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

func (h *NotificationHub) add(userID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*wsClient]struct{}{}
	}
	h.clients[userID][c] = struct{}{}
}

func (h *NotificationHub) remove(userID string, c *wsClient) {
	h.mu.Lock()
	if set, ok := h.clients[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// HandleNotificationsWebSocket upgrades the request and keeps the connection
// registered for the authenticated actor until the client goes away
func (h *NotificationHub) HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "user", actor.ID, "error", err)
		return
	}

	c := &wsClient{conn: conn}
	h.add(actor.ID, c)
	zap.S().Debugw("user connected to /ws/notifications", "user", actor.ID)

	// the client only ever sends control frames; reading surfaces the close
	conn.SetReadLimit(maxClientFrame)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.remove(actor.ID, c)
	zap.S().Debugw("user disconnected from /ws/notifications", "user", actor.ID)
}
