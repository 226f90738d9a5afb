package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// TimeoutMiddleware answers 503 with the error envelope when a request runs
// longer than timeout. Websocket upgrades are long lived and pass straight through.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	body := fmt.Sprintf(`{"error":{"status_code":%d,"code":"timeout","message":"The request took too long to process"}}`,
		http.StatusServiceUnavailable)
	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, body)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
