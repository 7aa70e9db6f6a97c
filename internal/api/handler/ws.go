package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fromscratch/blueprint/internal/api/response"
	"github.com/fromscratch/blueprint/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Status relay carries no credentials and no mutations.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRunSocketHandler returns the handler for GET /ws/run/{runID}. It
// subscribes to the run's status channel and forwards every message to
// the client verbatim as a text frame. Messages published before the
// subscription is established are not replayed.
func NewRunSocketHandler(bus events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(chi.URLParam(r, "runID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "run id must be a UUID", nil)
			return
		}

		sub, err := bus.Subscribe(r.Context(), runID)
		if err != nil {
			slog.Error("status subscription failed", "run_id", runID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		defer sub.Close()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade writes its own error response.
			slog.Warn("websocket upgrade failed", "run_id", runID, "error", err)
			return
		}
		defer conn.Close()

		// Read pump exists only to notice the client going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
					return
				}
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
