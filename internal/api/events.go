package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stridelog/tracker-engine/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	eventWriteTimeout = 10 * time.Second
	eventPingInterval = 30 * time.Second
)

// handleEventsWS streams notification and save-status events to the client.
// On connect it replays the live notifications and the current save status so
// a reconnecting client starts in sync.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("event stream connected", "user_id", userID)

	events, cancel := s.center.Subscribe(userID)
	defer cancel()

	// Initial sync: live notifications, then the current status.
	for _, n := range s.center.Active(userID) {
		n := n
		if err := s.writeEvent(conn, notify.Event{Kind: "notification", Notification: &n}); err != nil {
			return
		}
	}
	if err := s.writeEvent(conn, notify.Event{Kind: "save_status", SaveStatus: string(s.store.SaveStatus(userID))}); err != nil {
		return
	}

	// Reader goroutine: the client never sends application data, but reading
	// is how we notice the connection closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			slog.Info("event stream disconnected", "user_id", userID)
			return
		case ev := <-events:
			if err := s.writeEvent(conn, ev); err != nil {
				slog.Debug("failed to write event", "user_id", userID, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, ev notify.Event) error {
	conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
	return conn.WriteJSON(ev)
}
