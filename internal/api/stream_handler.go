package api

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/vocab-drill/internal/drill"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// StreamMessage is one websocket frame pushed to a session watcher.
type StreamMessage struct {
	Type  string          `json:"type"`
	State *drill.Snapshot `json:"state,omitempty"`
}

// Stream message types
const (
	StreamTypeSnapshot = "snapshot"
	StreamTypeClosed   = "closed"
)

// StreamHandler pushes session snapshots over a websocket.
type StreamHandler struct {
	sessions *SessionHandler
	upgrader websocket.Upgrader
	buffer   int
	logger   *slog.Logger
}

// NewStreamHandler creates a new StreamHandler. An empty allowedOrigins list
// or one containing "*" accepts any origin.
func NewStreamHandler(sessions *SessionHandler, allowedOrigins []string, buffer int, logger *slog.Logger) *StreamHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for StreamHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StreamHandler")
	}

	anyOrigin := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &StreamHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		buffer: buffer,
		logger: logger.With(slog.String("component", "stream_handler")),
	}
}

// Stream handles GET /sessions/{id}/stream requests.
// The current snapshot is sent on connect, then one frame per state change.
// Frames are dropped, not queued, while the client is slow.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sess, ok := h.sessions.lookup(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = conn.Close() }()

	updates, cancel := sess.Subscribe(h.buffer)
	defer cancel()

	log = log.With(slog.String("session_id", sess.ID))
	log.Debug("stream connected")

	// The read loop only services control frames and notices disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	initial := sess.Snapshot()
	if err := writeFrame(conn, StreamMessage{Type: StreamTypeSnapshot, State: &initial}); err != nil {
		log.Debug("stream write failed", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Debug("stream disconnected")
			return

		case snap, open := <-updates:
			if !open {
				_ = writeFrame(conn, StreamMessage{Type: StreamTypeClosed})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(streamWriteWait))
				log.Debug("stream closed by session end")
				return
			}
			if err := writeFrame(conn, StreamMessage{Type: StreamTypeSnapshot, State: &snap}); err != nil {
				log.Debug("stream write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				log.Debug("stream ping failed", slog.String("error", err.Error()))
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
