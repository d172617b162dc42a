package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// WebSocket timing constants.
const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second // must be less than wsPongWait
)

// wsBufferSize is the read/write buffer size for WebSocket connections.
const wsBufferSize = 1024

// handleWebSocket streams live events for one device over a WebSocket.
//
// GET /api/v1/devices/{code}/ws
//
// Carries the same {"event","data"} envelope as the SSE endpoint, for
// clients that want a bidirectional transport or can't use EventSource.
// Inbound messages are discarded; the read loop exists for close and pong
// handling only.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsBufferSize,
		WriteBufferSize: wsBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	deviceCode := chi.URLParam(r, "code")
	queue := s.hub.Subscribe(deviceCode)
	defer s.hub.Unsubscribe(queue)

	s.logger.Debug("websocket stream opened", "device_code", deviceCode)
	defer s.logger.Debug("websocket stream closed", "device_code", deviceCode)

	// Reader: drain and enforce pong deadlines. Closes done on disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(wsBufferSize)
		//nolint:errcheck // Deadline errors surface on the next read
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			//nolint:errcheck // Deadline errors surface on the next read
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-done:
			return

		case evt, open := <-queue.C:
			if !open {
				return
			}
			//nolint:errcheck // Deadline errors surface on the write below
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}

		case <-ping.C:
			//nolint:errcheck // Deadline errors surface on the write below
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
