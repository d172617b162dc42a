package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// sseKeepAliveInterval is how often a comment line is sent to detect dead
// connections and keep intermediaries from timing out the stream.
const sseKeepAliveInterval = 30 * time.Second

// handleSSE streams live events for one device as Server-Sent Events.
//
// GET /api/v1/devices/{code}/sse
//
// Each event is one `data:` line holding the {"event","data"} JSON
// envelope. The subscription exists only while the connection is open;
// there is no replay of missed events. Subscribing does not require the
// device to exist yet, so a UI can watch a code it expects to come online.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeInternalError(w, "streaming not supported")
		return
	}

	deviceCode := chi.URLParam(r, "code")

	// The stream outlives the server's write timeout.
	rc := http.NewResponseController(w)
	//nolint:errcheck // Not all writers support deadlines; streaming still works
	rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	queue := s.hub.Subscribe(deviceCode)
	defer s.hub.Unsubscribe(queue)

	s.logger.Debug("sse stream opened", "device_code", deviceCode)
	defer s.logger.Debug("sse stream closed", "device_code", deviceCode)

	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case evt, open := <-queue.C:
			if !open {
				return
			}
			payload, err := evt.MarshalData()
			if err != nil {
				s.logger.Error("encoding sse event", "device_code", deviceCode, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
