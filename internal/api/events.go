package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wodo.ai/wodo-connect/internal/logging"
)

var heartbeatInterval = 25 * time.Second

// EventsHandler streams the caller's change notifications as server-sent
// events until the client goes away.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// the server write timeout would otherwise cut the stream
	_ = rc.SetWriteDeadline(time.Time{})

	username := accountFrom(r.Context()).Username
	id, ch := h.hub.Subscribe(username)
	defer h.hub.Unsubscribe(username, id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logging.Warnf("Streaming unsupported: %v", err)
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logging.Errorf("Error encoding event: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
