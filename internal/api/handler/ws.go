package handler

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/vantagemgmt/portal-data/internal/realtime"
)

// Subscribe upgrades the connection and streams record-change events.
// @Summary Realtime change feed
// @Description Upgrades to a WebSocket and streams {"t":"change","table":...} events. Clients refetch the affected data over the REST API on each event.
// @Tags realtime
// @Success 101
// @Router /ws [get]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.cfg.CORSAllowOrigins),
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}

	client := &realtime.Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	ctx := r.Context()
	go client.WritePump(ctx)

	// Drain incoming frames; the feed is one-way and the read loop exists
	// only to notice the close.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

// originPatterns strips schemes from configured CORS origins for the
// websocket origin check.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		for _, prefix := range []string{"https://", "http://"} {
			if len(o) > len(prefix) && o[:len(prefix)] == prefix {
				o = o[len(prefix):]
				break
			}
		}
		out = append(out, o)
	}
	return out
}
