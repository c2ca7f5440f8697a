package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades requests from origins matching originPatterns
// and runs them as hub clients. An empty pattern list allows any origin.
// ?entities=spin,user subscribes the client up front.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns}
	if len(originPatterns) == 0 {
		opts = &ws.AcceptOptions{InsecureSkipVerify: true}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			logger.Warn("websocket accept", "remote", r.RemoteAddr, "error", err)
			return
		}

		client := NewClient(hub, conn)
		if v := r.URL.Query().Get("entities"); v != "" {
			client.Subscribe(strings.Split(v, ","))
		}
		client.Run(r.Context())
	}
}
