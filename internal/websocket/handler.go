package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades the request and runs it as a Hub client until the
// connection closes. An empty originPatterns list accepts any origin. The
// optional ?catalog=events,resources query narrows the notifications sent.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns}
	if len(originPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			logger.Warn("websocket accept", "error", err, "remote", r.RemoteAddr)
			return
		}

		var catalogs []string
		if q := r.URL.Query().Get("catalog"); q != "" {
			catalogs = strings.Split(q, ",")
		}
		logger.Debug("websocket connected", "remote", r.RemoteAddr, "catalogs", catalogs)

		client := NewClient(hub, conn, catalogs)
		client.Run(r.Context())
	}
}
