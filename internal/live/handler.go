package live

import (
	"net/http"
	"slices"

	"github.com/AdamBeresnev/toilescoins/internal/httputil"
	"github.com/AdamBeresnev/toilescoins/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// PublicIDParam is the route parameter carrying the public id.
const PublicIDParam = "publicId"

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler accepts websocket origins from allowedOrigins; "*" allows any.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWS upgrades a spectator of a published tournament. Unknown public ids
// are answered with 404 before upgrading.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, PublicIDParam)
	if _, err := h.hub.source.PublicView(r.Context(), publicID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", "public_id", publicID, "error", err)
		return
	}

	client := newClient(h.hub, conn, publicID)
	go client.writePump()
	if err := h.hub.Register(r.Context(), client); err != nil {
		logging.Error("register spectator", "public_id", publicID, "error", err)
		conn.Close()
		return
	}
	go client.readPump()
}
