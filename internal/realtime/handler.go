package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/gorilla/websocket"
)

// TokenResolver runs the access token through the session guard.
type TokenResolver interface {
	ResolveUser(ctx context.Context, token string) (*auth.User, error)
}

type Handler struct {
	*transport.BaseHandler
	hub      *Hub
	resolver TokenResolver
	upgrader websocket.Upgrader
}

// NewHandler accepts a comma separated origin list; "*" or empty allows any origin.
func NewHandler(hub *Hub, resolver TokenResolver, allowedOrigins string, logger *slog.Logger) *Handler {
	origins := splitOrigins(allowedOrigins)
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		hub:         hub,
		resolver:    resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(origins, r.Header.Get("Origin"))
			},
		},
	}
}

// ServeHTTP authenticates before upgrading; browsers cannot set headers on a
// websocket handshake so the token may also come from the query string.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := transport.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		h.HandleServiceError(w, internal.ErrAuthRequired)
		return
	}
	user, err := h.resolver.ResolveUser(r.Context(), token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	c := NewClient(h.hub, conn, user.ID)
	h.hub.Register(c)
	go c.WritePump()
	go c.ReadPump()
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
