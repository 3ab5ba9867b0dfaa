package discussion

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/frahmantamala/hr-management/pkg/logger"
)

type ServiceAPI interface {
	CreateChannel(ctx context.Context, actor *auth.User, dto CreateChannelDTO) (*Channel, error)
	ListChannels(ctx context.Context, actor *auth.User) ([]*Channel, error)
	GetChannel(ctx context.Context, actor *auth.User, id int64) (*Channel, error)
	AddMembers(ctx context.Context, actor *auth.User, id int64, dto AddMembersDTO) (*Channel, error)
	ListMessages(ctx context.Context, actor *auth.User, id int64, q MessageQuery) ([]*Message, error)
	PostMessage(ctx context.Context, actor *auth.User, id int64, dto PostMessageDTO) (*Message, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto CreateChannelDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	c, err := h.Service.CreateChannel(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusCreated, c)
}

func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	list, err := h.Service.ListChannels(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, list)
}

func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	c, err := h.Service.GetChannel(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, c)
}

func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto AddMembersDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	c, err := h.Service.AddMembers(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, c)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	limit, _ := h.Page(r)
	q := MessageQuery{Limit: limit}
	if before := r.URL.Query().Get("before"); before != "" {
		if b, err := strconv.ParseInt(before, 10, 64); err == nil && b > 0 {
			q.BeforeID = b
		}
	}
	list, err := h.Service.ListMessages(r.Context(), user, id, q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, list)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto PostMessageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	m, err := h.Service.PostMessage(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusCreated, m)
}
