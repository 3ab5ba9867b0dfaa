package activity

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/frahmantamala/hr-management/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, f ListFilter) (*Page, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Page(r)
	q := r.URL.Query()
	f := ListFilter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := q.Get("userId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.UserID = id
		}
	}
	page, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, page)
}
