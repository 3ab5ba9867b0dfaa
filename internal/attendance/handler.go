package attendance

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/frahmantamala/hr-management/pkg/logger"
)

type ServiceAPI interface {
	ClockIn(ctx context.Context, actor *auth.User, dto ClockDTO, variant internal.Variant) (*Record, error)
	ClockOut(ctx context.Context, actor *auth.User, dto ClockDTO, variant internal.Variant) (*Record, error)
	Today(ctx context.Context, actor *auth.User) (*Today, error)
	ListMine(ctx context.Context, actor *auth.User, f ListFilter) ([]*Record, error)
	List(ctx context.Context, f ListFilter) ([]*Record, error)
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

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Service.ClockIn, "Clocked in successfully")
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Service.ClockOut, "Clocked out successfully")
}

type clockFunc func(ctx context.Context, actor *auth.User, dto ClockDTO, variant internal.Variant) (*Record, error)

func (h *Handler) clock(w http.ResponseWriter, r *http.Request, fn clockFunc, message string) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto ClockDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}

	rec, err := fn(r.Context(), user, dto, internal.VariantFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"data":    rec,
	})
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	today, err := h.Service.Today(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, today)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	records, err := h.Service.ListMine(r.Context(), user, h.filter(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, records)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f := h.filter(r)
	if raw := r.URL.Query().Get("employeeId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.EmployeeID = id
		}
	}
	records, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, records)
}

func (h *Handler) filter(r *http.Request) ListFilter {
	limit, offset := h.Page(r)
	return ListFilter{
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Limit:  limit,
		Offset: offset,
	}
}
