package employee

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
	Register(ctx context.Context, actor *auth.User, dto RegisterEmployeeDTO) (*Employee, error)
	Get(ctx context.Context, actor *auth.User, userID int64) (*Employee, error)
	List(ctx context.Context, f ListFilter) ([]*Employee, error)
	Update(ctx context.Context, actor *auth.User, userID int64, dto UpdateEmployeeDTO) (*Employee, error)
	UpdateMe(ctx context.Context, actor *auth.User, dto UpdateMeDTO) (*Employee, error)
	SetActive(ctx context.Context, actor *auth.User, userID int64, dto SetActiveDTO) (*Employee, error)
	Delete(ctx context.Context, actor *auth.User, userID int64) error
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto RegisterEmployeeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	emp, err := h.Service.Register(r.Context(), user, dto)
	if err != nil {
		h.Logger.Info("employee registration failed", "email", dto.Email, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Employee registered successfully",
		"data":    emp,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Page(r)
	q := r.URL.Query()
	f := ListFilter{
		Role:       q.Get("role"),
		Department: q.Get("department"),
		Search:     q.Get("search"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := q.Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			f.Active = &active
		}
	}

	employees, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"data":   employees,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	emp, err := h.Service.Get(r.Context(), user, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, emp)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto UpdateMeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	emp, err := h.Service.UpdateMe(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, emp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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
	emp, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, emp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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
	var dto UpdateEmployeeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	emp, err := h.Service.Update(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, emp)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
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
	var dto SetActiveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	emp, err := h.Service.SetActive(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, emp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"message": "Employee deleted"})
}
