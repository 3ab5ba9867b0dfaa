package leave

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/frahmantamala/hr-management/pkg/logger"
)

type ServiceAPI interface {
	Apply(ctx context.Context, actor *auth.User, dto ApplyLeaveDTO) (*Application, error)
	Approve(ctx context.Context, actor *auth.User, id int64) (*Application, error)
	Reject(ctx context.Context, actor *auth.User, id int64, reason string) (*Application, error)
	Cancel(ctx context.Context, actor *auth.User, id int64) (*Application, error)
	Get(ctx context.Context, actor *auth.User, id int64) (*Application, error)
	ListMine(ctx context.Context, actor *auth.User, status string, limit, offset int) ([]*Application, error)
	ListAll(ctx context.Context, f ListFilter) ([]*Application, error)
	ListLeaveTypes(ctx context.Context) ([]*LeaveType, error)
	CreateLeaveType(ctx context.Context, dto CreateLeaveTypeDTO) (*LeaveType, error)
	MyBalances(ctx context.Context, actor *auth.User, year int) ([]*Balance, error)
	Balances(ctx context.Context, employeeID int64, year int) ([]*Balance, error)
	SetBalance(ctx context.Context, actor *auth.User, dto SetBalanceDTO) (*Balance, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto ApplyLeaveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	app, err := h.Service.Apply(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Leave application submitted",
		"data":    app,
	})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := h.Page(r)
	apps, err := h.Service.ListMine(r.Context(), user, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, apps)
}

// ListAll is mounted behind the reviewer gate.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Page(r)
	f := ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("employeeId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.EmployeeID = id
		}
	}

	apps, err := h.Service.ListAll(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, apps)
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

	app, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, app)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
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

	app, err := h.Service.Approve(r.Context(), user, id)
	if err != nil {
		h.Logger.Info("leave approval failed", "leave_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Leave application approved",
		"data":    app,
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
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

	// the reason is optional, so an empty body is fine
	var dto RejectLeaveDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}

	app, err := h.Service.Reject(r.Context(), user, id, dto.Reason)
	if err != nil {
		h.Logger.Info("leave rejection failed", "leave_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Leave application rejected",
		"data":    app,
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
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

	app, err := h.Service.Cancel(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Leave application cancelled",
		"data":    app,
	})
}

func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListLeaveTypes(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, types)
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeaveTypeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	t, err := h.Service.CreateLeaveType(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusCreated, t)
}

func (h *Handler) MyBalances(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	balances, err := h.Service.MyBalances(r.Context(), user, yearParam(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, balances)
}

func (h *Handler) EmployeeBalances(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.PathID(r, "employeeId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	balances, err := h.Service.Balances(r.Context(), employeeID, yearParam(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, balances)
}

func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto SetBalanceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	b, err := h.Service.SetBalance(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, b)
}

func yearParam(r *http.Request) int {
	if raw := r.URL.Query().Get("year"); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil && y >= 2000 && y <= 2100 {
			return y
		}
	}
	return time.Now().Year()
}
