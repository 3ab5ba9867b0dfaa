package project

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
	CreateProject(ctx context.Context, actor *auth.User, dto CreateProjectDTO) (*Project, error)
	UpdateProject(ctx context.Context, actor *auth.User, id int64, dto UpdateProjectDTO) (*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context, f ProjectFilter) ([]*Project, error)
	CreateTask(ctx context.Context, actor *auth.User, projectID int64, dto CreateTaskDTO) (*Task, error)
	UpdateTask(ctx context.Context, actor *auth.User, taskID int64, dto UpdateTaskDTO) (*Task, error)
	DeleteTask(ctx context.Context, actor *auth.User, taskID int64) error
	ListTasks(ctx context.Context, f TaskFilter) ([]*Task, error)
	MyTasks(ctx context.Context, actor *auth.User, status string, limit, offset int) ([]*Task, error)
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

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto CreateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	p, err := h.Service.CreateProject(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
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
	var dto UpdateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	p, err := h.Service.UpdateProject(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, p)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	p, err := h.Service.GetProject(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, p)
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Page(r)
	f := ProjectFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("managerId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.ManagerID = id
		}
	}
	projects, err := h.Service.ListProjects(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, projects)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	projectID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto CreateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	t, err := h.Service.CreateTask(r.Context(), user, projectID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusCreated, t)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	limit, offset := h.Page(r)
	f := TaskFilter{
		ProjectID: projectID,
		Status:    r.URL.Query().Get("status"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := r.URL.Query().Get("assigneeId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.AssigneeID = id
		}
	}
	tasks, err := h.Service.ListTasks(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, tasks)
}

func (h *Handler) MyTasks(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	limit, offset := h.Page(r)
	tasks, err := h.Service.MyTasks(r.Context(), user, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, tasks)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	taskID, err := h.PathID(r, "taskId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto UpdateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	t, err := h.Service.UpdateTask(r.Context(), user, taskID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, t)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	taskID, err := h.PathID(r, "taskId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := h.Service.DeleteTask(r.Context(), user, taskID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"message": "Task deleted"})
}
