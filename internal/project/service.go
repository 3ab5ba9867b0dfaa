package project

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	projectDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/project"
	"github.com/frahmantamala/hr-management/internal/core/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateProject defaults the manager to the caller; only admins may name someone else.
func (s *Service) CreateProject(ctx context.Context, actor *auth.User, dto CreateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	start, err := optionalDate("startDate", dto.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := optionalDate("endDate", dto.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, internal.NewValidationError("End date cannot be before start date", internal.ErrCodeInvalidDate)
	}

	managerID := actor.ID
	if dto.ManagerID != 0 && dto.ManagerID != actor.ID {
		if actor.Role != auth.RoleAdmin {
			return nil, ErrNotProjectOwner
		}
		if err := s.requireUser(ctx, dto.ManagerID); err != nil {
			return nil, err
		}
		managerID = dto.ManagerID
	}

	status := dto.Status
	if status == "" {
		status = StatusPlanning
	}
	p := &projectDatamodel.Project{
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		ManagerID:   managerID,
		Status:      status,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, internal.NewInternalError("failed to create project", err)
	}

	s.logger.Info("project created", "project_id", p.ID, "manager_id", p.ManagerID)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeProjectCreated, actor.ID, "project", p.ID, map[string]interface{}{
		"name":       p.Name,
		"manager_id": p.ManagerID,
	}))
	return ProjectFromDataModel(p), nil
}

func (s *Service) UpdateProject(ctx context.Context, actor *auth.User, id int64, dto UpdateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, p) {
		return nil, ErrNotProjectOwner
	}

	if dto.Name != nil {
		p.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Status != nil {
		p.Status = *dto.Status
	}
	if dto.StartDate != nil {
		if p.StartDate, err = optionalDate("startDate", *dto.StartDate); err != nil {
			return nil, err
		}
	}
	if dto.EndDate != nil {
		if p.EndDate, err = optionalDate("endDate", *dto.EndDate); err != nil {
			return nil, err
		}
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return nil, internal.NewValidationError("End date cannot be before start date", internal.ErrCodeInvalidDate)
	}
	if dto.ManagerID != nil && *dto.ManagerID != p.ManagerID {
		if actor.Role != auth.RoleAdmin {
			return nil, ErrNotProjectOwner
		}
		if err := s.requireUser(ctx, *dto.ManagerID); err != nil {
			return nil, err
		}
		p.ManagerID = *dto.ManagerID
	}

	if err := s.repo.SaveProject(ctx, p); err != nil {
		return nil, internal.NewInternalError("failed to update project", err)
	}
	s.publish(ctx, events.NewDomainEvent(events.EventTypeProjectUpdated, actor.ID, "project", p.ID, map[string]interface{}{
		"status": p.Status,
	}))
	return ProjectFromDataModel(p), nil
}

// GetProject returns the project with its tasks.
func (s *Service) GetProject(ctx context.Context, id int64) (*Project, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ProjectFromDataModel(p)
	tasks, err := s.ListTasks(ctx, TaskFilter{ProjectID: id})
	if err != nil {
		return nil, err
	}
	out.Tasks = tasks
	return out, nil
}

func (s *Service) ListProjects(ctx context.Context, f ProjectFilter) ([]*Project, error) {
	rows, err := s.repo.ListProjects(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list projects", err)
	}
	out := make([]*Project, 0, len(rows))
	for i := range rows {
		out = append(out, ProjectFromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) CreateTask(ctx context.Context, actor *auth.User, projectID int64, dto CreateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	p, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, p) {
		return nil, ErrNotProjectOwner
	}
	due, err := optionalDate("dueDate", dto.DueDate)
	if err != nil {
		return nil, err
	}
	if dto.AssigneeID != nil {
		if err := s.requireUser(ctx, *dto.AssigneeID); err != nil {
			return nil, err
		}
	}

	priority := dto.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	t := &projectDatamodel.Task{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(dto.Title),
		Description: dto.Description,
		AssigneeID:  dto.AssigneeID,
		Status:      TaskTodo,
		Priority:    priority,
		DueDate:     due,
		CreatedBy:   actor.ID,
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, internal.NewInternalError("failed to create task", err)
	}

	s.publish(ctx, events.NewDomainEvent(events.EventTypeTaskCreated, actor.ID, "task", t.ID, map[string]interface{}{
		"project_id":  projectID,
		"assignee_id": t.AssigneeID,
	}))
	return TaskFromDataModel(t), nil
}

// UpdateTask lets the project manager or an admin change anything; the
// assignee may only move the status.
func (s *Service) UpdateTask(ctx context.Context, actor *auth.User, taskID int64, dto UpdateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	t, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	p, err := s.loadProject(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}

	isAssignee := t.AssigneeID != nil && *t.AssigneeID == actor.ID
	switch {
	case canManage(actor, p):
	case isAssignee && dto.StatusOnly():
	default:
		return nil, internal.ErrInsufficientRole
	}

	if dto.Title != nil {
		t.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}
	if dto.Status != nil {
		t.Status = *dto.Status
	}
	if dto.Priority != nil {
		t.Priority = *dto.Priority
	}
	if dto.DueDate != nil {
		if t.DueDate, err = optionalDate("dueDate", *dto.DueDate); err != nil {
			return nil, err
		}
	}
	if dto.AssigneeID != nil {
		if *dto.AssigneeID == 0 {
			t.AssigneeID = nil
		} else {
			if err := s.requireUser(ctx, *dto.AssigneeID); err != nil {
				return nil, err
			}
			t.AssigneeID = dto.AssigneeID
		}
	}

	if err := s.repo.SaveTask(ctx, t); err != nil {
		return nil, internal.NewInternalError("failed to update task", err)
	}
	s.publish(ctx, events.NewDomainEvent(events.EventTypeTaskUpdated, actor.ID, "task", t.ID, map[string]interface{}{
		"project_id": t.ProjectID,
		"status":     t.Status,
	}))
	return TaskFromDataModel(t), nil
}

func (s *Service) DeleteTask(ctx context.Context, actor *auth.User, taskID int64) error {
	t, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	p, err := s.loadProject(ctx, t.ProjectID)
	if err != nil {
		return err
	}
	if !canManage(actor, p) {
		return ErrNotProjectOwner
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return internal.NewInternalError("failed to delete task", err)
	}
	return nil
}

func (s *Service) ListTasks(ctx context.Context, f TaskFilter) ([]*Task, error) {
	rows, err := s.repo.ListTasks(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list tasks", err)
	}
	out := make([]*Task, 0, len(rows))
	for i := range rows {
		out = append(out, TaskFromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) MyTasks(ctx context.Context, actor *auth.User, status string, limit, offset int) ([]*Task, error) {
	return s.ListTasks(ctx, TaskFilter{AssigneeID: actor.ID, Status: status, Limit: limit, Offset: offset})
}

func canManage(actor *auth.User, p *projectDatamodel.Project) bool {
	return actor.Role == auth.RoleAdmin || p.ManagerID == actor.ID
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to check user", err)
	}
	if !ok {
		return ErrUnknownUser
	}
	return nil
}

func (s *Service) loadProject(ctx context.Context, id int64) (*projectDatamodel.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, internal.NewInternalError("failed to load project", err)
	}
	return p, nil
}

func (s *Service) loadTask(ctx context.Context, id int64) (*projectDatamodel.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, internal.NewInternalError("failed to load task", err)
	}
	return t, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
