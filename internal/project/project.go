package project

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	projectDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/project"
)

const (
	StatusPlanning  = "planning"
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var (
	ProjectStatuses = []string{StatusPlanning, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled}
	TaskStatuses    = []string{TaskTodo, TaskInProgress, TaskReview, TaskDone}
	TaskPriorities  = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
)

const dateLayout = "2006-01-02"

// Project is the API view. ManagerID is the managing user's id.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ManagerID   int64     `json:"managerId"`
	Status      string    `json:"status"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	Tasks       []*Task   `json:"tasks,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssigneeID  *int64    `json:"assigneeId,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     *string   `json:"dueDate,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ProjectFromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ManagerID:   p.ManagerID,
		Status:      p.Status,
		StartDate:   formatDate(p.StartDate),
		EndDate:     formatDate(p.EndDate),
		CreatedAt:   p.CreatedAt,
	}
}

func TaskFromDataModel(t *projectDatamodel.Task) *Task {
	return &Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     formatDate(t.DueDate),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

type ProjectFilter struct {
	Status    string
	ManagerID int64
	Limit     int
	Offset    int
}

type TaskFilter struct {
	ProjectID  int64
	AssigneeID int64
	Status     string
	Limit      int
	Offset     int
}

type Repository interface {
	CreateProject(ctx context.Context, p *projectDatamodel.Project) error
	GetProject(ctx context.Context, id int64) (*projectDatamodel.Project, error)
	SaveProject(ctx context.Context, p *projectDatamodel.Project) error
	ListProjects(ctx context.Context, f ProjectFilter) ([]projectDatamodel.Project, error)

	CreateTask(ctx context.Context, t *projectDatamodel.Task) error
	GetTask(ctx context.Context, id int64) (*projectDatamodel.Task, error)
	SaveTask(ctx context.Context, t *projectDatamodel.Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, f TaskFilter) ([]projectDatamodel.Task, error)

	// UserExists backs assignee and manager checks.
	UserExists(ctx context.Context, userID int64) (bool, error)
}

var ErrNotFound = errors.New("project record not found")

var (
	ErrProjectNotFound = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
	ErrTaskNotFound    = internal.NewNotFoundError("Task not found", internal.ErrCodeTaskNotFound)
	ErrUnknownUser     = internal.NewValidationError("Referenced user does not exist", internal.ErrCodeEmployeeNotFound)
	ErrNotProjectOwner = internal.NewForbiddenError("Only the project manager or an admin can change this project", internal.ErrCodeInsufficientRole)
)
