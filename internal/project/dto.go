package project

import (
	"time"

	"github.com/frahmantamala/hr-management/internal/core/common/validation"
)

type CreateProjectDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   int64  `json:"managerId"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (d CreateProjectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("description", d.Description).MaxLength(5000)
	v.Field("status", d.Status).OneOf(ProjectStatuses...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateProjectDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ManagerID   *int64  `json:"managerId"`
	Status      *string `json:"status"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

func (d UpdateProjectDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(200)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(ProjectStatuses...)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CreateTaskDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeID  *int64 `json:"assigneeId"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

func (d CreateTaskDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("priority", d.Priority).OneOf(TaskPriorities...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateTaskDTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssigneeID  *int64  `json:"assigneeId"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// StatusOnly reports whether the update touches nothing but the status.
func (d UpdateTaskDTO) StatusOnly() bool {
	return d.Title == nil && d.Description == nil && d.AssigneeID == nil && d.Priority == nil && d.DueDate == nil
}

func (d UpdateTaskDTO) Validate() error {
	v := validation.NewValidator()
	if d.Title != nil {
		v.Field("title", *d.Title).Required().MaxLength(200)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(TaskStatuses...)
	}
	if d.Priority != nil {
		v.Field("priority", *d.Priority).Required().OneOf(TaskPriorities...)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func optionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
