package postgres

import (
	"context"
	"errors"

	projectDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/project"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) CreateProject(ctx context.Context, p *projectDatamodel.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProjectRepository) GetProject(ctx context.Context, id int64) (*projectDatamodel.Project, error) {
	var p projectDatamodel.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProjectRepository) SaveProject(ctx context.Context, p *projectDatamodel.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProjectRepository) ListProjects(ctx context.Context, f project.ProjectFilter) ([]projectDatamodel.Project, error) {
	q := r.db.WithContext(ctx).Model(&projectDatamodel.Project{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ManagerID > 0 {
		q = q.Where("manager_id = ?", f.ManagerID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var rows []projectDatamodel.Project
	err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *ProjectRepository) CreateTask(ctx context.Context, t *projectDatamodel.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ProjectRepository) GetTask(ctx context.Context, id int64) (*projectDatamodel.Task, error) {
	var t projectDatamodel.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *ProjectRepository) SaveTask(ctx context.Context, t *projectDatamodel.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *ProjectRepository) DeleteTask(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&projectDatamodel.Task{}).Error
}

func (r *ProjectRepository) ListTasks(ctx context.Context, f project.TaskFilter) ([]projectDatamodel.Task, error) {
	q := r.db.WithContext(ctx).Model(&projectDatamodel.Task{})
	if f.ProjectID > 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.AssigneeID > 0 {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var rows []projectDatamodel.Task
	err := q.Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *ProjectRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&n).Error
	return n > 0, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return project.ErrNotFound
	}
	return err
}
