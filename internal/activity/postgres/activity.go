package postgres

import (
	"context"

	"github.com/frahmantamala/hr-management/internal/activity"
	activityDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/activity"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, l *activityDatamodel.ActivityLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ActivityRepository) List(ctx context.Context, f activity.ListFilter) ([]activityDatamodel.ActivityLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&activityDatamodel.ActivityLog{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var rows []activityDatamodel.ActivityLog
	err := q.Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, total, err
}
