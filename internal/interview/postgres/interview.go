package postgres

import (
	"context"
	"errors"

	interviewDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/interview"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/interview"
	"gorm.io/gorm"
)

type InterviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

func (r *InterviewRepository) Create(ctx context.Context, i *interviewDatamodel.Interview) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *InterviewRepository) Get(ctx context.Context, id int64) (*interviewDatamodel.Interview, error) {
	var i interviewDatamodel.Interview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&i).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, interview.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *InterviewRepository) Save(ctx context.Context, i *interviewDatamodel.Interview) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *InterviewRepository) List(ctx context.Context, f interview.ListFilter) ([]interviewDatamodel.Interview, error) {
	q := r.db.WithContext(ctx).Model(&interviewDatamodel.Interview{})
	if f.InterviewerID > 0 {
		q = q.Where("interviewer_id = ?", f.InterviewerID)
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
	var rows []interviewDatamodel.Interview
	err := q.Order("scheduled_at ASC").Find(&rows).Error
	return rows, err
}

func (r *InterviewRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&n).Error
	return n > 0, err
}
