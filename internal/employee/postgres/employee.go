package postgres

import (
	"context"
	"errors"
	"strings"

	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Transaction(ctx context.Context, fn func(tx employee.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EmployeeRepository{db: tx})
	})
}

func (r *EmployeeRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

func (r *EmployeeRepository) CreateUser(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *EmployeeRepository) CreateProfile(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID int64) (*employee.Record, error) {
	var rec employee.Record
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&rec.User).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrNotFound
		}
		return nil, err
	}

	var profiles []employeeDatamodel.Employee
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&profiles).Error; err != nil {
		return nil, err
	}
	if len(profiles) == 1 {
		rec.Profile = &profiles[0]
	}
	return &rec, nil
}

// List pages over users and attaches profiles with a second query.
func (r *EmployeeRepository) List(ctx context.Context, f employee.ListFilter) ([]employee.Record, error) {
	q := r.db.WithContext(ctx).Model(&userDatamodel.User{})
	if f.Role != "" {
		q = q.Where("users.role = ?", f.Role)
	}
	if f.Active != nil {
		q = q.Where("users.is_active = ?", *f.Active)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?", like, like)
	}
	if f.Department != "" {
		q = q.Where("users.id IN (?)",
			r.db.Model(&employeeDatamodel.Employee{}).Select("user_id").Where("department = ?", f.Department))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var users []userDatamodel.User
	if err := q.Order("users.id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []employee.Record{}, nil
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var profiles []employeeDatamodel.Employee
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	byUser := make(map[int64]*employeeDatamodel.Employee, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}

	out := make([]employee.Record, len(users))
	for i, u := range users {
		out[i] = employee.Record{User: u, Profile: byUser[u.ID]}
	}
	return out, nil
}

func (r *EmployeeRepository) UpdateUser(ctx context.Context, userID int64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) SaveProfile(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&employeeDatamodel.Employee{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", userID).Delete(&userDatamodel.User{}).Error
}
