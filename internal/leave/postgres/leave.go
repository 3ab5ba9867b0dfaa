package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-management/internal/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaveRepository implements leave.Repository using GORM
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Transaction(ctx context.Context, fn func(tx leave.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LeaveRepository{db: tx})
	})
}

func (r *LeaveRepository) ListLeaveTypes(ctx context.Context) ([]leaveDatamodel.LeaveType, error) {
	var types []leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *LeaveRepository) GetLeaveType(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	var t leaveDatamodel.LeaveType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *LeaveRepository) CreateLeaveType(ctx context.Context, t *leaveDatamodel.LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// LockEmployee takes a row lock on the employee for the rest of the transaction.
func (r *LeaveRepository) LockEmployee(ctx context.Context, employeeID int64) error {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", employeeID).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return leave.ErrNotFound
	}
	return nil
}

// GetBalanceForUpdate locks the balance row for the rest of the transaction.
func (r *LeaveRepository) GetBalanceForUpdate(ctx context.Context, employeeID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveBalance, error) {
	var b leaveDatamodel.LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND leave_type_id = ? AND year = ?", employeeID, leaveTypeID, year).
		First(&b).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *LeaveRepository) ListBalances(ctx context.Context, employeeID int64, year int) ([]leaveDatamodel.LeaveBalance, error) {
	var balances []leaveDatamodel.LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		Order("leave_type_id ASC").
		Find(&balances).Error
	return balances, err
}

func (r *LeaveRepository) SaveBalance(ctx context.Context, b *leaveDatamodel.LeaveBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// CountByStartDate counts applications whose start date falls in [from, to).
func (r *LeaveRepository) CountByStartDate(ctx context.Context, employeeID int64, from, to time.Time, statuses []string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveApplication{}).
		Where("employee_id = ? AND start_date >= ? AND start_date < ?", employeeID, from, to).
		Where("status IN ?", statuses).
		Count(&n).Error
	return n, err
}

func (r *LeaveRepository) CreateApplication(ctx context.Context, a *leaveDatamodel.LeaveApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *LeaveRepository) GetApplication(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error) {
	var a leaveDatamodel.LeaveApplication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *LeaveRepository) GetApplicationForUpdate(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error) {
	var a leaveDatamodel.LeaveApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *LeaveRepository) UpdateApplication(ctx context.Context, a *leaveDatamodel.LeaveApplication) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *LeaveRepository) ListApplications(ctx context.Context, f leave.ListFilter) ([]leaveDatamodel.LeaveApplication, error) {
	q := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveApplication{})
	if f.EmployeeID > 0 {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if status := strings.TrimSpace(f.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var apps []leaveDatamodel.LeaveApplication
	err := q.Order("created_at DESC").Order("id DESC").Find(&apps).Error
	return apps, err
}

func (r *LeaveRepository) EmployeeContact(ctx context.Context, employeeID int64) (string, string, error) {
	var row struct {
		Email     string
		FirstName string
		LastName  string
	}
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("users.email, employees.first_name, employees.last_name").
		Joins("JOIN users ON users.id = employees.user_id").
		Where("employees.id = ?", employeeID).
		Take(&row).Error
	if err != nil {
		return "", "", notFound(err)
	}
	return row.Email, strings.TrimSpace(row.FirstName + " " + row.LastName), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leave.ErrNotFound
	}
	return err
}
