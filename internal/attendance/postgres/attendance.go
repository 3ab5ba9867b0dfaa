package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hr-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/attendance"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, rec *attendanceDatamodel.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AttendanceRepository) GetForDay(ctx context.Context, employeeID int64, workDate string) (*attendanceDatamodel.AttendanceRecord, error) {
	var rec attendanceDatamodel.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND work_date = ?", employeeID, workDate).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *AttendanceRepository) Update(ctx context.Context, rec *attendanceDatamodel.AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// List relies on work_date being stored as YYYY-MM-DD so string comparison orders by day.
func (r *AttendanceRepository) List(ctx context.Context, f attendance.ListFilter) ([]attendanceDatamodel.AttendanceRecord, error) {
	q := r.db.WithContext(ctx).Model(&attendanceDatamodel.AttendanceRecord{})
	if f.EmployeeID > 0 {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.From != "" {
		q = q.Where("work_date >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("work_date <= ?", f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []attendanceDatamodel.AttendanceRecord
	err := q.Order("work_date DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}
