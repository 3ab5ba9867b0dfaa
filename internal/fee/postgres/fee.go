package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	feeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/fee"
	"github.com/frahmantamala/hr-management/internal/fee"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeeRepository struct {
	db *gorm.DB
}

func NewFeeRepository(db *gorm.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

func (r *FeeRepository) Transaction(ctx context.Context, fn func(tx fee.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&FeeRepository{db: tx})
	})
}

func (r *FeeRepository) Create(ctx context.Context, f *feeDatamodel.Fee) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FeeRepository) Get(ctx context.Context, id int64) (*feeDatamodel.Fee, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *FeeRepository) GetForUpdate(ctx context.Context, id int64) (*feeDatamodel.Fee, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *FeeRepository) get(db *gorm.DB, id int64) (*feeDatamodel.Fee, error) {
	var f feeDatamodel.Fee
	if err := db.Where("id = ?", id).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fee.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FeeRepository) Save(ctx context.Context, f *feeDatamodel.Fee) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FeeRepository) List(ctx context.Context, f fee.ListFilter) ([]feeDatamodel.Fee, error) {
	q := r.db.WithContext(ctx).Model(&feeDatamodel.Fee{})
	if f.EmployeeID > 0 {
		q = q.Where("employee_id = ?", f.EmployeeID)
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
	var rows []feeDatamodel.Fee
	err := q.Order("due_date ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *FeeRepository) CreatePayment(ctx context.Context, p *feeDatamodel.FeePayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *FeeRepository) ListPayments(ctx context.Context, feeID int64) ([]feeDatamodel.FeePayment, error) {
	var rows []feeDatamodel.FeePayment
	err := r.db.WithContext(ctx).Where("fee_id = ?", feeID).Order("paid_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *FeeRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("id = ?", employeeID).Count(&n).Error
	return n > 0, err
}
