package fee

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	feeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/fee"
)

const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

var Statuses = []string{StatusPending, StatusPartial, StatusPaid}

type Payment struct {
	ID         int64     `json:"id"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method,omitempty"`
	Reference  string    `json:"reference,omitempty"`
	RecordedBy int64     `json:"recordedBy"`
	PaidAt     time.Time `json:"paidAt"`
}

// Fee amounts are minor currency units.
type Fee struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employeeId"`
	Title      string     `json:"title"`
	Amount     int64      `json:"amount"`
	PaidAmount int64      `json:"paidAmount"`
	Balance    int64      `json:"balance"`
	Status     string     `json:"status"`
	DueDate    string     `json:"dueDate"`
	CreatedBy  int64      `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	Payments   []*Payment `json:"payments,omitempty"`
}

func FromDataModel(f *feeDatamodel.Fee, payments []feeDatamodel.FeePayment) *Fee {
	out := &Fee{
		ID:         f.ID,
		EmployeeID: f.EmployeeID,
		Title:      f.Title,
		Amount:     f.Amount,
		PaidAmount: f.PaidAmount,
		Balance:    f.Amount - f.PaidAmount,
		Status:     f.Status,
		DueDate:    f.DueDate.Format("2006-01-02"),
		CreatedBy:  f.CreatedBy,
		CreatedAt:  f.CreatedAt,
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, &Payment{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Reference:  p.Reference,
			RecordedBy: p.RecordedBy,
			PaidAt:     p.PaidAt,
		})
	}
	return out
}

// StatusFor derives the fee status from how much has been paid.
func StatusFor(amount, paid int64) string {
	switch {
	case paid <= 0:
		return StatusPending
	case paid >= amount:
		return StatusPaid
	default:
		return StatusPartial
	}
}

type ListFilter struct {
	EmployeeID int64
	Status     string
	Limit      int
	Offset     int
}

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error
	Create(ctx context.Context, f *feeDatamodel.Fee) error
	Get(ctx context.Context, id int64) (*feeDatamodel.Fee, error)
	GetForUpdate(ctx context.Context, id int64) (*feeDatamodel.Fee, error)
	Save(ctx context.Context, f *feeDatamodel.Fee) error
	List(ctx context.Context, f ListFilter) ([]feeDatamodel.Fee, error)
	CreatePayment(ctx context.Context, p *feeDatamodel.FeePayment) error
	ListPayments(ctx context.Context, feeID int64) ([]feeDatamodel.FeePayment, error)
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
}

var ErrNotFound = errors.New("fee not found")

var (
	ErrFeeNotFound     = internal.NewNotFoundError("Fee not found", internal.ErrCodeFeeNotFound)
	ErrOverpayment     = internal.NewValidationFieldError("amount", "payment exceeds the outstanding balance", internal.ErrCodeOverpayment)
	ErrAlreadyPaid     = internal.NewValidationError("Fee is already fully paid", internal.ErrCodeOverpayment)
	ErrUnknownEmployee = internal.NewValidationFieldError("employeeId", "employee does not exist", internal.ErrCodeEmployeeNotFound)
	ErrProfileRequired = internal.NewNotFoundError("Employee profile not found", internal.ErrCodeEmployeeNotFound)
)
