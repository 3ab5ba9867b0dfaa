package fee

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
)

type CreateFeeDTO struct {
	EmployeeID int64  `json:"employeeId"`
	Title      string `json:"title"`
	Amount     int64  `json:"amount"`
	DueDate    string `json:"dueDate"`
}

// Validate returns the parsed due date.
func (d *CreateFeeDTO) Validate() (time.Time, error) {
	d.Title = strings.TrimSpace(d.Title)
	v := validation.NewValidator()
	v.Field("employeeId", d.EmployeeID).Required()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("amount", d.Amount).Required().MinInt(1, internal.ErrCodeInvalidAmount)
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}
	due, appErr := validation.ParseDate("dueDate", d.DueDate)
	if appErr != nil {
		return time.Time{}, appErr
	}
	return due, nil
}

type RecordPaymentDTO struct {
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	PaidAt    string `json:"paidAt"`
}

// Validate returns the payment time, defaulting to now.
func (d *RecordPaymentDTO) Validate(now time.Time) (time.Time, error) {
	d.Method = strings.ToLower(strings.TrimSpace(d.Method))
	d.Reference = strings.TrimSpace(d.Reference)
	v := validation.NewValidator()
	v.Field("amount", d.Amount).Required().MinInt(1, internal.ErrCodeInvalidAmount)
	v.Field("method", d.Method).MaxLength(50)
	v.Field("reference", d.Reference).MaxLength(200)
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}
	if d.PaidAt == "" {
		return now, nil
	}
	at, err := time.Parse(time.RFC3339, d.PaidAt)
	if err != nil {
		return time.Time{}, internal.NewValidationFieldError("paidAt", "paidAt must be an RFC3339 timestamp", internal.ErrCodeInvalidDate)
	}
	return at, nil
}
