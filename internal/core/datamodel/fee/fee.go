package fee

import "time"

// Amounts are stored in minor currency units.
type Fee struct {
	ID         int64     `gorm:"primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;not null;index"`
	Title      string    `gorm:"column:title;not null"`
	Amount     int64     `gorm:"column:amount;not null"`
	PaidAmount int64     `gorm:"column:paid_amount;not null"`
	Status     string    `gorm:"column:status;not null"`
	DueDate    time.Time `gorm:"column:due_date;not null"`
	CreatedBy  int64     `gorm:"column:created_by;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type FeePayment struct {
	ID         int64     `gorm:"primaryKey"`
	FeeID      int64     `gorm:"column:fee_id;not null;index"`
	Amount     int64     `gorm:"column:amount;not null"`
	Method     string    `gorm:"column:method"`
	Reference  string    `gorm:"column:reference"`
	RecordedBy int64     `gorm:"column:recorded_by;not null"`
	PaidAt     time.Time `gorm:"column:paid_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
