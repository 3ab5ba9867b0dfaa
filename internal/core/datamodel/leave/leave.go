package leave

import "time"

type LeaveType struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	DefaultDays float64   `gorm:"column:default_days;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

type LeaveBalance struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeID   int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_leave_balance_key"`
	LeaveTypeID  int64     `gorm:"column:leave_type_id;not null;uniqueIndex:idx_leave_balance_key"`
	Year         int       `gorm:"column:year;not null;uniqueIndex:idx_leave_balance_key"`
	TotalDays    float64   `gorm:"column:total_days;not null"`
	UsedDays     float64   `gorm:"column:used_days;not null"`
	PendingDays  float64   `gorm:"column:pending_days;not null"`
	TotalHours   float64   `gorm:"column:total_hours;not null"`
	UsedHours    float64   `gorm:"column:used_hours;not null"`
	PendingHours float64   `gorm:"column:pending_hours;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type LeaveApplication struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      int64      `gorm:"column:employee_id;not null;index"`
	LeaveTypeID     int64      `gorm:"column:leave_type_id;not null"`
	StartDate       time.Time  `gorm:"column:start_date;not null;index"`
	EndDate         time.Time  `gorm:"column:end_date;not null"`
	DurationMode    string     `gorm:"column:duration_mode;not null"`
	HalfDaySession  *string    `gorm:"column:half_day_session"`
	StartTime       *string    `gorm:"column:start_time;size:5"`
	EndTime         *string    `gorm:"column:end_time;size:5"`
	Days            float64    `gorm:"column:days;not null"`
	Hours           float64    `gorm:"column:hours;not null"`
	Reason          string     `gorm:"column:reason"`
	Status          string     `gorm:"column:status;not null;index"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	ReviewedBy      *int64     `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
