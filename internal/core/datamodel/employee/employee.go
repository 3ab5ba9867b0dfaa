package employee

import "time"

// Employee is the 1:1 profile attached to a user row; deleting the user cascades here.
type Employee struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;uniqueIndex;not null"`
	FirstName   string     `gorm:"column:first_name;not null"`
	LastName    string     `gorm:"column:last_name"`
	Phone       string     `gorm:"column:phone"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth"`
	JoiningDate time.Time  `gorm:"column:joining_date;not null"`
	Department  string     `gorm:"column:department"`
	Designation string     `gorm:"column:designation"`
	ManagerID   *int64     `gorm:"column:manager_id;index"`
	Salary      int64      `gorm:"column:salary"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
