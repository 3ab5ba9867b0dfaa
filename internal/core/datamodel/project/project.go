package project

import "time"

type Project struct {
	ID          int64      `gorm:"primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Description string     `gorm:"column:description"`
	ManagerID   int64      `gorm:"column:manager_id;not null;index"`
	Status      string     `gorm:"column:status;not null"`
	StartDate   *time.Time `gorm:"column:start_date"`
	EndDate     *time.Time `gorm:"column:end_date"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type Task struct {
	ID          int64      `gorm:"primaryKey"`
	ProjectID   int64      `gorm:"column:project_id;not null;index"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description"`
	AssigneeID  *int64     `gorm:"column:assignee_id;index"`
	Status      string     `gorm:"column:status;not null"`
	Priority    string     `gorm:"column:priority;not null"`
	DueDate     *time.Time `gorm:"column:due_date"`
	CreatedBy   int64      `gorm:"column:created_by;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
