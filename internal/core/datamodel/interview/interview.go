package interview

import "time"

type Interview struct {
	ID             int64     `gorm:"primaryKey"`
	CandidateName  string    `gorm:"column:candidate_name;not null"`
	CandidateEmail string    `gorm:"column:candidate_email;not null"`
	Position       string    `gorm:"column:position;not null"`
	InterviewerID  int64     `gorm:"column:interviewer_id;not null;index"`
	ScheduledAt    time.Time `gorm:"column:scheduled_at;not null"`
	Mode           string    `gorm:"column:mode;not null"`
	Location       string    `gorm:"column:location"`
	Status         string    `gorm:"column:status;not null"`
	Rating         *int      `gorm:"column:rating"`
	Feedback       string    `gorm:"column:feedback"`
	CreatedBy      int64     `gorm:"column:created_by;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
