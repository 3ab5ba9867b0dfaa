package activity

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityLog struct {
	ID         int64          `gorm:"primaryKey"`
	EventID    string         `gorm:"column:event_id;size:36"`
	UserID     *int64         `gorm:"column:user_id;index"`
	Action     string         `gorm:"column:action;not null;index"`
	EntityType string         `gorm:"column:entity_type"`
	EntityID   *int64         `gorm:"column:entity_id"`
	Details    datatypes.JSON `gorm:"column:details"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime;index"`
}
