// Package activity keeps an audit trail of domain events.
package activity

import (
	"context"
	"time"

	activityDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/activity"
	"gorm.io/datatypes"
)

type Entry struct {
	ID         int64          `json:"id"`
	EventID    string         `json:"eventId"`
	UserID     *int64         `json:"userId,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType,omitempty"`
	EntityID   *int64         `json:"entityId,omitempty"`
	Details    datatypes.JSON `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func FromDataModel(l *activityDatamodel.ActivityLog) *Entry {
	return &Entry{
		ID:         l.ID,
		EventID:    l.EventID,
		UserID:     l.UserID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt,
	}
}

type ListFilter struct {
	UserID     int64
	Action     string
	EntityType string
	Limit      int
	Offset     int
}

type Page struct {
	Items []*Entry `json:"items"`
	Total int64    `json:"total"`
}

type Repository interface {
	Create(ctx context.Context, l *activityDatamodel.ActivityLog) error
	List(ctx context.Context, f ListFilter) ([]activityDatamodel.ActivityLog, int64, error)
}
