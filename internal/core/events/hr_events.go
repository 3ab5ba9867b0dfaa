package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserLoggedIn       = "auth.logged_in"
	EventTypeSessionSuperseded  = "auth.session_superseded"
	EventTypeEmployeeRegistered = "employee.registered"
	EventTypeEmployeeUpdated    = "employee.updated"
	EventTypeEmployeeStatus     = "employee.status_changed"
	EventTypeEmployeeDeleted    = "employee.deleted"
	EventTypeClockIn            = "attendance.clock_in"
	EventTypeClockOut           = "attendance.clock_out"
	EventTypeLeaveApplied       = "leave.applied"
	EventTypeLeaveApproved      = "leave.approved"
	EventTypeLeaveRejected      = "leave.rejected"
	EventTypeLeaveCancelled     = "leave.cancelled"
	EventTypeLeaveBalanceSet    = "leave.balance_set"
	EventTypeProjectCreated     = "project.created"
	EventTypeProjectUpdated     = "project.updated"
	EventTypeTaskCreated        = "task.created"
	EventTypeTaskUpdated        = "task.updated"
	EventTypeInterviewScheduled = "interview.scheduled"
	EventTypeInterviewFeedback  = "interview.feedback_recorded"
	EventTypeInterviewCancelled = "interview.cancelled"
	EventTypeChannelCreated     = "discussion.channel_created"
	EventTypeChannelMemberAdded = "discussion.member_added"
	EventTypeMessagePosted      = "discussion.message_posted"
	EventTypeFeeCreated         = "fee.created"
	EventTypeFeePaymentRecorded = "fee.payment_recorded"
)

// AllEventTypes lists every domain event, used by the activity recorder.
var AllEventTypes = []string{
	EventTypeUserLoggedIn,
	EventTypeSessionSuperseded,
	EventTypeEmployeeRegistered,
	EventTypeEmployeeUpdated,
	EventTypeEmployeeStatus,
	EventTypeEmployeeDeleted,
	EventTypeClockIn,
	EventTypeClockOut,
	EventTypeLeaveApplied,
	EventTypeLeaveApproved,
	EventTypeLeaveRejected,
	EventTypeLeaveCancelled,
	EventTypeLeaveBalanceSet,
	EventTypeProjectCreated,
	EventTypeProjectUpdated,
	EventTypeTaskCreated,
	EventTypeTaskUpdated,
	EventTypeInterviewScheduled,
	EventTypeInterviewFeedback,
	EventTypeInterviewCancelled,
	EventTypeChannelCreated,
	EventTypeChannelMemberAdded,
	EventTypeMessagePosted,
	EventTypeFeeCreated,
	EventTypeFeePaymentRecorded,
}

// DomainEvent records who did what to which entity.
type DomainEvent struct {
	BaseEvent
	ActorID    int64  `json:"actor_id"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
}

func NewDomainEvent(eventType string, actorID int64, entityType string, entityID int64, data map[string]interface{}) *DomainEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &DomainEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
	}
}

// StringField reads a string entry from the event payload.
func (e *DomainEvent) StringField(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}
