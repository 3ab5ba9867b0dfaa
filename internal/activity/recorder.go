package activity

import (
	"context"
	"encoding/json"
	"log/slog"

	activityDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/activity"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"gorm.io/datatypes"
)

// Recorder turns published events into activity rows. Write failures are
// logged and swallowed so the publishing request never sees them.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Handle(ctx context.Context, event events.Event) error {
	row := &activityDatamodel.ActivityLog{
		EventID: event.EventID(),
		Action:  event.EventType(),
	}
	if de, ok := event.(*events.DomainEvent); ok {
		if de.ActorID > 0 {
			actor := de.ActorID
			row.UserID = &actor
		}
		row.EntityType = de.EntityType
		if de.EntityID > 0 {
			entity := de.EntityID
			row.EntityID = &entity
		}
	}

	if payload := event.Payload(); payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			r.logger.Warn("activity details not serialisable", "event_type", event.EventType(), "error", err)
		} else {
			row.Details = datatypes.JSON(raw)
		}
	}

	if err := r.repo.Create(ctx, row); err != nil {
		r.logger.Warn("failed to record activity",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
	}
	return nil
}

func (r *Recorder) RegisterEventHandlers(bus *events.EventBus) {
	bus.SubscribeAll(events.AllEventTypes, r.Handle)
	r.logger.Info("activity recorder registered", "event_types", len(events.AllEventTypes))
}
