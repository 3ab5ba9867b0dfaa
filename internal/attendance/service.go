package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	attendanceDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/attendance"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/geofence"
)

type Service struct {
	repo      Repository
	geofence  GeofenceEvaluator
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, geofence GeofenceEvaluator, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		geofence:  geofence,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ClockIn opens today's record after the geofence admits the caller.
func (s *Service) ClockIn(ctx context.Context, actor *auth.User, dto ClockDTO, variant internal.Variant) (*Record, error) {
	if actor.EmployeeID == nil {
		return nil, ErrProfileRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	loc, err := s.checkLocation(actor, dto, variant)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day := now.Format(dateLayout)
	if _, err := s.repo.GetForDay(ctx, *actor.EmployeeID, day); err == nil {
		return nil, ErrAlreadyClockedIn
	} else if !errors.Is(err, ErrNotFound) {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}

	rec := &attendanceDatamodel.AttendanceRecord{
		EmployeeID: *actor.EmployeeID,
		WorkDate:   day,
		ClockInAt:  now,
		Note:       dto.Note,
	}
	if dto.Location != nil {
		rec.ClockInLatitude = &dto.Location.Latitude
		rec.ClockInLongitude = &dto.Location.Longitude
	}
	if loc != nil {
		rec.ClockInDistanceKm = &loc.DistanceKm
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		// a concurrent clock-in for the same day loses on the unique index
		if _, lookupErr := s.repo.GetForDay(ctx, *actor.EmployeeID, day); lookupErr == nil {
			return nil, ErrAlreadyClockedIn
		}
		return nil, internal.NewInternalError("failed to record clock-in", err)
	}

	s.logger.Info("clocked in", "employee_id", rec.EmployeeID, "work_date", day)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeClockIn, actor.ID, "attendance", rec.ID, map[string]interface{}{
		"employee_id": rec.EmployeeID,
		"work_date":   day,
	}))
	return FromDataModel(rec), nil
}

// ClockOut closes today's record and stores the worked minutes.
func (s *Service) ClockOut(ctx context.Context, actor *auth.User, dto ClockDTO, variant internal.Variant) (*Record, error) {
	if actor.EmployeeID == nil {
		return nil, ErrProfileRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	loc, err := s.checkLocation(actor, dto, variant)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day := now.Format(dateLayout)
	rec, err := s.repo.GetForDay(ctx, *actor.EmployeeID, day)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, internal.NewInternalError("failed to load attendance", err)
	}
	if rec.ClockOutAt != nil {
		return nil, ErrAlreadyClockedOut
	}

	rec.ClockOutAt = &now
	rec.WorkedMinutes = WorkedMinutes(rec.ClockInAt, now)
	if dto.Location != nil {
		rec.ClockOutLatitude = &dto.Location.Latitude
		rec.ClockOutLongitude = &dto.Location.Longitude
	}
	if loc != nil {
		rec.ClockOutDistanceKm = &loc.DistanceKm
	}
	if dto.Note != "" {
		rec.Note = dto.Note
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, internal.NewInternalError("failed to record clock-out", err)
	}

	s.logger.Info("clocked out", "employee_id", rec.EmployeeID, "work_date", day, "worked_minutes", rec.WorkedMinutes)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeClockOut, actor.ID, "attendance", rec.ID, map[string]interface{}{
		"employee_id":    rec.EmployeeID,
		"work_date":      day,
		"worked_minutes": rec.WorkedMinutes,
	}))
	return FromDataModel(rec), nil
}

func (s *Service) Today(ctx context.Context, actor *auth.User) (*Today, error) {
	day := s.now().Format(dateLayout)
	out := &Today{WorkDate: day}
	if actor.EmployeeID == nil {
		return out, nil
	}

	rec, err := s.repo.GetForDay(ctx, *actor.EmployeeID, day)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return out, nil
		}
		return nil, internal.NewInternalError("failed to load attendance", err)
	}
	out.ClockedIn = true
	out.ClockedOut = rec.ClockOutAt != nil
	out.Record = FromDataModel(rec)
	return out, nil
}

func (s *Service) ListMine(ctx context.Context, actor *auth.User, f ListFilter) ([]*Record, error) {
	if actor.EmployeeID == nil {
		return []*Record{}, nil
	}
	f.EmployeeID = *actor.EmployeeID
	return s.List(ctx, f)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Record, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list attendance", err)
	}
	out := make([]*Record, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) checkLocation(actor *auth.User, dto ClockDTO, variant internal.Variant) (*geofence.Result, error) {
	if s.geofence == nil {
		return nil, nil
	}
	res, err := s.geofence.Evaluate(geofence.Check{
		Role:              string(actor.Role),
		UserID:            actor.ID,
		Location:          dto.Location,
		SkipLocationCheck: dto.SkipLocationCheck,
		Variant:           variant,
	})
	if err != nil {
		s.logger.Info("clock request rejected by geofence", "user_id", actor.ID, "error", err)
		return nil, err
	}
	return res, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
