package interview

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	interviewDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/interview"
	"github.com/frahmantamala/hr-management/internal/core/events"
)

// RecruiterPolicy schedules, cancels and sees every interview.
var RecruiterPolicy = auth.AnyOf(auth.RoleAdmin, auth.RoleHR)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Schedule(ctx context.Context, actor *auth.User, dto ScheduleInterviewDTO) (*Interview, error) {
	dto.Normalize()
	at, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.UserExists(ctx, dto.InterviewerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check interviewer", err)
	}
	if !ok {
		return nil, ErrUnknownInterviewer
	}

	mode := dto.Mode
	if mode == "" {
		mode = ModeOnsite
	}
	i := &interviewDatamodel.Interview{
		CandidateName:  dto.CandidateName,
		CandidateEmail: dto.CandidateEmail,
		Position:       dto.Position,
		InterviewerID:  dto.InterviewerID,
		ScheduledAt:    at.UTC(),
		Mode:           mode,
		Location:       strings.TrimSpace(dto.Location),
		Status:         StatusScheduled,
		CreatedBy:      actor.ID,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, internal.NewInternalError("failed to schedule interview", err)
	}

	s.logger.Info("interview scheduled", "interview_id", i.ID, "interviewer_id", i.InterviewerID)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeInterviewScheduled, actor.ID, "interview", i.ID, map[string]interface{}{
		"candidate_name":  i.CandidateName,
		"candidate_email": i.CandidateEmail,
		"position":        i.Position,
		"interviewer_id":  i.InterviewerID,
		"scheduled_at":    i.ScheduledAt.Format(time.RFC3339),
	}))
	return FromDataModel(i), nil
}

// List shows recruiters everything and everyone else their own interviews.
func (s *Service) List(ctx context.Context, actor *auth.User, f ListFilter) ([]*Interview, error) {
	if !RecruiterPolicy.Permits(actor.Role) {
		f.InterviewerID = actor.ID
	}
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list interviews", err)
	}
	out := make([]*Interview, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id int64) (*Interview, error) {
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(actor, i) {
		return nil, ErrInterviewNotFound
	}
	return FromDataModel(i), nil
}

// RecordFeedback completes the interview with a 1-5 rating.
func (s *Service) RecordFeedback(ctx context.Context, actor *auth.User, id int64, dto FeedbackDTO) (*Interview, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(actor, i) {
		return nil, internal.ErrInsufficientRole
	}
	if i.Status == StatusCancelled {
		return nil, ErrNotScheduled
	}

	rating := dto.Rating
	i.Rating = &rating
	i.Feedback = strings.TrimSpace(dto.Feedback)
	i.Status = StatusCompleted
	if err := s.repo.Save(ctx, i); err != nil {
		return nil, internal.NewInternalError("failed to record feedback", err)
	}

	s.publish(ctx, events.NewDomainEvent(events.EventTypeInterviewFeedback, actor.ID, "interview", i.ID, map[string]interface{}{
		"rating": rating,
	}))
	return FromDataModel(i), nil
}

func (s *Service) Cancel(ctx context.Context, actor *auth.User, id int64) (*Interview, error) {
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if i.Status != StatusScheduled {
		return nil, ErrNotScheduled
	}
	i.Status = StatusCancelled
	if err := s.repo.Save(ctx, i); err != nil {
		return nil, internal.NewInternalError("failed to cancel interview", err)
	}

	s.publish(ctx, events.NewDomainEvent(events.EventTypeInterviewCancelled, actor.ID, "interview", i.ID, nil))
	return FromDataModel(i), nil
}

func (s *Service) visible(actor *auth.User, i *interviewDatamodel.Interview) bool {
	return RecruiterPolicy.Permits(actor.Role) || i.InterviewerID == actor.ID
}

func (s *Service) load(ctx context.Context, id int64) (*interviewDatamodel.Interview, error) {
	i, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, internal.NewInternalError("failed to load interview", err)
	}
	return i, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
