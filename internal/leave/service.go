package leave

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-management/internal/core/events"
)

// Repository is the leave store. Transaction runs fn against a repository bound
// to a single database transaction.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	ListLeaveTypes(ctx context.Context) ([]leaveDatamodel.LeaveType, error)
	GetLeaveType(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error)
	CreateLeaveType(ctx context.Context, t *leaveDatamodel.LeaveType) error

	// LockEmployee serialises leave applications of one employee until the
	// transaction ends; the monthly count is only stable under this lock.
	LockEmployee(ctx context.Context, employeeID int64) error
	GetBalanceForUpdate(ctx context.Context, employeeID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveBalance, error)
	ListBalances(ctx context.Context, employeeID int64, year int) ([]leaveDatamodel.LeaveBalance, error)
	SaveBalance(ctx context.Context, b *leaveDatamodel.LeaveBalance) error

	CountByStartDate(ctx context.Context, employeeID int64, from, to time.Time, statuses []string) (int64, error)
	CreateApplication(ctx context.Context, a *leaveDatamodel.LeaveApplication) error
	GetApplication(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error)
	GetApplicationForUpdate(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error)
	UpdateApplication(ctx context.Context, a *leaveDatamodel.LeaveApplication) error
	ListApplications(ctx context.Context, f ListFilter) ([]leaveDatamodel.LeaveApplication, error)

	// EmployeeContact returns the applicant's user email and display name.
	EmployeeContact(ctx context.Context, employeeID int64) (email, name string, err error)
}

// ReviewerPolicy decides who may approve, reject and list every application.
var ReviewerPolicy = auth.AtLeast(auth.RoleProjectManager)

var (
	ErrApplicationNotFound = internal.NewNotFoundError("Leave application not found", internal.ErrCodeLeaveNotFound)
	ErrLeaveTypeNotFound   = internal.NewNotFoundError("Leave type not found", internal.ErrCodeNotFound)
	ErrNotPending          = internal.NewValidationError("Only pending leave applications can be changed", internal.ErrCodeInvalidLeaveState)
	ErrProfileRequired     = internal.NewValidationError("An employee profile is required to apply for leave", internal.ErrCodeEmployeeNotFound)
	ErrNoBalance           = internal.NewValidationError("No leave balance is configured for this leave type and year", internal.ErrCodeLeaveBalance)
	ErrSelfReview          = internal.NewForbiddenError("You cannot review your own leave application", internal.ErrCodeInsufficientRole)
)

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

// Apply validates the request against the monthly quota and the balance, then
// reserves the duration as pending and stores the application in one transaction.
func (s *Service) Apply(ctx context.Context, actor *auth.User, dto ApplyLeaveDTO) (*Application, error) {
	if actor.EmployeeID == nil {
		return nil, ErrProfileRequired
	}
	employeeID := *actor.EmployeeID

	if err := dto.Validate(); err != nil {
		return nil, err
	}
	req, err := ComputeDuration(dto)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetLeaveType(ctx, req.LeaveTypeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrLeaveTypeNotFound
		}
		return nil, internal.NewInternalError("failed to load leave type", err)
	}

	var created *leaveDatamodel.LeaveApplication
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockEmployee(ctx, employeeID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrProfileRequired
			}
			return internal.NewInternalError("failed to lock employee", err)
		}
		prevStart, monthStart, nextMonth := monthBounds(req.StartDate)

		existing, err := tx.CountByStartDate(ctx, employeeID, monthStart, nextMonth, []string{StatusPending, StatusApproved})
		if err != nil {
			return internal.NewInternalError("failed to count leave applications", err)
		}
		prevApproved, err := tx.CountByStartDate(ctx, employeeID, prevStart, monthStart, []string{StatusApproved})
		if err != nil {
			return internal.NewInternalError("failed to count leave applications", err)
		}
		if err := CheckMonthlyQuota(req.StartDate, existing, prevApproved); err != nil {
			return err
		}

		balance, err := tx.GetBalanceForUpdate(ctx, employeeID, req.LeaveTypeID, req.StartDate.Year())
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNoBalance
			}
			return internal.NewInternalError("failed to load leave balance", err)
		}
		if err := CheckBalance(balance, req); err != nil {
			return err
		}

		reserve(balance, req)
		if err := tx.SaveBalance(ctx, balance); err != nil {
			return internal.NewInternalError("failed to update leave balance", err)
		}

		app := &leaveDatamodel.LeaveApplication{
			EmployeeID:   employeeID,
			LeaveTypeID:  req.LeaveTypeID,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			DurationMode: string(req.Mode),
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			Days:         req.Days,
			Hours:        req.Hours,
			Reason:       req.Reason,
			Status:       StatusPending,
		}
		if req.HalfDaySession != nil {
			session := string(*req.HalfDaySession)
			app.HalfDaySession = &session
		}
		if err := tx.CreateApplication(ctx, app); err != nil {
			return internal.NewInternalError("failed to create leave application", err)
		}
		created = app
		return nil
	})
	if err != nil {
		s.logger.Info("leave application rejected", "employee_id", employeeID, "error", err)
		return nil, err
	}

	s.logger.Info("leave application created",
		"leave_id", created.ID,
		"employee_id", employeeID,
		"mode", created.DurationMode,
		"days", created.Days)

	s.publish(ctx, events.NewDomainEvent(events.EventTypeLeaveApplied, actor.ID, "leave_application", created.ID, map[string]interface{}{
		"employee_id":   employeeID,
		"employee_name": actor.Name,
		"email":         actor.Email,
		"start_date":    created.StartDate.Format(dateLayout),
		"end_date":      created.EndDate.Format(dateLayout),
		"days":          created.Days,
		"mode":          created.DurationMode,
	}))

	return ApplicationFromDataModel(created), nil
}

// Approve moves the reserved duration from pending to used.
func (s *Service) Approve(ctx context.Context, actor *auth.User, id int64) (*Application, error) {
	return s.review(ctx, actor, id, StatusApproved, "")
}

// Reject releases the reserved duration and records the reason.
func (s *Service) Reject(ctx context.Context, actor *auth.User, id int64, reason string) (*Application, error) {
	return s.review(ctx, actor, id, StatusRejected, strings.TrimSpace(reason))
}

func (s *Service) review(ctx context.Context, actor *auth.User, id int64, status, reason string) (*Application, error) {
	if err := auth.RequireAnyRole(actor, ReviewerPolicy); err != nil {
		return nil, err
	}

	var reviewed *leaveDatamodel.LeaveApplication
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		app, err := tx.GetApplicationForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrApplicationNotFound
			}
			return internal.NewInternalError("failed to load leave application", err)
		}
		if app.Status != StatusPending {
			return ErrNotPending
		}
		if actor.EmployeeID != nil && *actor.EmployeeID == app.EmployeeID {
			return ErrSelfReview
		}

		balance, err := tx.GetBalanceForUpdate(ctx, app.EmployeeID, app.LeaveTypeID, app.StartDate.Year())
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNoBalance
			}
			return internal.NewInternalError("failed to load leave balance", err)
		}

		if status == StatusApproved {
			consume(balance, app)
		} else {
			release(balance, app)
			if reason != "" {
				app.RejectionReason = &reason
			}
		}
		if err := tx.SaveBalance(ctx, balance); err != nil {
			return internal.NewInternalError("failed to update leave balance", err)
		}

		now := time.Now()
		app.Status = status
		app.ReviewedBy = &actor.ID
		app.ReviewedAt = &now
		if err := tx.UpdateApplication(ctx, app); err != nil {
			return internal.NewInternalError("failed to update leave application", err)
		}
		reviewed = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave application reviewed", "leave_id", id, "status", status, "reviewer_id", actor.ID)

	eventType := events.EventTypeLeaveApproved
	if status == StatusRejected {
		eventType = events.EventTypeLeaveRejected
	}
	data := map[string]interface{}{
		"employee_id": reviewed.EmployeeID,
		"status":      status,
		"start_date":  reviewed.StartDate.Format(dateLayout),
		"end_date":    reviewed.EndDate.Format(dateLayout),
		"reason":      reason,
	}
	if email, name, err := s.repo.EmployeeContact(ctx, reviewed.EmployeeID); err == nil {
		data["email"] = email
		data["employee_name"] = name
	} else {
		s.logger.Warn("failed to load applicant contact", "employee_id", reviewed.EmployeeID, "error", err)
	}
	s.publish(ctx, events.NewDomainEvent(eventType, actor.ID, "leave_application", reviewed.ID, data))

	return ApplicationFromDataModel(reviewed), nil
}

// Cancel withdraws the caller's own pending application.
func (s *Service) Cancel(ctx context.Context, actor *auth.User, id int64) (*Application, error) {
	if actor.EmployeeID == nil {
		return nil, ErrProfileRequired
	}

	var cancelled *leaveDatamodel.LeaveApplication
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		app, err := tx.GetApplicationForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrApplicationNotFound
			}
			return internal.NewInternalError("failed to load leave application", err)
		}
		if app.EmployeeID != *actor.EmployeeID {
			return ErrApplicationNotFound
		}
		if app.Status != StatusPending {
			return ErrNotPending
		}

		balance, err := tx.GetBalanceForUpdate(ctx, app.EmployeeID, app.LeaveTypeID, app.StartDate.Year())
		if err != nil && !errors.Is(err, ErrNotFound) {
			return internal.NewInternalError("failed to load leave balance", err)
		}
		if balance != nil {
			release(balance, app)
			if err := tx.SaveBalance(ctx, balance); err != nil {
				return internal.NewInternalError("failed to update leave balance", err)
			}
		}

		app.Status = StatusCancelled
		if err := tx.UpdateApplication(ctx, app); err != nil {
			return internal.NewInternalError("failed to update leave application", err)
		}
		cancelled = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewDomainEvent(events.EventTypeLeaveCancelled, actor.ID, "leave_application", id, nil))
	return ApplicationFromDataModel(cancelled), nil
}

// Get returns an application visible to actor: their own, or any for reviewers.
func (s *Service) Get(ctx context.Context, actor *auth.User, id int64) (*Application, error) {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, internal.NewInternalError("failed to load leave application", err)
	}
	own := actor.EmployeeID != nil && *actor.EmployeeID == app.EmployeeID
	if !own && !ReviewerPolicy.Permits(actor.Role) {
		return nil, ErrApplicationNotFound
	}
	return ApplicationFromDataModel(app), nil
}

func (s *Service) ListMine(ctx context.Context, actor *auth.User, status string, limit, offset int) ([]*Application, error) {
	if actor.EmployeeID == nil {
		return []*Application{}, nil
	}
	return s.list(ctx, ListFilter{EmployeeID: *actor.EmployeeID, Status: status, Limit: limit, Offset: offset})
}

func (s *Service) ListAll(ctx context.Context, f ListFilter) ([]*Application, error) {
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f ListFilter) ([]*Application, error) {
	rows, err := s.repo.ListApplications(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave applications", err)
	}
	out := make([]*Application, 0, len(rows))
	for i := range rows {
		out = append(out, ApplicationFromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) ListLeaveTypes(ctx context.Context) ([]*LeaveType, error) {
	rows, err := s.repo.ListLeaveTypes(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave types", err)
	}
	out := make([]*LeaveType, 0, len(rows))
	for i := range rows {
		out = append(out, LeaveTypeFromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) CreateLeaveType(ctx context.Context, dto CreateLeaveTypeDTO) (*LeaveType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	t := &leaveDatamodel.LeaveType{
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		DefaultDays: dto.DefaultDays,
	}
	if err := s.repo.CreateLeaveType(ctx, t); err != nil {
		return nil, internal.NewConflictError("Leave type already exists", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return LeaveTypeFromDataModel(t), nil
}

// MyBalances lists the caller's balances for year.
func (s *Service) MyBalances(ctx context.Context, actor *auth.User, year int) ([]*Balance, error) {
	if actor.EmployeeID == nil {
		return []*Balance{}, nil
	}
	return s.Balances(ctx, *actor.EmployeeID, year)
}

func (s *Service) Balances(ctx context.Context, employeeID int64, year int) ([]*Balance, error) {
	rows, err := s.repo.ListBalances(ctx, employeeID, year)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave balances", err)
	}
	out := make([]*Balance, 0, len(rows))
	for i := range rows {
		out = append(out, BalanceFromDataModel(&rows[i]))
	}
	return out, nil
}

// SetBalance creates or updates the totals of a balance, keeping used and pending counters.
func (s *Service) SetBalance(ctx context.Context, actor *auth.User, dto SetBalanceDTO) (*Balance, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetLeaveType(ctx, dto.LeaveTypeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrLeaveTypeNotFound
		}
		return nil, internal.NewInternalError("failed to load leave type", err)
	}

	var saved *leaveDatamodel.LeaveBalance
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		b, err := tx.GetBalanceForUpdate(ctx, dto.EmployeeID, dto.LeaveTypeID, dto.Year)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return internal.NewInternalError("failed to load leave balance", err)
			}
			b = &leaveDatamodel.LeaveBalance{
				EmployeeID:  dto.EmployeeID,
				LeaveTypeID: dto.LeaveTypeID,
				Year:        dto.Year,
			}
		}
		b.TotalDays = dto.TotalDays
		b.TotalHours = dto.TotalHours
		if err := tx.SaveBalance(ctx, b); err != nil {
			return internal.NewInternalError("failed to save leave balance", err)
		}
		saved = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewDomainEvent(events.EventTypeLeaveBalanceSet, actor.ID, "leave_balance", saved.ID, map[string]interface{}{
		"employee_id": dto.EmployeeID,
		"year":        dto.Year,
		"total_days":  dto.TotalDays,
	}))
	return BalanceFromDataModel(saved), nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
