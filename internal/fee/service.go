package fee

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	feeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/fee"
	"github.com/frahmantamala/hr-management/internal/core/events"
)

// BillingPolicy creates fees and records payments.
var BillingPolicy = auth.AnyOf(auth.RoleAdmin, auth.RoleHR)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateFeeDTO) (*Fee, error) {
	due, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.EmployeeExists(ctx, dto.EmployeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check employee", err)
	}
	if !ok {
		return nil, ErrUnknownEmployee
	}

	f := &feeDatamodel.Fee{
		EmployeeID: dto.EmployeeID,
		Title:      dto.Title,
		Amount:     dto.Amount,
		Status:     StatusPending,
		DueDate:    due,
		CreatedBy:  actor.ID,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, internal.NewInternalError("failed to create fee", err)
	}

	s.logger.Info("fee created", "fee_id", f.ID, "employee_id", f.EmployeeID, "amount", f.Amount)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeFeeCreated, actor.ID, "fee", f.ID, map[string]interface{}{
		"employee_id": f.EmployeeID,
		"amount":      f.Amount,
	}))
	return FromDataModel(f, nil), nil
}

// RecordPayment applies a payment under a row lock; a payment larger than the
// outstanding balance is rejected.
func (s *Service) RecordPayment(ctx context.Context, actor *auth.User, id int64, dto RecordPaymentDTO) (*Fee, error) {
	paidAt, err := dto.Validate(s.now().UTC())
	if err != nil {
		return nil, err
	}

	var (
		updated  *feeDatamodel.Fee
		payments []feeDatamodel.FeePayment
	)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		f, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		outstanding := f.Amount - f.PaidAmount
		if outstanding <= 0 {
			return ErrAlreadyPaid
		}
		if dto.Amount > outstanding {
			return ErrOverpayment
		}

		p := &feeDatamodel.FeePayment{
			FeeID:      f.ID,
			Amount:     dto.Amount,
			Method:     dto.Method,
			Reference:  dto.Reference,
			RecordedBy: actor.ID,
			PaidAt:     paidAt,
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}
		f.PaidAmount += dto.Amount
		f.Status = StatusFor(f.Amount, f.PaidAmount)
		if err := tx.Save(ctx, f); err != nil {
			return err
		}
		updated = f
		payments, err = tx.ListPayments(ctx, f.ID)
		return err
	})
	if err != nil {
		return nil, s.mapError(err, "failed to record payment")
	}

	s.logger.Info("fee payment recorded", "fee_id", id, "amount", dto.Amount, "status", updated.Status)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeFeePaymentRecorded, actor.ID, "fee", id, map[string]interface{}{
		"amount": dto.Amount,
		"status": updated.Status,
	}))
	return FromDataModel(updated, payments), nil
}

// Get lets billing roles see any fee and employees their own.
func (s *Service) Get(ctx context.Context, actor *auth.User, id int64) (*Fee, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "failed to load fee")
	}
	if !BillingPolicy.Permits(actor.Role) && (actor.EmployeeID == nil || *actor.EmployeeID != f.EmployeeID) {
		return nil, ErrFeeNotFound
	}
	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load payments", err)
	}
	return FromDataModel(f, payments), nil
}

func (s *Service) ListMine(ctx context.Context, actor *auth.User, status string) ([]*Fee, error) {
	if actor.EmployeeID == nil {
		return nil, ErrProfileRequired
	}
	return s.list(ctx, ListFilter{EmployeeID: *actor.EmployeeID, Status: status})
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Fee, error) {
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f ListFilter) ([]*Fee, error) {
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list fees", err)
	}
	out := make([]*Fee, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i], nil))
	}
	return out, nil
}

func (s *Service) mapError(err error, msg string) error {
	var appErr *internal.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return ErrFeeNotFound
	default:
		return internal.NewInternalError(msg, err)
	}
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
