package employee

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/core/events"
)

// DirectoryPolicy may list and read every employee record.
var DirectoryPolicy = auth.AnyOf(auth.RoleAdmin, auth.RoleHR, auth.RoleProjectManager)

type Service struct {
	repo       Repository
	publisher  events.Publisher
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register creates the user row and, when the role needs it, the profile row in one transaction.
func (s *Service) Register(ctx context.Context, actor *auth.User, dto RegisterEmployeeDTO) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, _ := auth.ParseRole(dto.Role)

	dob, err := optionalDate("dateOfBirth", dto.DateOfBirth)
	if err != nil {
		return nil, err
	}
	joining := time.Now().UTC().Truncate(24 * time.Hour)
	if dto.JoiningDate != "" {
		parsed, err := optionalDate("joiningDate", dto.JoiningDate)
		if err != nil {
			return nil, err
		}
		joining = *parsed
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	var rec Record
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.EmailExists(ctx, dto.Email)
		if err != nil {
			return internal.NewInternalError("failed to check email", err)
		}
		if taken {
			return ErrEmailTaken
		}

		rec.User = userDatamodel.User{
			Email:        dto.Email,
			Name:         dto.Name,
			PasswordHash: hash,
			Role:         string(role),
			IsActive:     true,
		}
		if err := tx.CreateUser(ctx, &rec.User); err != nil {
			return internal.NewInternalError("failed to create user", err)
		}

		if !dto.HasProfile(role) {
			return nil
		}
		if dto.ManagerID != nil {
			if _, err := tx.GetByUserID(ctx, *dto.ManagerID); err != nil {
				return internal.NewValidationFieldError("managerId", "manager does not exist", internal.ErrCodeEmployeeNotFound)
			}
		}
		rec.Profile = &employeeDatamodel.Employee{
			UserID:      rec.User.ID,
			FirstName:   dto.FirstName,
			LastName:    dto.LastName,
			Phone:       dto.Phone,
			DateOfBirth: dob,
			JoiningDate: joining,
			Department:  dto.Department,
			Designation: dto.Designation,
			ManagerID:   dto.ManagerID,
			Salary:      dto.Salary,
		}
		if err := tx.CreateProfile(ctx, rec.Profile); err != nil {
			return internal.NewInternalError("failed to create employee profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee registered", "user_id", rec.User.ID, "role", rec.User.Role, "with_profile", rec.Profile != nil)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeEmployeeRegistered, actor.ID, "user", rec.User.ID, map[string]interface{}{
		"email": rec.User.Email,
		"name":  rec.User.Name,
		"role":  rec.User.Role,
	}))

	return FromRecord(&rec), nil
}

// Get returns any record to directory roles and only their own record to everyone else.
func (s *Service) Get(ctx context.Context, actor *auth.User, userID int64) (*Employee, error) {
	if actor.ID != userID && !DirectoryPolicy.Permits(actor.Role) {
		return nil, internal.ErrInsufficientRole
	}
	rec, err := s.load(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return FromRecord(rec), nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Employee, error) {
	f.Role = strings.ToLower(strings.TrimSpace(f.Role))
	f.Search = strings.TrimSpace(f.Search)
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	out := make([]*Employee, 0, len(rows))
	for i := range rows {
		out = append(out, FromRecord(&rows[i]))
	}
	return out, nil
}

// Update applies a partial update to the account and profile.
func (s *Service) Update(ctx context.Context, actor *auth.User, userID int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *Record
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		rec, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}

		userFields := map[string]interface{}{}
		if dto.Name != nil {
			userFields["name"] = strings.TrimSpace(*dto.Name)
			rec.User.Name = strings.TrimSpace(*dto.Name)
		}
		if dto.Role != nil {
			role, _ := auth.ParseRole(*dto.Role)
			userFields["role"] = string(role)
			rec.User.Role = string(role)
		}
		if len(userFields) > 0 {
			if err := tx.UpdateUser(ctx, userID, userFields); err != nil {
				return internal.NewInternalError("failed to update user", err)
			}
		}

		profile := rec.Profile
		role := auth.Role(rec.User.Role)
		if profile == nil && (role.RequiresProfile() || dto.touchesProfile()) {
			first, last := splitName(rec.User.Name)
			profile = &employeeDatamodel.Employee{
				UserID:      userID,
				FirstName:   first,
				LastName:    last,
				JoiningDate: time.Now().UTC().Truncate(24 * time.Hour),
			}
		}
		if profile != nil {
			if err := dto.applyTo(profile); err != nil {
				return err
			}
			if err := tx.SaveProfile(ctx, profile); err != nil {
				return internal.NewInternalError("failed to update employee profile", err)
			}
			rec.Profile = profile
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee updated", "user_id", userID, "by", actor.ID)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeEmployeeUpdated, actor.ID, "user", userID, nil))
	return FromRecord(updated), nil
}

// UpdateMe lets a user edit their own name and phone.
func (s *Service) UpdateMe(ctx context.Context, actor *auth.User, dto UpdateMeDTO) (*Employee, error) {
	return s.Update(ctx, actor, actor.ID, dto.AsUpdate())
}

// SetActive toggles the account; deactivation also clears the session marker.
func (s *Service) SetActive(ctx context.Context, actor *auth.User, userID int64, dto SetActiveDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	rec, err := s.load(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"is_active": *dto.IsActive}
	if !*dto.IsActive {
		fields["session_token"] = nil
	}
	if err := s.repo.UpdateUser(ctx, userID, fields); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}
	rec.User.IsActive = *dto.IsActive

	s.logger.Info("employee active flag changed", "user_id", userID, "is_active", *dto.IsActive, "by", actor.ID)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeEmployeeStatus, actor.ID, "user", userID, map[string]interface{}{
		"is_active": *dto.IsActive,
	}))
	return FromRecord(rec), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.User, userID int64) error {
	if actor.ID == userID {
		return ErrDeleteSelf
	}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := s.load(ctx, tx, userID); err != nil {
			return err
		}
		if err := tx.Delete(ctx, userID); err != nil {
			return internal.NewInternalError("failed to delete employee", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("employee deleted", "user_id", userID, "by", actor.ID)
	s.publish(ctx, events.NewDomainEvent(events.EventTypeEmployeeDeleted, actor.ID, "user", userID, nil))
	return nil
}

func (s *Service) load(ctx context.Context, repo Repository, userID int64) (*Record, error) {
	rec, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	return rec, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

func (d UpdateEmployeeDTO) touchesProfile() bool {
	return d.FirstName != nil || d.LastName != nil || d.Phone != nil || d.DateOfBirth != nil ||
		d.JoiningDate != nil || d.Department != nil || d.Designation != nil || d.ManagerID != nil || d.Salary != nil
}

func (d UpdateEmployeeDTO) applyTo(p *employeeDatamodel.Employee) error {
	if d.FirstName != nil {
		p.FirstName = strings.TrimSpace(*d.FirstName)
	}
	if d.LastName != nil {
		p.LastName = strings.TrimSpace(*d.LastName)
	}
	if d.Phone != nil {
		p.Phone = strings.TrimSpace(*d.Phone)
	}
	if d.DateOfBirth != nil {
		dob, err := optionalDate("dateOfBirth", *d.DateOfBirth)
		if err != nil {
			return err
		}
		p.DateOfBirth = dob
	}
	if d.JoiningDate != nil && *d.JoiningDate != "" {
		joining, err := optionalDate("joiningDate", *d.JoiningDate)
		if err != nil {
			return err
		}
		p.JoiningDate = *joining
	}
	if d.Department != nil {
		p.Department = strings.TrimSpace(*d.Department)
	}
	if d.Designation != nil {
		p.Designation = strings.TrimSpace(*d.Designation)
	}
	if d.ManagerID != nil {
		if *d.ManagerID == p.UserID {
			return internal.NewValidationFieldError("managerId", "an employee cannot manage themselves", internal.ErrCodeValidationFailed)
		}
		p.ManagerID = d.ManagerID
	}
	if d.Salary != nil {
		p.Salary = *d.Salary
	}
	return nil
}
