package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/geofence"
	"golang.org/x/crypto/bcrypt"
)

// SessionMarkerBytes is the amount of randomness in a session marker.
const SessionMarkerBytes = 32

// Service is the session guard: it authenticates credentials, starts sessions
// and resolves access tokens while enforcing one live session per account.
type Service struct {
	userRepo       RepositoryAPI
	tokenGenerator TokenGenerator
	geofence       GeofenceEvaluator
	publisher      events.Publisher
	logger         *slog.Logger
	bcryptCost     int
	now            func() time.Time
}

// NewService creates a new auth service
func NewService(userRepo RepositoryAPI, tokenGen TokenGenerator, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         slog.Default(),
		now:            time.Now,
	}
}

func (s *Service) WithGeofence(g GeofenceEvaluator) *Service {
	s.geofence = g
	return s
}

func (s *Service) WithPublisher(p events.Publisher) *Service {
	s.publisher = p
	return s
}

func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Login validates credentials, applies the office geofence for location-bound
// roles and starts a new session.
func (s *Service) Login(ctx context.Context, dto LoginDTO, variant internal.Variant) (*Session, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.userRepo.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Info("login rejected: bad password", "user_id", record.ID)
		return nil, internal.ErrInvalidCredentials
	}

	if !record.IsActive {
		return nil, internal.ErrUserInactive
	}

	user := FromDataModel(record)

	var location *geofence.Result
	if s.geofence != nil {
		location, err = s.geofence.Evaluate(geofence.Check{
			Role:              string(user.Role),
			UserID:            user.ID,
			Location:          dto.Location,
			SkipLocationCheck: dto.SkipLocationCheck,
			Variant:           variant,
		})
		if err != nil {
			s.logger.Warn("login rejected by geofence", "user_id", user.ID, "error", err)
			return nil, err
		}
	}

	session, err := s.StartSession(ctx, user, record.SessionToken != nil && *record.SessionToken != "")
	if err != nil {
		return nil, err
	}
	session.Location = location

	if employeeID, err := s.userRepo.EmployeeIDForUser(ctx, user.ID); err == nil {
		user.EmployeeID = employeeID
	} else {
		s.logger.Warn("failed to load employee id", "user_id", user.ID, "error", err)
	}

	return session, nil
}

// StartSession overwrites the stored marker and mints both tokens. Any token
// minted against the old marker stops resolving from this point on.
func (s *Service) StartSession(ctx context.Context, user *User, previousMarkerExisted bool) (*Session, error) {
	marker, err := GenerateRandomToken()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate session token", err)
	}

	now := s.now()
	if err := s.userRepo.UpdateSession(ctx, user.ID, marker, now); err != nil {
		return nil, internal.NewInternalError("failed to store session", err)
	}
	user.LastLoginAt = &now

	pair, err := s.issuePair(user, marker)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session started",
		"user_id", user.ID,
		"role", user.Role,
		"previous_session_logged_out", previousMarkerExisted)

	s.publish(ctx, events.NewDomainEvent(events.EventTypeUserLoggedIn, user.ID, "user", user.ID, map[string]interface{}{
		"email": user.Email,
		"role":  string(user.Role),
	}))
	if previousMarkerExisted {
		s.publish(ctx, events.NewDomainEvent(events.EventTypeSessionSuperseded, user.ID, "user", user.ID, nil))
	}

	return &Session{
		TokenPair:             pair,
		SessionToken:          marker,
		PreviousMarkerExisted: previousMarkerExisted,
		User:                  user,
	}, nil
}

// ResolveUser turns an access token into the current user. A token whose
// session marker no longer matches the stored one yields ErrSessionExpired.
func (s *Service) ResolveUser(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokenGenerator.Verify(token, AccessToken)
	if err != nil {
		return nil, err
	}

	record, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if !record.IsActive {
		return nil, internal.ErrUserInactive
	}

	if claims.SessionToken != "" {
		if record.SessionToken == nil || *record.SessionToken != claims.SessionToken {
			s.logger.Info("session superseded", "user_id", record.ID)
			return nil, internal.ErrSessionExpired
		}
	}

	user := FromDataModel(record)
	if employeeID, err := s.userRepo.EmployeeIDForUser(ctx, user.ID); err == nil {
		user.EmployeeID = employeeID
	} else {
		return nil, internal.NewInternalError("failed to load employee profile", err)
	}
	return user, nil
}

// RefreshTokens exchanges a refresh token for a new pair. Refresh tokens carry
// no session marker, so the access token minted here carries none either.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenGenerator.Verify(refreshToken, RefreshToken)
	if err != nil {
		return nil, err
	}

	record, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if !record.IsActive {
		return nil, internal.ErrUserInactive
	}

	pair, err := s.issuePair(FromDataModel(record), "")
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.Verify(tokenString, AccessToken)
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issuePair(user *User, marker string) (TokenPair, error) {
	access, err := s.tokenGenerator.IssueAccessToken(user, marker)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("failed to issue access token", err)
	}
	refresh, err := s.tokenGenerator.IssueRefreshToken(user)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("failed to issue refresh token", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, SessionMarkerBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

