package auth

import (
	"context"
	"errors"
	"time"

	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/geofence"
)

// User is the authenticated principal attached to each request.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"isActive"`
	EmployeeID  *int64     `json:"employeeId,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (u *User) Is(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the outcome of a successful login.
type Session struct {
	TokenPair
	SessionToken          string
	PreviousMarkerExisted bool
	User                  *User
	Location              *geofence.Result
}

// TokenGenerator mints and verifies the access/refresh pair.
type TokenGenerator interface {
	IssueAccessToken(u *User, sessionMarker string) (string, error)
	IssueRefreshToken(u *User) (string, error)
	Verify(token string, kind TokenKind) (*Claims, error)
}

type RepositoryAPI interface {
	FindByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	FindByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	// UpdateSession overwrites the session marker and last-login time in one statement.
	UpdateSession(ctx context.Context, userID int64, marker string, at time.Time) error
	EmployeeIDForUser(ctx context.Context, userID int64) (*int64, error)
}

type GeofenceEvaluator interface {
	Evaluate(c geofence.Check) (*geofence.Result, error)
}

// ErrUserNotFound is returned by repositories; services translate it.
var ErrUserNotFound = errors.New("user not found")

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        Role(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

