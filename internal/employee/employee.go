package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
)

// Employee is a user account together with its optional profile.
type Employee struct {
	UserID      int64      `json:"userId"`
	EmployeeID  *int64     `json:"employeeId,omitempty"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	Profile     *Profile   `json:"profile,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Profile struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Phone       string  `json:"phone,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	JoiningDate string  `json:"joiningDate"`
	Department  string  `json:"department,omitempty"`
	Designation string  `json:"designation,omitempty"`
	ManagerID   *int64  `json:"managerId,omitempty"`
	Salary      int64   `json:"salary"`
}

// Record is the storage shape: the user row and, when present, its profile row.
type Record struct {
	User    userDatamodel.User
	Profile *employeeDatamodel.Employee
}

type ListFilter struct {
	Role       string
	Department string
	Search     string
	Active     *bool
	Limit      int
	Offset     int
}

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *userDatamodel.User) error
	CreateProfile(ctx context.Context, e *employeeDatamodel.Employee) error

	GetByUserID(ctx context.Context, userID int64) (*Record, error)
	List(ctx context.Context, f ListFilter) ([]Record, error)

	UpdateUser(ctx context.Context, userID int64, fields map[string]interface{}) error
	SaveProfile(ctx context.Context, e *employeeDatamodel.Employee) error
	// Delete removes the profile and then the user row.
	Delete(ctx context.Context, userID int64) error
}

const dateLayout = "2006-01-02"

var ErrNotFound = errors.New("employee not found")

var (
	ErrEmployeeNotFound = internal.NewNotFoundError("Employee not found", internal.ErrCodeEmployeeNotFound)
	ErrEmailTaken       = internal.NewConflictError("Email is already registered", internal.ErrCodeEmailTaken)
	ErrDeleteSelf       = internal.NewValidationError("You cannot delete your own account", internal.ErrCodeValidationFailed)
)

func FromRecord(r *Record) *Employee {
	out := &Employee{
		UserID:      r.User.ID,
		Email:       r.User.Email,
		Name:        r.User.Name,
		Role:        r.User.Role,
		IsActive:    r.User.IsActive,
		LastLoginAt: r.User.LastLoginAt,
		CreatedAt:   r.User.CreatedAt,
	}
	if p := r.Profile; p != nil {
		id := p.ID
		out.EmployeeID = &id
		out.Profile = &Profile{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Phone:       p.Phone,
			JoiningDate: p.JoiningDate.Format(dateLayout),
			Department:  p.Department,
			Designation: p.Designation,
			ManagerID:   p.ManagerID,
			Salary:      p.Salary,
		}
		if p.DateOfBirth != nil {
			dob := p.DateOfBirth.Format(dateLayout)
			out.Profile.DateOfBirth = &dob
		}
	}
	return out
}

// splitName breaks a display name into first and last name for generated profiles.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}
