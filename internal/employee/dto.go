package employee

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
)

type RegisterEmployeeDTO struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	JoiningDate string `json:"joiningDate"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	ManagerID   *int64 `json:"managerId"`
	Salary      int64  `json:"salary"`
}

func (d *RegisterEmployeeDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = strings.TrimSpace(d.FirstName + " " + d.LastName)
	}
}

// HasProfile reports whether the request carries profile fields or the role needs one.
func (d RegisterEmployeeDTO) HasProfile(role auth.Role) bool {
	return role.RequiresProfile() || d.FirstName != ""
}

func (d RegisterEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(8).MaxLength(72)
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("role", d.Role).Required()
	v.Field("salary", d.Salary).MinInt(0, internal.ErrCodeInvalidAmount)
	if role, ok := auth.ParseRole(d.Role); ok && role.RequiresProfile() {
		v.Field("firstName", d.FirstName).Required().MaxLength(100)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if _, ok := auth.ParseRole(d.Role); !ok {
		return internal.NewValidationFieldError("role", "role must be one of: "+strings.Join(auth.AllRoleNames(), ", "), internal.ErrCodeInvalidRole)
	}
	return nil
}

// UpdateEmployeeDTO is a partial update; nil fields are left alone.
type UpdateEmployeeDTO struct {
	Name        *string `json:"name"`
	Role        *string `json:"role"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
	JoiningDate *string `json:"joiningDate"`
	Department  *string `json:"department"`
	Designation *string `json:"designation"`
	ManagerID   *int64  `json:"managerId"`
	Salary      *int64  `json:"salary"`
}

func (d UpdateEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(200)
	}
	if d.FirstName != nil {
		v.Field("firstName", *d.FirstName).Required().MaxLength(100)
	}
	if d.Salary != nil {
		v.Field("salary", *d.Salary).MinInt(0, internal.ErrCodeInvalidAmount)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Role != nil {
		if _, ok := auth.ParseRole(*d.Role); !ok {
			return internal.NewValidationFieldError("role", "role must be one of: "+strings.Join(auth.AllRoleNames(), ", "), internal.ErrCodeInvalidRole)
		}
	}
	return nil
}

// UpdateMeDTO is the subset of the profile an employee may edit themselves.
type UpdateMeDTO struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

func (d UpdateMeDTO) AsUpdate() UpdateEmployeeDTO {
	return UpdateEmployeeDTO{FirstName: d.FirstName, LastName: d.LastName, Phone: d.Phone}
}

type SetActiveDTO struct {
	IsActive *bool `json:"isActive"`
}

func (d SetActiveDTO) Validate() error {
	if d.IsActive == nil {
		return internal.NewValidationFieldError("isActive", "isActive is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func optionalDate(field string, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
