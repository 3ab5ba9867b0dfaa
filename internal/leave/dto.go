package leave

import (
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
)

type ApplyLeaveDTO struct {
	LeaveTypeID    int64  `json:"leaveTypeId"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	DurationMode   string `json:"durationMode"`
	HalfDaySession string `json:"halfDaySession,omitempty"`
	StartTime      string `json:"startTime,omitempty"`
	EndTime        string `json:"endTime,omitempty"`
	Reason         string `json:"reason"`
}

func (d ApplyLeaveDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("leaveTypeId", d.LeaveTypeID).Required().MinInt(1, "INVALID_LEAVE_TYPE")
	v.Field("startDate", d.StartDate).Required()
	v.Field("durationMode", d.DurationMode).OneOf(string(FullDay), string(HalfDay), string(Hourly))
	v.Field("reason", d.Reason).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RejectLeaveDTO struct {
	Reason string `json:"reason"`
}

type CreateLeaveTypeDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DefaultDays float64 `json:"defaultDays"`
}

func (d CreateLeaveTypeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("defaultDays", d.DefaultDays).Between(0, 366)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type SetBalanceDTO struct {
	EmployeeID  int64   `json:"employeeId"`
	LeaveTypeID int64   `json:"leaveTypeId"`
	Year        int     `json:"year"`
	TotalDays   float64 `json:"totalDays"`
	TotalHours  float64 `json:"totalHours"`
}

func (d SetBalanceDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("employeeId", d.EmployeeID).Required()
	v.Field("leaveTypeId", d.LeaveTypeID).Required()
	v.Field("year", d.Year).Between(2000, 2100)
	v.Field("totalDays", d.TotalDays).Between(0, 366)
	v.Field("totalHours", d.TotalHours).Between(0, 366*HoursPerDay)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ListFilter narrows application listings; zero values mean "any".
type ListFilter struct {
	EmployeeID int64
	Status     string
	Limit      int
	Offset     int
}
