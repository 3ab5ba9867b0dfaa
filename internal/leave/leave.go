package leave

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
)

type DurationMode string

const (
	FullDay DurationMode = "full_day"
	HalfDay DurationMode = "half_day"
	Hourly  DurationMode = "hourly"
)

type HalfDaySession string

const (
	BeforeLunch HalfDaySession = "before_lunch"
	AfterLunch  HalfDaySession = "after_lunch"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// HoursPerDay converts between day and hour balances.
const HoursPerDay = 8.0

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	epsilon     = 1e-9
)

type window struct{ start, end string }

var halfDayWindows = map[HalfDaySession]window{
	BeforeLunch: {"09:00", "13:00"},
	AfterLunch:  {"13:00", "17:00"},
}

var ErrNotFound = errors.New("leave record not found")

// Request is a validated leave request with its computed duration.
type Request struct {
	LeaveTypeID    int64
	StartDate      time.Time
	EndDate        time.Time
	Mode           DurationMode
	HalfDaySession *HalfDaySession
	StartTime      *string
	EndTime        *string
	Days           float64
	Hours          float64
	Reason         string
}

// ComputeDuration validates the date/time shape for the mode and returns the
// request with Days and Hours filled in.
func ComputeDuration(dto ApplyLeaveDTO) (*Request, error) {
	mode := DurationMode(strings.TrimSpace(dto.DurationMode))
	if mode == "" {
		mode = FullDay
	}

	start, err := time.Parse(dateLayout, dto.StartDate)
	if err != nil {
		return nil, internal.NewValidationFieldError("startDate", "startDate must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}
	end := start
	if dto.EndDate != "" {
		if end, err = time.Parse(dateLayout, dto.EndDate); err != nil {
			return nil, internal.NewValidationFieldError("endDate", "endDate must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
		}
	}

	req := &Request{
		LeaveTypeID: dto.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Mode:        mode,
		Reason:      strings.TrimSpace(dto.Reason),
	}

	switch mode {
	case FullDay:
		if end.Before(start) {
			return nil, internal.NewValidationError("End date cannot be before start date", internal.ErrCodeInvalidDate)
		}
		req.Days = math.Round(end.Sub(start).Hours()/24) + 1
		req.Hours = req.Days * HoursPerDay

	case HalfDay:
		if !end.Equal(start) {
			return nil, internal.NewValidationError("Half-day leave must start and end on the same day", internal.ErrCodeInvalidDate)
		}
		session := HalfDaySession(dto.HalfDaySession)
		w, ok := halfDayWindows[session]
		if !ok {
			return nil, internal.NewValidationFieldError("halfDaySession", "halfDaySession must be before_lunch or after_lunch", internal.ErrCodeValidationFailed)
		}
		req.HalfDaySession = &session
		req.StartTime, req.EndTime = &w.start, &w.end
		req.Days = 0.5
		req.Hours = HoursPerDay / 2

	case Hourly:
		if !end.Equal(start) {
			return nil, internal.NewValidationError("Hourly leave must start and end on the same day", internal.ErrCodeInvalidDate)
		}
		from, err1 := time.Parse(clockLayout, dto.StartTime)
		to, err2 := time.Parse(clockLayout, dto.EndTime)
		if err1 != nil || err2 != nil {
			return nil, internal.NewValidationError("Hourly leave requires startTime and endTime in HH:MM format", internal.ErrCodeValidationFailed)
		}
		if !to.After(from) {
			return nil, internal.NewValidationError("End time must be after start time", internal.ErrCodeValidationFailed)
		}
		hours := to.Sub(from).Hours()
		if hours > HoursPerDay {
			return nil, internal.NewValidationError(fmt.Sprintf("Hourly leave cannot exceed %g hours; apply for a full day instead", HoursPerDay), internal.ErrCodeValidationFailed)
		}
		st, et := dto.StartTime, dto.EndTime
		req.StartTime, req.EndTime = &st, &et
		req.Hours = math.Round(hours*100) / 100
		req.Days = req.Hours / HoursPerDay

	default:
		return nil, internal.NewValidationFieldError("durationMode", "durationMode must be full_day, half_day or hourly", internal.ErrCodeValidationFailed)
	}

	return req, nil
}

// Application is the API view of a leave application.
type Application struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employeeId"`
	LeaveTypeID     int64      `json:"leaveTypeId"`
	StartDate       string     `json:"startDate"`
	EndDate         string     `json:"endDate"`
	DurationMode    string     `json:"durationMode"`
	HalfDaySession  *string    `json:"halfDaySession,omitempty"`
	StartTime       *string    `json:"startTime,omitempty"`
	EndTime         *string    `json:"endTime,omitempty"`
	Days            float64    `json:"days"`
	Hours           float64    `json:"hours"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	ReviewedBy      *int64     `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func ApplicationFromDataModel(a *leaveDatamodel.LeaveApplication) *Application {
	return &Application{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		LeaveTypeID:     a.LeaveTypeID,
		StartDate:       a.StartDate.Format(dateLayout),
		EndDate:         a.EndDate.Format(dateLayout),
		DurationMode:    a.DurationMode,
		HalfDaySession:  a.HalfDaySession,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Days:            a.Days,
		Hours:           a.Hours,
		Reason:          a.Reason,
		Status:          a.Status,
		RejectionReason: a.RejectionReason,
		ReviewedBy:      a.ReviewedBy,
		ReviewedAt:      a.ReviewedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// Balance is the API view of a per-type yearly balance.
type Balance struct {
	ID             int64   `json:"id"`
	EmployeeID     int64   `json:"employeeId"`
	LeaveTypeID    int64   `json:"leaveTypeId"`
	Year           int     `json:"year"`
	TotalDays      float64 `json:"totalDays"`
	UsedDays       float64 `json:"usedDays"`
	PendingDays    float64 `json:"pendingDays"`
	RemainingDays  float64 `json:"remainingDays"`
	TotalHours     float64 `json:"totalHours"`
	UsedHours      float64 `json:"usedHours"`
	PendingHours   float64 `json:"pendingHours"`
	RemainingHours float64 `json:"remainingHours"`
}

func BalanceFromDataModel(b *leaveDatamodel.LeaveBalance) *Balance {
	return &Balance{
		ID:             b.ID,
		EmployeeID:     b.EmployeeID,
		LeaveTypeID:    b.LeaveTypeID,
		Year:           b.Year,
		TotalDays:      b.TotalDays,
		UsedDays:       b.UsedDays,
		PendingDays:    b.PendingDays,
		RemainingDays:  RemainingDays(b),
		TotalHours:     b.TotalHours,
		UsedHours:      b.UsedHours,
		PendingHours:   b.PendingHours,
		RemainingHours: RemainingHours(b),
	}
}

type LeaveType struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DefaultDays float64 `json:"defaultDays"`
}

func LeaveTypeFromDataModel(t *leaveDatamodel.LeaveType) *LeaveType {
	return &LeaveType{ID: t.ID, Name: t.Name, Description: t.Description, DefaultDays: t.DefaultDays}
}
