package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	attendanceDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/attendance"
	"github.com/frahmantamala/hr-management/internal/geofence"
)

const dateLayout = "2006-01-02"

// Record is the API view of one working day.
type Record struct {
	ID                 int64      `json:"id"`
	EmployeeID         int64      `json:"employeeId"`
	WorkDate           string     `json:"workDate"`
	ClockInAt          time.Time  `json:"clockInAt"`
	ClockOutAt         *time.Time `json:"clockOutAt,omitempty"`
	ClockInDistanceKm  *float64   `json:"clockInDistanceKm,omitempty"`
	ClockOutDistanceKm *float64   `json:"clockOutDistanceKm,omitempty"`
	WorkedMinutes      int        `json:"workedMinutes"`
	Note               string     `json:"note,omitempty"`
}

func FromDataModel(r *attendanceDatamodel.AttendanceRecord) *Record {
	return &Record{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		WorkDate:           r.WorkDate,
		ClockInAt:          r.ClockInAt,
		ClockOutAt:         r.ClockOutAt,
		ClockInDistanceKm:  r.ClockInDistanceKm,
		ClockOutDistanceKm: r.ClockOutDistanceKm,
		WorkedMinutes:      r.WorkedMinutes,
		Note:               r.Note,
	}
}

// Today is the clock status for the current day.
type Today struct {
	WorkDate   string  `json:"workDate"`
	ClockedIn  bool    `json:"clockedIn"`
	ClockedOut bool    `json:"clockedOut"`
	Record     *Record `json:"record,omitempty"`
}

// ListFilter bounds listings by work date, both ends inclusive.
type ListFilter struct {
	EmployeeID int64
	From       string
	To         string
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, r *attendanceDatamodel.AttendanceRecord) error
	GetForDay(ctx context.Context, employeeID int64, workDate string) (*attendanceDatamodel.AttendanceRecord, error)
	Update(ctx context.Context, r *attendanceDatamodel.AttendanceRecord) error
	List(ctx context.Context, f ListFilter) ([]attendanceDatamodel.AttendanceRecord, error)
}

type GeofenceEvaluator interface {
	Evaluate(c geofence.Check) (*geofence.Result, error)
}

var ErrNotFound = errors.New("attendance record not found")

var (
	ErrAlreadyClockedIn  = internal.NewConflictError("You have already clocked in today", internal.ErrCodeAttendanceExists)
	ErrAlreadyClockedOut = internal.NewConflictError("You have already clocked out today", internal.ErrCodeAttendanceExists)
	ErrNotClockedIn      = internal.NewValidationError("You have not clocked in today", internal.ErrCodeNotClockedIn)
	ErrProfileRequired   = internal.NewValidationError("An employee profile is required to record attendance", internal.ErrCodeEmployeeNotFound)
)

// WorkedMinutes is the whole minutes between clock-in and clock-out.
func WorkedMinutes(in, out time.Time) int {
	if !out.After(in) {
		return 0
	}
	return int(out.Sub(in) / time.Minute)
}
