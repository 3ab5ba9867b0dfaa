package leave

import (
	"fmt"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
)

const (
	// BaseMonthlyAllowance is the number of leave applications granted every month.
	BaseMonthlyAllowance = 1
	// MaxMonthlyAllowance caps the allowance including the carry-forward slot.
	MaxMonthlyAllowance = 2
)

// MonthlyAllowance adds one carry-forward slot when the previous month had no approved leave.
func MonthlyAllowance(prevMonthApproved int64) int64 {
	if prevMonthApproved == 0 {
		return MaxMonthlyAllowance
	}
	return BaseMonthlyAllowance
}

// CheckMonthlyQuota requires the pending+approved count for the target month
// to be strictly below the allowance.
func CheckMonthlyQuota(target time.Time, existingThisMonth, prevMonthApproved int64) error {
	allowance := MonthlyAllowance(prevMonthApproved)
	if existingThisMonth < allowance {
		return nil
	}
	msg := fmt.Sprintf("Monthly leave limit reached for %s %d: %d of %d allowed leave(s) already requested. "+
		"Each month allows 1 leave, plus 1 carried forward when the previous month had no approved leave.",
		target.Month(), target.Year(), existingThisMonth, allowance)
	return internal.NewValidationError(msg, internal.ErrCodeLeaveQuota).
		WithMeta("allowance", allowance).
		WithMeta("used", existingThisMonth)
}

func RemainingDays(b *leaveDatamodel.LeaveBalance) float64 {
	return b.TotalDays - b.UsedDays - b.PendingDays
}

func RemainingHours(b *leaveDatamodel.LeaveBalance) float64 {
	return b.TotalHours - b.UsedHours - b.PendingHours
}

// CheckBalance requires the request to fit in the remaining balance. Hourly
// requests may draw on remaining hours or on remaining days converted at 8h/day.
func CheckBalance(b *leaveDatamodel.LeaveBalance, req *Request) error {
	days := RemainingDays(b)

	if req.Mode == Hourly {
		if req.Hours <= RemainingHours(b)+epsilon || req.Hours <= days*HoursPerDay+epsilon {
			return nil
		}
		msg := fmt.Sprintf("Insufficient leave balance: requested %g hour(s), available %g hour(s) or %g day(s)",
			req.Hours, maxZero(RemainingHours(b)), maxZero(days))
		return internal.NewValidationError(msg, internal.ErrCodeLeaveBalance)
	}

	if req.Days <= days+epsilon {
		return nil
	}
	msg := fmt.Sprintf("Insufficient leave balance: requested %g day(s), available %g day(s)", req.Days, maxZero(days))
	return internal.NewValidationError(msg, internal.ErrCodeLeaveBalance)
}

// reserve moves the request into the pending counters.
func reserve(b *leaveDatamodel.LeaveBalance, req *Request) {
	b.PendingDays += req.Days
	if req.Mode == Hourly {
		b.PendingHours += req.Hours
	}
}

// release undoes reserve; consume additionally books the amount as used.
func release(b *leaveDatamodel.LeaveBalance, a *leaveDatamodel.LeaveApplication) {
	b.PendingDays = maxZero(b.PendingDays - a.Days)
	if DurationMode(a.DurationMode) == Hourly {
		b.PendingHours = maxZero(b.PendingHours - a.Hours)
	}
}

func consume(b *leaveDatamodel.LeaveBalance, a *leaveDatamodel.LeaveApplication) {
	release(b, a)
	b.UsedDays += a.Days
	if DurationMode(a.DurationMode) == Hourly {
		b.UsedHours += a.Hours
	}
}

func maxZero(f float64) float64 {
	if f < epsilon {
		return 0
	}
	return f
}

// monthBounds returns [start of t's month, start of next month) and the previous month's start.
func monthBounds(t time.Time) (prevStart, start, next time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, -1, 0), start, start.AddDate(0, 1, 0)
}
