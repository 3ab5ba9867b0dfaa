// Package dashboard serves the admin summary straight from SQL.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/jmoiron/sqlx"
)

type Summary struct {
	Date                 string `json:"date"`
	ActiveEmployees      int64  `json:"activeEmployees"`
	PendingLeaveRequests int64  `json:"pendingLeaveRequests"`
	ClockedInToday       int64  `json:"clockedInToday"`
	OpenTasks            int64  `json:"openTasks"`
	UpcomingInterviews   int64  `json:"upcomingInterviews"`
	OutstandingFees      int64  `json:"outstandingFees"`
}

const (
	activeEmployeesQuery    = `SELECT COUNT(*) FROM users WHERE is_active = ?`
	pendingLeaveQuery       = `SELECT COUNT(*) FROM leave_applications WHERE status = ?`
	clockedInTodayQuery     = `SELECT COUNT(*) FROM attendance_records WHERE work_date = ?`
	openTasksQuery          = `SELECT COUNT(*) FROM tasks WHERE status <> ?`
	upcomingInterviewsQuery = `SELECT COUNT(*) FROM interviews WHERE status = ? AND scheduled_at >= ?`
	outstandingFeesQuery    = `SELECT COALESCE(SUM(amount - paid_amount), 0) FROM fees WHERE status <> ?`
)

// Service runs one query per figure on a shared sqlx pool.
type Service struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewService(db *sqlx.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	now := s.now()
	out := &Summary{Date: now.Format("2006-01-02")}

	figures := []struct {
		name  string
		query string
		args  []interface{}
		dst   *int64
	}{
		{"active_employees", activeEmployeesQuery, []interface{}{true}, &out.ActiveEmployees},
		{"pending_leave", pendingLeaveQuery, []interface{}{"pending"}, &out.PendingLeaveRequests},
		{"clocked_in_today", clockedInTodayQuery, []interface{}{out.Date}, &out.ClockedInToday},
		{"open_tasks", openTasksQuery, []interface{}{"done"}, &out.OpenTasks},
		{"upcoming_interviews", upcomingInterviewsQuery, []interface{}{"scheduled", now.UTC()}, &out.UpcomingInterviews},
		{"outstanding_fees", outstandingFeesQuery, []interface{}{"paid"}, &out.OutstandingFees},
	}
	for _, f := range figures {
		if err := s.db.GetContext(ctx, f.dst, s.db.Rebind(f.query), f.args...); err != nil {
			s.logger.Error("dashboard query failed", "figure", f.name, "error", err)
			return nil, internal.NewInternalError("failed to build dashboard", err)
		}
	}
	return out, nil
}
