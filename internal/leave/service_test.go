package leave_test

import (
	"context"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-management/internal/leave"
	"github.com/frahmantamala/hr-management/internal/leave/postgres"
	"github.com/frahmantamala/hr-management/internal/testutil"
	"github.com/frahmantamala/hr-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		service   *leave.Service
		applicant *auth.User
		reviewer  *auth.User
		leaveType *leaveDatamodel.LeaveType
	)

	setBalance := func(days float64) {
		_, err := service.SetBalance(ctx, reviewer, leave.SetBalanceDTO{
			EmployeeID:  *applicant.EmployeeID,
			LeaveTypeID: leaveType.ID,
			Year:        2026,
			TotalDays:   days,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	apply := func(start, end string) (*leave.Application, error) {
		return service.Apply(ctx, applicant, leave.ApplyLeaveDTO{
			LeaveTypeID: leaveType.ID,
			StartDate:   start,
			EndDate:     end,
			Reason:      "family",
		})
	}

	balance := func() *leave.Balance {
		balances, err := service.MyBalances(ctx, applicant, 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(balances).To(HaveLen(1))
		return balances[0]
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		service = leave.NewService(postgres.NewLeaveRepository(db), nil, logger.Discard())

		u, e, err := testutil.CreateUser(db, "emp@example.com", "employee", true)
		Expect(err).NotTo(HaveOccurred())
		applicant = &auth.User{ID: u.ID, Email: u.Email, Role: auth.RoleEmployee, EmployeeID: &e.ID}

		hr, _, err := testutil.CreateUser(db, "hr@example.com", "hr", false)
		Expect(err).NotTo(HaveOccurred())
		reviewer = &auth.User{ID: hr.ID, Email: hr.Email, Role: auth.RoleHR}

		leaveType = &leaveDatamodel.LeaveType{Name: "Casual", DefaultDays: 12}
		Expect(db.Create(leaveType).Error).To(Succeed())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Apply", func() {
		It("reserves the duration as pending", func() {
			setBalance(10)

			app, err := apply("2026-03-02", "2026-03-04")
			Expect(err).NotTo(HaveOccurred())
			Expect(app.Status).To(Equal(leave.StatusPending))
			Expect(app.Days).To(Equal(3.0))

			b := balance()
			Expect(b.PendingDays).To(Equal(3.0))
			Expect(b.RemainingDays).To(Equal(7.0))
		})

		It("admits two applications after an empty month and rejects the third", func() {
			setBalance(10)

			_, err := apply("2026-03-02", "2026-03-02")
			Expect(err).NotTo(HaveOccurred())
			_, err = apply("2026-03-16", "2026-03-16")
			Expect(err).NotTo(HaveOccurred())

			_, err = apply("2026-03-23", "2026-03-23")
			Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveQuota))
		})

		It("admits only one application after a month with approved leave", func() {
			setBalance(10)

			feb, err := apply("2026-02-10", "2026-02-10")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Approve(ctx, reviewer, feb.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = apply("2026-03-02", "2026-03-02")
			Expect(err).NotTo(HaveOccurred())
			_, err = apply("2026-03-16", "2026-03-16")
			Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveQuota))
		})

		It("accepts exactly the remaining balance and nothing more", func() {
			setBalance(3)

			_, err := apply("2026-04-06", "2026-04-09")
			Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveBalance))

			_, err = apply("2026-04-06", "2026-04-08")
			Expect(err).NotTo(HaveOccurred())
			Expect(balance().RemainingDays).To(Equal(0.0))
		})

		It("requires a configured balance", func() {
			_, err := apply("2026-03-02", "2026-03-02")
			Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveBalance))
		})

		It("requires an employee profile", func() {
			_, err := service.Apply(ctx, reviewer, leave.ApplyLeaveDTO{LeaveTypeID: leaveType.ID, StartDate: "2026-03-02"})
			Expect(errCode(err)).To(Equal(internal.ErrCodeEmployeeNotFound))
		})
	})

	Describe("Review", func() {
		var app *leave.Application

		BeforeEach(func() {
			setBalance(10)
			var err error
			app, err = apply("2026-05-04", "2026-05-05")
			Expect(err).NotTo(HaveOccurred())
		})

		It("moves pending days to used on approval and keeps the total", func() {
			approved, err := service.Approve(ctx, reviewer, app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(leave.StatusApproved))
			Expect(*approved.ReviewedBy).To(Equal(reviewer.ID))

			b := balance()
			Expect(b.TotalDays).To(Equal(10.0))
			Expect(b.PendingDays).To(Equal(0.0))
			Expect(b.UsedDays).To(Equal(2.0))
		})

		It("releases pending days on rejection and records the reason", func() {
			rejected, err := service.Reject(ctx, reviewer, app.ID, "  team offsite ")
			Expect(err).NotTo(HaveOccurred())
			Expect(*rejected.RejectionReason).To(Equal("team offsite"))

			b := balance()
			Expect(b.PendingDays).To(Equal(0.0))
			Expect(b.UsedDays).To(Equal(0.0))
		})

		It("refuses to review twice", func() {
			_, err := service.Approve(ctx, reviewer, app.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Reject(ctx, reviewer, app.ID, "")
			Expect(errCode(err)).To(Equal(internal.ErrCodeInvalidLeaveState))
		})

		It("forbids reviewers below project manager", func() {
			_, err := service.Approve(ctx, applicant, app.ID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("forbids approving one's own application", func() {
			self := *applicant
			self.Role = auth.RoleProjectManager
			_, err := service.Approve(ctx, &self, app.ID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("lets the owner cancel a pending application", func() {
			cancelled, err := service.Cancel(ctx, applicant, app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cancelled.Status).To(Equal(leave.StatusCancelled))
			Expect(balance().PendingDays).To(Equal(0.0))
		})

		It("hides other employees' applications", func() {
			other, e, err := testutil.CreateUser(db, "other@example.com", "employee", true)
			Expect(err).NotTo(HaveOccurred())
			stranger := &auth.User{ID: other.ID, Role: auth.RoleEmployee, EmployeeID: &e.ID}

			_, err = service.Get(ctx, stranger, app.ID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveNotFound))
			_, err = service.Cancel(ctx, stranger, app.ID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveNotFound))

			found, err := service.Get(ctx, reviewer, app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(app.ID))
		})
	})

	Describe("Partial-day applications", func() {
		BeforeEach(func() {
			_, err := service.SetBalance(ctx, reviewer, leave.SetBalanceDTO{
				EmployeeID:  *applicant.EmployeeID,
				LeaveTypeID: leaveType.ID,
				Year:        2026,
				TotalDays:   10,
				TotalHours:  16,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		applyHourly := func() *leave.Application {
			app, err := service.Apply(ctx, applicant, leave.ApplyLeaveDTO{
				LeaveTypeID:  leaveType.ID,
				StartDate:    "2026-07-06",
				EndDate:      "2026-07-06",
				DurationMode: string(leave.Hourly),
				StartTime:    "09:00",
				EndTime:      "11:00",
				Reason:       "dentist",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(app.Hours).To(Equal(2.0))
			Expect(app.Days).To(Equal(0.25))
			return app
		}

		applyHalfDay := func() *leave.Application {
			app, err := service.Apply(ctx, applicant, leave.ApplyLeaveDTO{
				LeaveTypeID:    leaveType.ID,
				StartDate:      "2026-07-07",
				DurationMode:   string(leave.HalfDay),
				HalfDaySession: string(leave.AfterLunch),
				Reason:         "errand",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*app.StartTime).To(Equal("13:00"))
			Expect(*app.EndTime).To(Equal("17:00"))
			return app
		}

		It("reserves and then consumes hours for an hourly application", func() {
			app := applyHourly()
			b := balance()
			Expect(b.PendingHours).To(Equal(2.0))
			Expect(b.PendingDays).To(Equal(0.25))

			_, err := service.Approve(ctx, reviewer, app.ID)
			Expect(err).NotTo(HaveOccurred())
			b = balance()
			Expect(b.PendingHours).To(Equal(0.0))
			Expect(b.PendingDays).To(Equal(0.0))
			Expect(b.UsedHours).To(Equal(2.0))
			Expect(b.UsedDays).To(Equal(0.25))
			Expect(b.RemainingHours).To(Equal(14.0))
		})

		It("gives the hours back when an hourly application is rejected", func() {
			app := applyHourly()
			_, err := service.Reject(ctx, reviewer, app.ID, "busy week")
			Expect(err).NotTo(HaveOccurred())

			b := balance()
			Expect(b.PendingHours).To(Equal(0.0))
			Expect(b.PendingDays).To(Equal(0.0))
			Expect(b.UsedHours).To(Equal(0.0))
			Expect(b.UsedDays).To(Equal(0.0))
		})

		It("books half a day on approval without touching hours", func() {
			app := applyHalfDay()
			b := balance()
			Expect(b.PendingDays).To(Equal(0.5))
			Expect(b.PendingHours).To(Equal(0.0))

			_, err := service.Approve(ctx, reviewer, app.ID)
			Expect(err).NotTo(HaveOccurred())
			b = balance()
			Expect(b.PendingDays).To(Equal(0.0))
			Expect(b.UsedDays).To(Equal(0.5))
			Expect(b.UsedHours).To(Equal(0.0))
			Expect(b.RemainingDays).To(Equal(9.5))
		})

		It("releases half a day on rejection", func() {
			app := applyHalfDay()
			_, err := service.Reject(ctx, reviewer, app.ID, "")
			Expect(err).NotTo(HaveOccurred())

			b := balance()
			Expect(b.PendingDays).To(Equal(0.0))
			Expect(b.UsedDays).To(Equal(0.0))
		})
	})

	Describe("Locking", func() {
		It("locks the employee before counting the month", func() {
			setBalance(10)
			spy := &callRecorder{Repository: postgres.NewLeaveRepository(db)}
			locked := leave.NewService(spy, nil, logger.Discard())

			_, err := locked.Apply(ctx, applicant, leave.ApplyLeaveDTO{
				LeaveTypeID: leaveType.ID,
				StartDate:   "2026-08-03",
				Reason:      "trip",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(spy.calls).NotTo(BeEmpty())
			Expect(spy.calls[0]).To(Equal("LockEmployee"))
			Expect(spy.calls).To(ContainElement("CountByStartDate"))
		})

		It("reports a missing profile when the employee row is gone", func() {
			setBalance(10)
			ghost := *applicant
			missing := int64(987654)
			ghost.EmployeeID = &missing

			_, err := service.Apply(ctx, &ghost, leave.ApplyLeaveDTO{
				LeaveTypeID: leaveType.ID,
				StartDate:   "2026-08-03",
			})
			Expect(errCode(err)).To(Equal(internal.ErrCodeEmployeeNotFound))
		})
	})

	Describe("Listing", func() {
		It("filters by employee and status", func() {
			setBalance(10)
			_, err := apply("2026-06-01", "2026-06-01")
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.ListMine(ctx, applicant, "", 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			approved, err := service.ListAll(ctx, leave.ListFilter{Status: leave.StatusApproved, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(approved).To(BeEmpty())
		})
	})
})

// callRecorder records the order of locking and counting calls made inside a transaction.
type callRecorder struct {
	leave.Repository
	calls []string
}

func (r *callRecorder) Transaction(ctx context.Context, fn func(tx leave.Repository) error) error {
	return r.Repository.Transaction(ctx, func(tx leave.Repository) error {
		return fn(&txRecorder{Repository: tx, parent: r})
	})
}

type txRecorder struct {
	leave.Repository
	parent *callRecorder
}

func (t *txRecorder) LockEmployee(ctx context.Context, employeeID int64) error {
	t.parent.calls = append(t.parent.calls, "LockEmployee")
	return t.Repository.LockEmployee(ctx, employeeID)
}

func (t *txRecorder) CountByStartDate(ctx context.Context, employeeID int64, from, to time.Time, statuses []string) (int64, error) {
	t.parent.calls = append(t.parent.calls, "CountByStartDate")
	return t.Repository.CountByStartDate(ctx, employeeID, from, to, statuses)
}
