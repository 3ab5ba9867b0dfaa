package leave_test

import (
	"errors"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-management/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func errCode(err error) internal.ErrorCode {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

var _ = Describe("Monthly quota", func() {
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	It("carries one slot forward when the previous month had no approved leave", func() {
		Expect(leave.MonthlyAllowance(0)).To(BeEquivalentTo(2))
		Expect(leave.CheckMonthlyQuota(march, 0, 0)).To(Succeed())
		Expect(leave.CheckMonthlyQuota(march, 1, 0)).To(Succeed())

		err := leave.CheckMonthlyQuota(march, 2, 0)
		Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveQuota))
		Expect(err.Error()).To(ContainSubstring("March 2026"))
	})

	It("allows a single leave after a month with approved leave", func() {
		Expect(leave.MonthlyAllowance(1)).To(BeEquivalentTo(1))
		Expect(leave.MonthlyAllowance(3)).To(BeEquivalentTo(1))
		Expect(leave.CheckMonthlyQuota(march, 0, 1)).To(Succeed())
		Expect(errCode(leave.CheckMonthlyQuota(march, 1, 1))).To(Equal(internal.ErrCodeLeaveQuota))
	})
})

var _ = Describe("CheckBalance", func() {
	var balance *leaveDatamodel.LeaveBalance

	BeforeEach(func() {
		balance = &leaveDatamodel.LeaveBalance{TotalDays: 5, UsedDays: 1, PendingDays: 1}
	})

	fullDays := func(n float64) *leave.Request {
		return &leave.Request{Mode: leave.FullDay, Days: n, Hours: n * leave.HoursPerDay}
	}

	It("accepts a request that exactly exhausts the balance", func() {
		Expect(leave.CheckBalance(balance, fullDays(3))).To(Succeed())
	})

	It("rejects one day more than remains", func() {
		err := leave.CheckBalance(balance, fullDays(4))
		Expect(errCode(err)).To(Equal(internal.ErrCodeLeaveBalance))
		Expect(err.Error()).To(ContainSubstring("available 3 day(s)"))
	})

	It("lets hourly leave draw on remaining days at eight hours per day", func() {
		balance = &leaveDatamodel.LeaveBalance{TotalDays: 1}
		Expect(leave.CheckBalance(balance, &leave.Request{Mode: leave.Hourly, Hours: 8, Days: 1})).To(Succeed())
		Expect(errCode(leave.CheckBalance(balance, &leave.Request{Mode: leave.Hourly, Hours: 8.5, Days: 8.5 / 8}))).
			To(Equal(internal.ErrCodeLeaveBalance))
	})

	It("lets hourly leave draw on an hour balance", func() {
		balance = &leaveDatamodel.LeaveBalance{TotalHours: 3}
		Expect(leave.CheckBalance(balance, &leave.Request{Mode: leave.Hourly, Hours: 2.5, Days: 2.5 / 8})).To(Succeed())
	})
})

var _ = Describe("ComputeDuration", func() {
	It("counts full days inclusively", func() {
		req, err := leave.ComputeDuration(leave.ApplyLeaveDTO{LeaveTypeID: 1, StartDate: "2026-03-02", EndDate: "2026-03-04"})
		Expect(err).NotTo(HaveOccurred())
		Expect(req.Mode).To(Equal(leave.FullDay))
		Expect(req.Days).To(Equal(3.0))
		Expect(req.Hours).To(Equal(24.0))
	})

	It("rejects an end date before the start date", func() {
		_, err := leave.ComputeDuration(leave.ApplyLeaveDTO{LeaveTypeID: 1, StartDate: "2026-03-04", EndDate: "2026-03-02"})
		Expect(errCode(err)).To(Equal(internal.ErrCodeInvalidDate))
	})

	It("fixes half-day windows by session", func() {
		req, err := leave.ComputeDuration(leave.ApplyLeaveDTO{
			LeaveTypeID: 1, StartDate: "2026-03-02", DurationMode: "half_day", HalfDaySession: "after_lunch",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(req.Days).To(Equal(0.5))
		Expect(*req.StartTime).To(Equal("13:00"))
		Expect(*req.EndTime).To(Equal("17:00"))
	})

	It("requires a session for half-day leave", func() {
		_, err := leave.ComputeDuration(leave.ApplyLeaveDTO{LeaveTypeID: 1, StartDate: "2026-03-02", DurationMode: "half_day"})
		Expect(err).To(HaveOccurred())
	})

	It("computes hourly leave to two decimals", func() {
		req, err := leave.ComputeDuration(leave.ApplyLeaveDTO{
			LeaveTypeID: 1, StartDate: "2026-03-02", DurationMode: "hourly", StartTime: "10:00", EndTime: "12:20",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(req.Hours).To(Equal(2.33))
		Expect(req.Days).To(BeNumerically("~", 2.33/8, 1e-9))
	})

	It("caps hourly leave at a working day", func() {
		_, err := leave.ComputeDuration(leave.ApplyLeaveDTO{
			LeaveTypeID: 1, StartDate: "2026-03-02", DurationMode: "hourly", StartTime: "08:00", EndTime: "17:30",
		})
		Expect(err).To(HaveOccurred())
	})

	It("rejects hourly leave spanning two dates", func() {
		_, err := leave.ComputeDuration(leave.ApplyLeaveDTO{
			LeaveTypeID: 1, StartDate: "2026-03-02", EndDate: "2026-03-03", DurationMode: "hourly", StartTime: "10:00", EndTime: "11:00",
		})
		Expect(errCode(err)).To(Equal(internal.ErrCodeInvalidDate))
	})
})
