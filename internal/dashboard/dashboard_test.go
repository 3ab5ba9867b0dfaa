package dashboard_test

import (
	"context"
	"time"

	attendanceDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/attendance"
	feeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/fee"
	interviewDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/interview"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	projectDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/dashboard"
	"github.com/frahmantamala/hr-management/internal/testutil"
	"github.com/frahmantamala/hr-management/pkg/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Service", func() {
	var (
		db      *gorm.DB
		service *dashboard.Service
		now     time.Time
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		now = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
		service = dashboard.NewService(sqlx.NewDb(sqlDB, "sqlite3"), logger.Discard()).
			WithClock(func() time.Time { return now })
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("reports zeros on an empty database", func() {
		s, err := service.Summary(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(*s).To(Equal(dashboard.Summary{Date: "2026-03-02"}))
	})

	It("counts each figure", func() {
		u, e, err := testutil.CreateUser(db, "emp@example.com", "employee", true)
		Expect(err).NotTo(HaveOccurred())
		_, _, err = testutil.CreateUser(db, "hr@example.com", "hr", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "hr@example.com").Update("is_active", false).Error).To(Succeed())

		lt := &leaveDatamodel.LeaveType{Name: "Casual"}
		Expect(db.Create(lt).Error).To(Succeed())
		Expect(db.Create(&leaveDatamodel.LeaveApplication{
			EmployeeID: e.ID, LeaveTypeID: lt.ID, StartDate: now, EndDate: now,
			DurationMode: "full_day", Days: 1, Status: "pending",
		}).Error).To(Succeed())

		Expect(db.Create(&attendanceDatamodel.AttendanceRecord{EmployeeID: e.ID, WorkDate: "2026-03-02", ClockInAt: now}).Error).To(Succeed())
		Expect(db.Create(&attendanceDatamodel.AttendanceRecord{EmployeeID: e.ID, WorkDate: "2026-03-01", ClockInAt: now.AddDate(0, 0, -1)}).Error).To(Succeed())

		p := &projectDatamodel.Project{Name: "Portal", ManagerID: u.ID, Status: "active"}
		Expect(db.Create(p).Error).To(Succeed())
		Expect(db.Create(&projectDatamodel.Task{ProjectID: p.ID, Title: "a", Status: "todo", Priority: "medium", CreatedBy: u.ID}).Error).To(Succeed())
		Expect(db.Create(&projectDatamodel.Task{ProjectID: p.ID, Title: "b", Status: "done", Priority: "medium", CreatedBy: u.ID}).Error).To(Succeed())

		Expect(db.Create(&interviewDatamodel.Interview{
			CandidateName: "c", CandidateEmail: "c@example.com", Position: "dev",
			InterviewerID: u.ID, ScheduledAt: now.Add(24 * time.Hour), Mode: "video", Status: "scheduled", CreatedBy: u.ID,
		}).Error).To(Succeed())

		Expect(db.Create(&feeDatamodel.Fee{EmployeeID: e.ID, Title: "x", Amount: 5000, PaidAmount: 2000, Status: "partial", DueDate: now, CreatedBy: u.ID}).Error).To(Succeed())
		Expect(db.Create(&feeDatamodel.Fee{EmployeeID: e.ID, Title: "y", Amount: 100, PaidAmount: 100, Status: "paid", DueDate: now, CreatedBy: u.ID}).Error).To(Succeed())

		s, err := service.Summary(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ActiveEmployees).To(Equal(int64(1)))
		Expect(s.PendingLeaveRequests).To(Equal(int64(1)))
		Expect(s.ClockedInToday).To(Equal(int64(1)))
		Expect(s.OpenTasks).To(Equal(int64(1)))
		Expect(s.UpcomingInterviews).To(Equal(int64(1)))
		Expect(s.OutstandingFees).To(Equal(int64(3000)))
	})
})
