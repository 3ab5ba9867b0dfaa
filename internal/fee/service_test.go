package fee_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/fee"
	"github.com/frahmantamala/hr-management/internal/fee/postgres"
	"github.com/frahmantamala/hr-management/internal/testutil"
	"github.com/frahmantamala/hr-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func errCode(err error) internal.ErrorCode {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

var _ = DescribeTable("StatusFor",
	func(amount, paid int64, want string) {
		Expect(fee.StatusFor(amount, paid)).To(Equal(want))
	},
	Entry("nothing paid", int64(1000), int64(0), fee.StatusPending),
	Entry("part paid", int64(1000), int64(1), fee.StatusPartial),
	Entry("fully paid", int64(1000), int64(1000), fee.StatusPaid),
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		published *testutil.RecordingPublisher
		service   *fee.Service
		hr        *auth.User
		employee  *auth.User
		colleague *auth.User
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		published = &testutil.RecordingPublisher{}
		service = fee.NewService(postgres.NewFeeRepository(db), published, logger.Discard())

		h, _, err := testutil.CreateUser(db, "hr@example.com", "hr", false)
		Expect(err).NotTo(HaveOccurred())
		hr = &auth.User{ID: h.ID, Role: auth.RoleHR}

		u, e, err := testutil.CreateUser(db, "emp@example.com", "employee", true)
		Expect(err).NotTo(HaveOccurred())
		employee = &auth.User{ID: u.ID, Role: auth.RoleEmployee, EmployeeID: &e.ID}

		c, ce, err := testutil.CreateUser(db, "peer@example.com", "employee", true)
		Expect(err).NotTo(HaveOccurred())
		colleague = &auth.User{ID: c.ID, Role: auth.RoleEmployee, EmployeeID: &ce.ID}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newFee := func(amount int64) *fee.Fee {
		f, err := service.Create(ctx, hr, fee.CreateFeeDTO{
			EmployeeID: *employee.EmployeeID,
			Title:      "Laptop deposit",
			Amount:     amount,
			DueDate:    "2026-05-31",
		})
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	It("creates a pending fee", func() {
		f := newFee(5000)
		Expect(f.Status).To(Equal(fee.StatusPending))
		Expect(f.Balance).To(Equal(int64(5000)))
		Expect(f.DueDate).To(Equal("2026-05-31"))
		Expect(published.Types()).To(Equal([]string{events.EventTypeFeeCreated}))
	})

	It("rejects an unknown employee and a bad due date", func() {
		_, err := service.Create(ctx, hr, fee.CreateFeeDTO{EmployeeID: 999, Title: "x", Amount: 1, DueDate: "2026-05-31"})
		Expect(errCode(err)).To(Equal(internal.ErrCodeEmployeeNotFound))

		_, err = service.Create(ctx, hr, fee.CreateFeeDTO{EmployeeID: *employee.EmployeeID, Title: "x", Amount: 1, DueDate: "31/05/2026"})
		Expect(errCode(err)).To(Equal(internal.ErrCodeInvalidDate))

		_, err = service.Create(ctx, hr, fee.CreateFeeDTO{EmployeeID: *employee.EmployeeID, Title: "x", Amount: 0, DueDate: "2026-05-31"})
		Expect(errCode(err)).To(Equal(internal.ErrCodeValidationFailed))
	})

	It("moves from pending through partial to paid", func() {
		f := newFee(5000)

		partial, err := service.RecordPayment(ctx, hr, f.ID, fee.RecordPaymentDTO{Amount: 2000, Method: "Cash"})
		Expect(err).NotTo(HaveOccurred())
		Expect(partial.Status).To(Equal(fee.StatusPartial))
		Expect(partial.Balance).To(Equal(int64(3000)))
		Expect(partial.Payments).To(HaveLen(1))
		Expect(partial.Payments[0].Method).To(Equal("cash"))

		paid, err := service.RecordPayment(ctx, hr, f.ID, fee.RecordPaymentDTO{Amount: 3000})
		Expect(err).NotTo(HaveOccurred())
		Expect(paid.Status).To(Equal(fee.StatusPaid))
		Expect(paid.Balance).To(BeZero())
		Expect(paid.Payments).To(HaveLen(2))

		_, err = service.RecordPayment(ctx, hr, f.ID, fee.RecordPaymentDTO{Amount: 1})
		Expect(err).To(Equal(fee.ErrAlreadyPaid))
	})

	It("rejects overpayment without changing the fee", func() {
		f := newFee(5000)

		_, err := service.RecordPayment(ctx, hr, f.ID, fee.RecordPaymentDTO{Amount: 5001})
		Expect(errCode(err)).To(Equal(internal.ErrCodeOverpayment))

		got, err := service.Get(ctx, hr, f.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.PaidAmount).To(BeZero())
		Expect(got.Payments).To(BeEmpty())
	})

	It("returns not found for missing fees", func() {
		_, err := service.RecordPayment(ctx, hr, 404, fee.RecordPaymentDTO{Amount: 1})
		Expect(errCode(err)).To(Equal(internal.ErrCodeFeeNotFound))
	})

	It("shows employees only their own fees", func() {
		f := newFee(5000)

		mine, err := service.ListMine(ctx, employee, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(mine).To(HaveLen(1))

		theirs, err := service.ListMine(ctx, colleague, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(theirs).To(BeEmpty())

		_, err = service.Get(ctx, colleague, f.ID)
		Expect(errCode(err)).To(Equal(internal.ErrCodeFeeNotFound))

		_, err = service.Get(ctx, employee, f.ID)
		Expect(err).NotTo(HaveOccurred())
	})
})
