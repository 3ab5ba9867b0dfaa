package employee_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/frahmantamala/hr-management/internal/employee/postgres"
	"github.com/frahmantamala/hr-management/internal/testutil"
	"github.com/frahmantamala/hr-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func errCode(err error) internal.ErrorCode {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func strPtr(s string) *string { return &s }

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		published *testutil.RecordingPublisher
		service   *employee.Service
		admin     *auth.User
	)

	register := func(email, role string) (*employee.Employee, error) {
		return service.Register(ctx, admin, employee.RegisterEmployeeDTO{
			Email:       email,
			Password:    "s3cret-pass",
			Role:        role,
			FirstName:   "Asha",
			LastName:    "Patel",
			JoiningDate: "2026-01-05",
			Department:  "Engineering",
			Salary:      50000,
		})
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		published = &testutil.RecordingPublisher{}
		service = employee.NewService(postgres.NewEmployeeRepository(db), published, logger.Discard(), bcrypt.MinCost)

		u, _, err := testutil.CreateUser(db, "admin@example.com", "admin", false)
		Expect(err).NotTo(HaveOccurred())
		admin = &auth.User{ID: u.ID, Email: u.Email, Role: auth.RoleAdmin}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Register", func() {
		It("creates the user and profile together with a lowercased email", func() {
			emp, err := register("  Asha.Patel@Example.com ", "employee")
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.Email).To(Equal("asha.patel@example.com"))
			Expect(emp.Name).To(Equal("Asha Patel"))
			Expect(emp.EmployeeID).NotTo(BeNil())
			Expect(emp.Profile.JoiningDate).To(Equal("2026-01-05"))

			var stored userDatamodel.User
			Expect(db.Where("id = ?", emp.UserID).First(&stored).Error).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass"))).To(Succeed())

			Expect(published.Types()).To(ContainElement(events.EventTypeEmployeeRegistered))
		})

		It("skips the profile for hr accounts registered without profile fields", func() {
			emp, err := service.Register(ctx, admin, employee.RegisterEmployeeDTO{
				Email: "hr@example.com", Password: "s3cret-pass", Name: "HR Desk", Role: "hr",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.Profile).To(BeNil())
		})

		It("requires a first name for roles that need a profile", func() {
			_, err := service.Register(ctx, admin, employee.RegisterEmployeeDTO{
				Email: "intern@example.com", Password: "s3cret-pass", Name: "Intern", Role: "intern",
			})
			Expect(errCode(err)).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("rejects unknown roles", func() {
			_, err := register("x@example.com", "owner")
			Expect(errCode(err)).To(Equal(internal.ErrCodeInvalidRole))
		})

		It("rejects a duplicate email and leaves no partial rows", func() {
			_, err := register("dup@example.com", "employee")
			Expect(err).NotTo(HaveOccurred())

			_, err = register("DUP@example.com", "intern")
			Expect(errCode(err)).To(Equal(internal.ErrCodeEmailTaken))

			var users int64
			Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "dup@example.com").Count(&users).Error).To(Succeed())
			Expect(users).To(BeEquivalentTo(1))
		})
	})

	Describe("Get", func() {
		It("lets an employee read only their own record", func() {
			a, err := register("a@example.com", "employee")
			Expect(err).NotTo(HaveOccurred())
			b, err := register("b@example.com", "employee")
			Expect(err).NotTo(HaveOccurred())

			self := &auth.User{ID: a.UserID, Role: auth.RoleEmployee}
			_, err = service.Get(ctx, self, a.UserID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Get(ctx, self, b.UserID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("returns not found for unknown ids", func() {
			_, err := service.Get(ctx, admin, 9999)
			Expect(errCode(err)).To(Equal(internal.ErrCodeEmployeeNotFound))
		})
	})

	Describe("List", func() {
		It("filters by role, department and search text", func() {
			_, err := register("dev1@example.com", "employee")
			Expect(err).NotTo(HaveOccurred())
			_, err = register("pm@example.com", "project_manager")
			Expect(err).NotTo(HaveOccurred())

			byRole, err := service.List(ctx, employee.ListFilter{Role: "EMPLOYEE", Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(byRole).To(HaveLen(1))
			Expect(byRole[0].Email).To(Equal("dev1@example.com"))

			byDept, err := service.List(ctx, employee.ListFilter{Department: "Engineering", Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(byDept).To(HaveLen(2))

			bySearch, err := service.List(ctx, employee.ListFilter{Search: "PM@", Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(bySearch).To(HaveLen(1))
		})
	})

	Describe("Update and lifecycle", func() {
		var emp *employee.Employee

		BeforeEach(func() {
			var err error
			emp, err = register("life@example.com", "employee")
			Expect(err).NotTo(HaveOccurred())
		})

		It("applies a partial update", func() {
			updated, err := service.Update(ctx, admin, emp.UserID, employee.UpdateEmployeeDTO{
				Designation: strPtr("Senior Engineer"),
				Role:        strPtr("project_manager"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal("project_manager"))
			Expect(updated.Profile.Designation).To(Equal("Senior Engineer"))
			Expect(updated.Profile.Department).To(Equal("Engineering"))
		})

		It("limits self-service edits to name and phone", func() {
			self := &auth.User{ID: emp.UserID, Role: auth.RoleEmployee}
			updated, err := service.UpdateMe(ctx, self, employee.UpdateMeDTO{Phone: strPtr("+91 99999 00000")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Profile.Phone).To(Equal("+91 99999 00000"))
			Expect(updated.Profile.Salary).To(BeEquivalentTo(50000))
		})

		It("clears the session marker on deactivation", func() {
			Expect(db.Model(&userDatamodel.User{}).Where("id = ?", emp.UserID).Update("session_token", "abc").Error).To(Succeed())

			inactive := false
			updated, err := service.SetActive(ctx, admin, emp.UserID, employee.SetActiveDTO{IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())

			var stored userDatamodel.User
			Expect(db.Where("id = ?", emp.UserID).First(&stored).Error).To(Succeed())
			Expect(stored.IsActive).To(BeFalse())
			Expect(stored.SessionToken).To(BeNil())
		})

		It("deletes the user and profile", func() {
			Expect(service.Delete(ctx, admin, emp.UserID)).To(Succeed())

			_, err := service.Get(ctx, admin, emp.UserID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeEmployeeNotFound))

			var profiles int64
			Expect(db.Table("employees").Where("user_id = ?", emp.UserID).Count(&profiles).Error).To(Succeed())
			Expect(profiles).To(BeZero())
		})

		It("refuses to delete the acting account", func() {
			Expect(errCode(service.Delete(ctx, admin, admin.ID))).To(Equal(internal.ErrCodeValidationFailed))
		})
	})
})
