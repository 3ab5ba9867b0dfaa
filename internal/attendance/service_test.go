package attendance_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/attendance"
	"github.com/frahmantamala/hr-management/internal/attendance/postgres"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/geofence"
	"github.com/frahmantamala/hr-management/internal/testutil"
	"github.com/frahmantamala/hr-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	officeLat = 21.1877888
	officeLon = 72.8367104
)

func errCode(err error) internal.ErrorCode {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

var _ = Describe("Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		now      time.Time
		service  *attendance.Service
		employee *auth.User
		hr       *auth.User
	)

	atOffice := attendance.ClockDTO{Location: &geofence.Coordinate{Latitude: officeLat, Longitude: officeLon}}
	farAway := attendance.ClockDTO{Location: &geofence.Coordinate{Latitude: 21.30, Longitude: 72.90}}

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, time.March, 2, 9, 5, 0, 0, time.UTC)

		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		policy := geofence.NewPolicy(internal.OfficeConfig{
			Latitude:  officeLat,
			Longitude: officeLon,
			RadiusKm:  0.5,
		}, []string{"employee", "intern"}, logger.Discard())

		service = attendance.NewService(postgres.NewAttendanceRepository(db), policy, nil, logger.Discard()).
			WithClock(func() time.Time { return now })

		u, e, err := testutil.CreateUser(db, "emp@example.com", "employee", true)
		Expect(err).NotTo(HaveOccurred())
		employee = &auth.User{ID: u.ID, Role: auth.RoleEmployee, EmployeeID: &e.ID}

		h, he, err := testutil.CreateUser(db, "hr@example.com", "hr", true)
		Expect(err).NotTo(HaveOccurred())
		hr = &auth.User{ID: h.ID, Role: auth.RoleHR, EmployeeID: &he.ID}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("clocks in at the office and out later with worked minutes", func() {
		in, err := service.ClockIn(ctx, employee, atOffice, internal.VariantBrowser)
		Expect(err).NotTo(HaveOccurred())
		Expect(in.WorkDate).To(Equal("2026-03-02"))
		Expect(*in.ClockInDistanceKm).To(Equal(0.0))

		now = now.Add(8*time.Hour + 30*time.Minute + 40*time.Second)
		out, err := service.ClockOut(ctx, employee, atOffice, internal.VariantBrowser)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.WorkedMinutes).To(Equal(510))

		today, err := service.Today(ctx, employee)
		Expect(err).NotTo(HaveOccurred())
		Expect(today.ClockedIn).To(BeTrue())
		Expect(today.ClockedOut).To(BeTrue())
	})

	It("allows one clock-in per day", func() {
		_, err := service.ClockIn(ctx, employee, atOffice, internal.VariantBrowser)
		Expect(err).NotTo(HaveOccurred())

		_, err = service.ClockIn(ctx, employee, atOffice, internal.VariantBrowser)
		Expect(errCode(err)).To(Equal(internal.ErrCodeAttendanceExists))

		now = now.Add(24 * time.Hour)
		_, err = service.ClockIn(ctx, employee, atOffice, internal.VariantBrowser)
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a clock-in before clocking out", func() {
		_, err := service.ClockOut(ctx, employee, atOffice, internal.VariantBrowser)
		Expect(errCode(err)).To(Equal(internal.ErrCodeNotClockedIn))
	})

	It("distinguishes a missing location from an out-of-radius one", func() {
		_, err := service.ClockIn(ctx, employee, attendance.ClockDTO{}, internal.VariantBrowser)
		Expect(errCode(err)).To(Equal(internal.ErrCodeLocationRequired))

		_, err = service.ClockIn(ctx, employee, farAway, internal.VariantBrowser)
		Expect(errCode(err)).To(Equal(internal.ErrCodeOutsideGeofence))
	})

	It("exempts roles outside the location-required set", func() {
		rec, err := service.ClockIn(ctx, hr, attendance.ClockDTO{}, internal.VariantBrowser)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.ClockInDistanceKm).To(BeNil())
	})

	It("lists records by inclusive date range", func() {
		for i := 0; i < 3; i++ {
			_, err := service.ClockIn(ctx, employee, atOffice, internal.VariantBrowser)
			Expect(err).NotTo(HaveOccurred())
			now = now.Add(24 * time.Hour)
		}

		records, err := service.ListMine(ctx, employee, attendance.ListFilter{From: "2026-03-03", To: "2026-03-04", Limit: 20})
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].WorkDate).To(Equal("2026-03-04"))

		_, err = service.List(ctx, attendance.ListFilter{From: "03/03/2026"})
		Expect(errCode(err)).To(Equal(internal.ErrCodeInvalidDate))
	})

	Describe("Handler", func() {
		It("renders the geofence failure with locationRequired", func() {
			handler := attendance.NewHandler(service)
			handler.Logger = logger.Discard()

			raw, _ := json.Marshal(farAway)
			req := httptest.NewRequest(http.MethodPost, "/attendance/clock-in", bytes.NewReader(raw))
			req = req.WithContext(auth.ContextWithUser(req.Context(), employee))
			rec := httptest.NewRecorder()
			handler.ClockIn(rec, req)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["locationRequired"]).To(Equal(true))
			Expect(body["success"]).To(Equal(false))
		})
	})
})
