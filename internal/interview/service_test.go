package interview_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/interview"
	"github.com/frahmantamala/hr-management/internal/interview/postgres"
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

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		published *testutil.RecordingPublisher
		service   *interview.Service
		hr        *auth.User
		pm        *auth.User
		other     *auth.User
	)

	schedule := func(interviewerID int64) interview.ScheduleInterviewDTO {
		return interview.ScheduleInterviewDTO{
			CandidateName:  "Jane Candidate",
			CandidateEmail: " Jane@Example.com ",
			Position:       "Backend Engineer",
			InterviewerID:  interviewerID,
			ScheduledAt:    "2026-04-01T10:00:00+05:30",
			Mode:           "Video",
		}
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		published = &testutil.RecordingPublisher{}
		service = interview.NewService(postgres.NewInterviewRepository(db), published, logger.Discard())

		h, _, err := testutil.CreateUser(db, "hr@example.com", "hr", false)
		Expect(err).NotTo(HaveOccurred())
		hr = &auth.User{ID: h.ID, Role: auth.RoleHR}

		p, _, err := testutil.CreateUser(db, "pm@example.com", "project_manager", true)
		Expect(err).NotTo(HaveOccurred())
		pm = &auth.User{ID: p.ID, Role: auth.RoleProjectManager}

		o, _, err := testutil.CreateUser(db, "dev@example.com", "employee", true)
		Expect(err).NotTo(HaveOccurred())
		other = &auth.User{ID: o.ID, Role: auth.RoleEmployee}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Schedule", func() {
		It("stores a scheduled interview in UTC", func() {
			i, err := service.Schedule(ctx, hr, schedule(pm.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(i.Status).To(Equal(interview.StatusScheduled))
			Expect(i.CandidateEmail).To(Equal("jane@example.com"))
			Expect(i.Mode).To(Equal(interview.ModeVideo))
			Expect(i.ScheduledAt.Hour()).To(Equal(4))
			Expect(i.CreatedBy).To(Equal(hr.ID))
			Expect(published.Types()).To(Equal([]string{events.EventTypeInterviewScheduled}))
		})

		It("rejects an unknown interviewer", func() {
			_, err := service.Schedule(ctx, hr, schedule(9999))
			Expect(errCode(err)).To(Equal(internal.ErrCodeEmployeeNotFound))
		})

		It("rejects a malformed timestamp", func() {
			dto := schedule(pm.ID)
			dto.ScheduledAt = "tomorrow"
			_, err := service.Schedule(ctx, hr, dto)
			Expect(errCode(err)).To(Equal(internal.ErrCodeInvalidDate))
		})

		It("rejects an unknown mode", func() {
			dto := schedule(pm.ID)
			dto.Mode = "carrier pigeon"
			_, err := service.Schedule(ctx, hr, dto)
			Expect(errCode(err)).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("visibility", func() {
		var scheduled *interview.Interview

		BeforeEach(func() {
			var err error
			scheduled, err = service.Schedule(ctx, hr, schedule(pm.ID))
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists everything for recruiters and only own interviews otherwise", func() {
			all, err := service.List(ctx, hr, interview.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))

			mine, err := service.List(ctx, pm, interview.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			none, err := service.List(ctx, other, interview.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(none).To(BeEmpty())
		})

		It("hides other interviews from Get", func() {
			_, err := service.Get(ctx, other, scheduled.ID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeInterviewNotFound))

			got, err := service.Get(ctx, pm, scheduled.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(scheduled.ID))
		})
	})

	Describe("feedback and cancellation", func() {
		var scheduled *interview.Interview

		BeforeEach(func() {
			var err error
			scheduled, err = service.Schedule(ctx, hr, schedule(pm.ID))
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets the interviewer complete the interview", func() {
			i, err := service.RecordFeedback(ctx, pm, scheduled.ID, interview.FeedbackDTO{Rating: 4, Feedback: "solid"})
			Expect(err).NotTo(HaveOccurred())
			Expect(i.Status).To(Equal(interview.StatusCompleted))
			Expect(*i.Rating).To(Equal(4))
			Expect(published.Last().EventType()).To(Equal(events.EventTypeInterviewFeedback))
		})

		It("refuses feedback from someone else", func() {
			_, err := service.RecordFeedback(ctx, other, scheduled.ID, interview.FeedbackDTO{Rating: 4, Feedback: "x"})
			Expect(errCode(err)).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("rejects ratings outside 1-5", func() {
			_, err := service.RecordFeedback(ctx, pm, scheduled.ID, interview.FeedbackDTO{Rating: 6, Feedback: "x"})
			Expect(errCode(err)).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("cancels only scheduled interviews", func() {
			i, err := service.Cancel(ctx, hr, scheduled.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(i.Status).To(Equal(interview.StatusCancelled))

			_, err = service.Cancel(ctx, hr, scheduled.ID)
			Expect(errCode(err)).To(Equal(internal.ErrCodeValidationFailed))

			_, err = service.RecordFeedback(ctx, pm, scheduled.ID, interview.FeedbackDTO{Rating: 3, Feedback: "late"})
			Expect(errCode(err)).To(Equal(internal.ErrCodeValidationFailed))
		})
	})
})
