package discussion_test

import (
	"context"
	"errors"
	"sync"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/discussion"
	"github.com/frahmantamala/hr-management/internal/discussion/postgres"
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

type broadcast struct {
	channelID int64
	eventType string
	payload   interface{}
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []broadcast
}

func (f *fakeBroadcaster) Broadcast(channelID int64, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, broadcast{channelID, eventType, payload})
}

var _ = Describe("Service", func() {
	var (
		ctx         context.Context
		db          *gorm.DB
		published   *testutil.RecordingPublisher
		broadcaster *fakeBroadcaster
		service     *discussion.Service
		pm          *auth.User
		dev         *auth.User
		outsider    *auth.User
		admin       *auth.User
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		published = &testutil.RecordingPublisher{}
		broadcaster = &fakeBroadcaster{}
		service = discussion.NewService(postgres.NewDiscussionRepository(db), published, logger.Discard()).
			WithBroadcaster(broadcaster)

		p, _, err := testutil.CreateUser(db, "pm@example.com", "project_manager", true)
		Expect(err).NotTo(HaveOccurred())
		pm = &auth.User{ID: p.ID, Role: auth.RoleProjectManager}

		d, _, err := testutil.CreateUser(db, "dev@example.com", "employee", true)
		Expect(err).NotTo(HaveOccurred())
		dev = &auth.User{ID: d.ID, Role: auth.RoleEmployee}

		o, _, err := testutil.CreateUser(db, "other@example.com", "intern", true)
		Expect(err).NotTo(HaveOccurred())
		outsider = &auth.User{ID: o.ID, Role: auth.RoleIntern}

		a, _, err := testutil.CreateUser(db, "admin@example.com", "admin", false)
		Expect(err).NotTo(HaveOccurred())
		admin = &auth.User{ID: a.ID, Role: auth.RoleAdmin}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("CreateChannel", func() {
		It("adds the creator and deduplicates members", func() {
			c, err := service.CreateChannel(ctx, pm, discussion.CreateChannelDTO{
				Name:      " backend ",
				MemberIDs: []int64{dev.ID, dev.ID, pm.ID},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("backend"))
			Expect(c.MemberIDs).To(ConsistOf(pm.ID, dev.ID))
			Expect(published.Types()).To(Equal([]string{events.EventTypeChannelCreated}))
		})

		It("is refused for employees", func() {
			_, err := service.CreateChannel(ctx, dev, discussion.CreateChannelDTO{Name: "x"})
			Expect(errCode(err)).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("rejects unknown members", func() {
			_, err := service.CreateChannel(ctx, pm, discussion.CreateChannelDTO{Name: "x", MemberIDs: []int64{4242}})
			Expect(errCode(err)).To(Equal(internal.ErrCodeEmployeeNotFound))
		})
	})

	Describe("membership", func() {
		var channel *discussion.Channel

		BeforeEach(func() {
			var err error
			channel, err = service.CreateChannel(ctx, pm, discussion.CreateChannelDTO{Name: "backend", MemberIDs: []int64{dev.ID}})
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets members post and read, newest first", func() {
			_, err := service.PostMessage(ctx, dev, channel.ID, discussion.PostMessageDTO{Body: "first"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.PostMessage(ctx, pm, channel.ID, discussion.PostMessageDTO{Body: "second"})
			Expect(err).NotTo(HaveOccurred())

			msgs, err := service.ListMessages(ctx, dev, channel.ID, discussion.MessageQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Body).To(Equal("second"))

			older, err := service.ListMessages(ctx, dev, channel.ID, discussion.MessageQuery{BeforeID: msgs[0].ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(older).To(HaveLen(1))
			Expect(older[0].Body).To(Equal("first"))
		})

		It("broadcasts posted messages to the channel room", func() {
			m, err := service.PostMessage(ctx, dev, channel.ID, discussion.PostMessageDTO{Body: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(broadcaster.sent).To(HaveLen(1))
			Expect(broadcaster.sent[0].channelID).To(Equal(channel.ID))
			Expect(broadcaster.sent[0].eventType).To(Equal(discussion.EventMessageCreated))
			Expect(broadcaster.sent[0].payload).To(Equal(m))
		})

		It("refuses non-members", func() {
			_, err := service.PostMessage(ctx, outsider, channel.ID, discussion.PostMessageDTO{Body: "hi"})
			Expect(errCode(err)).To(Equal(internal.ErrCodeNotChannelMember))

			_, err = service.ListMessages(ctx, outsider, channel.ID, discussion.MessageQuery{})
			Expect(errCode(err)).To(Equal(internal.ErrCodeNotChannelMember))
			Expect(broadcaster.sent).To(BeEmpty())
		})

		It("rejects empty messages", func() {
			_, err := service.PostMessage(ctx, dev, channel.ID, discussion.PostMessageDTO{Body: "   "})
			Expect(errCode(err)).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("lets only the creator or an admin add members", func() {
			_, err := service.AddMembers(ctx, dev, channel.ID, discussion.AddMembersDTO{UserIDs: []int64{outsider.ID}})
			Expect(errCode(err)).To(Equal(internal.ErrCodeInsufficientRole))

			c, err := service.AddMembers(ctx, admin, channel.ID, discussion.AddMembersDTO{UserIDs: []int64{outsider.ID, dev.ID}})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.MemberIDs).To(ConsistOf(pm.ID, dev.ID, outsider.ID))
		})

		It("answers room join checks", func() {
			ok, err := service.CanJoin(ctx, dev.ID, channel.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = service.CanJoin(ctx, outsider.ID, channel.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			ok, err = service.CanJoin(ctx, dev.ID, 9999)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("lists channels by membership, all for admins", func() {
			_, err := service.CreateChannel(ctx, admin, discussion.CreateChannelDTO{Name: "announcements"})
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.ListChannels(ctx, dev)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			all, err := service.ListChannels(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})
})
