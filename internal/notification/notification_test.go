package notification_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/notification"
	"github.com/frahmantamala/hr-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) Sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Message(nil), s.sent...)
}

type queue struct {
	msgs []notification.Message
}

func (q *queue) Enqueue(msg notification.Message) error {
	q.msgs = append(q.msgs, msg)
	return nil
}

// blockingSender holds every send until release is closed.
type blockingSender struct {
	release chan struct{}
}

func (s blockingSender) Send(ctx context.Context, _ notification.Message) error {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

var _ = Describe("Pool", func() {
	It("delivers queued mail on the workers", func() {
		sender := &recordingSender{}
		pool := notification.NewPool(sender, notification.PoolConfig{Workers: 2, QueueSize: 10}, logger.Discard())
		defer pool.Shutdown()

		for i := 0; i < 5; i++ {
			Expect(pool.Enqueue(notification.Message{To: []string{"a@example.com"}, Subject: "hi"})).To(Succeed())
		}
		Eventually(func() int { return len(sender.Sent()) }, time.Second).Should(Equal(5))
	})

	It("keeps going when a send fails", func() {
		sender := &recordingSender{err: errors.New("smtp down")}
		pool := notification.NewPool(sender, notification.PoolConfig{Workers: 1, QueueSize: 4}, logger.Discard())
		defer pool.Shutdown()

		Expect(pool.Enqueue(notification.Message{To: []string{"a@example.com"}})).To(Succeed())
		Expect(pool.Enqueue(notification.Message{To: []string{"b@example.com"}})).To(Succeed())
		Eventually(func() int { return len(sender.Sent()) }, time.Second).Should(Equal(2))
	})

	It("drops mail once the queue is full instead of blocking", func() {
		release := make(chan struct{})
		pool := notification.NewPool(blockingSender{release: release}, notification.PoolConfig{Workers: 1, QueueSize: 1}, logger.Discard())
		defer pool.Shutdown()
		defer close(release)

		var rejected int
		for i := 0; i < 10; i++ {
			if err := pool.Enqueue(notification.Message{To: []string{"a@example.com"}}); errors.Is(err, notification.ErrQueueFull) {
				rejected++
			}
		}
		Expect(rejected).To(BeNumerically(">", 0))
	})

	It("refuses mail after shutdown", func() {
		pool := notification.NewPool(&recordingSender{}, notification.PoolConfig{}, logger.Discard())
		pool.Shutdown()
		Expect(pool.Enqueue(notification.Message{To: []string{"a@example.com"}})).To(MatchError(notification.ErrQueueFull))
	})
})

var _ = Describe("Notifier", func() {
	var (
		q        *queue
		notifier *notification.Notifier
	)

	BeforeEach(func() {
		q = &queue{}
		notifier = notification.NewNotifier(q, "hr@example.com", logger.Discard())
	})

	It("sends leave requests to the HR address", func() {
		err := notifier.Handle(context.Background(), events.NewDomainEvent(events.EventTypeLeaveApplied, 1, "leave_application", 9, map[string]interface{}{
			"employee_name": "Asha",
			"email":         "asha@example.com",
			"start_date":    "2026-03-02",
			"end_date":      "2026-03-03",
		}))
		Expect(err).NotTo(HaveOccurred())
		Expect(q.msgs).To(HaveLen(1))
		Expect(q.msgs[0].To).To(Equal([]string{"hr@example.com"}))
		Expect(q.msgs[0].Subject).To(ContainSubstring("Asha"))
	})

	It("tells the employee about a decision", func() {
		Expect(notifier.Handle(context.Background(), events.NewDomainEvent(events.EventTypeLeaveRejected, 2, "leave_application", 9, map[string]interface{}{
			"email":  "asha@example.com",
			"status": "rejected",
			"reason": "release week",
		}))).To(Succeed())
		Expect(q.msgs).To(HaveLen(1))
		Expect(q.msgs[0].To).To(Equal([]string{"asha@example.com"}))
		Expect(q.msgs[0].Body).To(ContainSubstring("release week"))
	})

	It("welcomes registered employees", func() {
		Expect(notifier.Handle(context.Background(), events.NewDomainEvent(events.EventTypeEmployeeRegistered, 1, "user", 5, map[string]interface{}{
			"email": "new@example.com",
			"name":  "New Hire",
			"role":  "intern",
		}))).To(Succeed())
		Expect(q.msgs).To(HaveLen(1))
		Expect(q.msgs[0].Body).To(ContainSubstring("intern"))
	})

	It("skips events without a recipient", func() {
		empty := notification.NewNotifier(q, "", logger.Discard())
		Expect(empty.Handle(context.Background(), events.NewDomainEvent(events.EventTypeLeaveApplied, 1, "leave_application", 9, nil))).To(Succeed())
		Expect(q.msgs).To(BeEmpty())
	})
})
