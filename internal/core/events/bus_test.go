package events_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
	})

	It("delivers asynchronously with a context that outlives the caller", func() {
		var got atomic.Value
		bus.Subscribe(events.EventTypeLeaveApplied, func(ctx context.Context, e events.Event) error {
			got.Store(ctx.Err() == nil)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		Expect(bus.Publish(ctx, events.NewDomainEvent(events.EventTypeLeaveApplied, 1, "leave_application", 9, nil))).To(Succeed())
		cancel()

		waitCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		Expect(bus.Wait(waitCtx)).To(Succeed())
		Expect(got.Load()).To(Equal(true))
	})

	It("fans one event out to every subscriber", func() {
		var calls int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeFeeCreated, func(context.Context, events.Event) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}
		Expect(bus.Publish(context.Background(), events.NewDomainEvent(events.EventTypeFeeCreated, 1, "fee", 1, nil))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(3)))
	})

	It("survives a panicking handler", func() {
		var after int32
		bus.Subscribe(events.EventTypeTaskCreated, func(context.Context, events.Event) error { panic("boom") })
		bus.Subscribe(events.EventTypeTaskCreated, func(context.Context, events.Event) error {
			atomic.AddInt32(&after, 1)
			return nil
		})

		Expect(bus.Publish(context.Background(), events.NewDomainEvent(events.EventTypeTaskCreated, 1, "task", 1, nil))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(atomic.LoadInt32(&after)).To(Equal(int32(1)))
	})

	It("stops at the first failing handler when publishing synchronously", func() {
		var second bool
		bus.Subscribe(events.EventTypeInterviewScheduled, func(context.Context, events.Event) error { return errors.New("smtp down") })
		bus.Subscribe(events.EventTypeInterviewScheduled, func(context.Context, events.Event) error {
			second = true
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewDomainEvent(events.EventTypeInterviewScheduled, 1, "interview", 1, nil))
		Expect(err).To(MatchError(ContainSubstring("smtp down")))
		Expect(second).To(BeFalse())
	})

	It("drains every accepted event when Close races publishers", func() {
		var handled int32
		bus.Subscribe(events.EventTypeClockIn, func(context.Context, events.Event) error {
			atomic.AddInt32(&handled, 1)
			return nil
		})

		var accepted int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				err := bus.Publish(context.Background(), events.NewDomainEvent(events.EventTypeClockIn, 1, "attendance", 1, nil))
				if err == nil {
					atomic.AddInt32(&accepted, 1)
					return
				}
				Expect(err).To(MatchError(events.ErrBusClosed))
			}()
		}
		bus.Close()
		Expect(bus.Wait(context.Background())).To(Succeed())
		wg.Wait()
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(atomic.LoadInt32(&handled)).To(Equal(atomic.LoadInt32(&accepted)))
	})

	It("rejects events after Close", func() {
		bus.Subscribe(events.EventTypeLeaveApplied, func(context.Context, events.Event) error { return nil })
		bus.Close()
		err := bus.Publish(context.Background(), events.NewDomainEvent(events.EventTypeLeaveApplied, 1, "leave_application", 1, nil))
		Expect(err).To(MatchError(events.ErrBusClosed))
	})
})

var _ = Describe("DomainEvent", func() {
	It("exposes string payload fields", func() {
		e := events.NewDomainEvent(events.EventTypeEmployeeRegistered, 2, "employee", 5, map[string]interface{}{"email": "new@example.com", "n": 3})
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.StringField("email")).To(Equal("new@example.com"))
		Expect(e.StringField("n")).To(BeEmpty())
		Expect(e.StringField("missing")).To(BeEmpty())
	})
})
