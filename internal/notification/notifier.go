package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-management/internal/core/events"
)

// Enqueuer is the part of Pool the notifier needs.
type Enqueuer interface {
	Enqueue(msg Message) error
}

// Notifier maps domain events to emails.
type Notifier struct {
	queue     Enqueuer
	hrAddress string
	logger    *slog.Logger
}

func NewNotifier(queue Enqueuer, hrAddress string, logger *slog.Logger) *Notifier {
	return &Notifier{
		queue:     queue,
		hrAddress: strings.TrimSpace(hrAddress),
		logger:    logger,
	}
}

func (n *Notifier) RegisterEventHandlers(bus *events.EventBus) {
	handled := []string{
		events.EventTypeEmployeeRegistered,
		events.EventTypeLeaveApplied,
		events.EventTypeLeaveApproved,
		events.EventTypeLeaveRejected,
		events.EventTypeInterviewScheduled,
	}
	bus.SubscribeAll(handled, n.Handle)
	n.logger.Info("notification handlers registered", "handlers", handled)
}

// Handle never returns an error; mail is best effort.
func (n *Notifier) Handle(_ context.Context, event events.Event) error {
	de, ok := event.(*events.DomainEvent)
	if !ok {
		n.logger.Warn("unexpected event for notifier", "event_type", event.EventType())
		return nil
	}
	msg, ok := n.compose(de)
	if !ok {
		return nil
	}
	if err := n.queue.Enqueue(msg); err != nil {
		n.logger.Warn("mail not queued", "event_type", de.EventType(), "error", err)
	}
	return nil
}

func (n *Notifier) compose(e *events.DomainEvent) (Message, bool) {
	switch e.EventType() {
	case events.EventTypeEmployeeRegistered:
		return n.to(e.StringField("email"),
			"Welcome aboard",
			fmt.Sprintf("Hi %s,\n\nYour account has been created with the role %s.\nSign in with this email address to get started.\n",
				e.StringField("name"), e.StringField("role")))

	case events.EventTypeLeaveApplied:
		return n.to(n.hrAddress,
			fmt.Sprintf("Leave request from %s", e.StringField("employee_name")),
			fmt.Sprintf("%s (%s) applied for leave from %s to %s.\nPlease review it in the HR portal.\n",
				e.StringField("employee_name"), e.StringField("email"),
				e.StringField("start_date"), e.StringField("end_date")))

	case events.EventTypeLeaveApproved, events.EventTypeLeaveRejected:
		status := e.StringField("status")
		body := fmt.Sprintf("Hi %s,\n\nYour leave from %s to %s has been %s.\n",
			e.StringField("employee_name"), e.StringField("start_date"), e.StringField("end_date"), status)
		if reason := e.StringField("reason"); reason != "" {
			body += fmt.Sprintf("Reason: %s\n", reason)
		}
		return n.to(e.StringField("email"), fmt.Sprintf("Leave request %s", status), body)

	case events.EventTypeInterviewScheduled:
		return n.to(e.StringField("candidate_email"),
			fmt.Sprintf("Interview for %s", e.StringField("position")),
			fmt.Sprintf("Hi %s,\n\nYour interview for the %s position has been scheduled for %s.\n",
				e.StringField("candidate_name"), e.StringField("position"), e.StringField("scheduled_at")))
	}
	return Message{}, false
}

func (n *Notifier) to(addr, subject, body string) (Message, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		n.logger.Debug("no recipient for notification", "subject", subject)
		return Message{}, false
	}
	return Message{To: []string{addr}, Subject: subject, Body: body}, true
}
