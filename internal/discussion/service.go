package discussion

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	discussionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/discussion"
	"github.com/frahmantamala/hr-management/internal/core/events"
)

// ModeratorPolicy may open channels.
var ModeratorPolicy = auth.AnyOf(auth.RoleAdmin, auth.RoleHR, auth.RoleProjectManager)

const defaultMessagePage = 50

type Service struct {
	repo        Repository
	publisher   events.Publisher
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) WithBroadcaster(b Broadcaster) *Service {
	s.broadcaster = b
	return s
}

// CreateChannel opens a channel with the creator as its first member.
func (s *Service) CreateChannel(ctx context.Context, actor *auth.User, dto CreateChannelDTO) (*Channel, error) {
	if err := auth.RequireAnyRole(actor, ModeratorPolicy); err != nil {
		return nil, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	members := uniqueIDs(append([]int64{actor.ID}, dto.MemberIDs...)...)
	if err := s.checkUsers(ctx, members); err != nil {
		return nil, err
	}

	c := &discussionDatamodel.DiscussionChannel{
		Name:        dto.Name,
		Description: dto.Description,
		CreatedBy:   actor.ID,
	}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateChannel(ctx, c); err != nil {
			return err
		}
		return tx.AddMembers(ctx, c.ID, members)
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to create channel", err)
	}

	s.logger.Info("channel created", "channel_id", c.ID, "members", len(members))
	s.publish(ctx, events.NewDomainEvent(events.EventTypeChannelCreated, actor.ID, "channel", c.ID, map[string]interface{}{
		"name":    c.Name,
		"members": members,
	}))
	return ChannelFromDataModel(c, members), nil
}

// ListChannels returns the actor's channels, or all of them for admins.
func (s *Service) ListChannels(ctx context.Context, actor *auth.User) ([]*Channel, error) {
	userID := actor.ID
	if actor.Role == auth.RoleAdmin {
		userID = 0
	}
	rows, err := s.repo.ListChannels(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list channels", err)
	}
	out := make([]*Channel, 0, len(rows))
	for i := range rows {
		out = append(out, ChannelFromDataModel(&rows[i], nil))
	}
	return out, nil
}

func (s *Service) GetChannel(ctx context.Context, actor *auth.User, id int64) (*Channel, error) {
	c, err := s.loadChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleAdmin {
		if err := s.requireMember(ctx, id, actor.ID); err != nil {
			return nil, err
		}
	}
	members, err := s.repo.MemberIDs(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load members", err)
	}
	return ChannelFromDataModel(c, members), nil
}

// AddMembers is limited to the channel creator and admins.
func (s *Service) AddMembers(ctx context.Context, actor *auth.User, id int64, dto AddMembersDTO) (*Channel, error) {
	c, err := s.loadChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatedBy != actor.ID && actor.Role != auth.RoleAdmin {
		return nil, internal.ErrInsufficientRole
	}
	ids := uniqueIDs(dto.UserIDs...)
	if len(ids) == 0 {
		return nil, internal.NewValidationFieldError("userIds", "userIds is required", internal.ErrCodeValidationFailed)
	}
	if err := s.checkUsers(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.repo.AddMembers(ctx, id, ids); err != nil {
		return nil, internal.NewInternalError("failed to add members", err)
	}

	for _, uid := range ids {
		s.publish(ctx, events.NewDomainEvent(events.EventTypeChannelMemberAdded, actor.ID, "channel", id, map[string]interface{}{
			"user_id": uid,
		}))
	}
	members, err := s.repo.MemberIDs(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load members", err)
	}
	return ChannelFromDataModel(c, members), nil
}

// ListMessages returns the newest messages first.
func (s *Service) ListMessages(ctx context.Context, actor *auth.User, id int64, q MessageQuery) ([]*Message, error) {
	if _, err := s.loadChannel(ctx, id); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = defaultMessagePage
	}
	rows, err := s.repo.ListMessages(ctx, id, q)
	if err != nil {
		return nil, internal.NewInternalError("failed to list messages", err)
	}
	out := make([]*Message, 0, len(rows))
	for i := range rows {
		out = append(out, MessageFromDataModel(&rows[i]))
	}
	return out, nil
}

// PostMessage stores the message and then fans it out to the channel room.
func (s *Service) PostMessage(ctx context.Context, actor *auth.User, id int64, dto PostMessageDTO) (*Message, error) {
	dto.Body = strings.TrimSpace(dto.Body)
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.loadChannel(ctx, id); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, id, actor.ID); err != nil {
		return nil, err
	}

	m := &discussionDatamodel.Message{
		ChannelID: id,
		SenderID:  actor.ID,
		Body:      dto.Body,
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, internal.NewInternalError("failed to post message", err)
	}

	msg := MessageFromDataModel(m)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(id, EventMessageCreated, msg)
	}
	s.publish(ctx, events.NewDomainEvent(events.EventTypeMessagePosted, actor.ID, "message", m.ID, map[string]interface{}{
		"channel_id": id,
	}))
	return msg, nil
}

// CanJoin reports whether a user may subscribe to a channel's realtime room.
func (s *Service) CanJoin(ctx context.Context, userID, channelID int64) (bool, error) {
	if _, err := s.loadChannel(ctx, channelID); err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.repo.IsMember(ctx, channelID, userID)
}

func (s *Service) requireMember(ctx context.Context, channelID, userID int64) error {
	ok, err := s.repo.IsMember(ctx, channelID, userID)
	if err != nil {
		return internal.NewInternalError("failed to check membership", err)
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func (s *Service) checkUsers(ctx context.Context, ids []int64) error {
	n, err := s.repo.CountUsers(ctx, ids)
	if err != nil {
		return internal.NewInternalError("failed to check members", err)
	}
	if n != int64(len(ids)) {
		return ErrUnknownMember
	}
	return nil
}

func (s *Service) loadChannel(ctx context.Context, id int64) (*discussionDatamodel.DiscussionChannel, error) {
	c, err := s.repo.GetChannel(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, internal.NewInternalError("failed to load channel", err)
	}
	return c, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
