package discussion

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	discussionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/discussion"
)

type Channel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	MemberIDs   []int64   `json:"memberIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ChannelFromDataModel(c *discussionDatamodel.DiscussionChannel, members []int64) *Channel {
	return &Channel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		MemberIDs:   members,
		CreatedAt:   c.CreatedAt,
	}
}

type Message struct {
	ID        int64     `json:"id"`
	ChannelID int64     `json:"channelId"`
	SenderID  int64     `json:"senderId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func MessageFromDataModel(m *discussionDatamodel.Message) *Message {
	return &Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

// MessageQuery pages backwards through a channel; BeforeID 0 starts at the newest message.
type MessageQuery struct {
	BeforeID int64
	Limit    int
}

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	CreateChannel(ctx context.Context, c *discussionDatamodel.DiscussionChannel) error
	GetChannel(ctx context.Context, id int64) (*discussionDatamodel.DiscussionChannel, error)
	// ListChannels returns every channel when userID is 0.
	ListChannels(ctx context.Context, userID int64) ([]discussionDatamodel.DiscussionChannel, error)

	AddMembers(ctx context.Context, channelID int64, userIDs []int64) error
	MemberIDs(ctx context.Context, channelID int64) ([]int64, error)
	IsMember(ctx context.Context, channelID, userID int64) (bool, error)
	CountUsers(ctx context.Context, userIDs []int64) (int64, error)

	CreateMessage(ctx context.Context, m *discussionDatamodel.Message) error
	ListMessages(ctx context.Context, channelID int64, q MessageQuery) ([]discussionDatamodel.Message, error)
}

// Broadcaster pushes a payload to every connection subscribed to a channel.
type Broadcaster interface {
	Broadcast(channelID int64, eventType string, payload interface{})
}

const EventMessageCreated = "message.created"

var ErrNotFound = errors.New("channel not found")

var (
	ErrChannelNotFound = internal.NewNotFoundError("Channel not found", internal.ErrCodeChannelNotFound)
	ErrNotMember       = internal.NewForbiddenError("You are not a member of this channel", internal.ErrCodeNotChannelMember)
	ErrUnknownMember   = internal.NewValidationFieldError("memberIds", "one or more members do not exist", internal.ErrCodeEmployeeNotFound)
)
