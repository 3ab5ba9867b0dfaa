package postgres

import (
	"context"
	"errors"

	discussionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/discussion"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/discussion"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiscussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

func (r *DiscussionRepository) Transaction(ctx context.Context, fn func(tx discussion.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DiscussionRepository{db: tx})
	})
}

func (r *DiscussionRepository) CreateChannel(ctx context.Context, c *discussionDatamodel.DiscussionChannel) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *DiscussionRepository) GetChannel(ctx context.Context, id int64) (*discussionDatamodel.DiscussionChannel, error) {
	var c discussionDatamodel.DiscussionChannel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, discussion.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *DiscussionRepository) ListChannels(ctx context.Context, userID int64) ([]discussionDatamodel.DiscussionChannel, error) {
	q := r.db.WithContext(ctx).Model(&discussionDatamodel.DiscussionChannel{})
	if userID > 0 {
		members := r.db.Model(&discussionDatamodel.ChannelMember{}).Select("channel_id").Where("user_id = ?", userID)
		q = q.Where("id IN (?)", members)
	}
	var rows []discussionDatamodel.DiscussionChannel
	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}

// AddMembers skips users that already belong to the channel.
func (r *DiscussionRepository) AddMembers(ctx context.Context, channelID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]discussionDatamodel.ChannelMember, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, discussionDatamodel.ChannelMember{ChannelID: channelID, UserID: id})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "channel_id"}, {Name: "user_id"}}, DoNothing: true}).
		Create(&rows).Error
}

func (r *DiscussionRepository) MemberIDs(ctx context.Context, channelID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&discussionDatamodel.ChannelMember{}).
		Where("channel_id = ?", channelID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *DiscussionRepository) IsMember(ctx context.Context, channelID, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&discussionDatamodel.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *DiscussionRepository) CountUsers(ctx context.Context, userIDs []int64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id IN ?", userIDs).Count(&n).Error
	return n, err
}

func (r *DiscussionRepository) CreateMessage(ctx context.Context, m *discussionDatamodel.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *DiscussionRepository) ListMessages(ctx context.Context, channelID int64, q discussion.MessageQuery) ([]discussionDatamodel.Message, error) {
	db := r.db.WithContext(ctx).Where("channel_id = ?", channelID)
	if q.BeforeID > 0 {
		db = db.Where("id < ?", q.BeforeID)
	}
	var rows []discussionDatamodel.Message
	err := db.Order("id DESC").Limit(q.Limit).Find(&rows).Error
	return rows, err
}
