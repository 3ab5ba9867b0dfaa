package discussion

import "time"

type DiscussionChannel struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	CreatedBy   int64     `gorm:"column:created_by;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

type ChannelMember struct {
	ID        int64     `gorm:"primaryKey"`
	ChannelID int64     `gorm:"column:channel_id;not null;uniqueIndex:idx_channel_member"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_channel_member"`
	JoinedAt  time.Time `gorm:"column:joined_at;autoCreateTime"`
}

type Message struct {
	ID        int64     `gorm:"primaryKey"`
	ChannelID int64     `gorm:"column:channel_id;not null;index"`
	SenderID  int64     `gorm:"column:sender_id;not null"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
