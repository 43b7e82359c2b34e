// Package domain defines the persistence models for the matching core:
// users, candidate messages, match records, chats, chat messages, push
// subscriptions, and the per-content aggregate counters. These types are
// mapped with GORM and form the data layer of the application.
package domain

import (
	"time"
)

// User is an opaque identity created at registration (outside this core).
// The matching core only ever reads users.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - DisplayName: name shown to matched partners and in notifications.
//   - Language: BCP 47 tag of the user's preferred language ("en", "de", …),
//     used to pick notification copy.
type User struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(128);not null"`
	Language    string    `json:"language"     gorm:"type:varchar(16);not null;default:'en'"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// SentMessage is one outbound candidate message instance: a matching attempt,
// distinct from free-form chat content. Rows are created exactly once per
// send attempt and never updated except for the moderation IsHidden flip.
// Moderation may hard-delete rows together with their MatchPair.
//
// Message text carries exact-match semantics: no trimming or normalization
// is applied anywhere in the core.
type SentMessage struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	SenderID   string    `json:"sender_id"   gorm:"type:char(36);not null;index:idx_sent_pair,priority:1"`
	ReceiverID string    `json:"receiver_id" gorm:"type:char(36);not null;index:idx_sent_pair,priority:2"`
	Message    string    `json:"message"     gorm:"type:text;not null"`
	IsHidden   bool      `json:"is_hidden"   gorm:"not null;default:false"`
	ReplyTo    string    `json:"reply_to,omitempty" gorm:"type:char(36)"` // optional reply/shortcut metadata
	CreatedAt  time.Time `json:"created_at"  gorm:"index"`
}

// TableName returns the database table name for SentMessage.
func (SentMessage) TableName() string { return "sent_messages" }

// MatchPair records that a reciprocal match occurred. Rows are append-only:
// never updated, only created, and bulk-deleted by moderation together with
// the associated SentMessage rows. The pair is stored in caller order, not
// canonicalized; repeat matches for the same pair+message are legal.
type MatchPair struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	User1ID   string    `json:"user1_id"  gorm:"type:char(36);not null;index:idx_match_u1"`
	User2ID   string    `json:"user2_id"  gorm:"type:char(36);not null;index:idx_match_u2"`
	Message   string    `json:"message"   gorm:"type:text;not null"`
	MatchedAt time.Time `json:"matched_at" gorm:"index"`
}

// TableName returns the database table name for MatchPair.
func (MatchPair) TableName() string { return "match_pairs" }

// Chat is the single persistent channel for a pair of users. The pair is
// stored in canonical order (lexicographically smaller id first) and backed
// by a unique index, which is the correctness backstop against duplicate
// channels under concurrent creation.
type Chat struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	User1ID   string    `json:"user1_id" gorm:"type:char(36);not null;uniqueIndex:ux_chat_pair,priority:1"`
	User2ID   string    `json:"user2_id" gorm:"type:char(36);not null;uniqueIndex:ux_chat_pair,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// ChatMessage is a free-form message inside a chat channel, exchanged after
// a match. It is unrelated to SentMessage candidates.
type ChatMessage struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	ChatID    string    `json:"chat_id"   gorm:"type:char(36);not null;index:idx_chat_msgs,priority:1"`
	SenderID  string    `json:"sender_id" gorm:"type:char(36);not null"`
	Content   string    `json:"content"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_msgs,priority:2"`

	// Chat is the parent channel; messages go away with it.
	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// PushSubscription is a user's registered push endpoint. Created on client
// opt-in, flipped inactive when the push provider reports the endpoint gone.
// Rows are deactivated, never required to be deleted.
//
// P256dh and Auth are the client key material of the Web Push subscription.
type PushSubscription struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"  gorm:"type:char(36);not null;index"`
	Endpoint  string    `json:"endpoint" gorm:"type:varchar(512);not null;uniqueIndex:ux_push_endpoint"`
	P256dh    string    `json:"-"        gorm:"type:varchar(256);not null"`
	Auth      string    `json:"-"        gorm:"type:varchar(256);not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for PushSubscription.
func (PushSubscription) TableName() string { return "push_subscriptions" }

// PresetMessage aggregates usage of one exact message content across the
// system: how often it produced a match, how many distinct users have sent
// it, and when it was last involved. Mutated transactionally alongside the
// match flow and moderation deletes.
type PresetMessage struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Message     string    `json:"message"      gorm:"type:varchar(512);not null;uniqueIndex:ux_preset_message"`
	Count       int64     `json:"count"        gorm:"not null;default:0"`
	SenderCount int64     `json:"sender_count" gorm:"not null;default:0"`
	LastSentAt  time.Time `json:"last_sent_at"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index"`
}

// TableName returns the database table name for PresetMessage.
func (PresetMessage) TableName() string { return "preset_messages" }
