package ideas

import "time"

// Status is the review state of an idea.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AcceptsVotes reports whether new votes may be cast on an idea in state s.
func (s Status) AcceptsVotes() bool {
	return s == StatusPending || s == StatusApproved
}

// Direction is the sign of a vote.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Role gates administrative actions.
type Role string

const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Origin tells which surface an actor was first seen on.
type Origin string

const (
	OriginWeb     Origin = "web"
	OriginDiscord Origin = "discord"
)

// Category tags an idea.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryTechnology Category = "technology"
	CategoryMarketing  Category = "marketing"
	CategoryProduct    Category = "product"
	CategoryProcess    Category = "process"
	CategoryOther      Category = "other"
)

var categories = []Category{
	CategoryGeneral,
	CategoryTechnology,
	CategoryMarketing,
	CategoryProduct,
	CategoryProcess,
	CategoryOther,
}

// Categories lists every accepted category.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Idea is a proposal open to voting and review.
type Idea struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    Category  `gorm:"size:32;not null" json:"category"`
	AuthorID    string    `gorm:"size:64;not null;index" json:"authorId"`
	Status      Status    `gorm:"size:16;not null;default:pending;index" json:"status"`
	MessageID   string    `gorm:"size:64;index" json:"messageId,omitempty"` // Discord message carrying the idea
	ChannelID   string    `gorm:"size:64" json:"channelId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Actor is a web or Discord identity with a role.
type Actor struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Origin      Origin    `gorm:"size:16;not null" json:"origin"`
	DisplayName string    `gorm:"size:128" json:"displayName"`
	Email       string    `gorm:"size:255;index" json:"email,omitempty"`
	Role        Role      `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Vote is one actor's directional preference on one idea.
// At most one row exists per (IdeaID, UserID).
type Vote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	IdeaID    int64     `gorm:"not null;uniqueIndex:idx_votes_idea_user" json:"ideaId"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_votes_idea_user" json:"userId"`
	Direction Direction `gorm:"size:8;not null" json:"direction"`
	CreatedAt time.Time `json:"createdAt"`
}

// ServerConfig holds per-guild bot settings.
type ServerConfig struct {
	ID                   int64    `gorm:"primaryKey;autoIncrement"`
	GuildID              string   `gorm:"size:64;not null;uniqueIndex"`
	SuggestionsChannelID string   `gorm:"size:64"`
	ApprovalRoleIDs      []string `gorm:"serializer:json;type:text"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasApprovalRole reports whether any of roleIDs is configured as an approval role.
func (c *ServerConfig) HasApprovalRole(roleIDs []string) bool {
	if c == nil {
		return false
	}
	for _, have := range roleIDs {
		for _, allowed := range c.ApprovalRoleIDs {
			if have == allowed {
				return true
			}
		}
	}
	return false
}

// Counts is the derived vote tally of one idea.
type Counts struct {
	Up   int64 `json:"upvotes"`
	Down int64 `json:"downvotes"`
}

// AuthorRef is the public part of an idea's author.
type AuthorRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// IdeaView is an idea with its author, tally and the viewer's own vote.
type IdeaView struct {
	Idea
	Author    AuthorRef  `json:"author"`
	Upvotes   int64      `json:"upvotes"`
	Downvotes int64      `json:"downvotes"`
	UserVote  *Direction `json:"userVote"`
}

// Stats counts ideas per status.
type Stats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
