package ideas

import "context"

// IdeaStore persists ideas. Lookups return ErrNotFound when no row matches.
type IdeaStore interface {
	CreateIdea(ctx context.Context, idea *Idea) error
	GetIdea(ctx context.Context, id int64) (*Idea, error)
	GetIdeaByMessage(ctx context.Context, messageID string) (*Idea, error)
	ListIdeas(ctx context.Context) ([]Idea, error)
	SetIdeaMessage(ctx context.Context, id int64, messageID, channelID string) error
	// SetIdeaStatus moves an idea from one status to another and returns the updated row.
	// It returns ErrInvalidTransition when the idea exists but is not in status from.
	SetIdeaStatus(ctx context.Context, id int64, from, to Status) (*Idea, error)
	CountIdeasByStatus(ctx context.Context) (Stats, error)
}

// VoteStore persists votes.
type VoteStore interface {
	GetVote(ctx context.Context, ideaID int64, userID string) (*Vote, error)
	// InsertVote returns ErrVoteConflict if a vote for the pair already exists.
	InsertVote(ctx context.Context, ideaID int64, userID string, dir Direction) (*Vote, error)
	// DeleteVote reports whether a vote was removed; a missing vote is not an error.
	DeleteVote(ctx context.Context, ideaID int64, userID string) (bool, error)
	// CountVotesGroupedByIdea tallies votes for ideaIDs in a single grouped query.
	CountVotesGroupedByIdea(ctx context.Context, ideaIDs []int64) (map[int64]Counts, error)
	// UserVotes returns userID's direction per idea for the given ideas.
	UserVotes(ctx context.Context, userID string, ideaIDs []int64) (map[int64]Direction, error)
}

// ActorStore persists web and Discord actors.
type ActorStore interface {
	GetActor(ctx context.Context, id string) (*Actor, error)
	GetActorsByID(ctx context.Context, ids []string) (map[string]Actor, error)
	FindActorByEmail(ctx context.Context, email string) (*Actor, error)
	// UpsertActor creates the actor or refreshes its profile fields. The role of an
	// existing actor is never changed by an upsert.
	UpsertActor(ctx context.Context, actor *Actor) (*Actor, error)
	SetActorRole(ctx context.Context, id string, role Role) (*Actor, error)
}

// GuildStore persists per-guild bot configuration.
type GuildStore interface {
	GetServerConfig(ctx context.Context, guildID string) (*ServerConfig, error)
	SaveServerConfig(ctx context.Context, cfg *ServerConfig) error
}

// Store is the storage collaborator of the service.
type Store interface {
	IdeaStore
	VoteStore
	ActorStore
	GuildStore
	// Transaction runs fn against a store bound to a single atomic transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// MemberRoleLookup resolves the live role ids of a guild member.
type MemberRoleLookup interface {
	MemberRoles(ctx context.Context, guildID, userID string) ([]string, error)
}

// Event is a notification about a state change.
type Event struct {
	Kind      string    `json:"kind"` // vote|status
	IdeaID    int64     `json:"ideaId"`
	UserID    string    `json:"userId,omitempty"`
	Result    string    `json:"result,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Status    Status    `json:"status,omitempty"`
	Origin    Origin    `json:"origin,omitempty"`
}

const (
	EventVote   = "vote"
	EventStatus = "status"
)

// Publisher receives events after successful mutations.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Recorder observes outcomes for metrics.
type Recorder interface {
	VoteApplied(result string)
	StatusChanged(status Status)
	Refused(reason string)
}
