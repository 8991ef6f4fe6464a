package bot

import (
	"context"
	"errors"
	"log"

	"github.com/stake-plus/ideabox/src/discord"
	"github.com/stake-plus/ideabox/src/ideas"
)

// Voter is the part of the idea service the reaction surface drives.
type Voter interface {
	IdeaForMessage(ctx context.Context, messageID string) (*ideas.Idea, error)
	EnsureActor(ctx context.Context, actor ideas.Actor) (*ideas.Actor, error)
	ApplyVote(ctx context.Context, ideaID int64, userID string, dir ideas.Direction) (ideas.VoteResult, error)
	RetractVote(ctx context.Context, ideaID int64, userID string) error
}

// Reaction is a reaction event reduced to what voting needs.
type Reaction struct {
	MessageID string
	UserID    string
	Username  string
	Emoji     string
	Bot       bool
}

// ReactionHandler turns 👍 and 👎 reactions on idea messages into votes.
type ReactionHandler struct {
	voter  Voter
	selfID func() string
}

func NewReactionHandler(voter Voter, selfID func() string) *ReactionHandler {
	if selfID == nil {
		selfID = func() string { return "" }
	}
	return &ReactionHandler{voter: voter, selfID: selfID}
}

func (h *ReactionHandler) ignored(r Reaction) bool {
	if r.Bot || r.UserID == "" {
		return true
	}
	self := h.selfID()
	return self != "" && r.UserID == self
}

// resolve returns the idea behind the reaction, or nil when the event is not a vote.
func (h *ReactionHandler) resolve(ctx context.Context, r Reaction) (*ideas.Idea, ideas.Direction, error) {
	if h.ignored(r) {
		return nil, "", nil
	}
	dir, ok := discord.DirectionForEmoji(r.Emoji)
	if !ok {
		return nil, "", nil
	}
	idea, err := h.voter.IdeaForMessage(ctx, r.MessageID)
	if errors.Is(err, ideas.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return idea, dir, nil
}

// Added applies the toggle rule for a reaction add. Votes on closed ideas are
// dropped and logged.
func (h *ReactionHandler) Added(ctx context.Context, r Reaction) (*ideas.VoteResult, error) {
	idea, dir, err := h.resolve(ctx, r)
	if err != nil || idea == nil {
		return nil, err
	}
	if _, err := h.voter.EnsureActor(ctx, ideas.Actor{
		ID:          r.UserID,
		Origin:      ideas.OriginDiscord,
		DisplayName: r.Username,
	}); err != nil {
		return nil, err
	}

	res, err := h.voter.ApplyVote(ctx, idea.ID, r.UserID, dir)
	if errors.Is(err, ideas.ErrVotingClosed) {
		log.Printf("bot: ignoring %s from %s on closed idea %d", r.Emoji, r.UserID, idea.ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Removed deletes the user's vote on the idea whatever its direction.
func (h *ReactionHandler) Removed(ctx context.Context, r Reaction) error {
	idea, _, err := h.resolve(ctx, r)
	if err != nil || idea == nil {
		return err
	}
	return h.voter.RetractVote(ctx, idea.ID, r.UserID)
}
