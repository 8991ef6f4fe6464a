package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op     string
	ideaID int64
	userID string
	dir    ideas.Direction
}

type fakeVoter struct {
	byMessage map[string]*ideas.Idea
	applyErr  error
	lookupErr error
	calls     []call
	actors    []ideas.Actor
}

func (f *fakeVoter) IdeaForMessage(ctx context.Context, messageID string) (*ideas.Idea, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	idea, ok := f.byMessage[messageID]
	if !ok {
		return nil, ideas.ErrNotFound
	}
	return idea, nil
}

func (f *fakeVoter) EnsureActor(ctx context.Context, actor ideas.Actor) (*ideas.Actor, error) {
	f.actors = append(f.actors, actor)
	return &actor, nil
}

func (f *fakeVoter) ApplyVote(ctx context.Context, ideaID int64, userID string, dir ideas.Direction) (ideas.VoteResult, error) {
	f.calls = append(f.calls, call{op: "apply", ideaID: ideaID, userID: userID, dir: dir})
	if f.applyErr != nil {
		return ideas.VoteResult{}, f.applyErr
	}
	return ideas.VoteResult{Outcome: ideas.OutcomeCreated, Direction: dir}, nil
}

func (f *fakeVoter) RetractVote(ctx context.Context, ideaID int64, userID string) error {
	f.calls = append(f.calls, call{op: "retract", ideaID: ideaID, userID: userID})
	return nil
}

func newFakeVoter() *fakeVoter {
	return &fakeVoter{byMessage: map[string]*ideas.Idea{
		"m1": {ID: 1, Status: ideas.StatusPending, MessageID: "m1"},
	}}
}

func TestReactionHandler_Added(t *testing.T) {
	tests := []struct {
		name  string
		r     Reaction
		calls []call
	}{
		{
			name:  "thumbs up votes up",
			r:     Reaction{MessageID: "m1", UserID: "u1", Emoji: "👍"},
			calls: []call{{op: "apply", ideaID: 1, userID: "u1", dir: ideas.DirectionUp}},
		},
		{
			name:  "thumbs down votes down",
			r:     Reaction{MessageID: "m1", UserID: "u1", Emoji: "👎"},
			calls: []call{{op: "apply", ideaID: 1, userID: "u1", dir: ideas.DirectionDown}},
		},
		{
			name: "other emoji ignored",
			r:    Reaction{MessageID: "m1", UserID: "u1", Emoji: "🎉"},
		},
		{
			name: "bot ignored",
			r:    Reaction{MessageID: "m1", UserID: "u2", Emoji: "👍", Bot: true},
		},
		{
			name: "self ignored",
			r:    Reaction{MessageID: "m1", UserID: "self", Emoji: "👍"},
		},
		{
			name: "unknown message ignored",
			r:    Reaction{MessageID: "other", UserID: "u1", Emoji: "👍"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voter := newFakeVoter()
			h := NewReactionHandler(voter, func() string { return "self" })
			_, err := h.Added(context.Background(), tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.calls, voter.calls)
		})
	}
}

func TestReactionHandler_AddedRegistersActor(t *testing.T) {
	voter := newFakeVoter()
	h := NewReactionHandler(voter, nil)

	res, err := h.Added(context.Background(), Reaction{MessageID: "m1", UserID: "u1", Username: "alice", Emoji: "👍"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, ideas.OutcomeCreated, res.Outcome)
	require.Len(t, voter.actors, 1)
	assert.Equal(t, ideas.Actor{ID: "u1", Origin: ideas.OriginDiscord, DisplayName: "alice"}, voter.actors[0])
}

func TestReactionHandler_ClosedIdeaIsDropped(t *testing.T) {
	voter := newFakeVoter()
	voter.applyErr = ideas.ErrVotingClosed
	h := NewReactionHandler(voter, nil)

	res, err := h.Added(context.Background(), Reaction{MessageID: "m1", UserID: "u1", Emoji: "👍"})
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestReactionHandler_LookupError(t *testing.T) {
	voter := newFakeVoter()
	voter.lookupErr = errors.New("db down")
	h := NewReactionHandler(voter, nil)

	_, err := h.Added(context.Background(), Reaction{MessageID: "m1", UserID: "u1", Emoji: "👍"})
	assert.Error(t, err)
	assert.Error(t, h.Removed(context.Background(), Reaction{MessageID: "m1", UserID: "u1", Emoji: "👍"}))
}

func TestReactionHandler_Removed(t *testing.T) {
	tests := []struct {
		name  string
		r     Reaction
		calls []call
	}{
		{
			name:  "retracts whatever the emoji direction",
			r:     Reaction{MessageID: "m1", UserID: "u1", Emoji: "👎"},
			calls: []call{{op: "retract", ideaID: 1, userID: "u1"}},
		},
		{
			name: "other emoji ignored",
			r:    Reaction{MessageID: "m1", UserID: "u1", Emoji: "❤️"},
		},
		{
			name: "self ignored",
			r:    Reaction{MessageID: "m1", UserID: "self", Emoji: "👍"},
		},
		{
			name: "unknown message ignored",
			r:    Reaction{MessageID: "nope", UserID: "u1", Emoji: "👍"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voter := newFakeVoter()
			h := NewReactionHandler(voter, func() string { return "self" })
			require.NoError(t, h.Removed(context.Background(), tt.r))
			assert.Equal(t, tt.calls, voter.calls)
		})
	}
}
