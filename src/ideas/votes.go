package ideas

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// VoteOutcome names the transition a vote request produced.
type VoteOutcome string

const (
	OutcomeCreated   VoteOutcome = "created"
	OutcomeChanged   VoteOutcome = "changed"
	OutcomeRemoved   VoteOutcome = "removed"
	OutcomeRetracted VoteOutcome = "retracted"
)

// VoteResult is returned by ApplyVote. Vote is nil when the outcome is OutcomeRemoved.
type VoteResult struct {
	Outcome   VoteOutcome `json:"result"`
	Direction Direction   `json:"direction,omitempty"`
	Vote      *Vote       `json:"vote,omitempty"`
}

// maxVoteAttempts bounds re-runs after a concurrent insert for the same pair.
const maxVoteAttempts = 3

// planVote decides the toggle transition from the current vote and the requested direction.
func planVote(existing *Vote, dir Direction) VoteOutcome {
	switch {
	case existing == nil:
		return OutcomeCreated
	case existing.Direction == dir:
		return OutcomeRemoved
	default:
		return OutcomeChanged
	}
}

// ApplyVote records userID's vote on ideaID. Repeating the current direction removes
// the vote, the opposite direction replaces it. The read and the write run in one
// transaction; the unique (idea, user) index settles races between surfaces.
func (s *Service) ApplyVote(ctx context.Context, ideaID int64, userID string, dir Direction) (VoteResult, error) {
	if !dir.Valid() {
		return VoteResult{}, invalid("direction", `direction must be "up" or "down"`)
	}
	if userID == "" {
		return VoteResult{}, invalid("userId", "user id is required")
	}

	var (
		res VoteResult
		err error
	)
	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		res, err = s.applyVoteOnce(ctx, ideaID, userID, dir)
		if !errors.Is(err, ErrVoteConflict) {
			break
		}
		log.Printf("ideas: vote conflict on idea %d user %s (attempt %d)", ideaID, userID, attempt)
	}
	if err != nil {
		if errors.Is(err, ErrVotingClosed) {
			log.Printf("ideas: vote by %s refused, idea %d is closed", userID, ideaID)
			s.recorder.Refused("voting_closed")
		}
		return VoteResult{}, err
	}

	s.recorder.VoteApplied(string(res.Outcome))
	s.publish(ctx, Event{
		Kind:      EventVote,
		IdeaID:    ideaID,
		UserID:    userID,
		Result:    string(res.Outcome),
		Direction: res.Direction,
	})
	return res, nil
}

func (s *Service) applyVoteOnce(ctx context.Context, ideaID int64, userID string, dir Direction) (VoteResult, error) {
	var res VoteResult
	err := s.store.Transaction(ctx, func(tx Store) error {
		idea, err := tx.GetIdea(ctx, ideaID)
		if err != nil {
			return err
		}
		if !idea.Status.AcceptsVotes() {
			return ErrVotingClosed
		}

		existing, err := tx.GetVote(ctx, ideaID, userID)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("get vote: %w", err)
		}
		if isNotFound(err) {
			existing = nil
		}

		outcome := planVote(existing, dir)
		if existing != nil {
			if _, err := tx.DeleteVote(ctx, ideaID, userID); err != nil {
				return fmt.Errorf("delete vote: %w", err)
			}
		}
		if outcome == OutcomeRemoved {
			res = VoteResult{Outcome: OutcomeRemoved}
			return nil
		}

		vote, err := tx.InsertVote(ctx, ideaID, userID, dir)
		if err != nil {
			return err
		}
		res = VoteResult{Outcome: outcome, Direction: dir, Vote: vote}
		return nil
	})
	return res, err
}

// RetractVote deletes userID's vote on ideaID whatever its direction. It is the
// reaction-removal path and succeeds on closed ideas. Nothing is recorded or
// published when no vote existed.
func (s *Service) RetractVote(ctx context.Context, ideaID int64, userID string) error {
	if userID == "" {
		return invalid("userId", "user id is required")
	}
	removed, err := s.store.DeleteVote(ctx, ideaID, userID)
	if err != nil {
		return fmt.Errorf("retract vote: %w", err)
	}
	if !removed {
		return nil
	}
	s.recorder.VoteApplied(string(OutcomeRetracted))
	s.publish(ctx, Event{
		Kind:   EventVote,
		IdeaID: ideaID,
		UserID: userID,
		Result: string(OutcomeRetracted),
	})
	return nil
}
