package ideas

import (
	"context"
	"errors"
	"log"
)

func validateRequested(status Status) error {
	// only terminal states can be requested
	if !status.Terminal() {
		return invalid("status", `status must be "approved" or "rejected"`)
	}
	return nil
}

// SetStatus approves or rejects a pending idea on behalf of a web actor.
// Non-pending ideas yield ErrInvalidTransition and stay unchanged.
func (s *Service) SetStatus(ctx context.Context, ideaID int64, requested Status, actor *Actor) (*Idea, error) {
	if err := validateRequested(requested); err != nil {
		return nil, err
	}
	if !CanModerate(actor) {
		s.recorder.Refused("forbidden")
		return nil, ErrForbidden
	}
	return s.transition(ctx, ideaID, requested, actor.ID, OriginWeb)
}

// ApproveFromGuild is SetStatus for the Discord surface, where permission comes from
// the stored bot role or the guild's approval roles.
func (s *Service) ApproveFromGuild(ctx context.Context, ideaID int64, requested Status, userID, guildID string) (*Idea, error) {
	if err := validateRequested(requested); err != nil {
		return nil, err
	}
	ok, err := s.CanApprove(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.recorder.Refused("forbidden")
		return nil, ErrForbidden
	}
	return s.transition(ctx, ideaID, requested, userID, OriginDiscord)
}

func (s *Service) transition(ctx context.Context, ideaID int64, to Status, actorID string, origin Origin) (*Idea, error) {
	idea, err := s.store.SetIdeaStatus(ctx, ideaID, StatusPending, to)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.recorder.Refused("invalid_transition")
		}
		return nil, err
	}
	log.Printf("ideas: idea %d set to %s by %s (%s)", ideaID, to, actorID, origin)
	s.recorder.StatusChanged(to)
	s.publish(ctx, Event{
		Kind:   EventStatus,
		IdeaID: ideaID,
		UserID: actorID,
		Status: to,
		Origin: origin,
	})
	return idea, nil
}
