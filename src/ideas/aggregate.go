package ideas

import "context"

// CountsFor tallies the current votes of one idea.
func (s *Service) CountsFor(ctx context.Context, ideaID int64) (Counts, error) {
	counts, err := s.CountsForIdeas(ctx, []int64{ideaID})
	if err != nil {
		return Counts{}, err
	}
	return counts[ideaID], nil
}

// CountsForIdeas tallies many ideas in one grouped query. Every requested id is
// present in the result, with zero counts when it has no votes.
func (s *Service) CountsForIdeas(ctx context.Context, ideaIDs []int64) (map[int64]Counts, error) {
	out := make(map[int64]Counts, len(ideaIDs))
	if len(ideaIDs) == 0 {
		return out, nil
	}
	grouped, err := s.store.CountVotesGroupedByIdea(ctx, ideaIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range ideaIDs {
		out[id] = grouped[id]
	}
	return out, nil
}

// ListIdeas returns every idea newest first with author, tally and viewerID's vote.
// Tallies, authors and the viewer's votes are each loaded in one batched query.
func (s *Service) ListIdeas(ctx context.Context, viewerID string) ([]IdeaView, error) {
	list, err := s.store.ListIdeas(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, list, viewerID)
}

// GetIdeaView returns one idea with author, tally and viewerID's vote.
func (s *Service) GetIdeaView(ctx context.Context, ideaID int64, viewerID string) (*IdeaView, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []Idea{*idea}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Stats counts ideas per status.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.CountIdeasByStatus(ctx)
}

func (s *Service) views(ctx context.Context, list []Idea, viewerID string) ([]IdeaView, error) {
	out := make([]IdeaView, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(list))
	authorSet := make(map[string]struct{}, len(list))
	authorIDs := make([]string, 0, len(list))
	for _, idea := range list {
		ids = append(ids, idea.ID)
		if _, seen := authorSet[idea.AuthorID]; !seen {
			authorSet[idea.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, idea.AuthorID)
		}
	}

	counts, err := s.CountsForIdeas(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors, err := s.store.GetActorsByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	var mine map[int64]Direction
	if viewerID != "" {
		if mine, err = s.store.UserVotes(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	for _, idea := range list {
		v := IdeaView{
			Idea:      idea,
			Author:    AuthorRef{ID: idea.AuthorID},
			Upvotes:   counts[idea.ID].Up,
			Downvotes: counts[idea.ID].Down,
		}
		if a, ok := authors[idea.AuthorID]; ok {
			v.Author.DisplayName = a.DisplayName
		}
		if dir, ok := mine[idea.ID]; ok {
			d := dir
			v.UserVote = &d
		}
		out = append(out, v)
	}
	return out, nil
}
