package ideas

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"
)

// Sanitizer cleans user supplied text before it is stored. The result is plain
// text, not HTML.
type Sanitizer interface {
	Sanitize(s string) string
}

// Config lists the collaborators of a Service. Only Store is required.
type Config struct {
	Store     Store
	Members   MemberRoleLookup // optional, live Discord role lookup
	Publisher Publisher        // optional
	Recorder  Recorder         // optional
	Sanitizer Sanitizer        // optional
}

// Service holds the vote reconciliation, status transition and permission rules
// shared by the REST and Discord surfaces.
type Service struct {
	store     Store
	members   MemberRoleLookup
	publisher Publisher
	recorder  Recorder
	sanitizer Sanitizer
}

// NewService returns a Service over cfg. A nil Recorder records nothing.
func NewService(cfg Config) *Service {
	s := &Service{
		store:     cfg.Store,
		members:   cfg.Members,
		publisher: cfg.Publisher,
		recorder:  cfg.Recorder,
		sanitizer: cfg.Sanitizer,
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("ideas: publish %s event for idea %d: %v", ev.Kind, ev.IdeaID, err)
	}
}

// EnsureActor creates the actor on first sight and refreshes its profile afterwards.
func (s *Service) EnsureActor(ctx context.Context, actor Actor) (*Actor, error) {
	if actor.ID == "" {
		return nil, invalid("id", "actor id is required")
	}
	if actor.Role == "" {
		actor.Role = RoleUser
	}
	return s.store.UpsertActor(ctx, &actor)
}

func (s *Service) GetActor(ctx context.Context, id string) (*Actor, error) {
	return s.store.GetActor(ctx, id)
}

// NewIdea is the input for CreateIdea.
type NewIdea struct {
	Title       string
	Description string
	Category    Category
}

const (
	maxTitleLen       = 255
	maxDescriptionLen = 5000
)

// CreateIdea validates input and stores a pending idea authored by author.
func (s *Service) CreateIdea(ctx context.Context, author *Actor, in NewIdea) (*Idea, error) {
	if author == nil || author.ID == "" {
		return nil, ErrNotFound
	}
	if s.sanitizer != nil {
		in.Title = s.sanitizer.Sanitize(in.Title)
		in.Description = s.sanitizer.Sanitize(in.Description)
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	verr := &ValidationError{}
	switch {
	case in.Title == "":
		verr.add("title", "title is required")
	case utf8.RuneCountInString(in.Title) > maxTitleLen:
		verr.add("title", "title must be at most 255 characters")
	}
	switch {
	case in.Description == "":
		verr.add("description", "description is required")
	case utf8.RuneCountInString(in.Description) > maxDescriptionLen:
		verr.add("description", "description must be at most 5000 characters")
	}
	if !in.Category.Valid() {
		verr.add("category", "unknown category")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	idea := &Idea{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		AuthorID:    author.ID,
		Status:      StatusPending,
	}
	if err := s.store.CreateIdea(ctx, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

// AttachMessage records the Discord message that carries an idea.
func (s *Service) AttachMessage(ctx context.Context, ideaID int64, messageID, channelID string) error {
	return s.store.SetIdeaMessage(ctx, ideaID, messageID, channelID)
}

// IdeaForMessage resolves the idea posted as messageID.
func (s *Service) IdeaForMessage(ctx context.Context, messageID string) (*Idea, error) {
	if messageID == "" {
		return nil, ErrNotFound
	}
	return s.store.GetIdeaByMessage(ctx, messageID)
}

func (s *Service) GetIdea(ctx context.Context, id int64) (*Idea, error) {
	return s.store.GetIdea(ctx, id)
}

type nopRecorder struct{}

func (nopRecorder) VoteApplied(string)   {}
func (nopRecorder) StatusChanged(Status) {}
func (nopRecorder) Refused(string)       {}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
