package ideas

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ------------------------
// Fake store
// ------------------------

type voteKey struct {
	ideaID int64
	userID string
}

type fakeState struct {
	ideas   map[int64]Idea
	votes   map[voteKey]Vote
	actors  map[string]Actor
	configs map[string]ServerConfig
	nextID  int64

	countCalls int
	// committed holds writes made by a concurrent caller; they survive a rollback.
	committed []Vote
	// InsertVoteFn, when set, runs before the default insert. Returning a non-nil
	// error aborts the insert.
	InsertVoteFn func(st *fakeState, ideaID int64, userID string, dir Direction) error
}

// fakeStore serializes transactions and rolls state back when fn fails. Methods called
// outside Transaction are not locked.
type fakeStore struct {
	*fakeState
	mu sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{fakeState: &fakeState{
		ideas:   map[int64]Idea{},
		votes:   map[voteKey]Vote{},
		actors:  map[string]Actor{},
		configs: map[string]ServerConfig{},
	}}
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.fakeState.clone()
	if err := fn(f.fakeState); err != nil {
		f.fakeState.restore(snap)
		return err
	}
	return nil
}

func (st *fakeState) clone() fakeState {
	c := *st
	c.ideas = make(map[int64]Idea, len(st.ideas))
	for k, v := range st.ideas {
		c.ideas[k] = v
	}
	c.votes = make(map[voteKey]Vote, len(st.votes))
	for k, v := range st.votes {
		c.votes[k] = v
	}
	return c
}

func (st *fakeState) restore(snap fakeState) {
	st.ideas = snap.ideas
	st.votes = snap.votes
	for _, v := range st.committed {
		st.votes[voteKey{v.IdeaID, v.UserID}] = v
	}
	st.committed = nil
}

func (st *fakeState) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(st)
}

func (st *fakeState) addIdea(id int64, status Status) {
	st.ideas[id] = Idea{
		ID:          id,
		Title:       "idea",
		Description: "description",
		Category:    CategoryGeneral,
		AuthorID:    "author",
		Status:      status,
		CreatedAt:   time.Unix(id, 0),
	}
	if id > st.nextID {
		st.nextID = id
	}
}

func (st *fakeState) addActor(id string, role Role) {
	st.actors[id] = Actor{ID: id, Role: role, Origin: OriginWeb, DisplayName: id, Email: id + "@example.com"}
}

func (st *fakeState) votesFor(ideaID int64) []Vote {
	var out []Vote
	for k, v := range st.votes {
		if k.ideaID == ideaID {
			out = append(out, v)
		}
	}
	return out
}

func (st *fakeState) CreateIdea(ctx context.Context, idea *Idea) error {
	st.nextID++
	idea.ID = st.nextID
	idea.CreatedAt = time.Now()
	idea.UpdatedAt = idea.CreatedAt
	st.ideas[idea.ID] = *idea
	return nil
}

func (st *fakeState) GetIdea(ctx context.Context, id int64) (*Idea, error) {
	idea, ok := st.ideas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &idea, nil
}

func (st *fakeState) GetIdeaByMessage(ctx context.Context, messageID string) (*Idea, error) {
	for _, idea := range st.ideas {
		if idea.MessageID == messageID {
			i := idea
			return &i, nil
		}
	}
	return nil, ErrNotFound
}

func (st *fakeState) ListIdeas(ctx context.Context) ([]Idea, error) {
	out := make([]Idea, 0, len(st.ideas))
	for _, idea := range st.ideas {
		out = append(out, idea)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (st *fakeState) SetIdeaMessage(ctx context.Context, id int64, messageID, channelID string) error {
	idea, ok := st.ideas[id]
	if !ok {
		return ErrNotFound
	}
	idea.MessageID, idea.ChannelID = messageID, channelID
	st.ideas[id] = idea
	return nil
}

func (st *fakeState) SetIdeaStatus(ctx context.Context, id int64, from, to Status) (*Idea, error) {
	idea, ok := st.ideas[id]
	if !ok {
		return nil, ErrNotFound
	}
	if idea.Status != from {
		return nil, ErrInvalidTransition
	}
	idea.Status = to
	idea.UpdatedAt = time.Now()
	st.ideas[id] = idea
	return &idea, nil
}

func (st *fakeState) CountIdeasByStatus(ctx context.Context) (Stats, error) {
	var s Stats
	for _, idea := range st.ideas {
		switch idea.Status {
		case StatusPending:
			s.Pending++
		case StatusApproved:
			s.Approved++
		case StatusRejected:
			s.Rejected++
		}
	}
	return s, nil
}

func (st *fakeState) GetVote(ctx context.Context, ideaID int64, userID string) (*Vote, error) {
	v, ok := st.votes[voteKey{ideaID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (st *fakeState) InsertVote(ctx context.Context, ideaID int64, userID string, dir Direction) (*Vote, error) {
	if st.InsertVoteFn != nil {
		if err := st.InsertVoteFn(st, ideaID, userID, dir); err != nil {
			return nil, err
		}
	}
	key := voteKey{ideaID, userID}
	if _, exists := st.votes[key]; exists {
		return nil, ErrVoteConflict
	}
	st.nextID++
	v := Vote{ID: st.nextID, IdeaID: ideaID, UserID: userID, Direction: dir, CreatedAt: time.Now()}
	st.votes[key] = v
	return &v, nil
}

func (st *fakeState) DeleteVote(ctx context.Context, ideaID int64, userID string) (bool, error) {
	key := voteKey{ideaID, userID}
	if _, ok := st.votes[key]; !ok {
		return false, nil
	}
	delete(st.votes, key)
	return true, nil
}

func (st *fakeState) CountVotesGroupedByIdea(ctx context.Context, ideaIDs []int64) (map[int64]Counts, error) {
	st.countCalls++
	want := make(map[int64]bool, len(ideaIDs))
	for _, id := range ideaIDs {
		want[id] = true
	}
	out := map[int64]Counts{}
	for k, v := range st.votes {
		if !want[k.ideaID] {
			continue
		}
		c := out[k.ideaID]
		if v.Direction == DirectionUp {
			c.Up++
		} else {
			c.Down++
		}
		out[k.ideaID] = c
	}
	return out, nil
}

func (st *fakeState) UserVotes(ctx context.Context, userID string, ideaIDs []int64) (map[int64]Direction, error) {
	out := map[int64]Direction{}
	for _, id := range ideaIDs {
		if v, ok := st.votes[voteKey{id, userID}]; ok {
			out[id] = v.Direction
		}
	}
	return out, nil
}

func (st *fakeState) GetActor(ctx context.Context, id string) (*Actor, error) {
	a, ok := st.actors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (st *fakeState) GetActorsByID(ctx context.Context, ids []string) (map[string]Actor, error) {
	out := map[string]Actor{}
	for _, id := range ids {
		if a, ok := st.actors[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (st *fakeState) FindActorByEmail(ctx context.Context, email string) (*Actor, error) {
	for _, a := range st.actors {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (st *fakeState) UpsertActor(ctx context.Context, actor *Actor) (*Actor, error) {
	if existing, ok := st.actors[actor.ID]; ok {
		existing.DisplayName = actor.DisplayName
		existing.Email = actor.Email
		st.actors[actor.ID] = existing
		return &existing, nil
	}
	st.actors[actor.ID] = *actor
	a := *actor
	return &a, nil
}

func (st *fakeState) SetActorRole(ctx context.Context, id string, role Role) (*Actor, error) {
	a, ok := st.actors[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Role = role
	st.actors[id] = a
	return &a, nil
}

func (st *fakeState) GetServerConfig(ctx context.Context, guildID string) (*ServerConfig, error) {
	c, ok := st.configs[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	c.ApprovalRoleIDs = append([]string(nil), c.ApprovalRoleIDs...)
	return &c, nil
}

func (st *fakeState) SaveServerConfig(ctx context.Context, cfg *ServerConfig) error {
	st.configs[cfg.GuildID] = *cfg
	return nil
}

// ------------------------
// Fake collaborators
// ------------------------

type fakeMembers struct {
	calls int
	roles map[string][]string
	err   error
}

func (f *fakeMembers) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.roles[guildID+"/"+userID], nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

type fakeRecorder struct {
	mu       sync.Mutex
	applied  []string
	statuses []Status
	refused  []string
}

func (f *fakeRecorder) VoteApplied(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, result)
}

func (f *fakeRecorder) StatusChanged(status Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeRecorder) Refused(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refused = append(f.refused, reason)
}
