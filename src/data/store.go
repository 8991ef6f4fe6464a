package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/stake-plus/ideabox/src/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements ideas.Store on gorm.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ ideas.Store = (*Store)(nil)

func (s *Store) Transaction(ctx context.Context, fn func(tx ideas.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ideas.ErrNotFound
	}
	return err
}

// ------------------------
// Ideas
// ------------------------

func (s *Store) CreateIdea(ctx context.Context, idea *ideas.Idea) error {
	return s.db.WithContext(ctx).Create(idea).Error
}

func (s *Store) GetIdea(ctx context.Context, id int64) (*ideas.Idea, error) {
	var idea ideas.Idea
	if err := s.db.WithContext(ctx).First(&idea, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &idea, nil
}

func (s *Store) GetIdeaByMessage(ctx context.Context, messageID string) (*ideas.Idea, error) {
	var idea ideas.Idea
	if err := s.db.WithContext(ctx).Where("message_id = ?", messageID).First(&idea).Error; err != nil {
		return nil, notFound(err)
	}
	return &idea, nil
}

func (s *Store) ListIdeas(ctx context.Context) ([]ideas.Idea, error) {
	var list []ideas.Idea
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&list).Error
	return list, err
}

func (s *Store) SetIdeaMessage(ctx context.Context, id int64, messageID, channelID string) error {
	res := s.db.WithContext(ctx).Model(&ideas.Idea{}).Where("id = ?", id).
		Updates(map[string]interface{}{"message_id": messageID, "channel_id": channelID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		_, err := s.GetIdea(ctx, id)
		return err
	}
	return nil
}

// SetIdeaStatus is a conditional update on the current status, so two concurrent
// moderators cannot both move the same idea.
func (s *Store) SetIdeaStatus(ctx context.Context, id int64, from, to ideas.Status) (*ideas.Idea, error) {
	res := s.db.WithContext(ctx).Model(&ideas.Idea{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetIdea(ctx, id); err != nil {
			return nil, err
		}
		return nil, ideas.ErrInvalidTransition
	}
	return s.GetIdea(ctx, id)
}

func (s *Store) CountIdeasByStatus(ctx context.Context) (ideas.Stats, error) {
	type agg struct {
		Status ideas.Status
		Count  int64
	}
	var rows []agg
	err := s.db.WithContext(ctx).Model(&ideas.Idea{}).
		Select("status, count(*) as count").Group("status").Scan(&rows).Error
	if err != nil {
		return ideas.Stats{}, err
	}

	var out ideas.Stats
	for _, r := range rows {
		switch r.Status {
		case ideas.StatusPending:
			out.Pending = r.Count
		case ideas.StatusApproved:
			out.Approved = r.Count
		case ideas.StatusRejected:
			out.Rejected = r.Count
		}
	}
	return out, nil
}

// ------------------------
// Votes
// ------------------------

func (s *Store) GetVote(ctx context.Context, ideaID int64, userID string) (*ideas.Vote, error) {
	var v ideas.Vote
	err := s.db.WithContext(ctx).Where("idea_id = ? AND user_id = ?", ideaID, userID).First(&v).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *Store) InsertVote(ctx context.Context, ideaID int64, userID string, dir ideas.Direction) (*ideas.Vote, error) {
	v := ideas.Vote{IdeaID: ideaID, UserID: userID, Direction: dir}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		if logging.IsDuplicate(err) {
			return nil, ideas.ErrVoteConflict
		}
		return nil, fmt.Errorf("insert vote: %w", err)
	}
	return &v, nil
}

func (s *Store) DeleteVote(ctx context.Context, ideaID int64, userID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("idea_id = ? AND user_id = ?", ideaID, userID).
		Delete(&ideas.Vote{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) CountVotesGroupedByIdea(ctx context.Context, ideaIDs []int64) (map[int64]ideas.Counts, error) {
	out := make(map[int64]ideas.Counts, len(ideaIDs))
	if len(ideaIDs) == 0 {
		return out, nil
	}

	type agg struct {
		IdeaID    int64
		Direction ideas.Direction
		Count     int64
	}
	var rows []agg
	err := s.db.WithContext(ctx).Model(&ideas.Vote{}).
		Select("idea_id, direction, count(*) as count").
		Where("idea_id IN ?", ideaIDs).
		Group("idea_id, direction").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		c := out[r.IdeaID]
		switch r.Direction {
		case ideas.DirectionUp:
			c.Up = r.Count
		case ideas.DirectionDown:
			c.Down = r.Count
		}
		out[r.IdeaID] = c
	}
	return out, nil
}

func (s *Store) UserVotes(ctx context.Context, userID string, ideaIDs []int64) (map[int64]ideas.Direction, error) {
	out := make(map[int64]ideas.Direction)
	if userID == "" || len(ideaIDs) == 0 {
		return out, nil
	}
	var votes []ideas.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND idea_id IN ?", userID, ideaIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.IdeaID] = v.Direction
	}
	return out, nil
}

// ------------------------
// Actors
// ------------------------

func (s *Store) GetActor(ctx context.Context, id string) (*ideas.Actor, error) {
	var a ideas.Actor
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) GetActorsByID(ctx context.Context, ids []string) (map[string]ideas.Actor, error) {
	out := make(map[string]ideas.Actor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []ideas.Actor
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, a := range list {
		out[a.ID] = a
	}
	return out, nil
}

func (s *Store) FindActorByEmail(ctx context.Context, email string) (*ideas.Actor, error) {
	var a ideas.Actor
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// UpsertActor inserts the actor or refreshes its profile. Role is not in the update
// set, so a stored role survives every login and reaction.
func (s *Store) UpsertActor(ctx context.Context, actor *ideas.Actor) (*ideas.Actor, error) {
	update := []string{"display_name", "updated_at"}
	if actor.Email != "" {
		update = append(update, "email")
	}
	row := *actor
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(update),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert actor %s: %w", actor.ID, err)
	}
	return s.GetActor(ctx, actor.ID)
}

func (s *Store) SetActorRole(ctx context.Context, id string, role ideas.Role) (*ideas.Actor, error) {
	res := s.db.WithContext(ctx).Model(&ideas.Actor{}).Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ideas.ErrNotFound
	}
	return s.GetActor(ctx, id)
}

// ------------------------
// Guild settings
// ------------------------

func (s *Store) GetServerConfig(ctx context.Context, guildID string) (*ideas.ServerConfig, error) {
	var cfg ideas.ServerConfig
	if err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&cfg).Error; err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

func (s *Store) SaveServerConfig(ctx context.Context, cfg *ideas.ServerConfig) error {
	if cfg.ApprovalRoleIDs == nil {
		cfg.ApprovalRoleIDs = []string{}
	}
	if cfg.ID != 0 {
		return s.db.WithContext(ctx).Save(cfg).Error
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"suggestions_channel_id", "approval_role_ids", "updated_at"}),
	}).Create(cfg).Error
}
