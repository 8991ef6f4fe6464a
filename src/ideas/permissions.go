package ideas

import (
	"context"
	"fmt"
	"log"
)

// CanModerate reports whether actor may approve or reject ideas from the web.
func CanModerate(actor *Actor) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanAssignRole reports whether actor may change other actors' roles.
func CanAssignRole(actor *Actor) bool {
	return actor != nil && actor.Role == RoleSuperAdmin
}

// CanConfigureGuild reports whether actor may change bot settings for a guild.
func CanConfigureGuild(actor *Actor) bool {
	return actor != nil && (actor.Role == RoleAdmin || actor.Role == RoleSuperAdmin)
}

// CanApprove reports whether the Discord user may approve or reject ideas in guildID.
// A stored admin role is enough; otherwise the member's live roles must intersect the
// guild's configured approval roles.
func (s *Service) CanApprove(ctx context.Context, userID, guildID string) (bool, error) {
	actor, err := s.store.GetActor(ctx, userID)
	switch {
	case err == nil:
		if CanConfigureGuild(actor) {
			return true, nil
		}
	case !isNotFound(err):
		return false, fmt.Errorf("get actor: %w", err)
	}

	if guildID == "" {
		return false, nil
	}
	cfg, err := s.store.GetServerConfig(ctx, guildID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get server config: %w", err)
	}
	if len(cfg.ApprovalRoleIDs) == 0 || s.members == nil {
		return false, nil
	}

	roles, err := s.members.MemberRoles(ctx, guildID, userID)
	if err != nil {
		log.Printf("ideas: member roles for %s in guild %s: %v", userID, guildID, err)
		return false, nil
	}
	return cfg.HasApprovalRole(roles), nil
}

// AssignRole sets targetID's role. Only a super admin may do so, and never on itself.
func (s *Service) AssignRole(ctx context.Context, actor *Actor, targetID string, role Role) (*Actor, error) {
	if !role.Valid() {
		return nil, invalid("role", "role must be one of user, moderator, admin, super_admin")
	}
	if !CanAssignRole(actor) {
		s.recorder.Refused("forbidden")
		return nil, ErrForbidden
	}
	if targetID == actor.ID {
		s.recorder.Refused("forbidden")
		return nil, ErrForbidden
	}
	updated, err := s.store.SetActorRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}
	log.Printf("ideas: %s set role of %s to %s", actor.ID, targetID, role)
	return updated, nil
}

// AssignRoleByEmail resolves a web actor by email and assigns role.
func (s *Service) AssignRoleByEmail(ctx context.Context, actor *Actor, email string, role Role) (*Actor, error) {
	if email == "" {
		return nil, invalid("username", "username is required")
	}
	if !role.Valid() {
		return nil, invalid("role", "role must be one of user, moderator, admin, super_admin")
	}
	if !CanAssignRole(actor) {
		s.recorder.Refused("forbidden")
		return nil, ErrForbidden
	}
	target, err := s.store.FindActorByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.AssignRole(ctx, actor, target.ID, role)
}

// ToggleApprovalRole adds roleID to the guild's approval roles, or removes it when
// already present. It reports whether the role is now an approval role.
func (s *Service) ToggleApprovalRole(ctx context.Context, actor *Actor, guildID, roleID string) (bool, error) {
	if !CanConfigureGuild(actor) {
		return false, ErrForbidden
	}
	if guildID == "" || roleID == "" {
		return false, invalid("role", "guild and role are required")
	}
	cfg, err := s.serverConfig(ctx, guildID)
	if err != nil {
		return false, err
	}

	kept := cfg.ApprovalRoleIDs[:0:0]
	removed := false
	for _, id := range cfg.ApprovalRoleIDs {
		if id == roleID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, roleID)
	}
	cfg.ApprovalRoleIDs = kept

	if err := s.store.SaveServerConfig(ctx, cfg); err != nil {
		return false, err
	}
	return !removed, nil
}

// SetSuggestionsChannel stores the channel where bot-submitted ideas are posted.
func (s *Service) SetSuggestionsChannel(ctx context.Context, actor *Actor, guildID, channelID string) error {
	if !CanConfigureGuild(actor) {
		return ErrForbidden
	}
	if guildID == "" || channelID == "" {
		return invalid("channel", "guild and channel are required")
	}
	cfg, err := s.serverConfig(ctx, guildID)
	if err != nil {
		return err
	}
	cfg.SuggestionsChannelID = channelID
	return s.store.SaveServerConfig(ctx, cfg)
}

// SuggestionsChannel returns the configured suggestions channel, or "" when unset.
func (s *Service) SuggestionsChannel(ctx context.Context, guildID string) (string, error) {
	cfg, err := s.store.GetServerConfig(ctx, guildID)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return cfg.SuggestionsChannelID, nil
}

func (s *Service) serverConfig(ctx context.Context, guildID string) (*ServerConfig, error) {
	cfg, err := s.store.GetServerConfig(ctx, guildID)
	if err == nil {
		return cfg, nil
	}
	if isNotFound(err) {
		return &ServerConfig{GuildID: guildID}, nil
	}
	return nil, err
}
