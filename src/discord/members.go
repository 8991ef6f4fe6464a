package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// GuildMembers resolves a member's guild roles through a live session.
type GuildMembers struct {
	Session *discordgo.Session
}

// MemberRoles returns the role ids userID holds in guildID. The session state cache is
// consulted before the REST API.
func (g GuildMembers) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	if g.Session == nil || guildID == "" || userID == "" {
		return nil, nil
	}
	if g.Session.State != nil {
		if member, err := g.Session.State.Member(guildID, userID); err == nil && member != nil {
			return member.Roles, nil
		}
	}
	member, err := g.Session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return member.Roles, nil
}
