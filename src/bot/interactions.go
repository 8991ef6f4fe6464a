package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideabox/src/discord"
	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/stake-plus/ideabox/src/logging"
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(b.context(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		b.handleReview(ctx, s, i)
	}
}

func (b *Bot) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil || i.GuildID == "" {
		_ = discord.Ephemeral(s, i.Interaction, "Commands only work inside a server")
		return
	}
	actor, err := b.ensureActor(ctx, user)
	if err != nil {
		log.Printf("bot: ensure actor %s: %v", user.ID, err)
		_ = discord.Ephemeral(s, i.Interaction, "An error occurred while processing the command")
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case discord.CommandIdea:
		err = b.submitIdea(ctx, s, i, actor)
	case discord.CommandConfigRoles:
		err = b.configRoles(ctx, s, i, actor)
	case discord.CommandConfigChannel:
		err = b.configChannel(ctx, s, i, actor)
	case discord.CommandSetRole:
		err = b.setRole(ctx, s, i, actor)
	default:
		err = discord.Ephemeral(s, i.Interaction, "Unknown command")
	}
	if err != nil {
		b.replyError(s, i, data.Name, err)
	}
}

func (b *Bot) ensureActor(ctx context.Context, user *discordgo.User) (*ideas.Actor, error) {
	return b.service.EnsureActor(ctx, ideas.Actor{
		ID:          user.ID,
		Origin:      ideas.OriginDiscord,
		DisplayName: displayName(user),
	})
}

func (b *Bot) replyError(s *discordgo.Session, i *discordgo.InteractionCreate, what string, err error) {
	var verr *ideas.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = discord.Ephemeral(s, i.Interaction, "❌ %s", verr.Error())
	case errors.Is(err, ideas.ErrForbidden):
		_ = discord.Ephemeral(s, i.Interaction, "❌ You do not have permission to do that")
	case errors.Is(err, ideas.ErrNotFound):
		_ = discord.Ephemeral(s, i.Interaction, "❌ Not found")
	case errors.Is(err, ideas.ErrInvalidTransition):
		_ = discord.Ephemeral(s, i.Interaction, "This idea has already been reviewed")
	default:
		log.Printf("bot: %s failed (%s): %v", what, logging.Kind(err), err)
		_ = discord.Ephemeral(s, i.Interaction, "An error occurred while processing the command")
	}
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

// ideaInput reads the /idea options. Category falls back to general.
func ideaInput(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) ideas.NewIdea {
	in := ideas.NewIdea{Category: ideas.CategoryGeneral}
	if opt, ok := opts["title"]; ok {
		in.Title = opt.StringValue()
	}
	if opt, ok := opts["description"]; ok {
		in.Description = opt.StringValue()
	}
	if opt, ok := opts["category"]; ok && opt.StringValue() != "" {
		in.Category = ideas.Category(opt.StringValue())
	}
	return in
}

func (b *Bot) submitIdea(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, actor *ideas.Actor) error {
	idea, err := b.service.CreateIdea(ctx, actor, ideaInput(optionMap(i.ApplicationCommandData().Options)))
	if err != nil {
		return err
	}

	embed := discord.IdeaEmbed(idea, actor.DisplayName)
	components := discord.ReviewComponents(idea.ID)

	channelID, err := b.service.SuggestionsChannel(ctx, i.GuildID)
	if err != nil {
		log.Printf("bot: suggestions channel for guild %s: %v", i.GuildID, err)
	}

	var msg *discordgo.Message
	if channelID != "" && channelID != i.ChannelID {
		msg, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		})
		if err != nil {
			log.Printf("bot: post idea %d to channel %s: %v", idea.ID, channelID, err)
			msg = nil
		} else {
			_ = discord.Ephemeral(s, i.Interaction, "✅ Idea sent to <#%s>", channelID)
		}
	}
	if msg == nil {
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: components,
			},
		})
		if err != nil {
			log.Printf("bot: reply with idea %d: %v", idea.ID, err)
			return nil
		}
		msg, err = s.InteractionResponse(i.Interaction)
		if err != nil {
			log.Printf("bot: fetch reply for idea %d: %v", idea.ID, err)
			return nil
		}
	}

	// Votes on the message resolve through the stored ids, so record them before seeding reactions.
	if err := b.service.AttachMessage(ctx, idea.ID, msg.ID, msg.ChannelID); err != nil {
		log.Printf("bot: attach message %s to idea %d: %v", msg.ID, idea.ID, err)
	}
	for _, emoji := range []string{discord.EmojiUp, discord.EmojiDown} {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			log.Printf("bot: react %s on idea %d (%s): %v", emoji, idea.ID, logging.Kind(err), err)
		}
	}
	log.Printf("bot: idea %d submitted by %s", idea.ID, actor.ID)
	return nil
}

func (b *Bot) configRoles(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, actor *ideas.Actor) error {
	data := i.ApplicationCommandData()
	opt, ok := optionMap(data.Options)["role"]
	if !ok {
		return discord.Ephemeral(s, i.Interaction, "A role is required")
	}
	roleID, _ := opt.Value.(string)
	roleName := roleID
	if data.Resolved != nil {
		if role, ok := data.Resolved.Roles[roleID]; ok && role != nil {
			roleName = role.Name
		}
	}

	added, err := b.service.ToggleApprovalRole(ctx, actor, i.GuildID, roleID)
	if err != nil {
		return err
	}
	if added {
		return discord.Reply(s, i.Interaction, "✅ Settings updated. Role %s can now approve or reject ideas", roleName)
	}
	return discord.Reply(s, i.Interaction, "✅ Settings updated. Role %s can no longer approve or reject ideas", roleName)
}

func (b *Bot) configChannel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, actor *ideas.Actor) error {
	opt, ok := optionMap(i.ApplicationCommandData().Options)["channel"]
	if !ok {
		return discord.Ephemeral(s, i.Interaction, "A channel is required")
	}
	channelID, _ := opt.Value.(string)
	if err := b.service.SetSuggestionsChannel(ctx, actor, i.GuildID, channelID); err != nil {
		return err
	}
	return discord.Reply(s, i.Interaction, "✅ Suggestions channel set to <#%s>", channelID)
}

func (b *Bot) setRole(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, actor *ideas.Actor) error {
	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)
	userOpt, okUser := opts["user"]
	roleOpt, okRole := opts["role"]
	if !okUser || !okRole {
		return discord.Ephemeral(s, i.Interaction, "A user and a role are required")
	}
	if !ideas.CanAssignRole(actor) {
		return ideas.ErrForbidden
	}

	targetID, _ := userOpt.Value.(string)
	target := ideas.Actor{ID: targetID, Origin: ideas.OriginDiscord}
	if data.Resolved != nil {
		target.DisplayName = displayName(data.Resolved.Users[targetID])
	}
	if target.DisplayName != "" {
		if _, err := b.service.EnsureActor(ctx, target); err != nil {
			return err
		}
	}

	updated, err := b.service.AssignRole(ctx, actor, targetID, ideas.Role(roleOpt.StringValue()))
	if err != nil {
		return err
	}
	return discord.Ephemeral(s, i.Interaction, "✅ <@%s> now has role %s", updated.ID, updated.Role)
}

func (b *Bot) handleReview(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	status, ideaID, ok := discord.ParseReviewID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	user := interactionUser(i)
	if user == nil {
		return
	}

	if err := b.review(ctx, user, i.GuildID, ideaID, status); err != nil {
		b.replyError(s, i, "review", err)
		return
	}

	var embeds []*discordgo.MessageEmbed
	if i.Message != nil && len(i.Message.Embeds) > 0 {
		embeds = []*discordgo.MessageEmbed{discord.WithStatus(i.Message.Embeds[0], status)}
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embeds,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("bot: update review message for idea %d: %v", ideaID, err)
	}
}

// review registers the member who pressed a review button and applies the decision.
func (b *Bot) review(ctx context.Context, user *discordgo.User, guildID string, ideaID int64, status ideas.Status) error {
	if _, err := b.ensureActor(ctx, user); err != nil {
		return fmt.Errorf("ensure actor %s: %w", user.ID, err)
	}
	_, err := b.service.ApproveFromGuild(ctx, ideaID, status, user.ID, guildID)
	return err
}
