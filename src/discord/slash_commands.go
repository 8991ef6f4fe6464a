package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideabox/src/ideas"
)

const (
	CommandIdea          = "idea"
	CommandConfigRoles   = "config-roles"
	CommandConfigChannel = "config-channel"
	CommandSetRole       = "set-role"
)

var (
	minTitle    = 1
	minDescr    = 1
	roleChoices = []*discordgo.ApplicationCommandOptionChoice{
		{Name: "user", Value: "user"},
		{Name: "moderator", Value: "moderator"},
		{Name: "admin", Value: "admin"},
		{Name: "super_admin", Value: "super_admin"},
	}
)

func categoryChoices() []*discordgo.ApplicationCommandOptionChoice {
	var out []*discordgo.ApplicationCommandOptionChoice
	for _, c := range ideas.Categories() {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: string(c), Value: string(c)})
	}
	return out
}

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandIdea: {
		Name:        CommandIdea,
		Description: "Submit a new idea for voting",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "title",
				Description: "Short title of the idea",
				Required:    true,
				MinLength:   &minTitle,
				MaxLength:   255,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "description",
				Description: "What should change and why",
				Required:    true,
				MinLength:   &minDescr,
				MaxLength:   5000,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "category",
				Description: "Defaults to general",
				Choices:     categoryChoices(),
			},
		},
	},
	CommandConfigRoles: {
		Name:        CommandConfigRoles,
		Description: "Toggle a role that may approve or reject ideas",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role to add or remove",
				Required:    true,
			},
		},
	},
	CommandConfigChannel: {
		Name:        CommandConfigChannel,
		Description: "Set the channel where new ideas are posted",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Suggestions channel",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			},
		},
	},
	CommandSetRole: {
		Name:        CommandSetRole,
		Description: "Assign an Idea Box role to a member",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to update",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "role",
				Description: "New role",
				Required:    true,
				Choices:     roleChoices,
			},
		},
	},
}

var defaultCommandOrder = []string{
	CommandIdea,
	CommandConfigRoles,
	CommandConfigChannel,
	CommandSetRole,
}

// Command returns the definition registered under name.
func Command(name string) (*discordgo.ApplicationCommand, bool) {
	cmd, ok := commandDefinitions[name]
	return cmd, ok
}

// RegisterSlashCommands registers the requested slash commands for a guild.
// When no command names are provided, all known commands are registered.
func RegisterSlashCommands(s *discordgo.Session, guildID string, names ...string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to register slash commands")
	}

	if len(names) == 0 {
		names = defaultCommandOrder
	}

	var failures []string
	for _, name := range names {
		definition, ok := commandDefinitions[name]
		if !ok {
			log.Printf("discord: unknown slash command %q", name)
			continue
		}

		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition)
		if err != nil {
			if isDuplicateCommandError(err) {
				log.Printf("discord: slash command %q already registered", name)
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			log.Printf("discord: failed to register command %q: %v", name, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("discord: slash command registration errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

// CommandRemover lists and deletes application commands. *discordgo.Session satisfies it.
type CommandRemover interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// DeleteSlashCommands removes all registered slash commands of appID in a guild
// and returns the names it removed.
func DeleteSlashCommands(s CommandRemover, appID, guildID string) ([]string, error) {
	if guildID == "" {
		return nil, fmt.Errorf("discord: guildID is required to delete slash commands")
	}

	commands, err := s.ApplicationCommands(appID, guildID)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, cmd := range commands {
		if err := s.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			return removed, fmt.Errorf("discord: delete command %q: %w", cmd.Name, err)
		}
		removed = append(removed, cmd.Name)
	}

	return removed, nil
}

func isDuplicateCommandError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			msg := strings.ToLower(restErr.Message.Message)
			if strings.Contains(msg, "already exists") {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "50035") && strings.Contains(msg, "already exists")
}
