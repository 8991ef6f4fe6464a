package bot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideabox/src/discord"
	"github.com/stake-plus/ideabox/src/ideas"
)

// EventSource yields idea events published by any surface.
type EventSource interface {
	Next(ctx context.Context) ([]ideas.Event, error)
}

// IdeaLookup resolves an idea by id.
type IdeaLookup interface {
	GetIdea(ctx context.Context, id int64) (*ideas.Idea, error)
}

type messageEditor interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// StatusMonitor mirrors status changes made on the web onto the idea's Discord message.
type StatusMonitor struct {
	events  EventSource
	ideas   IdeaLookup
	editor  messageEditor
	backoff time.Duration
}

func NewStatusMonitor(events EventSource, lookup IdeaLookup, editor messageEditor) *StatusMonitor {
	return &StatusMonitor{events: events, ideas: lookup, editor: editor, backoff: 5 * time.Second}
}

// Run consumes events until ctx is done.
func (m *StatusMonitor) Run(ctx context.Context) {
	log.Printf("bot: status monitor started")
	for {
		if ctx.Err() != nil {
			return
		}
		events, err := m.events.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("bot: read events: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.backoff):
			}
			continue
		}
		for _, ev := range events {
			if err := m.handle(ctx, ev); err != nil {
				log.Printf("bot: sync idea %d message: %v", ev.IdeaID, err)
			}
		}
	}
}

func (m *StatusMonitor) handle(ctx context.Context, ev ideas.Event) error {
	// The button path already rewrote the message.
	if ev.Kind != ideas.EventStatus || ev.Origin == ideas.OriginDiscord {
		return nil
	}
	idea, err := m.ideas.GetIdea(ctx, ev.IdeaID)
	if errors.Is(err, ideas.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if idea.MessageID == "" || idea.ChannelID == "" {
		return nil
	}

	msg, err := m.editor.ChannelMessage(idea.ChannelID, idea.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	var embed *discordgo.MessageEmbed
	if len(msg.Embeds) > 0 {
		embed = discord.WithStatus(msg.Embeds[0], idea.Status)
	} else {
		embed = discord.IdeaEmbed(idea, "")
	}
	embeds := []*discordgo.MessageEmbed{embed}
	components := []discordgo.MessageComponent{}
	_, err = m.editor.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         idea.MessageID,
		Channel:    idea.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}
