package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideabox/src/ideas"
)

const (
	EmojiUp   = "👍"
	EmojiDown = "👎"

	embedColor  = 0x3498db
	footerText  = "Idea Box"
	statusField = "Status"
	authorField = "Author"

	approvePrefix = "approve_"
	rejectPrefix  = "reject_"

	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
	maxFieldValue       = 1024
)

// StatusLabel renders a status the way it appears in the idea embed.
func StatusLabel(status ideas.Status) string {
	switch status {
	case ideas.StatusApproved:
		return "✅ Approved"
	case ideas.StatusRejected:
		return "❌ Rejected"
	default:
		return "🟡 Pending"
	}
}

// IdeaEmbed builds the message embed for an idea.
func IdeaEmbed(idea *ideas.Idea, author string) *discordgo.MessageEmbed {
	ts := idea.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return &discordgo.MessageEmbed{
		Title:       truncateForDiscord("💡 "+idea.Title, maxEmbedTitle),
		Description: truncateForDiscord(idea.Description, maxEmbedDescription),
		Color:       embedColor,
		Timestamp:   ts.UTC().Format(time.RFC3339),
		Fields:      statusFields(idea.Status, author),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func statusFields(status ideas.Status, author string) []*discordgo.MessageEmbedField {
	if author == "" {
		author = "Unknown"
	}
	return []*discordgo.MessageEmbedField{
		{Name: statusField, Value: StatusLabel(status), Inline: true},
		{Name: authorField, Value: truncateForDiscord(author, maxFieldValue), Inline: true},
	}
}

// WithStatus returns a copy of embed whose fields show status, keeping the author.
func WithStatus(embed *discordgo.MessageEmbed, status ideas.Status) *discordgo.MessageEmbed {
	if embed == nil {
		return nil
	}
	out := *embed
	author := ""
	for _, f := range embed.Fields {
		if f != nil && f.Name == authorField {
			author = f.Value
		}
	}
	out.Fields = statusFields(status, author)
	return &out
}

// ReviewComponents returns the approve and reject buttons for an idea.
func ReviewComponents(ideaID int64) []discordgo.MessageComponent {
	id := strconv.FormatInt(ideaID, 10)
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "✅ Approve",
					Style:    discordgo.SuccessButton,
					CustomID: approvePrefix + id,
				},
				discordgo.Button{
					Label:    "❌ Reject",
					Style:    discordgo.DangerButton,
					CustomID: rejectPrefix + id,
				},
			},
		},
	}
}

// ParseReviewID decodes a review button custom id into the requested status and idea id.
func ParseReviewID(customID string) (ideas.Status, int64, bool) {
	var (
		status ideas.Status
		rest   string
	)
	switch {
	case strings.HasPrefix(customID, approvePrefix):
		status, rest = ideas.StatusApproved, strings.TrimPrefix(customID, approvePrefix)
	case strings.HasPrefix(customID, rejectPrefix):
		status, rest = ideas.StatusRejected, strings.TrimPrefix(customID, rejectPrefix)
	default:
		return "", 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return status, id, true
}

// DirectionForEmoji maps a vote reaction to a direction.
func DirectionForEmoji(name string) (ideas.Direction, bool) {
	switch name {
	case EmojiUp:
		return ideas.DirectionUp, true
	case EmojiDown:
		return ideas.DirectionDown, true
	}
	return "", false
}

// Ephemeral replies to an interaction with a message only the caller sees.
func Ephemeral(s *discordgo.Session, i *discordgo.Interaction, format string, args ...any) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf(format, args...),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// Reply answers an interaction publicly.
func Reply(s *discordgo.Session, i *discordgo.Interaction, format string, args ...any) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf(format, args...),
		},
	})
}

func truncateForDiscord(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
