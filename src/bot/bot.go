package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideabox/src/discord"
	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/stake-plus/ideabox/src/logging"
)

const (
	interactionTimeout = 10 * time.Second
	reactionTimeout    = 5 * time.Second
)

type Config struct {
	// GuildID limits command registration to one guild. Empty registers in every guild the bot joins.
	GuildID string
	// Events feeds web status changes back onto Discord messages. Optional.
	Events EventSource
}

// Bot is the Discord surface of the idea box.
type Bot struct {
	cfg       Config
	session   *discordgo.Session
	service   *ideas.Service
	reactions *ReactionHandler
	monitor   *StatusMonitor

	running atomic.Bool
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(session *discordgo.Session, service *ideas.Service, cfg Config) *Bot {
	b := &Bot{
		cfg:     cfg,
		session: session,
		service: service,
	}
	b.reactions = NewReactionHandler(service, b.selfID)
	if cfg.Events != nil {
		b.monitor = NewStatusMonitor(cfg.Events, service, session)
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	session.AddHandler(b.onReactionAdd)
	session.AddHandler(b.onReactionRemove)
	return b
}

func (b *Bot) Name() string { return "discord-bot" }

func (b *Bot) Start(ctx context.Context) error {
	runtimeCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.ctx, b.cancel = runtimeCtx, cancel
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		cancel()
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.running.Store(true)

	if b.monitor != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.monitor.Run(runtimeCtx)
		}()
	}
	return nil
}

func (b *Bot) Stop(ctx context.Context) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()
	b.wg.Wait()

	if err := b.session.Close(); err != nil {
		log.Printf("bot: close session: %v", err)
	}
	b.running.Store(false)
}

// Status reports whether the gateway connection is up and the bot's username.
func (b *Bot) Status() (bool, string) {
	if !b.running.Load() {
		return false, ""
	}
	user := ""
	if b.session.State != nil && b.session.State.User != nil {
		user = b.session.State.User.Username
	}
	return true, user
}

func (b *Bot) context() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}

func (b *Bot) selfID() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", r.User.Username)

	guilds := []string{b.cfg.GuildID}
	if b.cfg.GuildID == "" {
		guilds = guilds[:0]
		for _, g := range r.Guilds {
			guilds = append(guilds, g.ID)
		}
	}
	for _, guildID := range guilds {
		if err := discord.RegisterSlashCommands(s, guildID); err != nil {
			log.Printf("bot: register commands in guild %s: %v", guildID, err)
		}
	}
}

func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	ctx, cancel := context.WithTimeout(b.context(), reactionTimeout)
	defer cancel()

	ev := Reaction{
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
	}
	if r.Member != nil && r.Member.User != nil {
		ev.Bot = r.Member.User.Bot
		ev.Username = displayName(r.Member.User)
	}
	res, err := b.reactions.Added(ctx, ev)
	if err != nil {
		log.Printf("bot: reaction add on %s by %s (%s): %v", r.MessageID, r.UserID, logging.Kind(err), err)
		return
	}
	if res != nil {
		log.Printf("bot: vote %s (%s) by %s on message %s", res.Outcome, res.Direction, r.UserID, r.MessageID)
	}
}

// Removal events carry no member, so only the bot's own id is filtered here.
func (b *Bot) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	ctx, cancel := context.WithTimeout(b.context(), reactionTimeout)
	defer cancel()

	err := b.reactions.Removed(ctx, Reaction{
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
	})
	if err != nil {
		log.Printf("bot: reaction remove on %s by %s (%s): %v", r.MessageID, r.UserID, logging.Kind(err), err)
	}
}
