package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"github.com/stake-plus/ideabox/src/api/config"
	"github.com/stake-plus/ideabox/src/api/webserver"
	"github.com/stake-plus/ideabox/src/bot"
	"github.com/stake-plus/ideabox/src/data"
	"github.com/stake-plus/ideabox/src/discord"
	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/stake-plus/ideabox/src/metrics"
	"gorm.io/gorm"
)

// Surfaces selects which entry points a process runs.
type Surfaces struct {
	API bool
	Bot bool
}

func (s Surfaces) label() string {
	switch {
	case s.API && s.Bot:
		return "all"
	case s.Bot:
		return "bot"
	default:
		return "api"
	}
}

// Stack is a fully wired process: storage, the idea service and the enabled surfaces.
type Stack struct {
	Config  config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Service *ideas.Service
	Metrics *metrics.Recorder
	Bot     *bot.Bot
	HTTP    *HTTPServer
	Manager *Manager
}

// OpenDB connects, migrates and loads DB-backed settings into cfg.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := data.Connect(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := data.Migrate(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	cfg.ApplySettings(db)
	return db, nil
}

// Build wires every component the requested surfaces need without starting anything.
func Build(cfg config.Config, surfaces Surfaces) (_ *Stack, err error) {
	db, err := OpenDB(&cfg)
	if err != nil {
		return nil, err
	}
	st := &Stack{Config: cfg, DB: db, Metrics: metrics.New(surfaces.label()), Manager: NewManager()}
	defer func() {
		if err != nil {
			st.Close()
		}
	}()

	if surfaces.API {
		if err := cfg.ValidateAPI(); err != nil {
			return nil, err
		}
	}
	if surfaces.Bot {
		if err := cfg.ValidateBot(); err != nil {
			return nil, err
		}
	}

	var publisher ideas.Publisher
	if cfg.RedisURL != "" {
		rdb, err := data.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		st.Redis = rdb
		publisher = data.NewStreamPublisher(rdb)
	}

	var (
		session *discordgo.Session
		members ideas.MemberRoleLookup
	)
	if surfaces.Bot {
		session, err = bot.NewSession(cfg.DiscordToken)
		if err != nil {
			return nil, err
		}
		members = discord.GuildMembers{Session: session}
	}

	st.Service = ideas.NewService(ideas.Config{
		Store:     data.NewStore(db),
		Members:   members,
		Publisher: publisher,
		Recorder:  st.Metrics,
		Sanitizer: newPlainText(),
	})

	if surfaces.Bot {
		botCfg := bot.Config{GuildID: cfg.GuildID}
		if st.Redis != nil {
			botCfg.Events = data.NewStreamConsumer(st.Redis, "$")
		}
		st.Bot = bot.New(session, st.Service, botCfg)
	}

	if surfaces.API {
		opts := webserver.Options{
			Config:  cfg,
			Service: st.Service,
			DB:      db,
			Metrics: st.Metrics.Handler(),
		}
		if st.Bot != nil {
			opts.BotStatus = st.Bot.Status
		}

		var certs *webserver.CertReloader
		if cfg.TLS() {
			certs, err = webserver.NewCertReloader(cfg.TLSCertFile, cfg.TLSKeyFile)
			if err != nil {
				return nil, fmt.Errorf("tls: %w", err)
			}
		}
		st.HTTP = NewHTTPServer(":"+cfg.Port, webserver.New(opts), certs)
		if err := st.Manager.Add(st.HTTP); err != nil {
			return nil, err
		}
	}
	if st.Bot != nil {
		if err := st.Manager.Add(st.Bot); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Close releases the storage connections.
func (st *Stack) Close() {
	if st.Redis != nil {
		if err := st.Redis.Close(); err != nil {
			log.Printf("app: close redis: %v", err)
		}
	}
	if st.DB == nil {
		return
	}
	if sqlDB, err := st.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Run builds the stack, starts it and blocks until ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func Run(ctx context.Context, cfg config.Config, surfaces Surfaces) error {
	st, err := Build(cfg, surfaces)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.Manager.Start(ctx); err != nil {
		return err
	}
	log.Printf("Idea Box running (%s)", surfaces.label())

	<-ctx.Done()
	log.Printf("Idea Box shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	st.Manager.Stop(shutCtx)
	return nil
}
