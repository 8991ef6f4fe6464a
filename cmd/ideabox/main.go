package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideabox/src/api/config"
	"github.com/stake-plus/ideabox/src/api/webserver"
	"github.com/stake-plus/ideabox/src/app"
	"github.com/stake-plus/ideabox/src/bot"
	"github.com/stake-plus/ideabox/src/data"
	"github.com/stake-plus/ideabox/src/discord"
	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ideabox",
		Usage: "idea submission and voting over REST and Discord",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file (same as IDEABOX_CONFIG)"},
			&cli.StringFlag{Name: "dsn", Usage: "database DSN (mysql, postgres:// or sqlite://)"},
			&cli.StringFlag{Name: "redis", Usage: "Redis URL for the event stream"},
			&cli.StringFlag{Name: "port", Usage: "HTTP port"},
			&cli.StringFlag{Name: "jwt-secret", Usage: "HS256 secret for session tokens"},
			&cli.StringFlag{Name: "discord-token", Usage: "Discord bot token"},
			&cli.StringFlag{Name: "guild-id", Usage: "register slash commands in this guild only"},
		},
		Commands: []*cli.Command{
			surfaceCommand("serve", "run the REST API and the Discord bot", app.Surfaces{API: true, Bot: true}),
			surfaceCommand("api", "run the REST API only", app.Surfaces{API: true}),
			surfaceCommand("bot", "run the Discord bot only", app.Surfaces{Bot: true}),
			migrateCommand(),
			tokenCommand(),
			setRoleCommand(),
			settingCommand(),
			commandsCommand(),
		},
	}
}

// loadConfig applies global flags over the env and file configuration.
func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		if err := os.Setenv("IDEABOX_CONFIG", path); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	overrides := map[string]*string{
		"dsn":           &cfg.DatabaseDSN,
		"redis":         &cfg.RedisURL,
		"port":          &cfg.Port,
		"jwt-secret":    &cfg.JWTSecret,
		"discord-token": &cfg.DiscordToken,
		"guild-id":      &cfg.GuildID,
	}
	for name, dst := range overrides {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	return cfg, nil
}

func surfaceCommand(name, usage string, surfaces app.Surfaces) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if surfaces.API && surfaces.Bot && cfg.DiscordToken == "" {
				log.Printf("ideabox: no Discord token configured, serving the REST API only")
				surfaces.Bot = false
			}
			return app.Run(c.Context, cfg, surfaces)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the database schema",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := app.OpenDB(&cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintln(c.App.Writer, "schema up to date")
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a web session token (development and scripting)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sub", Usage: "web user id", Required: true},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "name"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("missing env JWT_SECRET")
			}
			tok, err := webserver.IssueToken([]byte(cfg.JWTSecret), c.String("sub"), c.String("email"), c.String("name"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, tok)
			return nil
		},
	}
}

// setRoleCommand is the operator path for bootstrapping the first super_admin.
func setRoleCommand() *cli.Command {
	return &cli.Command{
		Name:  "set-role",
		Usage: "assign a role to an existing actor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "actor id (web subject or Discord user id)"},
			&cli.StringFlag{Name: "email", Usage: "web actor email"},
			&cli.StringFlag{Name: "role", Usage: "user, moderator, admin or super_admin", Required: true},
		},
		Action: func(c *cli.Context) error {
			role := ideas.Role(c.String("role"))
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := app.OpenDB(&cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			store := data.NewStore(db)
			id := c.String("id")
			if id == "" {
				if c.String("email") == "" {
					return fmt.Errorf("either --id or --email is required")
				}
				actor, err := store.FindActorByEmail(c.Context, c.String("email"))
				if err != nil {
					return fmt.Errorf("find %s: %w", c.String("email"), err)
				}
				id = actor.ID
			}
			actor, err := store.SetActorRole(c.Context, id, role)
			if err != nil {
				return fmt.Errorf("set role of %s: %w", id, err)
			}
			fmt.Fprintf(c.App.Writer, "%s is now %s\n", actor.ID, actor.Role)
			return nil
		},
	}
}

func settingCommand() *cli.Command {
	return &cli.Command{
		Name:  "setting",
		Usage: "read or write DB-backed settings (discord_token, guild_id)",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				ArgsUsage: "<name> <value>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						return fmt.Errorf("usage: setting set <name> <value>")
					}
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					db, err := app.OpenDB(&cfg)
					if err != nil {
						return err
					}
					if sqlDB, err := db.DB(); err == nil {
						defer sqlDB.Close()
					}
					return data.SaveSetting(db, c.Args().Get(0), c.Args().Get(1))
				},
			},
			{
				Name:      "get",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					db, err := app.OpenDB(&cfg)
					if err != nil {
						return err
					}
					if sqlDB, err := db.DB(); err == nil {
						defer sqlDB.Close()
					}
					fmt.Fprintln(c.App.Writer, data.GetSetting(c.Args().First()))
					return nil
				},
			},
		},
	}
}

func commandsCommand() *cli.Command {
	return &cli.Command{
		Name:  "commands",
		Usage: "manage the bot's slash commands",
		Subcommands: []*cli.Command{
			{
				Name:  "reset",
				Usage: "delete every slash command the bot registered in a guild; they come back on the next start",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "guild", Usage: "guild id (defaults to GUILD_ID)"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					if err := cfg.ValidateBot(); err != nil {
						return err
					}
					guildID := c.String("guild")
					if guildID == "" {
						guildID = cfg.GuildID
					}
					if guildID == "" {
						return fmt.Errorf("--guild or GUILD_ID is required")
					}

					session, err := bot.NewSession(cfg.DiscordToken)
					if err != nil {
						return err
					}
					me, err := session.User("@me", discordgo.WithContext(c.Context))
					if err != nil {
						return fmt.Errorf("resolve application: %w", err)
					}
					removed, err := discord.DeleteSlashCommands(session, me.ID, guildID)
					for _, name := range removed {
						fmt.Fprintf(c.App.Writer, "removed /%s\n", name)
					}
					return err
				},
			},
		},
	}
}
