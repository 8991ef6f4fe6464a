package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/stake-plus/ideabox/src/data"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Config is shared by the API, the bot and the ideabox CLI.
type Config struct {
	DatabaseDSN  string   `yaml:"database_dsn"`
	RedisURL     string   `yaml:"redis_url"` // empty disables the event stream
	JWTSecret    string   `yaml:"jwt_secret"`
	Port         string   `yaml:"port"`
	DiscordToken string   `yaml:"discord_token"`
	GuildID      string   `yaml:"guild_id"`
	CORSOrigins  []string `yaml:"cors_origins"`
	TLSCertFile  string   `yaml:"tls_cert_file"` // both set: serve HTTPS
	TLSKeyFile   string   `yaml:"tls_key_file"`
}

const (
	defaultDSN  = "sqlite://ideabox.db"
	defaultPort = "5000"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5000"}

// Origins returns the configured CORS origins, or the local development defaults.
func (c Config) Origins() []string {
	if len(c.CORSOrigins) == 0 {
		return append([]string(nil), defaultOrigins...)
	}
	return c.CORSOrigins
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load builds the config from defaults, the YAML file named by IDEABOX_CONFIG
// (if any) and then the environment, later sources winning.
func Load() (Config, error) {
	cfg := Config{
		DatabaseDSN: defaultDSN,
		Port:        defaultPort,
		CORSOrigins: defaultOrigins,
	}

	if path := os.Getenv("IDEABOX_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}

	if dsn, err := data.DSNFromEnv(); err == nil {
		cfg.DatabaseDSN = dsn
	}
	cfg.RedisURL = getenv("REDIS_URL", cfg.RedisURL)
	cfg.JWTSecret = getenv("JWT_SECRET", cfg.JWTSecret)
	cfg.Port = getenv("PORT", cfg.Port)
	cfg.DiscordToken = getenv("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.GuildID = getenv("GUILD_ID", cfg.GuildID)
	cfg.TLSCertFile = getenv("TLS_CERT_FILE", cfg.TLSCertFile)
	cfg.TLSKeyFile = getenv("TLS_KEY_FILE", cfg.TLSKeyFile)
	if origins := getenv("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}
	return cfg, nil
}

// MustLoad is Load that exits on failure.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.DatabaseDSN, file.DatabaseDSN)
	set(&c.RedisURL, file.RedisURL)
	set(&c.JWTSecret, file.JWTSecret)
	set(&c.Port, file.Port)
	set(&c.DiscordToken, file.DiscordToken)
	set(&c.GuildID, file.GuildID)
	set(&c.TLSCertFile, file.TLSCertFile)
	set(&c.TLSKeyFile, file.TLSKeyFile)
	if len(file.CORSOrigins) > 0 {
		c.CORSOrigins = file.CORSOrigins
	}
	return nil
}

// ApplySettings lets the settings table supply the Discord token and guild id.
// Stored values win over the environment.
func (c *Config) ApplySettings(db *gorm.DB) {
	if err := data.LoadSettings(db); err != nil {
		log.Printf("config: load settings: %v (using env values)", err)
		return
	}
	if v := data.GetSetting("discord_token"); v != "" {
		c.DiscordToken = v
	}
	if v := data.GetSetting("guild_id"); v != "" {
		c.GuildID = v
	}
}

// ValidateAPI checks the keys the REST API cannot run without.
func (c Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("missing env JWT_SECRET")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("missing env DATABASE_DSN")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// TLS reports whether the API should serve HTTPS.
func (c Config) TLS() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// ValidateBot checks the keys the Discord bot cannot run without.
func (c Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("missing env DISCORD_TOKEN (or discord_token setting)")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
