package app

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stake-plus/ideabox/src/api/config"
	"github.com/stake-plus/ideabox/src/data"
	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	return config.Config{
		DatabaseDSN: "sqlite://file:" + name + "?mode=memory&cache=shared",
		JWTSecret:   "secret",
		Port:        "0",
	}
}

func TestBuild_APIOnly(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	st, err := Build(cfg, Surfaces{API: true})
	require.NoError(t, err)
	defer st.Close()

	assert.Nil(t, st.Bot)
	require.NotNil(t, st.Redis)
	assert.Equal(t, []string{"http"}, st.Manager.Names())

	ctx := context.Background()
	require.NoError(t, st.Manager.Start(ctx))
	defer st.Manager.Stop(ctx)

	resp, err := http.Get("http://" + st.HTTP.Addr() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	author, err := st.Service.EnsureActor(ctx, ideas.Actor{ID: "a", Origin: ideas.OriginWeb})
	require.NoError(t, err)
	idea, err := st.Service.CreateIdea(ctx, author, ideas.NewIdea{Title: "<b>t</b>", Description: "d", Category: ideas.CategoryGeneral})
	require.NoError(t, err)
	assert.Equal(t, "t", idea.Title)

	_, err = st.Service.ApplyVote(ctx, idea.ID, "a", ideas.DirectionUp)
	require.NoError(t, err)
	entries, err := st.Redis.XLen(ctx, data.EventStream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), entries)
}

func TestBuild_ReturnsErrors(t *testing.T) {
	tests := []struct {
		name     string
		surfaces Surfaces
		mutate   func(*config.Config)
	}{
		{name: "api without jwt secret", surfaces: Surfaces{API: true}, mutate: func(c *config.Config) { c.JWTSecret = "" }},
		{name: "bot without token", surfaces: Surfaces{Bot: true}, mutate: func(*config.Config) {}},
		{name: "bad redis url", surfaces: Surfaces{API: true}, mutate: func(c *config.Config) { c.RedisURL = "mysql://nope" }},
		{name: "missing tls pair", surfaces: Surfaces{API: true}, mutate: func(c *config.Config) {
			c.TLSCertFile = filepath.Join(t.TempDir(), "missing.crt")
			c.TLSKeyFile = filepath.Join(t.TempDir(), "missing.key")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)

			var (
				st  *Stack
				err error
			)
			require.NotPanics(t, func() { st, err = Build(cfg, tt.surfaces) })
			assert.Error(t, err)
			assert.Nil(t, st)
		})
	}
}

func TestBuild_BotWithoutGateway(t *testing.T) {
	cfg := testConfig(t)
	cfg.DiscordToken = "not-a-real-token"

	st, err := Build(cfg, Surfaces{API: true, Bot: true})
	require.NoError(t, err)
	defer st.Close()

	require.NotNil(t, st.Bot)
	assert.Equal(t, []string{"http", "discord-bot"}, st.Manager.Names())
	running, _ := st.Bot.Status()
	assert.False(t, running)
}
