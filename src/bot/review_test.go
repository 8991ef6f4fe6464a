package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideabox/src/ideas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_RegistersMember(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		role       ideas.Role
		wantErr    error
		wantStatus ideas.Status
	}{
		{name: "unknown member is refused but registered", wantErr: ideas.ErrForbidden, wantStatus: ideas.StatusPending},
		{name: "admin approves", role: ideas.RoleAdmin, wantStatus: ideas.StatusApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			side := newSurface(t, strings.ReplaceAll(t.Name(), "/", "_"))
			b := &Bot{service: side.svc}
			user := &discordgo.User{ID: "mod-1", Username: "mod", GlobalName: "Moderator"}
			if tt.role != "" {
				_, err := side.svc.EnsureActor(ctx, ideas.Actor{ID: user.ID, Origin: ideas.OriginDiscord})
				require.NoError(t, err)
				_, err = side.store.SetActorRole(ctx, user.ID, tt.role)
				require.NoError(t, err)
			}

			err := b.review(ctx, user, "guild-1", side.idea.ID, ideas.StatusApproved)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			actor, err := side.svc.GetActor(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "Moderator", actor.DisplayName)
			assert.Equal(t, ideas.OriginDiscord, actor.Origin)

			idea, err := side.svc.GetIdea(ctx, side.idea.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, idea.Status)
		})
	}
}
