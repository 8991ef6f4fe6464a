package ideas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		role       Role
		current    Status
		requested  Status
		ideaID     int64
		wantErr    error
		wantVal    bool
		wantStatus Status
	}{
		{name: "moderator approves pending", role: RoleModerator, current: StatusPending, requested: StatusApproved, ideaID: 1, wantStatus: StatusApproved},
		{name: "admin rejects pending", role: RoleAdmin, current: StatusPending, requested: StatusRejected, ideaID: 1, wantStatus: StatusRejected},
		{name: "super admin approves pending", role: RoleSuperAdmin, current: StatusPending, requested: StatusApproved, ideaID: 1, wantStatus: StatusApproved},
		{name: "user is forbidden", role: RoleUser, current: StatusPending, requested: StatusApproved, ideaID: 1, wantErr: ErrForbidden, wantStatus: StatusPending},
		{name: "approved is terminal", role: RoleModerator, current: StatusApproved, requested: StatusRejected, ideaID: 1, wantErr: ErrInvalidTransition, wantStatus: StatusApproved},
		{name: "re-approving is rejected", role: RoleModerator, current: StatusApproved, requested: StatusApproved, ideaID: 1, wantErr: ErrInvalidTransition, wantStatus: StatusApproved},
		{name: "rejected is terminal", role: RoleAdmin, current: StatusRejected, requested: StatusApproved, ideaID: 1, wantErr: ErrInvalidTransition, wantStatus: StatusRejected},
		{name: "back to pending is invalid input", role: RoleAdmin, current: StatusApproved, requested: StatusPending, ideaID: 1, wantVal: true, wantStatus: StatusApproved},
		{name: "unknown status", role: RoleAdmin, current: StatusPending, requested: "archived", ideaID: 1, wantVal: true, wantStatus: StatusPending},
		{name: "missing idea", role: RoleAdmin, current: StatusPending, requested: StatusApproved, ideaID: 2, wantErr: ErrNotFound, wantStatus: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addIdea(1, tt.current)
			store.addActor("actor", tt.role)
			svc, pub, rec := newTestService(store)
			actor := store.actors["actor"]

			idea, err := svc.SetStatus(ctx, tt.ideaID, tt.requested, &actor)
			switch {
			case tt.wantVal:
				assert.True(t, IsValidation(err))
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, idea.Status)
				require.Len(t, pub.events, 1)
				assert.Equal(t, EventStatus, pub.events[0].Kind)
				assert.Equal(t, OriginWeb, pub.events[0].Origin)
				assert.Equal(t, []Status{tt.wantStatus}, rec.statuses)
			}
			assert.Equal(t, tt.wantStatus, store.ideas[1].Status)
			if err != nil {
				assert.Empty(t, pub.events)
			}
		})
	}
}

func TestService_SetStatus_NilActor(t *testing.T) {
	store := newFakeStore()
	store.addIdea(1, StatusPending)
	svc, _, _ := newTestService(store)

	_, err := svc.SetStatus(context.Background(), 1, StatusApproved, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_ApproveFromGuild(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		role       Role
		approval   []string
		member     []string
		wantErr    error
		wantStatus Status
	}{
		{name: "bot admin", role: RoleAdmin, wantStatus: StatusApproved},
		{name: "guild approval role", role: RoleUser, approval: []string{"r1"}, member: []string{"r0", "r1"}, wantStatus: StatusApproved},
		{name: "moderator without guild role", role: RoleModerator, approval: []string{"r1"}, member: []string{"r2"}, wantErr: ErrForbidden, wantStatus: StatusPending},
		{name: "no guild config", role: RoleUser, wantErr: ErrForbidden, wantStatus: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addIdea(1, StatusPending)
			store.addActor("d1", tt.role)
			if tt.approval != nil {
				store.configs["g1"] = ServerConfig{GuildID: "g1", ApprovalRoleIDs: tt.approval}
			}
			members := &fakeMembers{roles: map[string][]string{"g1/d1": tt.member}}
			pub := &fakePublisher{}
			svc := NewService(Config{Store: store, Members: members, Publisher: pub})

			idea, err := svc.ApproveFromGuild(ctx, 1, StatusApproved, "d1", "g1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, idea.Status)
				require.Len(t, pub.events, 1)
				assert.Equal(t, OriginDiscord, pub.events[0].Origin)
			}
			assert.Equal(t, tt.wantStatus, store.ideas[1].Status)
		})
	}
}
