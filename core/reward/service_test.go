package reward_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/reward"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)

	_, err := env.RewardSvc.Create(ctx, coach, reward.NewReward{Name: "T-shirt", PointCost: 20})
	assert.Equal(t, core.ErrPermissionDenied, err)

	r, err := env.RewardSvc.Create(ctx, admin, reward.NewReward{Name: " T-shirt ", PointCost: 20})
	require.NoError(t, err)
	assert.Equal(t, "T-shirt", r.Name)
	assert.True(t, r.Active)

	_, err = env.Rewards.CreateReward(ctx, reward.Reward{ID: uuid.NewString(), Name: "Retired", PointCost: 1, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	// only admins see retired rewards
	all, err := env.RewardSvc.Query(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	available, err := env.RewardSvc.Query(ctx, coach)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, r.ID, available[0].ID)
}

func TestService_Redeem(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	fan := testutil.CreateUser(t, env.Users, "Fan", "fan@test.com", user.RoleSpectator)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)

	ana := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Ana", "4", true, 25)
	newbie := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Bea", "4", false, 100)

	shirt, err := env.RewardSvc.Create(ctx, admin, reward.NewReward{Name: "T-shirt", PointCost: 20})
	require.NoError(t, err)
	retired, err := env.Rewards.CreateReward(ctx, reward.Reward{ID: uuid.NewString(), Name: "Retired", PointCost: 1, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	tests := []struct {
		name      string
		actor     user.User
		rewardID  string
		gymnastID string
		wantErr   func(error) bool
		wantField string
	}{
		{name: "spectator", actor: fan, rewardID: shirt.ID, gymnastID: ana.ID, wantErr: core.IsPermissionDenied},
		{name: "unknown reward", actor: coach, rewardID: "nope", gymnastID: ana.ID, wantErr: core.IsNotFound},
		{name: "unapproved gymnast", actor: coach, rewardID: shirt.ID, gymnastID: newbie.ID, wantField: "gymnastId"},
		{name: "inactive", actor: coach, rewardID: retired.ID, gymnastID: ana.ID, wantField: "rewardId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.RewardSvc.Redeem(ctx, tt.actor, tt.rewardID, reward.NewRedemption{GymnastID: tt.gymnastID})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "got %v", err)
			}
			if tt.wantField != "" {
				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			}
		})
	}

	red, err := env.RewardSvc.Redeem(ctx, coach, shirt.ID, reward.NewRedemption{GymnastID: ana.ID})
	require.NoError(t, err)
	assert.Equal(t, 20, red.PointCost)

	// 5 points left
	_, err = env.RewardSvc.Redeem(ctx, coach, shirt.ID, reward.NewRedemption{GymnastID: ana.ID})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "points", verr.Fields[0].Field)

	got, err := env.Gymnasts.GetGymnastByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Points)
}
