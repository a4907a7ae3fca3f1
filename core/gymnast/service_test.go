package gymnast_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	kid := testutil.CreateUser(t, env.Users, "Ana Lopez", "ana@test.com", user.RoleGymnast)
	testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)

	tests := []struct {
		name       string
		email      string
		wantErr    bool
		wantUserID string
	}{
		{name: "no email"},
		{name: "email of a gym", email: "FLIP@test.com", wantErr: true},
		{name: "email of a gymnast user", email: "ana@test.com", wantUserID: kid.ID},
		{name: "email of another role", email: "coach@test.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ng := testutil.NewGymnast("Ana", "pre-team")
			ng.Email = tt.email

			got, err := env.GymnastSvc.Create(ctx, g.ID, ng, false)
			if tt.wantErr {
				assert.True(t, core.IsConflict(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUserID, got.UserID)
			assert.Equal(t, gymnast.TypePreTeam, got.Type)
			assert.Zero(t, got.Points)
			assert.False(t, got.Approved)
		})
	}
}

func TestService_AdjustPoints(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	gn := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Ana", "4", true, 10)

	// concurrent spending never overdraws
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = env.GymnastSvc.AdjustPoints(ctx, admin, gn.ID, gymnast.AdjustPoints{Delta: -3})
		}()
	}
	wg.Wait()

	got, err := env.Gymnasts.GetGymnastByID(ctx, gn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Points)

	_, err = env.GymnastSvc.AdjustPoints(ctx, admin, gn.ID, gymnast.AdjustPoints{Delta: -2})
	assert.Error(t, err)
	got, err = env.GymnastSvc.AdjustPoints(ctx, admin, gn.ID, gymnast.AdjustPoints{Delta: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Points)
}

func TestService_SetApproved(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	gn, err := env.GymnastSvc.Create(ctx, g.ID, testutil.NewGymnast("Ana", "4"), false)
	require.NoError(t, err)

	got, err := env.GymnastSvc.SetApproved(ctx, admin, gn.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Approved)
	require.Len(t, env.Mailer.SentMessages(), 1)
	assert.Equal(t, "gymnast_approved", env.Mailer.SentMessages()[0].TemplateName)
	assert.Equal(t, "parent.ana@test.com", env.Mailer.SentMessages()[0].To[0].Address)

	// approving twice notifies once
	_, err = env.GymnastSvc.SetApproved(ctx, admin, gn.ID, true)
	require.NoError(t, err)
	assert.Len(t, env.Mailer.SentMessages(), 1)
}

func TestService_Leaderboard(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	a := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "A", "5", true, 5)
	b := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "B", "5", true, 9)
	c := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "C", "5", true, 5)
	testutil.CreateGymnast(t, env.Gymnasts, g.ID, "D", "5", false, 50)

	entries, err := env.GymnastSvc.Leaderboard(ctx, gymnast.LeaderboardFilter{Level: " 5 "})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, []string{entries[0].GymnastID, entries[1].GymnastID, entries[2].GymnastID})
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})

	entries, err = env.GymnastSvc.Leaderboard(ctx, gymnast.LeaderboardFilter{Level: "7"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
