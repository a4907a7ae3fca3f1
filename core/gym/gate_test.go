package gym_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func TestGate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	other := testutil.CreateGym(t, env.Gyms, "Vault Club", "vault@test.com", false)

	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	owner := testutil.CreateUser(t, env.Users, "Owner", "owner@test.com", user.RoleGymAdmin)
	headCoach := testutil.CreateUser(t, env.Users, "Head", "head@test.com", user.RoleCoach)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	stranger := testutil.CreateUser(t, env.Users, "Stranger", "stranger@test.com", user.RoleCoach)
	kid := testutil.CreateUser(t, env.Users, "Kid", "kid@test.com", user.RoleGymnast)
	fan := testutil.CreateUser(t, env.Users, "Fan", "fan@test.com", user.RoleSpectator)

	testutil.AddCoach(t, env.Gyms, owner, g.ID, false)
	testutil.AddCoach(t, env.Gyms, headCoach, g.ID, true)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)
	testutil.AddCoach(t, env.Gyms, stranger, other.ID, true)

	tests := []struct {
		name           string
		usr            user.User
		wantAct        bool
		wantAdminister bool
	}{
		{name: "anonymous"},
		{name: "league admin", usr: admin, wantAct: true, wantAdminister: true},
		{name: "gym admin", usr: owner, wantAct: true, wantAdminister: true},
		{name: "coach flagged admin", usr: headCoach, wantAct: true, wantAdminister: true},
		{name: "coach", usr: coach, wantAct: true},
		{name: "coach of another gym", usr: stranger},
		{name: "gymnast", usr: kid},
		{name: "spectator", usr: fan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := env.Gate.CanActOnGym(ctx, tt.usr, g.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAct, act)

			administer, err := env.Gate.CanAdministerGym(ctx, tt.usr, g.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdminister, administer)

			err = env.Gate.Authorize(ctx, tt.usr, g.ID)
			if tt.wantAct {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, core.ErrPermissionDenied, err)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)

	g, err := env.GymSvc.Create(ctx, gym.NewGym{Name: " Flip City ", Email: " Flip@Test.com "})
	require.NoError(t, err)
	assert.Equal(t, "Flip City", g.Name)
	assert.Equal(t, "flip@test.com", g.Email)
	assert.False(t, g.AllowSelfRegistration)

	// emails are unique across gyms and users
	_, err = env.GymSvc.Create(ctx, gym.NewGym{Name: "Again", Email: "flip@test.com"})
	assert.True(t, core.IsConflict(err), "got %v", err)
	_, err = env.GymSvc.Create(ctx, gym.NewGym{Name: "Coach Gym", Email: "coach@test.com"})
	assert.True(t, core.IsConflict(err), "got %v", err)

	// and the other way around
	_, err = env.UserSvc.Create(ctx, user.NewUser{Name: "Flip", Email: "flip@test.com", Role: user.RoleCoach})
	assert.True(t, core.IsConflict(err), "got %v", err)
}

func TestService_StaffEmails(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	owner := testutil.CreateUser(t, env.Users, "Owner", "owner@test.com", user.RoleGymAdmin)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)
	testutil.AddCoach(t, env.Gyms, owner, g.ID, false)

	addrs, err := env.GymSvc.StaffEmails(ctx, g.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(addrs))
	for _, a := range addrs {
		got = append(got, a.Address)
	}
	assert.ElementsMatch(t, []string{"coach@test.com", "owner@test.com"}, got)
}
