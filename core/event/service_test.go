package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/event"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format(core.DateLayout)
}

// newEvent has its registration window open today.
func newEvent(gymID string, levels ...string) event.NewEvent {
	return event.NewEvent{
		GymID:              gymID,
		Name:               " Spring Open ",
		StartDate:          day(10),
		EndDate:            day(11),
		RegistrationOpens:  day(-1),
		RegistrationCloses: day(5),
		Sessions:           []event.NewSession{{Name: "Morning", StartsAt: time.Now().AddDate(0, 0, 10), Levels: levels}},
	}
}

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	outsider := testutil.CreateUser(t, env.Users, "Outsider", "outsider@test.com", user.RoleCoach)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)

	_, err := env.EventSvc.Create(ctx, outsider, newEvent(g.ID))
	assert.Equal(t, core.ErrPermissionDenied, err)

	_, err = env.EventSvc.Create(ctx, admin, newEvent("nope"))
	assert.True(t, core.IsNotFound(err), "got %v", err)

	ne := newEvent(g.ID)
	ne.EndDate = day(9)
	_, err = env.EventSvc.Create(ctx, coach, ne)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "endDate", verr.Fields[0].Field)

	pending, err := env.EventSvc.Create(ctx, coach, newEvent(g.ID))
	require.NoError(t, err)
	assert.False(t, pending.Approved)
	assert.Equal(t, "Spring Open", pending.Name)
	require.Len(t, pending.Sessions, 1)
	assert.NotEmpty(t, pending.Sessions[0].ID)
	assert.Equal(t, []string{}, pending.Sessions[0].Levels)

	approved, err := env.EventSvc.Create(ctx, admin, newEvent(g.ID))
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	_, err = env.EventSvc.Approve(ctx, coach, pending.ID)
	assert.Equal(t, core.ErrPermissionDenied, err)
	got, err := env.EventSvc.Approve(ctx, admin, pending.ID)
	require.NoError(t, err)
	assert.True(t, got.Approved)
}

func TestService_Query(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	other := testutil.CreateGym(t, env.Gyms, "Vault Club", "vault@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	rival := testutil.CreateUser(t, env.Users, "Rival", "rival@test.com", user.RoleCoach)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)
	testutil.AddCoach(t, env.Gyms, rival, other.ID, false)

	pending, err := env.EventSvc.Create(ctx, coach, newEvent(g.ID))
	require.NoError(t, err)
	_, err = env.EventSvc.Create(ctx, admin, newEvent(other.ID))
	require.NoError(t, err)

	tests := []struct {
		name   string
		actor  user.User
		filter event.QueryFilter
		want   int
	}{
		{name: "admin sees all", actor: admin, want: 2},
		{name: "public sees approved", actor: user.User{}, want: 1},
		{name: "staff sees own pending", actor: coach, filter: event.QueryFilter{GymID: g.ID}, want: 1},
		{name: "other staff does not", actor: rival, filter: event.QueryFilter{GymID: g.ID}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.EventSvc.Query(ctx, tt.actor, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			if tt.filter.GymID != "" && tt.want > 0 {
				assert.Equal(t, pending.ID, got[0].ID)
			}
		})
	}
}

func TestService_Register(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)

	ana := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Ana", "4", true, 0)
	newbie := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Bea", "4", false, 0)
	senior := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Cleo", "9", true, 0)

	open, err := env.EventSvc.Create(ctx, admin, newEvent(g.ID, "3", "4"))
	require.NoError(t, err)
	unapproved, err := env.EventSvc.Create(ctx, coach, newEvent(g.ID))
	require.NoError(t, err)
	late := newEvent(g.ID)
	late.RegistrationOpens, late.RegistrationCloses = day(-5), day(-1)
	closed, err := env.EventSvc.Create(ctx, admin, late)
	require.NoError(t, err)

	tests := []struct {
		name      string
		eventID   string
		gymnastID string
		wantMsg   string
	}{
		{name: "pending event", eventID: unapproved.ID, gymnastID: ana.ID, wantMsg: "eventId: event is not approved yet"},
		{name: "unapproved gymnast", eventID: open.ID, gymnastID: newbie.ID, wantMsg: "gymnastId: gymnast is not approved"},
		{name: "window closed", eventID: closed.ID, gymnastID: ana.ID, wantMsg: "eventId: registration is closed"},
		{name: "wrong level", eventID: open.ID, gymnastID: senior.ID, wantMsg: "gymnastId: no session accepts the gymnast's level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.EventSvc.Register(ctx, coach, tt.eventID, event.NewRegistration{GymnastID: tt.gymnastID})
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Error())
		})
	}

	_, err = env.EventSvc.Register(ctx, user.User{}, open.ID, event.NewRegistration{GymnastID: ana.ID})
	assert.Equal(t, core.ErrPermissionDenied, err)

	r, err := env.EventSvc.Register(ctx, coach, open.ID, event.NewRegistration{GymnastID: ana.ID})
	require.NoError(t, err)
	assert.Equal(t, coach.ID, r.RegisteredBy)

	_, err = env.EventSvc.Register(ctx, coach, open.ID, event.NewRegistration{GymnastID: ana.ID})
	assert.True(t, core.IsConflict(err), "got %v", err)

	entries, err := env.EventSvc.QueryRegistrations(ctx, coach, open.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ana.ID, entries[0].GymnastID)
}
