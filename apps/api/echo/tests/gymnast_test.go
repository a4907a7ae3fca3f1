package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func Test_gymnastApi_leaderboard(t *testing.T) {
	app, env := setup(t)

	g1 := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	g2 := testutil.CreateGym(t, env.Gyms, "Vault Club", "vault@test.com", false)
	fan := testutil.CreateUser(t, env.Users, "Fan", "fan@test.com", user.RoleSpectator)
	token := getToken(t, env, fan)

	first := testutil.CreateGymnast(t, env.Gymnasts, g1.ID, "First", "5", true, 30)
	tieA := testutil.CreateGymnast(t, env.Gymnasts, g2.ID, "TieA", "5", true, 20)
	tieB := testutil.CreateGymnast(t, env.Gymnasts, g1.ID, "TieB", "6", true, 20)
	testutil.CreateGymnast(t, env.Gymnasts, g1.ID, "Hidden", "5", false, 100) // unapproved

	ids := func(entries []gymnast.LeaderboardEntry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.GymnastID)
		}
		return out
	}
	get := func(t *testing.T, query string) []gymnast.LeaderboardEntry {
		r, rec := newAuthRequest(http.MethodGet, "/api/leaderboard"+query, token)
		app.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var entries []gymnast.LeaderboardEntry
		unmarshal(t, rec, &entries)
		return entries
	}

	t.Run("auth required", func(t *testing.T) {
		r, rec := newRequest(http.MethodGet, "/api/leaderboard")
		app.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("points desc, ties in creation order", func(t *testing.T) {
		entries := get(t, "")
		assert.Equal(t, []string{first.ID, tieA.ID, tieB.ID}, ids(entries))
		for i, e := range entries {
			assert.Equal(t, i+1, e.Rank)
		}
	})

	t.Run("level filter", func(t *testing.T) {
		assert.Equal(t, []string{first.ID, tieA.ID}, ids(get(t, "?level=5")))
	})

	t.Run("gym filter", func(t *testing.T) {
		assert.Equal(t, []string{first.ID, tieB.ID}, ids(get(t, "?gymId="+g1.ID)))
	})

	t.Run("team type ranks the same way", func(t *testing.T) {
		assert.Equal(t, []string{first.ID, tieA.ID, tieB.ID}, ids(get(t, "?type=team")))
	})

	t.Run("invalid type", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodGet, "/api/leaderboard?type=relay", token)
		app.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("capped", func(t *testing.T) {
		for i := 0; i < gymnast.LeaderboardSize+5; i++ {
			testutil.CreateGymnast(t, env.Gymnasts, g2.ID, fmt.Sprintf("Extra%d", i), "7", true, 1)
		}
		entries := get(t, "")
		assert.Len(t, entries, gymnast.LeaderboardSize)
		assert.Equal(t, first.ID, entries[0].GymnastID)
	})
}

func Test_gymnastApi_approve(t *testing.T) {
	app, env := setup(t)

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	outsider := testutil.CreateUser(t, env.Users, "Outsider", "outsider@test.com", user.RoleCoach)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)
	coachToken := getToken(t, env, coach)

	gn := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Ana", "4", false, 0)
	path := "/api/gymnasts/" + gn.ID + "/approve"

	tests := []httpTest{
		{name: "gate enforced", token: getToken(t, env, outsider), wantCode: http.StatusForbidden},
		{name: "unknown gymnast", token: coachToken, wantCode: http.StatusNotFound, extra: "/api/gymnasts/nope/approve"},
		{name: "approves by default", token: coachToken, wantCode: http.StatusOK, extra: true},
		{name: "revokes", token: coachToken, body: []byte(`{"approved":false}`), wantCode: http.StatusOK, extra: false},
	}
	for _, tt := range tests {
		tt.method = http.MethodPatch
		tt.path = path
		if p, ok := tt.extra.(string); ok {
			tt.path = p
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if want, ok := tt.extra.(bool); ok {
				var got gymnast.Gymnast
				unmarshal(t, rec, &got)
				assert.Equal(t, want, got.Approved)
			}
		})
	}
}

func Test_gymnastApi_points(t *testing.T) {
	app, env := setup(t)

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)
	coachToken := getToken(t, env, coach)

	approved := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Ana", "4", true, 10)
	pending := testutil.CreateGymnast(t, env.Gymnasts, g.ID, "Bea", "4", false, 0)

	tests := []httpTest{
		{
			name: "unapproved gymnasts earn nothing", path: "/api/gymnasts/" + pending.ID + "/points",
			body: []byte(`{"delta":5}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"gymnastId": "gymnast is not approved"}),
		},
		{
			name: "never below zero", path: "/api/gymnasts/" + approved.ID + "/points",
			body: []byte(`{"delta":-11}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"delta": "insufficient points"}),
		},
		{name: "added", path: "/api/gymnasts/" + approved.ID + "/points", body: []byte(`{"delta":5,"reason":"clean beam"}`), wantCode: http.StatusOK},
		{name: "removed", path: "/api/gymnasts/" + approved.ID + "/points", body: []byte(`{"delta":-15}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPatch

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, coachToken, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	r, rec := newAuthRequest(http.MethodGet, "/api/gymnasts/"+approved.ID, coachToken)
	app.ServeHTTP(rec, r)
	var got gymnast.Gymnast
	unmarshal(t, rec, &got)
	assert.Equal(t, 0, got.Points)
}
