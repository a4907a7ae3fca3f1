package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func Test_gymApi_create(t *testing.T) {
	app, env := setup(t)

	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", true)
	adminToken := getToken(t, env, admin)

	tests := []httpTest{
		{
			name: "admin only", token: getToken(t, env, coach), body: marchallObj(t, gym.NewGym{Name: "X", Email: "x@test.com"}),
			wantCode: http.StatusForbidden,
		},
		{
			name: "required fields", token: adminToken, body: marchallObj(t, gym.NewGym{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":  "this field is required",
				"email": "this field is required",
			}),
		},
		{
			name: "email used by a gym", token: adminToken, body: marchallObj(t, gym.NewGym{Name: "X", Email: "FLIP@test.com"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, map[string]string{"email": "a gym with this email already exists"}),
		},
		{
			name: "email used by a user", token: adminToken, body: marchallObj(t, gym.NewGym{Name: "X", Email: "coach@test.com"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, map[string]string{"email": "this email is already used by a user"}),
		},
		{
			name: "created", token: adminToken, body: marchallObj(t, gym.NewGym{Name: " Vault Club ", City: "Lyon", Email: "Vault@test.com"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/gyms"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var got gym.Gym
				unmarshal(t, rec, &got)
				assert.Equal(t, "Vault Club", got.Name)
				assert.Equal(t, "vault@test.com", got.Email)
			}
		})
	}
}

func Test_gymApi_update(t *testing.T) {
	app, env := setup(t)

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	owner := testutil.CreateUser(t, env.Users, "Owner", "owner@test.com", user.RoleGymAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	testutil.AddCoach(t, env.Gyms, owner, g.ID, true)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)

	path := "/api/gyms/" + g.ID
	tests := []httpTest{
		{name: "coaches cannot edit", token: getToken(t, env, coach), body: []byte(`{"city":"Nice"}`), wantCode: http.StatusForbidden},
		{name: "owner edits the profile", token: getToken(t, env, owner), body: []byte(`{"city":"Nice","allowSelfRegistration":true}`), wantCode: http.StatusOK},
		{name: "owner cannot mark membership", token: getToken(t, env, owner), body: []byte(`{"membershipPaid":true}`), wantCode: http.StatusForbidden},
		{name: "league admin can", token: getToken(t, env, admin), body: []byte(`{"membershipPaid":true}`), wantCode: http.StatusOK},
		{name: "unknown gym", token: getToken(t, env, admin), body: []byte(`{}`), wantCode: http.StatusNotFound, extra: "/api/gyms/nope"},
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
		})
	}

	req, rec := newAuthRequest(http.MethodGet, path, getToken(t, env, coach))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var got gym.Gym
	unmarshal(t, rec, &got)
	assert.Equal(t, "Nice", got.City)
	assert.True(t, got.AllowSelfRegistration)
	assert.True(t, got.MembershipPaid)
}

func Test_gymApi_coaches(t *testing.T) {
	app, env := setup(t)

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	owner := testutil.CreateUser(t, env.Users, "Owner", "owner@test.com", user.RoleGymAdmin)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	fan := testutil.CreateUser(t, env.Users, "Fan", "fan@test.com", user.RoleSpectator)
	testutil.AddCoach(t, env.Gyms, owner, g.ID, false)
	ownerToken := getToken(t, env, owner)
	coachesPath := "/api/gyms/" + g.ID + "/coaches"

	tests := []httpTest{
		{name: "not staff", body: marchallObj(t, gym.NewCoach{UserID: fan.ID}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"userId": "user must be a coach or a gym admin"})},
		{name: "unknown user", body: marchallObj(t, gym.NewCoach{UserID: "nope"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"userId": "user not found"})},
		{name: "added", body: marchallObj(t, gym.NewCoach{UserID: coach.ID}), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = coachesPath

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, ownerToken, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the new coach now passes the gate
	req, rec := newAuthRequest(http.MethodGet, coachesPath, getToken(t, env, coach))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var coaches []gym.Coach
	unmarshal(t, rec, &coaches)
	assert.Len(t, coaches, 2)

	// and cannot manage staff
	req, rec = newAuthRequest(http.MethodDelete, coachesPath+"/"+owner.ID, getToken(t, env, coach))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, coachesPath+"/"+coach.ID, ownerToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, coachesPath, getToken(t, env, coach))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
