package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/gymleague/apps/api/echo"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func Test_auth(t *testing.T) {
	app, env := setup(t)

	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	ghost := user.User{ID: "ghost", Name: "Ghost", Email: "ghost@test.com", Role: user.RoleAdmin}

	expired := echoapi.GetUserClaims(coach, env.Conf)
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	expiredToken, err := echoapi.GenerateToken(expired, env.Conf)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, echoapi.GetUserClaims(coach, env.Conf))
	forgedToken, err := forged.SignedString([]byte("not-the-secret"))
	if err != nil {
		t.Fatalf("SignedString() failed: %v", err)
	}

	invalidToken := marchallObj(t, httpErr{Error: "invalid or expired jwt"})

	tests := []httpTest{
		{name: "token required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "expired token", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: invalidToken},
		{name: "bad signature", token: forgedToken, wantCode: http.StatusUnauthorized, wantData: invalidToken},
		{
			name: "unknown principal", token: getToken(t, env, ghost), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "unknown user"}),
		},
		{name: "known principal", token: getToken(t, env, coach), wantCode: http.StatusOK, wantData: marchallObj(t, coach)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/users/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_auth_issuer(t *testing.T) {
	app, env := setup(t)
	env.Conf.Auth.Issuer = "https://id.gymleague.test"

	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)

	claims := echoapi.GetUserClaims(coach, env.Conf)
	claims.Issuer = "https://elsewhere.test"
	token, err := echoapi.GenerateToken(claims, env.Conf)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/users/me", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid token issuer"})}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/api/users/me", getToken(t, env, coach))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_userApi_query(t *testing.T) {
	app, env := setup(t)

	path := func(search, ordering string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/api/users?" + v.Encode()
	}

	now := time.Now()
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin, now)
	coach := testutil.CreateUser(t, env.Users, "Carla Coach", "carla@test.com", user.RoleCoach, now.Add(time.Hour))
	gymAdmin := testutil.CreateUser(t, env.Users, "Bob Owner", "bob@test.com", user.RoleGymAdmin, now.Add(2*time.Hour))
	fan := testutil.CreateUser(t, env.Users, "Zed", "zed@test.com", user.RoleSpectator, now.Add(3*time.Hour))

	adminToken := getToken(t, env, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/api/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/api/users", token: getToken(t, env, coach), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/api/users", token: adminToken, wantData: marchallList(t, admin, coach, gymAdmin, fan)},
		// filtering
		{name: "search (unknown)", path: path("lol", ""), token: adminToken, wantData: empty},
		{name: "search=COACH", path: path("COACH", ""), token: adminToken, wantData: marchallList(t, coach)},
		{name: "role (unknown)", path: path("", "", "lol"), token: adminToken, wantData: empty},
		{
			name: "role=coach,gym_admin", path: path("", "", user.RoleCoach, user.RoleGymAdmin),
			token: adminToken, wantData: marchallList(t, coach, gymAdmin),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// ordering is checked on the raw sequence
	orderTests := []struct {
		ordering string
		want     []user.User
	}{
		{ordering: "created_at", want: []user.User{admin, coach, gymAdmin, fan}},
		{ordering: "-created_at", want: []user.User{fan, gymAdmin, coach, admin}},
		{ordering: "name", want: []user.User{admin, gymAdmin, coach, fan}},
		{ordering: "role,-name", want: []user.User{admin, coach, gymAdmin, fan}},
	}
	for _, tt := range orderTests {
		t.Run("order by "+tt.ordering, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, path("", tt.ordering), adminToken)
			app.ServeHTTP(rec, req)

			var got []user.User
			unmarshal(t, rec, &got)
			ids := func(users []user.User) []string {
				out := make([]string, 0, len(users))
				for _, u := range users {
					out = append(out, u.ID)
				}
				return out
			}
			assert.Equal(t, ids(tt.want), ids(got))
		})
	}
}

func Test_userApi_create(t *testing.T) {
	app, env := setup(t)

	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", true)
	adminToken := getToken(t, env, admin)

	tests := []httpTest{
		{
			name: "required fields", body: marchallObj(t, user.NewUser{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":  "this field is required",
				"email": "this field is required",
				"role":  "this field is required",
			}),
		},
		{
			name: "invalid role", body: marchallObj(t, user.NewUser{Name: "X", Email: "x@test.com", Role: "king"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "email used by a user", body: marchallObj(t, user.NewUser{Name: "X", Email: " ADMIN@test.com ", Role: user.RoleCoach}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "email used by a gym", body: marchallObj(t, user.NewUser{Name: "X", Email: "flip@test.com", Role: user.RoleCoach}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, map[string]string{"email": "this email is already used by a gym"}),
		},
		{
			name: "created", body: marchallObj(t, user.NewUser{Name: " New Coach ", Email: "New@Test.com", Role: user.RoleCoach}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, adminToken, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var got user.User
				unmarshal(t, rec, &got)
				assert.Equal(t, "New Coach", got.Name)
				assert.Equal(t, "new@test.com", got.Email)
				assert.NotEmpty(t, got.ID)
			}
		})
	}
}

func Test_userApi_updateRole(t *testing.T) {
	app, env := setup(t)

	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)
	fan := testutil.CreateUser(t, env.Users, "Fan", "fan@test.com", user.RoleSpectator)

	tests := []httpTest{
		{
			name: "admin only", path: "/api/users/" + admin.ID + "/role", token: getToken(t, env, fan),
			body: marchallObj(t, user.UpdateRole{Role: user.RoleAdmin}), wantCode: http.StatusForbidden,
		},
		{
			name: "not on oneself", path: "/api/users/" + admin.ID + "/role", token: getToken(t, env, admin),
			body:     marchallObj(t, user.UpdateRole{Role: user.RoleCoach}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "you cannot change your own role"}),
		},
		{
			name: "unknown user", path: "/api/users/nope/role", token: getToken(t, env, admin),
			body: marchallObj(t, user.UpdateRole{Role: user.RoleCoach}), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "promoted", path: "/api/users/" + fan.ID + "/role", token: getToken(t, env, admin),
			body: marchallObj(t, user.UpdateRole{Role: user.RoleCoach}), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPatch

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	usr, err := env.Users.GetUserByID(context.Background(), fan.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.RoleCoach, usr.Role)
}
