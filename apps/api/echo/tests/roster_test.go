package tests

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/roster"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

func Test_rosterApi_process(t *testing.T) {
	app, env := setup(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	outsider := testutil.CreateUser(t, env.Users, "Outsider", "outsider@test.com", user.RoleCoach)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)
	coachToken := getToken(t, env, coach)

	create := func(t *testing.T, token string, total int) (*httptest.ResponseRecorder, roster.Upload) {
		body := marchallObj(t, roster.NewUpload{GymID: g.ID, Filename: "spring.csv", TotalRows: total})
		r, rec := newAuthRequest(http.MethodPost, "/api/roster-upload", token, body)
		app.ServeHTTP(rec, r)
		var u roster.Upload
		if rec.Code == http.StatusCreated {
			unmarshal(t, rec, &u)
		}
		return rec, u
	}

	t.Run("gate enforced", func(t *testing.T) {
		rec, _ := create(t, getToken(t, env, outsider), 1)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		_, u := create(t, coachToken, 1)
		body := marchallObj(t, roster.ProcessRequest{Rows: []gymnast.NewGymnast{testutil.NewGymnast("Ana", "4")}})
		r, rec := newAuthRequest(http.MethodPost, "/api/roster-upload/"+u.ID+"/process", getToken(t, env, outsider), body)
		app.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		stored, err := env.Uploads.GetUploadByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, roster.StatusPending, stored.Status)
	})

	t.Run("row isolation", func(t *testing.T) {
		rec, u := create(t, coachToken, 3)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, roster.StatusPending, u.Status)

		bad := testutil.NewGymnast("Bea", "6")
		bad.BirthDate = "05/04/2012"
		rows := []gymnast.NewGymnast{testutil.NewGymnast("Ana", "4"), bad, testutil.NewGymnast("Cleo", "pre-team")}

		body := marchallObj(t, roster.ProcessRequest{Rows: rows})
		r, rec := newAuthRequest(http.MethodPost, "/api/roster-upload/"+u.ID+"/process", coachToken, body)
		app.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res roster.Result
		unmarshal(t, rec, &res)
		assert.Equal(t, roster.StatusCompleted, res.Status)
		assert.Equal(t, 3, res.TotalRows)
		assert.Equal(t, 2, res.ProcessedRows)
		assert.Equal(t, 1, res.ErrorRows)
		assert.Equal(t, 2, res.CreatedCount)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, 2, res.Errors[0].Row)
		assert.Contains(t, res.Errors[0].Error, "birthDate")

		gymnasts, err := env.Gymnasts.QueryGymnasts(ctx, gymnast.QueryFilter{GymID: g.ID})
		require.NoError(t, err)
		require.Len(t, gymnasts, 2)
		for _, gn := range gymnasts {
			assert.True(t, gn.Approved)
			assert.Zero(t, gn.Points)
		}

		// processing is one-shot
		r, rec = newAuthRequest(http.MethodPost, "/api/roster-upload/"+u.ID+"/process", coachToken, body)
		app.ServeHTTP(rec, r)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, map[string]string{"status": "roster upload already completed"}),
		}, rec)

		r, rec = newAuthRequest(http.MethodGet, "/api/roster-uploads/"+u.ID, coachToken)
		app.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
		var stored roster.Upload
		unmarshal(t, rec, &stored)
		assert.Equal(t, stored.TotalRows, stored.ProcessedRows+stored.ErrorRows)
	})

	t.Run("rows required", func(t *testing.T) {
		_, u := create(t, coachToken, 0)
		r, rec := newAuthRequest(http.MethodPost, "/api/roster-upload/"+u.ID+"/process", coachToken, []byte(`{}`))
		app.ServeHTTP(rec, r)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"rows": "this field is required"})}, rec)
	})

	t.Run("list by gym", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodGet, "/api/roster-uploads/gym/"+g.ID, coachToken)
		app.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)

		var uploads []roster.Upload
		unmarshal(t, rec, &uploads)
		assert.Len(t, uploads, 3)
	})
}

func Test_rosterApi_importCSV(t *testing.T) {
	app, env := setup(t)

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)

	csvData := "first_name,last_name,birth_date,level,parent_email\n" +
		"Ana,Lopez,2013-02-01,4,ana.parent@test.com\n" +
		"Bea,Kim,not-a-date,5,\n" +
		"Cleo,Diaz,2015-09-30,pre-team,\n"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("gymId", g.ID))
	fw, err := mw.CreateFormFile("file", "roster.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvData))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/roster-upload/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+getToken(t, env, admin))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res roster.Result
	unmarshal(t, rec, &res)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 2, res.ProcessedRows)
	assert.Equal(t, 1, res.ErrorRows)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)

	// the admin gets a summary with the rejected rows attached
	var summary bool
	for _, msg := range env.Mailer.SentMessages() {
		if msg.TemplateName == "roster_summary" {
			summary = true
			assert.Equal(t, admin.Email, msg.To[0].Address)
			assert.True(t, msg.HasAttachments())
		}
	}
	assert.True(t, summary)

	// missing file
	r, rec := newAuthRequest(http.MethodPost, "/api/roster-upload/import", getToken(t, env, admin))
	app.ServeHTTP(rec, r)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "a csv file is required"})}, rec)
}
