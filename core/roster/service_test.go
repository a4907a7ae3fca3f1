package roster_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/roster"
	"github.com/trezcool/gymleague/core/user"
	testutil "github.com/trezcool/gymleague/tests"
)

// flakyRepo fails the UpdateUpload calls whose 1-based index is listed in failOn.
type flakyRepo struct {
	roster.Repository
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
}

var errDiskFull = errors.New("disk full")

func (r *flakyRepo) UpdateUpload(ctx context.Context, u roster.Upload) (roster.Upload, error) {
	r.mu.Lock()
	r.calls++
	fail := r.failOn[r.calls]
	r.mu.Unlock()
	if fail {
		return roster.Upload{}, errDiskFull
	}
	return r.Repository.UpdateUpload(ctx, u)
}

func badRow(name string) gymnast.NewGymnast {
	ng := testutil.NewGymnast(name, "5")
	ng.BirthDate = "not-a-date"
	return ng
}

func TestService_Process(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	coach := testutil.CreateUser(t, env.Users, "Coach", "coach@test.com", user.RoleCoach)
	outsider := testutil.CreateUser(t, env.Users, "Outsider", "outsider@test.com", user.RoleCoach)
	testutil.AddCoach(t, env.Gyms, coach, g.ID, false)

	newUpload := func(t *testing.T) roster.Upload {
		u, err := env.RosterSvc.CreateUpload(ctx, coach, roster.NewUpload{GymID: g.ID, Filename: "roster.csv"})
		require.NoError(t, err)
		return u
	}

	t.Run("gate", func(t *testing.T) {
		_, err := env.RosterSvc.CreateUpload(ctx, outsider, roster.NewUpload{GymID: g.ID, Filename: "roster.csv"})
		assert.Equal(t, core.ErrPermissionDenied, err)

		u := newUpload(t)
		_, err = env.RosterSvc.Process(ctx, outsider, u.ID, []gymnast.NewGymnast{testutil.NewGymnast("Ana", "4")})
		assert.Equal(t, core.ErrPermissionDenied, err)
	})

	t.Run("reported errors are capped", func(t *testing.T) {
		u := newUpload(t)
		rows := []gymnast.NewGymnast{testutil.NewGymnast("Ana", "4")}
		for i := 0; i < roster.MaxReportedErrors+2; i++ {
			rows = append(rows, badRow(fmt.Sprintf("Bad%d", i)))
		}

		res, err := env.RosterSvc.Process(ctx, coach, u.ID, rows)
		require.NoError(t, err)
		assert.Equal(t, roster.StatusCompleted, res.Status)
		assert.Equal(t, len(rows), res.TotalRows)
		assert.Equal(t, 1, res.ProcessedRows)
		assert.Equal(t, roster.MaxReportedErrors+2, res.ErrorRows)
		assert.Len(t, res.Errors, roster.MaxReportedErrors)
		assert.Equal(t, 2, res.Errors[0].Row)

		// the upload keeps every error
		stored, err := env.Uploads.GetUploadByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Errors, roster.MaxReportedErrors+2)
	})

	t.Run("processed once", func(t *testing.T) {
		u := newUpload(t)
		_, err := env.RosterSvc.Process(ctx, coach, u.ID, nil)
		require.NoError(t, err)

		_, err = env.RosterSvc.Process(ctx, coach, u.ID, []gymnast.NewGymnast{testutil.NewGymnast("Ana", "4")})
		assert.True(t, core.IsConflict(err), "got %v", err)
	})

	t.Run("cancelled caller does not interrupt the batch", func(t *testing.T) {
		u := newUpload(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res, err := env.RosterSvc.Process(cctx, coach, u.ID, []gymnast.NewGymnast{
			testutil.NewGymnast("Dana", "4"),
			testutil.NewGymnast("Eve", "5"),
		})
		require.NoError(t, err)
		assert.Equal(t, roster.StatusCompleted, res.Status)
		assert.Equal(t, 2, res.ProcessedRows)
		assert.Zero(t, res.ErrorRows)

		stored, err := env.Uploads.GetUploadByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, roster.StatusCompleted, stored.Status)
		assert.Empty(t, stored.Errors)
	})

	t.Run("empty batch completes", func(t *testing.T) {
		u := newUpload(t)
		res, err := env.RosterSvc.Process(ctx, coach, u.ID, []gymnast.NewGymnast{})
		require.NoError(t, err)
		assert.Equal(t, roster.StatusCompleted, res.Status)
		assert.Zero(t, res.TotalRows)
		assert.Empty(t, res.Errors)
	})
}

func TestService_Process_hardFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	g := testutil.CreateGym(t, env.Gyms, "Flip City", "flip@test.com", false)
	admin := testutil.CreateUser(t, env.Users, "Admin", "admin@test.com", user.RoleAdmin)

	// row 2's counter update and the error record after it both fail
	repo := &flakyRepo{Repository: env.Uploads, failOn: map[int]bool{2: true, 3: true}}
	svc := env.NewRosterService(repo)

	u, err := svc.CreateUpload(ctx, admin, roster.NewUpload{GymID: g.ID, Filename: "roster.csv"})
	require.NoError(t, err)

	rows := []gymnast.NewGymnast{
		testutil.NewGymnast("Ana", "4"),
		testutil.NewGymnast("Bea", "5"),
		testutil.NewGymnast("Cleo", "6"),
	}
	res, err := svc.Process(ctx, admin, u.ID, rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, roster.StatusFailed, res.Status)
	assert.Equal(t, 1, res.ProcessedRows)
	assert.Equal(t, 2, res.ErrorRows)

	stored, err := env.Uploads.GetUploadByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, roster.StatusFailed, stored.Status)
	assert.Equal(t, stored.TotalRows, stored.ProcessedRows+stored.ErrorRows)

	// Bea's gymnast was rolled back with the failed counter update
	gymnasts, err := env.Gymnasts.QueryGymnasts(ctx, gymnast.QueryFilter{GymID: g.ID})
	require.NoError(t, err)
	require.Len(t, gymnasts, 1)
	assert.Equal(t, "Ana", gymnasts[0].FirstName)

	// the importer still hears about it
	var summary *core.EmailMessage
	for _, msg := range env.Mailer.SentMessages() {
		if msg.TemplateName == "roster_summary" {
			msg := msg
			summary = &msg
		}
	}
	require.NotNil(t, summary)
	assert.Contains(t, summary.Subject, roster.StatusFailed)
	assert.True(t, summary.HasAttachments())
}
