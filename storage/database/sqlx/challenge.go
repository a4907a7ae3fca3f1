package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gymleague/core/challenge"
)

const challengeColumns = `id, title, description, points, target_levels, gym_id, created_by, active, created_at`

var _ challenge.Repository = (*challengeRepository)(nil)

type (
	challengeRow struct {
		ID           string         `db:"id"`
		Title        string         `db:"title"`
		Description  string         `db:"description"`
		Points       int            `db:"points"`
		TargetLevels pq.StringArray `db:"target_levels"`
		GymID        null.String    `db:"gym_id"`
		CreatedBy    string         `db:"created_by"`
		Active       bool           `db:"active"`
		CreatedAt    time.Time      `db:"created_at"`
	}

	challengeRepository struct {
		db *sqlx.DB
	}
)

func (row challengeRow) toModel() challenge.Challenge {
	levels := []string(row.TargetLevels)
	if levels == nil {
		levels = []string{}
	}
	return challenge.Challenge{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Points:       row.Points,
		TargetLevels: levels,
		GymID:        row.GymID.String,
		CreatedBy:    row.CreatedBy,
		Active:       row.Active,
		CreatedAt:    row.CreatedAt,
	}
}

func NewChallengeRepository(db *sqlx.DB) challenge.Repository {
	return &challengeRepository{db: db}
}

func (repo *challengeRepository) CreateChallenge(ctx context.Context, c challenge.Challenge) (challenge.Challenge, error) {
	row := challengeRow{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Points:       c.Points,
		TargetLevels: pq.StringArray(c.TargetLevels),
		GymID:        optional(c.GymID),
		CreatedBy:    c.CreatedBy,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
	}
	q := `INSERT INTO challenges (` + challengeColumns + `)
		VALUES (:id, :title, :description, :points, :target_levels, :gym_id, :created_by, :active, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row); err != nil {
		return challenge.Challenge{}, errors.Wrap(err, "inserting challenge")
	}
	return row.toModel(), nil
}

func (repo *challengeRepository) GetChallengeByID(ctx context.Context, id string) (challenge.Challenge, error) {
	var row challengeRow
	q := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return challenge.Challenge{}, challenge.ErrNotFound
		}
		return challenge.Challenge{}, errors.Wrap(err, "selecting challenge")
	}
	return row.toModel(), nil
}

func (repo *challengeRepository) QueryChallenges(ctx context.Context, filter challenge.RepoFilter) ([]challenge.Challenge, error) {
	var w where
	if filter.GymID != "" {
		if filter.IncludeGlobal {
			w.add("(gym_id = ? OR gym_id IS NULL)", filter.GymID)
		} else {
			w.add("gym_id = ?", filter.GymID)
		}
	}
	if filter.Level != "" {
		w.add("? = ANY(target_levels)", filter.Level)
	}
	if filter.ActiveOnly {
		w.addRaw("active")
	}

	var rows []challengeRow
	q := `SELECT ` + challengeColumns + ` FROM challenges` + w.String() + ` ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting challenges")
	}

	challenges := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		challenges = append(challenges, row.toModel())
	}
	return challenges, nil
}

func (repo *challengeRepository) CreateCompletion(ctx context.Context, c challenge.Completion) (challenge.Completion, error) {
	q := `INSERT INTO challenge_completions (challenge_id, gymnast_id, points, completed_by, completed_at)
		VALUES (:challenge_id, :gymnast_id, :points, :completed_by, :completed_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, c); err != nil {
		if isUniqueViolation(err) {
			return challenge.Completion{}, challenge.ErrAlreadyCompleted
		}
		return challenge.Completion{}, errors.Wrap(err, "inserting challenge completion")
	}
	return c, nil
}
