package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
)

const gymColumns = "id, name, city, email, approved, membership_paid, allow_self_registration, created_at, updated_at"

var _ gym.Repository = (*gymRepository)(nil)

type gymRepository struct {
	db *sqlx.DB
}

func NewGymRepository(db *sqlx.DB) gym.Repository {
	return &gymRepository{db: db}
}

func (repo *gymRepository) CreateGym(ctx context.Context, g gym.Gym) (gym.Gym, error) {
	q := `INSERT INTO gyms (` + gymColumns + `)
		VALUES (:id, :name, :city, :email, :approved, :membership_paid, :allow_self_registration, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, g); err != nil {
		if isUniqueViolation(err) {
			return gym.Gym{}, core.NewConflictError("email", "a gym with this email already exists")
		}
		return gym.Gym{}, errors.Wrap(err, "inserting gym")
	}
	return g, nil
}

func (repo *gymRepository) GetGymByID(ctx context.Context, id string) (gym.Gym, error) {
	var g gym.Gym
	q := `SELECT ` + gymColumns + ` FROM gyms WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &g, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return gym.Gym{}, gym.ErrNotFound
		}
		return gym.Gym{}, errors.Wrap(err, "selecting gym")
	}
	return g, nil
}

func (repo *gymRepository) GymEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM gyms WHERE email = $1)`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &exists, q, email); err != nil {
		return false, errors.Wrap(err, "checking gym email")
	}
	return exists, nil
}

func (repo *gymRepository) QueryGyms(ctx context.Context, filter gym.QueryFilter) ([]gym.Gym, error) {
	var w where
	if filter.Search != "" {
		w.add("name ILIKE ?", likePattern(filter.Search))
	}
	if filter.City != "" {
		w.add("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.Approved != nil {
		w.add("approved = ?", *filter.Approved)
	}

	gyms := make([]gym.Gym, 0)
	q := `SELECT ` + gymColumns + ` FROM gyms` + w.String() + ` ORDER BY created_at`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &gyms, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting gyms")
	}
	return gyms, nil
}

func (repo *gymRepository) UpdateGym(ctx context.Context, g gym.Gym) (gym.Gym, error) {
	q := `UPDATE gyms SET name = :name, city = :city, approved = :approved, membership_paid = :membership_paid,
		allow_self_registration = :allow_self_registration, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, g)
	if err != nil {
		return gym.Gym{}, errors.Wrap(err, "updating gym")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gym.Gym{}, gym.ErrNotFound
	}
	return g, nil
}

func (repo *gymRepository) AddCoach(ctx context.Context, assoc gym.CoachAssociation) (gym.CoachAssociation, error) {
	q := `INSERT INTO gym_coaches (user_id, gym_id, is_admin, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, gym_id) DO UPDATE SET is_admin = EXCLUDED.is_admin
		RETURNING user_id, gym_id, is_admin, created_at`
	var saved gym.CoachAssociation
	err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &saved, q, assoc.UserID, assoc.GymID, assoc.IsAdmin, assoc.CreatedAt)
	if err != nil {
		return gym.CoachAssociation{}, errors.Wrap(err, "upserting coach")
	}
	return saved, nil
}

func (repo *gymRepository) RemoveCoach(ctx context.Context, userID, gymID string) error {
	res, err := getExec(ctx, repo.db).ExecContext(ctx, `DELETE FROM gym_coaches WHERE user_id = $1 AND gym_id = $2`, userID, gymID)
	if err != nil {
		return errors.Wrap(err, "deleting coach")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gym.ErrNotAssociated
	}
	return nil
}

func (repo *gymRepository) GetCoachAssociation(ctx context.Context, userID, gymID string) (gym.CoachAssociation, error) {
	var assoc gym.CoachAssociation
	q := `SELECT user_id, gym_id, is_admin, created_at FROM gym_coaches WHERE user_id = $1 AND gym_id = $2`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &assoc, q, userID, gymID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return gym.CoachAssociation{}, gym.ErrNotAssociated
		}
		return gym.CoachAssociation{}, errors.Wrap(err, "selecting coach association")
	}
	return assoc, nil
}

func (repo *gymRepository) QueryCoaches(ctx context.Context, gymID string) ([]gym.Coach, error) {
	coaches := make([]gym.Coach, 0)
	q := `SELECT c.user_id, c.gym_id, c.is_admin, c.created_at, u.name, u.email, u.role
		FROM gym_coaches c JOIN users u ON u.id = c.user_id
		WHERE c.gym_id = $1 ORDER BY c.created_at`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &coaches, q, gymID); err != nil {
		return nil, errors.Wrap(err, "selecting coaches")
	}
	return coaches, nil
}
