package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gymleague/core/registration"
)

const requestColumns = `id, gym_id, status, ` + profileColumns + `, reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

var _ registration.Repository = (*registrationRepository)(nil)

type (
	requestRow struct {
		ID     string `db:"id"`
		GymID  string `db:"gym_id"`
		Status string `db:"status"`
		profile
		ReviewedBy      null.String `db:"reviewed_by"`
		ReviewedAt      null.Time   `db:"reviewed_at"`
		RejectionReason null.String `db:"rejection_reason"`
		CreatedAt       time.Time   `db:"created_at"`
		UpdatedAt       time.Time   `db:"updated_at"`
	}

	registrationRepository struct {
		db *sqlx.DB
	}
)

func (row requestRow) toModel() registration.Request {
	return registration.Request{
		ID:              row.ID,
		GymID:           row.GymID,
		Status:          row.Status,
		NewGymnast:      row.profile.toModel(),
		ReviewedBy:      row.ReviewedBy.String,
		ReviewedAt:      row.ReviewedAt.Ptr(),
		RejectionReason: row.RejectionReason.String,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func NewRegistrationRepository(db *sqlx.DB) registration.Repository {
	return &registrationRepository{db: db}
}

func (repo *registrationRepository) CreateRequest(ctx context.Context, req registration.Request) (registration.Request, error) {
	p, err := newProfile(req.NewGymnast)
	if err != nil {
		return registration.Request{}, err
	}
	row := requestRow{
		ID:              req.ID,
		GymID:           req.GymID,
		Status:          req.Status,
		profile:         p,
		ReviewedBy:      optional(req.ReviewedBy),
		ReviewedAt:      null.TimeFromPtr(req.ReviewedAt),
		RejectionReason: optional(req.RejectionReason),
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
	q := `INSERT INTO registration_requests (` + requestColumns + `)
		VALUES (:id, :gym_id, :status, ` + profileValues + `, :reviewed_by, :reviewed_at, :rejection_reason, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row); err != nil {
		return registration.Request{}, errors.Wrap(err, "inserting registration request")
	}
	return row.toModel(), nil
}

func (repo *registrationRepository) GetRequestByID(ctx context.Context, id string) (registration.Request, error) {
	var row requestRow
	q := `SELECT ` + requestColumns + ` FROM registration_requests WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return registration.Request{}, registration.ErrNotFound
		}
		return registration.Request{}, errors.Wrap(err, "selecting registration request")
	}
	return row.toModel(), nil
}

func (repo *registrationRepository) QueryRequests(ctx context.Context, gymID, status string) ([]registration.Request, error) {
	var w where
	w.add("gym_id = ?", gymID)
	if status != "" {
		w.add("status = ?", status)
	}

	var rows []requestRow
	q := `SELECT ` + requestColumns + ` FROM registration_requests` + w.String() + ` ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting registration requests")
	}

	reqs := make([]registration.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toModel())
	}
	return reqs, nil
}

func (repo *registrationRepository) Resolve(
	ctx context.Context,
	id, status, reviewerID, reason string,
	at time.Time,
) (registration.Request, error) {
	var row requestRow
	q := `UPDATE registration_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5, updated_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + requestColumns
	err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id, status, optional(reviewerID), at, optional(reason))
	if err == nil {
		return row.toModel(), nil
	}
	if errors.Cause(err) != sql.ErrNoRows {
		return registration.Request{}, errors.Wrap(err, "resolving registration request")
	}
	if _, err := repo.GetRequestByID(ctx, id); err != nil {
		return registration.Request{}, err
	}
	return registration.Request{}, registration.ErrNotPending
}
