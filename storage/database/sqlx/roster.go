package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gymleague/core/roster"
)

const uploadColumns = `id, gym_id, uploaded_by, filename, status, total_rows, processed_rows, error_rows, errors, created_at, updated_at`

var _ roster.Repository = (*rosterRepository)(nil)

type (
	uploadRow struct {
		ID            string    `db:"id"`
		GymID         string    `db:"gym_id"`
		UploadedBy    string    `db:"uploaded_by"`
		Filename      string    `db:"filename"`
		Status        string    `db:"status"`
		TotalRows     int       `db:"total_rows"`
		ProcessedRows int       `db:"processed_rows"`
		ErrorRows     int       `db:"error_rows"`
		Errors        null.JSON `db:"errors"`
		CreatedAt     time.Time `db:"created_at"`
		UpdatedAt     time.Time `db:"updated_at"`
	}

	rosterRepository struct {
		db *sqlx.DB
	}
)

func newUploadRow(u roster.Upload) (uploadRow, error) {
	row := uploadRow{
		ID:            u.ID,
		GymID:         u.GymID,
		UploadedBy:    u.UploadedBy,
		Filename:      u.Filename,
		Status:        u.Status,
		TotalRows:     u.TotalRows,
		ProcessedRows: u.ProcessedRows,
		ErrorRows:     u.ErrorRows,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	errs := u.Errors
	if errs == nil {
		errs = []roster.RowError{}
	}
	if err := row.Errors.Marshal(errs); err != nil {
		return uploadRow{}, errors.Wrap(err, "encoding row errors")
	}
	return row, nil
}

func (row uploadRow) toModel() (roster.Upload, error) {
	u := roster.Upload{
		ID:            row.ID,
		GymID:         row.GymID,
		UploadedBy:    row.UploadedBy,
		Filename:      row.Filename,
		Status:        row.Status,
		TotalRows:     row.TotalRows,
		ProcessedRows: row.ProcessedRows,
		ErrorRows:     row.ErrorRows,
		Errors:        []roster.RowError{},
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Errors.Valid {
		if err := row.Errors.Unmarshal(&u.Errors); err != nil {
			return roster.Upload{}, errors.Wrap(err, "decoding row errors")
		}
	}
	return u, nil
}

func NewRosterRepository(db *sqlx.DB) roster.Repository {
	return &rosterRepository{db: db}
}

func (repo *rosterRepository) CreateUpload(ctx context.Context, u roster.Upload) (roster.Upload, error) {
	row, err := newUploadRow(u)
	if err != nil {
		return roster.Upload{}, err
	}
	q := `INSERT INTO roster_uploads (` + uploadColumns + `) VALUES (:id, :gym_id, :uploaded_by, :filename, :status,
		:total_rows, :processed_rows, :error_rows, :errors, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row); err != nil {
		return roster.Upload{}, errors.Wrap(err, "inserting roster upload")
	}
	return row.toModel()
}

func (repo *rosterRepository) GetUploadByID(ctx context.Context, id string) (roster.Upload, error) {
	var row uploadRow
	q := `SELECT ` + uploadColumns + ` FROM roster_uploads WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return roster.Upload{}, roster.ErrNotFound
		}
		return roster.Upload{}, errors.Wrap(err, "selecting roster upload")
	}
	return row.toModel()
}

func (repo *rosterRepository) QueryUploads(ctx context.Context, gymID string) ([]roster.Upload, error) {
	var rows []uploadRow
	q := `SELECT ` + uploadColumns + ` FROM roster_uploads WHERE gym_id = $1 ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &rows, q, gymID); err != nil {
		return nil, errors.Wrap(err, "selecting roster uploads")
	}

	uploads := make([]roster.Upload, 0, len(rows))
	for _, row := range rows {
		u, err := row.toModel()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func (repo *rosterRepository) StartProcessing(ctx context.Context, id string, totalRows int, at time.Time) (roster.Upload, error) {
	var row uploadRow
	q := `UPDATE roster_uploads SET status = 'processing', total_rows = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + uploadColumns
	err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id, totalRows, at)
	if err == nil {
		return row.toModel()
	}
	if errors.Cause(err) != sql.ErrNoRows {
		return roster.Upload{}, errors.Wrap(err, "starting roster processing")
	}
	if _, err := repo.GetUploadByID(ctx, id); err != nil {
		return roster.Upload{}, err
	}
	return roster.Upload{}, roster.ErrNotPending
}

func (repo *rosterRepository) UpdateUpload(ctx context.Context, u roster.Upload) (roster.Upload, error) {
	row, err := newUploadRow(u)
	if err != nil {
		return roster.Upload{}, err
	}
	q := `UPDATE roster_uploads SET status = :status, total_rows = :total_rows, processed_rows = :processed_rows,
		error_rows = :error_rows, errors = :errors, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row)
	if err != nil {
		return roster.Upload{}, errors.Wrap(err, "updating roster upload")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return roster.Upload{}, roster.ErrNotFound
	}
	return row.toModel()
}
