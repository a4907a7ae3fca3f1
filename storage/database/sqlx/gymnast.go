package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gymnast"
)

const (
	profileColumns = `first_name, last_name, email, birth_date, level, type, parent_name, parent_email, parent_phone,
		emergency_contact_name, emergency_contact_phone, emergency_contact_relationship, medical_notes`
	profileValues = `:first_name, :last_name, :email, :birth_date, :level, :type, :parent_name, :parent_email, :parent_phone,
		:emergency_contact_name, :emergency_contact_phone, :emergency_contact_relationship, :medical_notes`
	gymnastColumns = `id, gym_id, user_id, ` + profileColumns + `, approved, points, created_at, updated_at`
)

var _ gymnast.Repository = (*gymnastRepository)(nil)

type (
	// profile holds the personal columns shared by gymnasts and registration requests.
	profile struct {
		FirstName                    string      `db:"first_name"`
		LastName                     string      `db:"last_name"`
		Email                        null.String `db:"email"`
		BirthDate                    time.Time   `db:"birth_date"`
		Level                        string      `db:"level"`
		Type                         string      `db:"type"`
		ParentName                   null.String `db:"parent_name"`
		ParentEmail                  null.String `db:"parent_email"`
		ParentPhone                  null.String `db:"parent_phone"`
		EmergencyContactName         null.String `db:"emergency_contact_name"`
		EmergencyContactPhone        null.String `db:"emergency_contact_phone"`
		EmergencyContactRelationship null.String `db:"emergency_contact_relationship"`
		MedicalNotes                 null.String `db:"medical_notes"`
	}

	gymnastRow struct {
		ID     string      `db:"id"`
		GymID  string      `db:"gym_id"`
		UserID null.String `db:"user_id"`
		profile
		Approved  bool      `db:"approved"`
		Points    int       `db:"points"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	gymnastRepository struct {
		db *sqlx.DB
	}
)

func optional(s string) null.String {
	return null.NewString(s, s != "")
}

func newProfile(ng gymnast.NewGymnast) (profile, error) {
	birthDate, err := core.ParseDate(ng.BirthDate)
	if err != nil {
		return profile{}, errors.Wrap(err, "parsing birth date")
	}
	return profile{
		FirstName:                    ng.FirstName,
		LastName:                     ng.LastName,
		Email:                        optional(ng.Email),
		BirthDate:                    birthDate,
		Level:                        ng.Level,
		Type:                         ng.Type,
		ParentName:                   optional(ng.ParentName),
		ParentEmail:                  optional(ng.ParentEmail),
		ParentPhone:                  optional(ng.ParentPhone),
		EmergencyContactName:         optional(ng.EmergencyContactName),
		EmergencyContactPhone:        optional(ng.EmergencyContactPhone),
		EmergencyContactRelationship: optional(ng.EmergencyContactRelationship),
		MedicalNotes:                 optional(ng.MedicalNotes),
	}, nil
}

func (p profile) toModel() gymnast.NewGymnast {
	return gymnast.NewGymnast{
		FirstName:                    p.FirstName,
		LastName:                     p.LastName,
		Email:                        p.Email.String,
		BirthDate:                    p.BirthDate.Format(core.DateLayout),
		Level:                        p.Level,
		Type:                         p.Type,
		ParentName:                   p.ParentName.String,
		ParentEmail:                  p.ParentEmail.String,
		ParentPhone:                  p.ParentPhone.String,
		EmergencyContactName:         p.EmergencyContactName.String,
		EmergencyContactPhone:        p.EmergencyContactPhone.String,
		EmergencyContactRelationship: p.EmergencyContactRelationship.String,
		MedicalNotes:                 p.MedicalNotes.String,
	}
}

func newGymnastRow(g gymnast.Gymnast) (gymnastRow, error) {
	p, err := newProfile(gymnast.NewGymnast{
		FirstName:                    g.FirstName,
		LastName:                     g.LastName,
		Email:                        g.Email,
		BirthDate:                    g.BirthDate,
		Level:                        g.Level,
		Type:                         g.Type,
		ParentName:                   g.ParentName,
		ParentEmail:                  g.ParentEmail,
		ParentPhone:                  g.ParentPhone,
		EmergencyContactName:         g.EmergencyContactName,
		EmergencyContactPhone:        g.EmergencyContactPhone,
		EmergencyContactRelationship: g.EmergencyContactRelationship,
		MedicalNotes:                 g.MedicalNotes,
	})
	if err != nil {
		return gymnastRow{}, err
	}
	return gymnastRow{
		ID:        g.ID,
		GymID:     g.GymID,
		UserID:    optional(g.UserID),
		profile:   p,
		Approved:  g.Approved,
		Points:    g.Points,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}, nil
}

func (row gymnastRow) toModel() gymnast.Gymnast {
	p := row.profile.toModel()
	return gymnast.Gymnast{
		ID:                           row.ID,
		GymID:                        row.GymID,
		UserID:                       row.UserID.String,
		FirstName:                    p.FirstName,
		LastName:                     p.LastName,
		Email:                        p.Email,
		BirthDate:                    p.BirthDate,
		Level:                        p.Level,
		Type:                         p.Type,
		ParentName:                   p.ParentName,
		ParentEmail:                  p.ParentEmail,
		ParentPhone:                  p.ParentPhone,
		EmergencyContactName:         p.EmergencyContactName,
		EmergencyContactPhone:        p.EmergencyContactPhone,
		EmergencyContactRelationship: p.EmergencyContactRelationship,
		MedicalNotes:                 p.MedicalNotes,
		Approved:                     row.Approved,
		Points:                       row.Points,
		CreatedAt:                    row.CreatedAt,
		UpdatedAt:                    row.UpdatedAt,
	}
}

func gymnastModels(rows []gymnastRow) []gymnast.Gymnast {
	gymnasts := make([]gymnast.Gymnast, 0, len(rows))
	for _, row := range rows {
		gymnasts = append(gymnasts, row.toModel())
	}
	return gymnasts
}

func NewGymnastRepository(db *sqlx.DB) gymnast.Repository {
	return &gymnastRepository{db: db}
}

func (repo *gymnastRepository) CreateGymnast(ctx context.Context, g gymnast.Gymnast) (gymnast.Gymnast, error) {
	row, err := newGymnastRow(g)
	if err != nil {
		return gymnast.Gymnast{}, err
	}
	q := `INSERT INTO gymnasts (` + gymnastColumns + `)
		VALUES (:id, :gym_id, :user_id, ` + profileValues + `, :approved, :points, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row); err != nil {
		return gymnast.Gymnast{}, errors.Wrap(err, "inserting gymnast")
	}
	return row.toModel(), nil
}

func (repo *gymnastRepository) GetGymnastByID(ctx context.Context, id string) (gymnast.Gymnast, error) {
	var row gymnastRow
	q := `SELECT ` + gymnastColumns + ` FROM gymnasts WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return gymnast.Gymnast{}, gymnast.ErrNotFound
		}
		return gymnast.Gymnast{}, errors.Wrap(err, "selecting gymnast")
	}
	return row.toModel(), nil
}

func (repo *gymnastRepository) QueryGymnasts(ctx context.Context, filter gymnast.QueryFilter) ([]gymnast.Gymnast, error) {
	var w where
	if filter.GymID != "" {
		w.add("gym_id = ?", filter.GymID)
	}
	if filter.Level != "" {
		w.add("level = ?", filter.Level)
	}
	if filter.Approved != nil {
		w.add("approved = ?", *filter.Approved)
	}
	if filter.Search != "" {
		w.add("(first_name || ' ' || last_name) ILIKE ?", likePattern(filter.Search))
	}

	var rows []gymnastRow
	q := `SELECT ` + gymnastColumns + ` FROM gymnasts` + w.String() + ` ORDER BY seq`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting gymnasts")
	}
	return gymnastModels(rows), nil
}

// UpdateGymnast saves the profile and approval; points only move through AddPoints.
func (repo *gymnastRepository) UpdateGymnast(ctx context.Context, g gymnast.Gymnast) (gymnast.Gymnast, error) {
	row, err := newGymnastRow(g)
	if err != nil {
		return gymnast.Gymnast{}, err
	}
	q := `UPDATE gymnasts SET user_id = :user_id, first_name = :first_name, last_name = :last_name, email = :email,
		birth_date = :birth_date, level = :level, type = :type, parent_name = :parent_name, parent_email = :parent_email,
		parent_phone = :parent_phone, emergency_contact_name = :emergency_contact_name,
		emergency_contact_phone = :emergency_contact_phone, emergency_contact_relationship = :emergency_contact_relationship,
		medical_notes = :medical_notes, approved = :approved, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row)
	if err != nil {
		return gymnast.Gymnast{}, errors.Wrap(err, "updating gymnast")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gymnast.Gymnast{}, gymnast.ErrNotFound
	}
	return repo.GetGymnastByID(ctx, g.ID)
}

func (repo *gymnastRepository) AddPoints(ctx context.Context, id string, delta int) (gymnast.Gymnast, error) {
	var row gymnastRow
	q := `UPDATE gymnasts SET points = points + $2, updated_at = $3
		WHERE id = $1 AND points + $2 >= 0
		RETURNING ` + gymnastColumns
	err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id, delta, time.Now().UTC())
	if err == nil {
		return row.toModel(), nil
	}
	if errors.Cause(err) != sql.ErrNoRows {
		return gymnast.Gymnast{}, errors.Wrap(err, "adding points")
	}
	if _, err := repo.GetGymnastByID(ctx, id); err != nil {
		return gymnast.Gymnast{}, err
	}
	return gymnast.Gymnast{}, gymnast.ErrNegativePoints
}

func (repo *gymnastRepository) Leaderboard(ctx context.Context, filter gymnast.LeaderboardFilter, limit int) ([]gymnast.Gymnast, error) {
	var w where
	w.addRaw("approved")
	if filter.Level != "" {
		w.add("level = ?", filter.Level)
	}
	if filter.GymID != "" {
		w.add("gym_id = ?", filter.GymID)
	}
	q := `SELECT ` + gymnastColumns + ` FROM gymnasts` + w.String() + ` ORDER BY points DESC, seq`
	if limit > 0 {
		q += ` LIMIT ` + w.placeholder(limit)
	}

	var rows []gymnastRow
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting leaderboard")
	}
	return gymnastModels(rows), nil
}
