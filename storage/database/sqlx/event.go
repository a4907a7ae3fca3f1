package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/event"
)

const eventColumns = `id, gym_id, name, location, start_date, end_date, registration_opens, registration_closes,
	approved, sessions, created_by, created_at`

var _ event.Repository = (*eventRepository)(nil)

type (
	eventRow struct {
		ID                 string    `db:"id"`
		GymID              string    `db:"gym_id"`
		Name               string    `db:"name"`
		Location           string    `db:"location"`
		StartDate          time.Time `db:"start_date"`
		EndDate            time.Time `db:"end_date"`
		RegistrationOpens  time.Time `db:"registration_opens"`
		RegistrationCloses time.Time `db:"registration_closes"`
		Approved           bool      `db:"approved"`
		Sessions           null.JSON `db:"sessions"`
		CreatedBy          string    `db:"created_by"`
		CreatedAt          time.Time `db:"created_at"`
	}

	eventRepository struct {
		db *sqlx.DB
	}
)

func newEventRow(e event.Event) (eventRow, error) {
	row := eventRow{
		ID:        e.ID,
		GymID:     e.GymID,
		Name:      e.Name,
		Location:  e.Location,
		Approved:  e.Approved,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
	}

	dates := []struct {
		dst *time.Time
		src string
	}{
		{&row.StartDate, e.StartDate},
		{&row.EndDate, e.EndDate},
		{&row.RegistrationOpens, e.RegistrationOpens},
		{&row.RegistrationCloses, e.RegistrationCloses},
	}
	for _, d := range dates {
		t, err := core.ParseDate(d.src)
		if err != nil {
			return eventRow{}, errors.Wrap(err, "parsing event date")
		}
		*d.dst = t
	}

	sessions := e.Sessions
	if sessions == nil {
		sessions = []event.Session{}
	}
	if err := row.Sessions.Marshal(sessions); err != nil {
		return eventRow{}, errors.Wrap(err, "encoding sessions")
	}
	return row, nil
}

func (row eventRow) toModel() (event.Event, error) {
	e := event.Event{
		ID:                 row.ID,
		GymID:              row.GymID,
		Name:               row.Name,
		Location:           row.Location,
		StartDate:          row.StartDate.Format(core.DateLayout),
		EndDate:            row.EndDate.Format(core.DateLayout),
		RegistrationOpens:  row.RegistrationOpens.Format(core.DateLayout),
		RegistrationCloses: row.RegistrationCloses.Format(core.DateLayout),
		Approved:           row.Approved,
		Sessions:           []event.Session{},
		CreatedBy:          row.CreatedBy,
		CreatedAt:          row.CreatedAt,
	}
	if row.Sessions.Valid {
		if err := row.Sessions.Unmarshal(&e.Sessions); err != nil {
			return event.Event{}, errors.Wrap(err, "decoding sessions")
		}
	}
	return e, nil
}

func NewEventRepository(db *sqlx.DB) event.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	row, err := newEventRow(e)
	if err != nil {
		return event.Event{}, err
	}
	q := `INSERT INTO events (` + eventColumns + `) VALUES (:id, :gym_id, :name, :location, :start_date, :end_date,
		:registration_opens, :registration_closes, :approved, :sessions, :created_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return row.toModel()
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	var row eventRow
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, errors.Wrap(err, "selecting event")
	}
	return row.toModel()
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.RepoFilter) ([]event.Event, error) {
	var w where
	if filter.GymID != "" {
		w.add("gym_id = ?", filter.GymID)
	}
	if filter.ApprovedOnly {
		if filter.IncludePendingOf != "" {
			w.add("(approved OR gym_id = ?)", filter.IncludePendingOf)
		} else {
			w.addRaw("approved")
		}
	}

	var rows []eventRow
	q := `SELECT ` + eventColumns + ` FROM events` + w.String() + ` ORDER BY start_date, created_at`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting events")
	}

	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	row, err := newEventRow(e)
	if err != nil {
		return event.Event{}, err
	}
	q := `UPDATE events SET name = :name, location = :location, start_date = :start_date, end_date = :end_date,
		registration_opens = :registration_opens, registration_closes = :registration_closes,
		approved = :approved, sessions = :sessions WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, row)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return row.toModel()
}

func (repo *eventRepository) CreateRegistration(ctx context.Context, r event.Registration) (event.Registration, error) {
	q := `INSERT INTO event_registrations (event_id, gymnast_id, registered_by, created_at)
		VALUES (:event_id, :gymnast_id, :registered_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, r); err != nil {
		if isUniqueViolation(err) {
			return event.Registration{}, event.ErrAlreadyRegistered
		}
		return event.Registration{}, errors.Wrap(err, "inserting event registration")
	}
	return r, nil
}

func (repo *eventRepository) QueryRegistrations(ctx context.Context, eventID string) ([]event.Registration, error) {
	regs := make([]event.Registration, 0)
	q := `SELECT event_id, gymnast_id, registered_by, created_at FROM event_registrations WHERE event_id = $1 ORDER BY created_at`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &regs, q, eventID); err != nil {
		return nil, errors.Wrap(err, "selecting event registrations")
	}
	return regs, nil
}
