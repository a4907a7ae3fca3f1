package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/user"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound = core.NewNotFoundError("event")
	// ErrAlreadyRegistered is returned by Repository.CreateRegistration for a duplicate (event, gymnast).
	ErrAlreadyRegistered = errors.New("gymnast already registered to this event")

	errNotApproved      = "gymnast is not approved"
	errEventNotApproved = "event is not approved yet"
	errWindowClosed     = "registration is closed"
	errWrongLevel       = "no session accepts the gymnast's level"
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, e Event) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		// QueryEvents lists events by start date.
		QueryEvents(ctx context.Context, filter RepoFilter) ([]Event, error)
		UpdateEvent(ctx context.Context, e Event) (Event, error)
		CreateRegistration(ctx context.Context, r Registration) (Registration, error)
		QueryRegistrations(ctx context.Context, eventID string) ([]Registration, error)
	}

	Service struct {
		repo     Repository
		gymnasts gymnast.Repository
		gyms     gym.Repository
		gate     *gym.Gate
	}
)

func NewService(repo Repository, gymnasts gymnast.Repository, gyms gym.Repository, gate *gym.Gate) *Service {
	return &Service{repo: repo, gymnasts: gymnasts, gyms: gyms, gate: gate}
}

// Create adds a pending event hosted by the gym. League admins approve it afterwards.
func (svc *Service) Create(ctx context.Context, actor user.User, ne NewEvent) (Event, error) {
	ne.Clean()
	if _, err := svc.gyms.GetGymByID(ctx, ne.GymID); err != nil {
		return Event{}, err
	}
	if err := svc.gate.Authorize(ctx, actor, ne.GymID); err != nil {
		return Event{}, err
	}
	if err := ne.checkDates(); err != nil {
		return Event{}, err
	}

	sessions := make([]Session, 0, len(ne.Sessions))
	for _, s := range ne.Sessions {
		levels := s.Levels
		if levels == nil {
			levels = []string{}
		}
		sessions = append(sessions, Session{ID: uuid.NewString(), Name: s.Name, StartsAt: s.StartsAt.UTC(), Levels: levels})
	}

	e, err := svc.repo.CreateEvent(ctx, Event{
		ID:                 uuid.NewString(),
		GymID:              ne.GymID,
		Name:               ne.Name,
		Location:           ne.Location,
		StartDate:          ne.StartDate,
		EndDate:            ne.EndDate,
		RegistrationOpens:  ne.RegistrationOpens,
		RegistrationCloses: ne.RegistrationCloses,
		Approved:           actor.IsAdmin(),
		Sessions:           sessions,
		CreatedBy:          actor.ID,
		CreatedAt:          time.Now().UTC(),
	})
	return e, errors.Wrap(err, "inserting event")
}

func (svc *Service) Approve(ctx context.Context, actor user.User, id string) (Event, error) {
	if !actor.IsAdmin() {
		return Event{}, core.ErrPermissionDenied
	}
	e, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if e.Approved {
		return e, nil
	}
	e.Approved = true
	return svc.repo.UpdateEvent(ctx, e)
}

// Query lists approved events. Admins see everything; gym staff also see their gym's pending events.
func (svc *Service) Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Event, error) {
	rf := RepoFilter{GymID: core.CleanString(filter.GymID), ApprovedOnly: !actor.IsAdmin()}
	if rf.ApprovedOnly && rf.GymID != "" {
		ok, err := svc.gate.CanActOnGym(ctx, actor, rf.GymID)
		if err != nil {
			return nil, err
		}
		if ok {
			rf.IncludePendingOf = rf.GymID
		}
	}
	return svc.repo.QueryEvents(ctx, rf)
}

// Register enters an approved gymnast into an approved event while its registration window is open.
func (svc *Service) Register(ctx context.Context, actor user.User, eventID string, nr NewRegistration) (Registration, error) {
	e, err := svc.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return Registration{}, err
	}
	g, err := svc.gymnasts.GetGymnastByID(ctx, nr.GymnastID)
	if err != nil {
		return Registration{}, err
	}
	if actor.IsZero() || g.UserID != actor.ID {
		if err := svc.gate.Authorize(ctx, actor, g.GymID); err != nil {
			return Registration{}, err
		}
	}

	fieldErr := func(field, msg string) error {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
	}
	switch {
	case !e.Approved:
		return Registration{}, fieldErr("eventId", errEventNotApproved)
	case !g.Approved:
		return Registration{}, fieldErr("gymnastId", errNotApproved)
	case !e.RegistrationOpen(nowFunc().UTC().Format(core.DateLayout)):
		return Registration{}, fieldErr("eventId", errWindowClosed)
	case !e.AcceptsLevel(g.Level):
		return Registration{}, fieldErr("gymnastId", errWrongLevel)
	}

	r, err := svc.repo.CreateRegistration(ctx, Registration{
		EventID:      e.ID,
		GymnastID:    g.ID,
		RegisteredBy: actor.ID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyRegistered {
			return Registration{}, core.NewConflictError("gymnastId", ErrAlreadyRegistered.Error())
		}
		return Registration{}, errors.Wrap(err, "inserting registration")
	}
	return r, nil
}

// QueryRegistrations lists an event's entries. Admins and the host gym's staff only.
func (svc *Service) QueryRegistrations(ctx context.Context, actor user.User, eventID string) ([]Registration, error) {
	e, err := svc.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := svc.gate.Authorize(ctx, actor, e.GymID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRegistrations(ctx, eventID)
}
