package inmemdb

import (
	"context"
	"slices"
	"sort"

	"github.com/trezcool/gymleague/core/event"
)

var _ event.Repository = (*eventRepository)(nil)

type eventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db}
}

func copySessions(e event.Event) event.Event {
	sessions := make([]event.Session, len(e.Sessions))
	for i, s := range e.Sessions {
		s.Levels = slices.Clone(s.Levels)
		sessions[i] = s
	}
	e.Sessions = sessions
	return e
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	e = copySessions(e)
	err := repo.db.write(ctx, func(s *state) error {
		s.events.insert(e.ID, e, repo.db.nextSeq())
		return nil
	})
	return copySessions(e), err
}

func (repo *eventRepository) GetEventByID(_ context.Context, id string) (event.Event, error) {
	var e event.Event
	err := repo.db.read(func(s *state) error {
		found, ok := s.events.get(id)
		if !ok {
			return event.ErrNotFound
		}
		e = copySessions(found)
		return nil
	})
	return e, err
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter event.RepoFilter) ([]event.Event, error) {
	var events []event.Event
	_ = repo.db.read(func(s *state) error {
		events = s.events.list(func(e event.Event) bool {
			if filter.GymID != "" && e.GymID != filter.GymID {
				return false
			}
			return !filter.ApprovedOnly || e.Approved || (filter.IncludePendingOf != "" && e.GymID == filter.IncludePendingOf)
		})
		return nil
	})
	for i := range events {
		events[i] = copySessions(events[i])
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].StartDate < events[j].StartDate })
	return events, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	e = copySessions(e)
	err := repo.db.write(ctx, func(s *state) error {
		if !s.events.update(e.ID, e) {
			return event.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return event.Event{}, err
	}
	return copySessions(e), nil
}

func (repo *eventRepository) CreateRegistration(ctx context.Context, r event.Registration) (event.Registration, error) {
	err := repo.db.write(ctx, func(s *state) error {
		key := r.EventID + "|" + r.GymnastID
		if _, ok := s.eventEntries.get(key); ok {
			return event.ErrAlreadyRegistered
		}
		s.eventEntries.insert(key, r, repo.db.nextSeq())
		return nil
	})
	return r, err
}

func (repo *eventRepository) QueryRegistrations(_ context.Context, eventID string) ([]event.Registration, error) {
	var regs []event.Registration
	_ = repo.db.read(func(s *state) error {
		regs = s.eventEntries.list(func(r event.Registration) bool { return r.EventID == eventID })
		return nil
	})
	return regs, nil
}
