package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/gymleague/core/registration"
)

var _ registration.Repository = (*registrationRepository)(nil)

type registrationRepository struct {
	db *DB
}

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db}
}

func (repo *registrationRepository) CreateRequest(ctx context.Context, req registration.Request) (registration.Request, error) {
	err := repo.db.write(ctx, func(s *state) error {
		s.requests.insert(req.ID, req, repo.db.nextSeq())
		return nil
	})
	return req, err
}

func (repo *registrationRepository) GetRequestByID(_ context.Context, id string) (registration.Request, error) {
	var req registration.Request
	err := repo.db.read(func(s *state) error {
		found, ok := s.requests.get(id)
		if !ok {
			return registration.ErrNotFound
		}
		req = found
		return nil
	})
	return req, err
}

func (repo *registrationRepository) QueryRequests(_ context.Context, gymID, status string) ([]registration.Request, error) {
	var reqs []registration.Request
	_ = repo.db.read(func(s *state) error {
		reqs = s.requests.list(func(r registration.Request) bool {
			return r.GymID == gymID && (status == "" || r.Status == status)
		})
		return nil
	})
	return reversed(reqs), nil
}

func (repo *registrationRepository) Resolve(
	ctx context.Context,
	id, status, reviewerID, reason string,
	at time.Time,
) (registration.Request, error) {
	var req registration.Request
	err := repo.db.write(ctx, func(s *state) error {
		found, ok := s.requests.get(id)
		if !ok {
			return registration.ErrNotFound
		}
		if !found.IsPending() {
			return registration.ErrNotPending
		}
		found.Status = status
		found.ReviewedBy = reviewerID
		found.ReviewedAt = &at
		found.RejectionReason = reason
		found.UpdatedAt = at
		s.requests.update(id, found)
		req = found
		return nil
	})
	return req, err
}
