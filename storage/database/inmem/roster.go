package inmemdb

import (
	"context"
	"slices"
	"time"

	"github.com/trezcool/gymleague/core/roster"
)

var _ roster.Repository = (*rosterRepository)(nil)

type rosterRepository struct {
	db *DB
}

func NewRosterRepository(db *DB) roster.Repository {
	return &rosterRepository{db: db}
}

// detach copies the row errors so that callers never share the stored backing array.
func detach(u roster.Upload) roster.Upload {
	u.Errors = slices.Clone(u.Errors)
	if u.Errors == nil {
		u.Errors = []roster.RowError{}
	}
	return u
}

func (repo *rosterRepository) CreateUpload(ctx context.Context, u roster.Upload) (roster.Upload, error) {
	u = detach(u)
	err := repo.db.write(ctx, func(s *state) error {
		s.uploads.insert(u.ID, u, repo.db.nextSeq())
		return nil
	})
	return detach(u), err
}

func (repo *rosterRepository) GetUploadByID(_ context.Context, id string) (roster.Upload, error) {
	var u roster.Upload
	err := repo.db.read(func(s *state) error {
		found, ok := s.uploads.get(id)
		if !ok {
			return roster.ErrNotFound
		}
		u = detach(found)
		return nil
	})
	return u, err
}

func (repo *rosterRepository) QueryUploads(_ context.Context, gymID string) ([]roster.Upload, error) {
	var uploads []roster.Upload
	_ = repo.db.read(func(s *state) error {
		uploads = s.uploads.list(func(u roster.Upload) bool { return u.GymID == gymID })
		return nil
	})
	for i := range uploads {
		uploads[i] = detach(uploads[i])
	}
	return reversed(uploads), nil
}

func (repo *rosterRepository) StartProcessing(ctx context.Context, id string, totalRows int, at time.Time) (roster.Upload, error) {
	var u roster.Upload
	err := repo.db.write(ctx, func(s *state) error {
		found, ok := s.uploads.get(id)
		if !ok {
			return roster.ErrNotFound
		}
		if found.Status != roster.StatusPending {
			return roster.ErrNotPending
		}
		found.Status = roster.StatusProcessing
		found.TotalRows = totalRows
		found.UpdatedAt = at
		s.uploads.update(id, found)
		u = detach(found)
		return nil
	})
	return u, err
}

func (repo *rosterRepository) UpdateUpload(ctx context.Context, u roster.Upload) (roster.Upload, error) {
	u = detach(u)
	err := repo.db.write(ctx, func(s *state) error {
		if !s.uploads.update(u.ID, u) {
			return roster.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return roster.Upload{}, err
	}
	return detach(u), nil
}
