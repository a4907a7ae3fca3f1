package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/gymleague/core/gymnast"
)

var _ gymnast.Repository = (*gymnastRepository)(nil)

type gymnastRepository struct {
	db *DB
}

func NewGymnastRepository(db *DB) gymnast.Repository {
	return &gymnastRepository{db: db}
}

func (repo *gymnastRepository) CreateGymnast(ctx context.Context, g gymnast.Gymnast) (gymnast.Gymnast, error) {
	err := repo.db.write(ctx, func(s *state) error {
		s.gymnasts.insert(g.ID, g, repo.db.nextSeq())
		return nil
	})
	return g, err
}

func (repo *gymnastRepository) GetGymnastByID(_ context.Context, id string) (gymnast.Gymnast, error) {
	var g gymnast.Gymnast
	err := repo.db.read(func(s *state) error {
		found, ok := s.gymnasts.get(id)
		if !ok {
			return gymnast.ErrNotFound
		}
		g = found
		return nil
	})
	return g, err
}

func (repo *gymnastRepository) QueryGymnasts(_ context.Context, filter gymnast.QueryFilter) ([]gymnast.Gymnast, error) {
	search := strings.ToLower(filter.Search)
	var gymnasts []gymnast.Gymnast
	_ = repo.db.read(func(s *state) error {
		gymnasts = s.gymnasts.list(func(g gymnast.Gymnast) bool {
			switch {
			case filter.GymID != "" && g.GymID != filter.GymID:
				return false
			case filter.Level != "" && g.Level != filter.Level:
				return false
			case filter.Approved != nil && g.Approved != *filter.Approved:
				return false
			case search != "" && !strings.Contains(strings.ToLower(g.FullName()), search):
				return false
			}
			return true
		})
		return nil
	})
	return gymnasts, nil
}

func (repo *gymnastRepository) UpdateGymnast(ctx context.Context, g gymnast.Gymnast) (gymnast.Gymnast, error) {
	err := repo.db.write(ctx, func(s *state) error {
		current, ok := s.gymnasts.get(g.ID)
		if !ok {
			return gymnast.ErrNotFound
		}
		g.Points = current.Points // points only move through AddPoints
		s.gymnasts.update(g.ID, g)
		return nil
	})
	if err != nil {
		return gymnast.Gymnast{}, err
	}
	return g, nil
}

func (repo *gymnastRepository) AddPoints(ctx context.Context, id string, delta int) (gymnast.Gymnast, error) {
	var g gymnast.Gymnast
	err := repo.db.write(ctx, func(s *state) error {
		found, ok := s.gymnasts.get(id)
		if !ok {
			return gymnast.ErrNotFound
		}
		if found.Points+delta < 0 {
			return gymnast.ErrNegativePoints
		}
		found.Points += delta
		found.UpdatedAt = time.Now().UTC()
		s.gymnasts.update(id, found)
		g = found
		return nil
	})
	return g, err
}

func (repo *gymnastRepository) Leaderboard(_ context.Context, filter gymnast.LeaderboardFilter, limit int) ([]gymnast.Gymnast, error) {
	var gymnasts []gymnast.Gymnast
	_ = repo.db.read(func(s *state) error {
		gymnasts = s.gymnasts.list(func(g gymnast.Gymnast) bool {
			switch {
			case !g.Approved:
				return false
			case filter.Level != "" && g.Level != filter.Level:
				return false
			case filter.GymID != "" && g.GymID != filter.GymID:
				return false
			}
			return true
		})
		return nil
	})

	sort.SliceStable(gymnasts, func(i, j int) bool { return gymnasts[i].Points > gymnasts[j].Points })
	if limit > 0 && len(gymnasts) > limit {
		gymnasts = gymnasts[:limit]
	}
	return gymnasts, nil
}
