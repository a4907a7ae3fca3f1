package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
)

var _ gym.Repository = (*gymRepository)(nil)

type gymRepository struct {
	db *DB
}

func NewGymRepository(db *DB) gym.Repository {
	return &gymRepository{db: db}
}

func coachKey(userID, gymID string) string {
	return userID + "|" + gymID
}

func (repo *gymRepository) CreateGym(ctx context.Context, g gym.Gym) (gym.Gym, error) {
	err := repo.db.write(ctx, func(s *state) error {
		for _, existing := range s.gyms.rows {
			if existing.Email == g.Email {
				return core.NewConflictError("email", "a gym with this email already exists")
			}
		}
		s.gyms.insert(g.ID, g, repo.db.nextSeq())
		return nil
	})
	if err != nil {
		return gym.Gym{}, err
	}
	return g, nil
}

func (repo *gymRepository) GetGymByID(_ context.Context, id string) (gym.Gym, error) {
	var g gym.Gym
	err := repo.db.read(func(s *state) error {
		found, ok := s.gyms.get(id)
		if !ok {
			return gym.ErrNotFound
		}
		g = found
		return nil
	})
	return g, err
}

func (repo *gymRepository) GymEmailExists(_ context.Context, email string) (bool, error) {
	var exists bool
	_ = repo.db.read(func(s *state) error {
		for _, g := range s.gyms.rows {
			if g.Email == email {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, nil
}

func (repo *gymRepository) QueryGyms(_ context.Context, filter gym.QueryFilter) ([]gym.Gym, error) {
	search := strings.ToLower(filter.Search)
	city := strings.ToLower(filter.City)
	var gyms []gym.Gym
	_ = repo.db.read(func(s *state) error {
		gyms = s.gyms.list(func(g gym.Gym) bool {
			if search != "" && !strings.Contains(strings.ToLower(g.Name), search) {
				return false
			}
			if city != "" && strings.ToLower(g.City) != city {
				return false
			}
			return filter.Approved == nil || g.Approved == *filter.Approved
		})
		return nil
	})
	return gyms, nil
}

func (repo *gymRepository) UpdateGym(ctx context.Context, g gym.Gym) (gym.Gym, error) {
	err := repo.db.write(ctx, func(s *state) error {
		if !s.gyms.update(g.ID, g) {
			return gym.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return gym.Gym{}, err
	}
	return g, nil
}

func (repo *gymRepository) AddCoach(ctx context.Context, assoc gym.CoachAssociation) (gym.CoachAssociation, error) {
	err := repo.db.write(ctx, func(s *state) error {
		key := coachKey(assoc.UserID, assoc.GymID)
		if existing, ok := s.coaches.get(key); ok {
			assoc.CreatedAt = existing.CreatedAt
		}
		s.coaches.insert(key, assoc, repo.db.nextSeq())
		return nil
	})
	return assoc, err
}

func (repo *gymRepository) RemoveCoach(ctx context.Context, userID, gymID string) error {
	return repo.db.write(ctx, func(s *state) error {
		key := coachKey(userID, gymID)
		if _, ok := s.coaches.get(key); !ok {
			return gym.ErrNotAssociated
		}
		s.coaches.delete(key)
		return nil
	})
}

func (repo *gymRepository) GetCoachAssociation(_ context.Context, userID, gymID string) (gym.CoachAssociation, error) {
	var assoc gym.CoachAssociation
	err := repo.db.read(func(s *state) error {
		found, ok := s.coaches.get(coachKey(userID, gymID))
		if !ok {
			return gym.ErrNotAssociated
		}
		assoc = found
		return nil
	})
	return assoc, err
}

func (repo *gymRepository) QueryCoaches(_ context.Context, gymID string) ([]gym.Coach, error) {
	var coaches []gym.Coach
	_ = repo.db.read(func(s *state) error {
		assocs := s.coaches.list(func(a gym.CoachAssociation) bool { return a.GymID == gymID })
		coaches = make([]gym.Coach, 0, len(assocs))
		for _, a := range assocs {
			usr, ok := s.users.get(a.UserID)
			if !ok {
				continue
			}
			coaches = append(coaches, gym.Coach{CoachAssociation: a, Name: usr.Name, Email: usr.Email, Role: usr.Role})
		}
		return nil
	})
	return coaches, nil
}
