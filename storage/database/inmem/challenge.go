package inmemdb

import (
	"context"
	"slices"

	"github.com/trezcool/gymleague/core/challenge"
)

var _ challenge.Repository = (*challengeRepository)(nil)

type challengeRepository struct {
	db *DB
}

func NewChallengeRepository(db *DB) challenge.Repository {
	return &challengeRepository{db: db}
}

func (repo *challengeRepository) CreateChallenge(ctx context.Context, c challenge.Challenge) (challenge.Challenge, error) {
	c.TargetLevels = slices.Clone(c.TargetLevels)
	err := repo.db.write(ctx, func(s *state) error {
		s.challenges.insert(c.ID, c, repo.db.nextSeq())
		return nil
	})
	return c, err
}

func (repo *challengeRepository) GetChallengeByID(_ context.Context, id string) (challenge.Challenge, error) {
	var c challenge.Challenge
	err := repo.db.read(func(s *state) error {
		found, ok := s.challenges.get(id)
		if !ok {
			return challenge.ErrNotFound
		}
		c = found
		return nil
	})
	c.TargetLevels = slices.Clone(c.TargetLevels)
	return c, err
}

func (repo *challengeRepository) QueryChallenges(_ context.Context, filter challenge.RepoFilter) ([]challenge.Challenge, error) {
	var challenges []challenge.Challenge
	_ = repo.db.read(func(s *state) error {
		challenges = s.challenges.list(func(c challenge.Challenge) bool {
			if filter.GymID != "" && c.GymID != filter.GymID && !(filter.IncludeGlobal && c.GymID == "") {
				return false
			}
			if filter.Level != "" && !c.Targets(filter.Level) {
				return false
			}
			return !filter.ActiveOnly || c.Active
		})
		return nil
	})
	for i := range challenges {
		challenges[i].TargetLevels = slices.Clone(challenges[i].TargetLevels)
	}
	return reversed(challenges), nil
}

func (repo *challengeRepository) CreateCompletion(ctx context.Context, c challenge.Completion) (challenge.Completion, error) {
	err := repo.db.write(ctx, func(s *state) error {
		key := c.ChallengeID + "|" + c.GymnastID
		if _, ok := s.completions.get(key); ok {
			return challenge.ErrAlreadyCompleted
		}
		s.completions.insert(key, c, repo.db.nextSeq())
		return nil
	})
	return c, err
}
