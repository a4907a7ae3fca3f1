package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/gymleague/core/reward"
)

var _ reward.Repository = (*rewardRepository)(nil)

type rewardRepository struct {
	db *DB
}

func NewRewardRepository(db *DB) reward.Repository {
	return &rewardRepository{db: db}
}

func (repo *rewardRepository) CreateReward(ctx context.Context, r reward.Reward) (reward.Reward, error) {
	err := repo.db.write(ctx, func(s *state) error {
		s.rewards.insert(r.ID, r, repo.db.nextSeq())
		return nil
	})
	return r, err
}

func (repo *rewardRepository) GetRewardByID(_ context.Context, id string) (reward.Reward, error) {
	var r reward.Reward
	err := repo.db.read(func(s *state) error {
		found, ok := s.rewards.get(id)
		if !ok {
			return reward.ErrNotFound
		}
		r = found
		return nil
	})
	return r, err
}

func (repo *rewardRepository) QueryRewards(_ context.Context, activeOnly bool) ([]reward.Reward, error) {
	var rewards []reward.Reward
	_ = repo.db.read(func(s *state) error {
		rewards = s.rewards.list(func(r reward.Reward) bool { return !activeOnly || r.Active })
		return nil
	})
	sort.SliceStable(rewards, func(i, j int) bool { return rewards[i].PointCost < rewards[j].PointCost })
	return rewards, nil
}

func (repo *rewardRepository) CreateRedemption(ctx context.Context, r reward.Redemption) (reward.Redemption, error) {
	err := repo.db.write(ctx, func(s *state) error {
		s.redemptions.insert(r.ID, r, repo.db.nextSeq())
		return nil
	})
	return r, err
}
