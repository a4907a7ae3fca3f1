package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/reward"
)

const rewardColumns = `id, name, description, point_cost, active, created_at`

var _ reward.Repository = (*rewardRepository)(nil)

type rewardRepository struct {
	db *sqlx.DB
}

func NewRewardRepository(db *sqlx.DB) reward.Repository {
	return &rewardRepository{db: db}
}

func (repo *rewardRepository) CreateReward(ctx context.Context, r reward.Reward) (reward.Reward, error) {
	q := `INSERT INTO rewards (` + rewardColumns + `) VALUES (:id, :name, :description, :point_cost, :active, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, r); err != nil {
		return reward.Reward{}, errors.Wrap(err, "inserting reward")
	}
	return r, nil
}

func (repo *rewardRepository) GetRewardByID(ctx context.Context, id string) (reward.Reward, error) {
	var r reward.Reward
	q := `SELECT ` + rewardColumns + ` FROM rewards WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &r, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return reward.Reward{}, reward.ErrNotFound
		}
		return reward.Reward{}, errors.Wrap(err, "selecting reward")
	}
	return r, nil
}

func (repo *rewardRepository) QueryRewards(ctx context.Context, activeOnly bool) ([]reward.Reward, error) {
	var w where
	if activeOnly {
		w.addRaw("active")
	}
	rewards := make([]reward.Reward, 0)
	q := `SELECT ` + rewardColumns + ` FROM rewards` + w.String() + ` ORDER BY point_cost, created_at`
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &rewards, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting rewards")
	}
	return rewards, nil
}

func (repo *rewardRepository) CreateRedemption(ctx context.Context, r reward.Redemption) (reward.Redemption, error) {
	q := `INSERT INTO reward_redemptions (id, reward_id, gymnast_id, point_cost, redeemed_by, redeemed_at)
		VALUES (:id, :reward_id, :gymnast_id, :point_cost, :redeemed_by, :redeemed_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, r); err != nil {
		return reward.Redemption{}, errors.Wrap(err, "inserting redemption")
	}
	return r, nil
}
