package reward

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
	// errors
	ErrNotFound = core.NewNotFoundError("reward")

	errNotApproved = "gymnast is not approved"
	errInactive    = "reward is not available"
)

type (
	Repository interface {
		CreateReward(ctx context.Context, r Reward) (Reward, error)
		GetRewardByID(ctx context.Context, id string) (Reward, error)
		// QueryRewards lists rewards by ascending cost.
		QueryRewards(ctx context.Context, activeOnly bool) ([]Reward, error)
		CreateRedemption(ctx context.Context, r Redemption) (Redemption, error)
	}

	Service struct {
		repo     Repository
		gymnasts gymnast.Repository
		gate     *gym.Gate
		tx       core.Transactor
	}
)

func NewService(repo Repository, gymnasts gymnast.Repository, gate *gym.Gate, tx core.Transactor) *Service {
	return &Service{repo: repo, gymnasts: gymnasts, gate: gate, tx: tx}
}

// Create adds a reward to the league catalog. Admins only.
func (svc *Service) Create(ctx context.Context, actor user.User, nr NewReward) (Reward, error) {
	if !actor.IsAdmin() {
		return Reward{}, core.ErrPermissionDenied
	}
	nr.Clean()
	r, err := svc.repo.CreateReward(ctx, Reward{
		ID:          uuid.NewString(),
		Name:        nr.Name,
		Description: nr.Description,
		PointCost:   nr.PointCost,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	})
	return r, errors.Wrap(err, "inserting reward")
}

// Query lists available rewards; admins see the whole catalog.
func (svc *Service) Query(ctx context.Context, actor user.User) ([]Reward, error) {
	return svc.repo.QueryRewards(ctx, !actor.IsAdmin())
}

// Redeem spends the gymnast's points on a reward. The gymnast's own user or the gym's staff may redeem.
func (svc *Service) Redeem(ctx context.Context, actor user.User, rewardID string, nr NewRedemption) (Redemption, error) {
	r, err := svc.repo.GetRewardByID(ctx, rewardID)
	if err != nil {
		return Redemption{}, err
	}
	g, err := svc.gymnasts.GetGymnastByID(ctx, nr.GymnastID)
	if err != nil {
		return Redemption{}, err
	}
	if actor.IsZero() || g.UserID != actor.ID {
		if err := svc.gate.Authorize(ctx, actor, g.GymID); err != nil {
			return Redemption{}, err
		}
	}
	if !g.Approved {
		return Redemption{}, core.NewValidationError(nil, core.FieldError{Field: "gymnastId", Error: errNotApproved})
	}
	if !r.Active {
		return Redemption{}, core.NewValidationError(nil, core.FieldError{Field: "rewardId", Error: errInactive})
	}

	var red Redemption
	err = svc.tx.Transact(ctx, func(ctx context.Context) error {
		if _, err := svc.gymnasts.AddPoints(ctx, g.ID, -r.PointCost); err != nil {
			if errors.Cause(err) == gymnast.ErrNegativePoints {
				return core.NewValidationError(nil, core.FieldError{Field: "points", Error: gymnast.ErrNegativePoints.Error()})
			}
			return errors.Wrap(err, "spending points")
		}
		var err error
		red, err = svc.repo.CreateRedemption(ctx, Redemption{
			ID:         uuid.NewString(),
			RewardID:   r.ID,
			GymnastID:  g.ID,
			PointCost:  r.PointCost,
			RedeemedBy: actor.ID,
			RedeemedAt: time.Now().UTC(),
		})
		return errors.Wrap(err, "inserting redemption")
	})
	if err != nil {
		return Redemption{}, err
	}
	return red, nil
}
