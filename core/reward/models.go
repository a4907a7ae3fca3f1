package reward

import (
	"time"

	"github.com/trezcool/gymleague/core"
)

type Reward struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	PointCost   int       `json:"pointCost" db:"point_cost"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"` // UTC
}

type Redemption struct {
	ID         string    `json:"id" db:"id"`
	RewardID   string    `json:"rewardId" db:"reward_id"`
	GymnastID  string    `json:"gymnastId" db:"gymnast_id"`
	PointCost  int       `json:"pointCost" db:"point_cost"`
	RedeemedBy string    `json:"redeemedBy" db:"redeemed_by"`
	RedeemedAt time.Time `json:"redeemedAt" db:"redeemed_at"` // UTC
}

type NewReward struct {
	Name        string `json:"name" validate:"required,notblank,max=150"`
	Description string `json:"description" validate:"max=2000"`
	PointCost   int    `json:"pointCost" validate:"required,gt=0"`
}

func (nr *NewReward) Clean() {
	nr.Name = core.CleanString(nr.Name)
	nr.Description = core.CleanString(nr.Description)
}

type NewRedemption struct {
	GymnastID string `json:"gymnastId" validate:"required"`
}
