package challenge

import (
	"time"

	"github.com/trezcool/gymleague/core"
)

type Challenge struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Points       int       `json:"points"`
	TargetLevels []string  `json:"targetLevels"`
	GymID        string    `json:"gymId,omitempty"` // empty for league-wide challenges
	CreatedBy    string    `json:"createdBy"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
}

func (c Challenge) Targets(level string) bool {
	for _, l := range c.TargetLevels {
		if l == level {
			return true
		}
	}
	return false
}

type Completion struct {
	ChallengeID string    `json:"challengeId" db:"challenge_id"`
	GymnastID   string    `json:"gymnastId" db:"gymnast_id"`
	Points      int       `json:"points" db:"points"`
	CompletedBy string    `json:"completedBy" db:"completed_by"`
	CompletedAt time.Time `json:"completedAt" db:"completed_at"` // UTC
}

type NewChallenge struct {
	Title        string   `json:"title" validate:"required,notblank,max=150"`
	Description  string   `json:"description" validate:"max=2000"`
	Points       int      `json:"points" validate:"required,gt=0,lte=10000"`
	TargetLevels []string `json:"targetLevels" validate:"required,min=1,dive,gymlevel"`
	GymID        string   `json:"gymId"`
}

func (nc *NewChallenge) Clean() {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.GymID = core.CleanString(nc.GymID)
	for i, l := range nc.TargetLevels {
		nc.TargetLevels[i] = core.CleanString(l, true /* lower */)
	}
}

type NewCompletion struct {
	GymnastID string `json:"gymnastId" validate:"required"`
}

type QueryFilter struct {
	GymnastID string `query:"gymnastId"`
	GymID     string `query:"gymId"`
}

// RepoFilter narrows Repository.QueryChallenges. Zero values match everything.
type RepoFilter struct {
	// GymID also matches league-wide challenges when IncludeGlobal is set.
	GymID         string
	IncludeGlobal bool
	Level         string
	ActiveOnly    bool
}
