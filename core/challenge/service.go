package challenge

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
	ErrNotFound = core.NewNotFoundError("challenge")
	// ErrAlreadyCompleted is returned by Repository.CreateCompletion for a duplicate (challenge, gymnast).
	ErrAlreadyCompleted = errors.New("challenge already completed by this gymnast")

	errNotApproved = "gymnast is not approved"
	errInactive    = "challenge is not active"
	errOtherGym    = "challenge belongs to another gym"
	errWrongLevel  = "challenge does not target the gymnast's level"
)

type (
	Repository interface {
		CreateChallenge(ctx context.Context, c Challenge) (Challenge, error)
		GetChallengeByID(ctx context.Context, id string) (Challenge, error)
		// QueryChallenges lists challenges newest first.
		QueryChallenges(ctx context.Context, filter RepoFilter) ([]Challenge, error)
		CreateCompletion(ctx context.Context, c Completion) (Completion, error)
	}

	Service struct {
		repo     Repository
		gymnasts gymnast.Repository
		gyms     gym.Repository
		gate     *gym.Gate
		tx       core.Transactor
	}
)

func NewService(repo Repository, gymnasts gymnast.Repository, gyms gym.Repository, gate *gym.Gate, tx core.Transactor) *Service {
	return &Service{repo: repo, gymnasts: gymnasts, gyms: gyms, gate: gate, tx: tx}
}

// Create adds a challenge. League-wide challenges are reserved to admins; gym challenges to the gym's staff.
func (svc *Service) Create(ctx context.Context, actor user.User, nc NewChallenge) (Challenge, error) {
	nc.Clean()
	if nc.GymID == "" {
		if !actor.IsAdmin() {
			return Challenge{}, core.ErrPermissionDenied
		}
	} else {
		if _, err := svc.gyms.GetGymByID(ctx, nc.GymID); err != nil {
			return Challenge{}, err
		}
		if err := svc.gate.Authorize(ctx, actor, nc.GymID); err != nil {
			return Challenge{}, err
		}
	}

	c, err := svc.repo.CreateChallenge(ctx, Challenge{
		ID:           uuid.NewString(),
		Title:        nc.Title,
		Description:  nc.Description,
		Points:       nc.Points,
		TargetLevels: nc.TargetLevels,
		GymID:        nc.GymID,
		CreatedBy:    actor.ID,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
	return c, errors.Wrap(err, "inserting challenge")
}

// Query lists the challenges visible to actor.
func (svc *Service) Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Challenge, error) {
	switch {
	case filter.GymnastID != "":
		return svc.QueryForGymnast(ctx, actor, filter.GymnastID)
	case filter.GymID != "":
		if err := svc.gate.Authorize(ctx, actor, filter.GymID); err != nil {
			return nil, err
		}
		return svc.repo.QueryChallenges(ctx, RepoFilter{GymID: filter.GymID, IncludeGlobal: true})
	case actor.IsAdmin():
		return svc.repo.QueryChallenges(ctx, RepoFilter{})
	default:
		return svc.repo.QueryChallenges(ctx, RepoFilter{ActiveOnly: true, IncludeGlobal: true})
	}
}

// QueryForGymnast lists the active challenges open to the gymnast: none until the gymnast is approved.
func (svc *Service) QueryForGymnast(ctx context.Context, actor user.User, gymnastID string) ([]Challenge, error) {
	g, err := svc.gymnasts.GetGymnastByID(ctx, gymnastID)
	if err != nil {
		return nil, err
	}
	if actor.IsZero() || g.UserID != actor.ID {
		if err := svc.gate.Authorize(ctx, actor, g.GymID); err != nil {
			return nil, err
		}
	}
	if !g.Approved {
		return []Challenge{}, nil
	}
	return svc.repo.QueryChallenges(ctx, RepoFilter{
		GymID:         g.GymID,
		IncludeGlobal: true,
		Level:         g.Level,
		ActiveOnly:    true,
	})
}

// Complete records the completion and awards the points in one transaction. A gymnast completes a challenge once.
func (svc *Service) Complete(ctx context.Context, actor user.User, challengeID string, nc NewCompletion) (Completion, error) {
	c, err := svc.repo.GetChallengeByID(ctx, challengeID)
	if err != nil {
		return Completion{}, err
	}
	g, err := svc.gymnasts.GetGymnastByID(ctx, nc.GymnastID)
	if err != nil {
		return Completion{}, err
	}
	if err := svc.gate.Authorize(ctx, actor, g.GymID); err != nil {
		return Completion{}, err
	}

	fieldErr := func(msg string) error {
		return core.NewValidationError(nil, core.FieldError{Field: "gymnastId", Error: msg})
	}
	switch {
	case !g.Approved:
		return Completion{}, fieldErr(errNotApproved)
	case !c.Active:
		return Completion{}, fieldErr(errInactive)
	case c.GymID != "" && c.GymID != g.GymID:
		return Completion{}, fieldErr(errOtherGym)
	case !c.Targets(g.Level):
		return Completion{}, fieldErr(errWrongLevel)
	}

	var comp Completion
	err = svc.tx.Transact(ctx, func(ctx context.Context) error {
		var err error
		comp, err = svc.repo.CreateCompletion(ctx, Completion{
			ChallengeID: c.ID,
			GymnastID:   g.ID,
			Points:      c.Points,
			CompletedBy: actor.ID,
			CompletedAt: time.Now().UTC(),
		})
		if err != nil {
			if errors.Cause(err) == ErrAlreadyCompleted {
				return core.NewConflictError("gymnastId", ErrAlreadyCompleted.Error())
			}
			return errors.Wrap(err, "inserting completion")
		}
		_, err = svc.gymnasts.AddPoints(ctx, g.ID, c.Points)
		return errors.Wrap(err, "awarding points")
	})
	if err != nil {
		return Completion{}, err
	}
	return comp, nil
}
