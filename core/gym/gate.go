package gym

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/user"
)

// Gate decides whether a user may act on a gym's members and workflows.
// Nothing is cached: every call reads the current associations.
type Gate struct {
	repo Repository
}

func NewGate(repo Repository) *Gate {
	return &Gate{repo: repo}
}

// CanActOnGym is true for league admins, and for coaches or gym admins associated with the gym.
func (g *Gate) CanActOnGym(ctx context.Context, usr user.User, gymID string) (bool, error) {
	if usr.IsZero() {
		return false, nil
	}
	if usr.IsAdmin() {
		return true, nil
	}
	if !usr.IsStaff() {
		return false, nil
	}
	if _, err := g.repo.GetCoachAssociation(ctx, usr.ID, gymID); err != nil {
		if errors.Cause(err) == ErrNotAssociated {
			return false, nil
		}
		return false, errors.Wrap(err, "finding coach association")
	}
	return true, nil
}

// CanAdministerGym is true for league admins and for associated users flagged as gym admins.
func (g *Gate) CanAdministerGym(ctx context.Context, usr user.User, gymID string) (bool, error) {
	if usr.IsZero() {
		return false, nil
	}
	if usr.IsAdmin() {
		return true, nil
	}
	if !usr.IsStaff() {
		return false, nil
	}
	assoc, err := g.repo.GetCoachAssociation(ctx, usr.ID, gymID)
	if err != nil {
		if errors.Cause(err) == ErrNotAssociated {
			return false, nil
		}
		return false, errors.Wrap(err, "finding coach association")
	}
	return assoc.IsAdmin || usr.Role == user.RoleGymAdmin, nil
}

// Authorize returns core.ErrPermissionDenied unless usr can act on the gym.
func (g *Gate) Authorize(ctx context.Context, usr user.User, gymID string) error {
	ok, err := g.CanActOnGym(ctx, usr, gymID)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrPermissionDenied
	}
	return nil
}
