package gym

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/user"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("gym")
	ErrNotAssociated = core.NewNotFoundError("coach association")

	errEmailExists     = "a gym with this email already exists"
	errEmailUsedByUser = "this email is already used by a user"
	errUnknownUser     = "user not found"
	errNotStaff        = "user must be a coach or a gym admin"
)

type (
	Repository interface {
		CreateGym(ctx context.Context, g Gym) (Gym, error)
		GetGymByID(ctx context.Context, id string) (Gym, error)
		GymEmailExists(ctx context.Context, email string) (bool, error)
		QueryGyms(ctx context.Context, filter QueryFilter) ([]Gym, error)
		UpdateGym(ctx context.Context, g Gym) (Gym, error)

		// AddCoach creates or updates the (user, gym) association.
		AddCoach(ctx context.Context, assoc CoachAssociation) (CoachAssociation, error)
		RemoveCoach(ctx context.Context, userID, gymID string) error
		GetCoachAssociation(ctx context.Context, userID, gymID string) (CoachAssociation, error)
		QueryCoaches(ctx context.Context, gymID string) ([]Coach, error)
	}

	Service struct {
		repo  Repository
		users user.Repository
		gate  *Gate
		tx    core.Transactor
	}
)

func NewService(repo Repository, users user.Repository, gate *Gate, tx core.Transactor) *Service {
	return &Service{repo: repo, users: users, gate: gate, tx: tx}
}

// Create adds a gym. The email must not be owned by another gym or by a user; nothing is saved otherwise.
func (svc *Service) Create(ctx context.Context, ng NewGym) (Gym, error) {
	ng.Clean()
	now := time.Now().UTC()
	g := Gym{
		ID:                    uuid.NewString(),
		Name:                  ng.Name,
		City:                  ng.City,
		Email:                 ng.Email,
		Approved:              ng.Approved,
		MembershipPaid:        ng.MembershipPaid,
		AllowSelfRegistration: ng.AllowSelfRegistration,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err := svc.tx.Transact(ctx, func(ctx context.Context) error {
		if err := svc.checkEmail(ctx, g.Email); err != nil {
			return err
		}
		var err error
		g, err = svc.repo.CreateGym(ctx, g)
		return errors.Wrap(err, "inserting gym")
	})
	if err != nil {
		return Gym{}, err
	}
	return g, nil
}

func (svc *Service) checkEmail(ctx context.Context, email string) error {
	taken, err := svc.repo.GymEmailExists(ctx, email)
	if err != nil {
		return errors.Wrap(err, "checking gym emails")
	}
	if taken {
		return core.NewConflictError("email", errEmailExists)
	}

	if _, err := svc.users.GetUserByEmail(ctx, email); err == nil {
		return core.NewConflictError("email", errEmailUsedByUser)
	} else if errors.Cause(err) != user.ErrNotFound {
		return errors.Wrap(err, "finding user by email")
	}
	return nil
}

func (svc *Service) Get(ctx context.Context, id string) (Gym, error) {
	return svc.repo.GetGymByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Gym, error) {
	filter.Clean()
	return svc.repo.QueryGyms(ctx, filter)
}

// Update modifies a gym. Gym admins may edit their gym's profile;
// approval and membership flags are reserved to league admins.
func (svc *Service) Update(ctx context.Context, actor user.User, id string, ug UpdateGym) (Gym, error) {
	g, err := svc.repo.GetGymByID(ctx, id)
	if err != nil {
		return Gym{}, err
	}

	ok, err := svc.gate.CanAdministerGym(ctx, actor, id)
	if err != nil {
		return Gym{}, err
	}
	if !ok || (ug.adminOnly() && !actor.IsAdmin()) {
		return Gym{}, core.ErrPermissionDenied
	}

	if ug.Name != nil {
		g.Name = core.CleanString(*ug.Name)
	}
	if ug.City != nil {
		g.City = core.CleanString(*ug.City)
	}
	if ug.Approved != nil {
		g.Approved = *ug.Approved
	}
	if ug.MembershipPaid != nil {
		g.MembershipPaid = *ug.MembershipPaid
	}
	if ug.AllowSelfRegistration != nil {
		g.AllowSelfRegistration = *ug.AllowSelfRegistration
	}
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGym(ctx, g)
}

// AddCoach associates a coach or gym admin with the gym.
func (svc *Service) AddCoach(ctx context.Context, actor user.User, gymID string, nc NewCoach) (CoachAssociation, error) {
	if _, err := svc.repo.GetGymByID(ctx, gymID); err != nil {
		return CoachAssociation{}, err
	}
	ok, err := svc.gate.CanAdministerGym(ctx, actor, gymID)
	if err != nil {
		return CoachAssociation{}, err
	}
	if !ok {
		return CoachAssociation{}, core.ErrPermissionDenied
	}

	usr, err := svc.users.GetUserByID(ctx, nc.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return CoachAssociation{}, core.NewValidationError(nil, core.FieldError{Field: "userId", Error: errUnknownUser})
		}
		return CoachAssociation{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsStaff() {
		return CoachAssociation{}, core.NewValidationError(nil, core.FieldError{Field: "userId", Error: errNotStaff})
	}

	return svc.repo.AddCoach(ctx, CoachAssociation{
		UserID:    usr.ID,
		GymID:     gymID,
		IsAdmin:   nc.IsAdmin || usr.Role == user.RoleGymAdmin,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) RemoveCoach(ctx context.Context, actor user.User, gymID, userID string) error {
	ok, err := svc.gate.CanAdministerGym(ctx, actor, gymID)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrPermissionDenied
	}
	return svc.repo.RemoveCoach(ctx, userID, gymID)
}

func (svc *Service) QueryCoaches(ctx context.Context, actor user.User, gymID string) ([]Coach, error) {
	if err := svc.gate.Authorize(ctx, actor, gymID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCoaches(ctx, gymID)
}

// StaffEmails lists the addresses of every coach and gym admin of the gym.
func (svc *Service) StaffEmails(ctx context.Context, gymID string) ([]mail.Address, error) {
	coaches, err := svc.repo.QueryCoaches(ctx, gymID)
	if err != nil {
		return nil, errors.Wrap(err, "querying coaches")
	}
	addrs := make([]mail.Address, 0, len(coaches))
	for _, c := range coaches {
		addrs = append(addrs, mail.Address{Name: c.Name, Address: c.Email})
	}
	return addrs, nil
}
