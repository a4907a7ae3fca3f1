package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("user")

	errEmailExists    = "a user with this email already exists"
	errEmailUsedByGym = "this email is already used by a gym"
	errOwnRole        = core.NewPermissionError("you cannot change your own role")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	// GymEmails looks up emails owned by gyms.
	GymEmails interface {
		GymEmailExists(ctx context.Context, email string) (bool, error)
	}

	Service struct {
		repo Repository
		gyms GymEmails
		tx   core.Transactor
	}
)

func NewService(repo Repository, gyms GymEmails, tx core.Transactor) *Service {
	return &Service{repo: repo, gyms: gyms, tx: tx}
}

// Create adds a user. The email must not be owned by another user or by a gym.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := svc.tx.Transact(ctx, func(ctx context.Context) error {
		if err := svc.checkEmail(ctx, usr.Email); err != nil {
			return err
		}
		var err error
		usr, err = svc.repo.CreateUser(ctx, usr)
		return errors.Wrap(err, "inserting user")
	})
	if err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) checkEmail(ctx context.Context, email string) error {
	if _, err := svc.repo.GetUserByEmail(ctx, email); err == nil {
		return core.NewConflictError("email", errEmailExists)
	} else if errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "finding user by email")
	}

	taken, err := svc.gyms.GymEmailExists(ctx, email)
	if err != nil {
		return errors.Wrap(err, "checking gym emails")
	}
	if taken {
		return core.NewConflictError("email", errEmailUsedByGym)
	}
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter, ordering...)
}

// UpdateRole changes a user's role. Only admins may do so, and never on themselves.
func (svc *Service) UpdateRole(ctx context.Context, actor User, id, role string) (User, error) {
	if !actor.IsAdmin() {
		return User{}, core.ErrPermissionDenied
	}
	if actor.ID == id {
		return User{}, errOwnRole
	}
	if !IsValidRole(role) {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "role", Error: roleText})
	}

	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}
