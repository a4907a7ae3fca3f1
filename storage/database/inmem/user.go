package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/user"
)

var _ user.Repository = (*userRepository)(nil)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.write(ctx, func(s *state) error {
		for _, u := range s.users.rows {
			if u.Email == usr.Email {
				return core.NewConflictError("email", "a user with this email already exists")
			}
		}
		s.users.insert(usr.ID, usr, repo.db.nextSeq())
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.db.read(func(s *state) error {
		u, ok := s.users.get(id)
		if !ok {
			return user.ErrNotFound
		}
		usr = u
		return nil
	})
	return usr, err
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.read(func(s *state) error {
		for _, u := range s.users.rows {
			if u.Email == email {
				usr = u
				return nil
			}
		}
		return user.ErrNotFound
	})
	return usr, err
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	search := strings.ToLower(filter.Search)
	var users []user.User
	_ = repo.db.read(func(s *state) error {
		users = s.users.list(func(u user.User) bool {
			if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(u.Email, search) {
				return false
			}
			return len(filter.Roles) == 0 || contains(filter.Roles, u.Role)
		})
		return nil
	})

	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		less := userLess(ord.Field)
		if less == nil {
			continue
		}
		sort.SliceStable(users, func(a, b int) bool {
			if ord.Ascending {
				return less(users[a], users[b])
			}
			return less(users[b], users[a])
		})
	}
	return users, nil
}

func userLess(field string) func(a, b user.User) bool {
	switch field {
	case "name":
		return func(a, b user.User) bool { return a.Name < b.Name }
	case "email":
		return func(a, b user.User) bool { return a.Email < b.Email }
	case "role":
		return func(a, b user.User) bool { return a.Role < b.Role }
	case "created_at":
		return func(a, b user.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	return nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.write(ctx, func(s *state) error {
		if !s.users.update(usr.ID, usr) {
			return user.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
