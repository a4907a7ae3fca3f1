package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/user"
)

const userColumns = "id, name, email, role, created_at, updated_at"

var (
	_ user.Repository = (*userRepository)(nil)

	userOrderings = map[string]bool{"name": true, "email": true, "role": true, "created_at": true}
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (` + userColumns + `) VALUES (:id, :name, :email, :role, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, usr); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, core.NewConflictError("email", "a user with this email already exists")
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getBy(ctx context.Context, column string, value string) (user.User, error) {
	var usr user.User
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	if err := sqlx.GetContext(ctx, getExec(ctx, repo.db), &usr, q, value); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getBy(ctx, "email", email)
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var w where
	if filter.Search != "" {
		w.add("(name ILIKE ? OR email ILIKE ?)", likePattern(filter.Search))
	}
	if len(filter.Roles) > 0 {
		w.add("role = ANY(?)", pq.Array(filter.Roles))
	}

	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if userOrderings[ord.Field] {
			orderBy = append(orderBy, ord.String())
		}
	}
	orderBy = append(orderBy, "created_at ASC")

	users := make([]user.User, 0)
	q := `SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY ` + strings.Join(orderBy, ", ")
	if err := sqlx.SelectContext(ctx, getExec(ctx, repo.db), &users, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET name = :name, email = :email, role = :role, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(ctx, repo.db), q, usr)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, core.NewConflictError("email", "a user with this email already exists")
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
