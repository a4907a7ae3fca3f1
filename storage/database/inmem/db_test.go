package inmemdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gymleague/core/user"
)

func TestDB_Transact(t *testing.T) {
	db, err := Open()
	require.NoError(t, err)
	repo := NewUserRepository(db)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err = db.Transact(ctx, func(ctx context.Context) error {
		if _, err := repo.CreateUser(ctx, user.User{ID: "1", Email: "a@test.com"}); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return db.Transact(ctx, func(ctx context.Context) error {
			if _, err := repo.CreateUser(ctx, user.User{ID: "2", Email: "b@test.com"}); err != nil {
				return err
			}
			return errBoom
		})
	})
	assert.Equal(t, errBoom, err)

	users, err := repo.QueryUsers(ctx, user.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)

	err = db.Transact(ctx, func(ctx context.Context) error {
		_, err := repo.CreateUser(ctx, user.User{ID: "3", Email: "c@test.com"})
		return err
	})
	require.NoError(t, err)
	_, err = repo.GetUserByID(ctx, "3")
	assert.NoError(t, err)
}

func TestTable_list(t *testing.T) {
	tbl := newTable[string]()
	tbl.insert("c", "third", 3)
	tbl.insert("a", "first", 1)
	tbl.insert("b", "second", 2)
	tbl.insert("a", "first again", 9)

	assert.Equal(t, []string{"first again", "second", "third"}, tbl.list(nil))
	assert.Equal(t, []string{"third", "second", "first again"}, reversed(tbl.list(nil)))

	tbl.delete("b")
	assert.Equal(t, []string{"first again", "third"}, tbl.list(nil))
}
