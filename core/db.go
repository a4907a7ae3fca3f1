package core

import "context"

// Transactor runs a unit of work atomically.
// Repository calls made with the ctx handed to fn join the transaction;
// returning an error from fn rolls every write back.
type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
