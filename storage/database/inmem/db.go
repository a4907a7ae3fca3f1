package inmemdb

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/challenge"
	"github.com/trezcool/gymleague/core/event"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/registration"
	"github.com/trezcool/gymleague/core/reward"
	"github.com/trezcool/gymleague/core/roster"
	"github.com/trezcool/gymleague/core/user"
)

var _ core.Transactor = (*DB)(nil)

type (
	// DB is a process-local store used by tests and the dev server.
	// Transactions are serialized; a failed one restores the snapshot taken when it began.
	DB struct {
		mu   sync.RWMutex
		txMu sync.Mutex
		seq  int64
		data state
	}

	state struct {
		users        *table[user.User]
		gyms         *table[gym.Gym]
		coaches      *table[gym.CoachAssociation]
		gymnasts     *table[gymnast.Gymnast]
		requests     *table[registration.Request]
		uploads      *table[roster.Upload]
		challenges   *table[challenge.Challenge]
		completions  *table[challenge.Completion]
		rewards      *table[reward.Reward]
		redemptions  *table[reward.Redemption]
		events       *table[event.Event]
		eventEntries *table[event.Registration]
	}

	table[T any] struct {
		rows map[string]T
		seq  map[string]int64
	}

	txKey struct{}
)

func Open() (*DB, error) {
	db := &DB{
		data: state{
			users:        newTable[user.User](),
			gyms:         newTable[gym.Gym](),
			coaches:      newTable[gym.CoachAssociation](),
			gymnasts:     newTable[gymnast.Gymnast](),
			requests:     newTable[registration.Request](),
			uploads:      newTable[roster.Upload](),
			challenges:   newTable[challenge.Challenge](),
			completions:  newTable[challenge.Completion](),
			rewards:      newTable[reward.Reward](),
			redemptions:  newTable[reward.Redemption](),
			events:       newTable[event.Event](),
			eventEntries: newTable[event.Registration](),
		},
	}
	return db, nil
}

// Transact runs fn with every write serialized behind it.
// Nested calls join the outer transaction.
func (db *DB) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.data.clone()
	db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.data = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	in, _ := ctx.Value(txKey{}).(bool)
	return in
}

// write runs fn under the write lock. Outside a transaction it waits for running transactions first.
func (db *DB) write(ctx context.Context, fn func(s *state) error) error {
	if !inTx(ctx) {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(&db.data)
}

func (db *DB) read(fn func(s *state) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(&db.data)
}

// nextSeq must be called under the write lock.
func (db *DB) nextSeq() int64 {
	db.seq++
	return db.seq
}

func (s state) clone() state {
	return state{
		users:        s.users.clone(),
		gyms:         s.gyms.clone(),
		coaches:      s.coaches.clone(),
		gymnasts:     s.gymnasts.clone(),
		requests:     s.requests.clone(),
		uploads:      s.uploads.clone(),
		challenges:   s.challenges.clone(),
		completions:  s.completions.clone(),
		rewards:      s.rewards.clone(),
		redemptions:  s.redemptions.clone(),
		events:       s.events.clone(),
		eventEntries: s.eventEntries.clone(),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T), seq: make(map[string]int64)}
}

func (t *table[T]) clone() *table[T] {
	c := newTable[T]()
	for k, v := range t.rows {
		c.rows[k] = v
		c.seq[k] = t.seq[k]
	}
	return c
}

func (t *table[T]) get(key string) (T, bool) {
	v, ok := t.rows[key]
	return v, ok
}

// insert keeps the row's insertion rank; re-inserting an existing key is an update.
func (t *table[T]) insert(key string, v T, seq int64) {
	if _, ok := t.seq[key]; !ok {
		t.seq[key] = seq
	}
	t.rows[key] = v
}

func (t *table[T]) update(key string, v T) bool {
	if _, ok := t.rows[key]; !ok {
		return false
	}
	t.rows[key] = v
	return true
}

func (t *table[T]) delete(key string) {
	delete(t.rows, key)
	delete(t.seq, key)
}

// list returns the rows matching keep in insertion order.
func (t *table[T]) list(keep func(T) bool) []T {
	keys := make([]string, 0, len(t.rows))
	for k, v := range t.rows {
		if keep == nil || keep(v) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return t.seq[keys[i]] < t.seq[keys[j]] })

	res := make([]T, 0, len(keys))
	for _, k := range keys {
		res = append(res, t.rows[k])
	}
	return res
}

func reversed[T any](s []T) []T {
	slices.Reverse(s)
	return s
}
