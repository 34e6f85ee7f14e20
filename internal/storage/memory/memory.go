// Package memory is an in-process services.Store. It serves tests and the
// memory data backend; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type categoryKey struct {
	owner core.UserID
	name  string
}

type state struct {
	nextID       int64
	categories   map[categoryKey]core.Category
	transactions map[int64]core.Transaction
	goals        map[int64]core.SavingsGoal
}

func newState() *state {
	return &state{
		categories:   make(map[categoryKey]core.Category),
		transactions: make(map[int64]core.Transaction),
		goals:        make(map[int64]core.SavingsGoal),
	}
}

func (s *state) clone() *state {
	return &state{
		nextID:       s.nextID,
		categories:   maps.Clone(s.categories),
		transactions: maps.Clone(s.transactions),
		goals:        maps.Clone(s.goals),
	}
}

// Store guards a state with one RW mutex. WithTx works on a copy that
// replaces the live state only when fn succeeds.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ services.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) Categories() services.CategoryRepository      { return locked{s} }
func (s *Store) Transactions() services.TransactionRepository { return locked{s} }
func (s *Store) Goals() services.GoalRepository               { return locked{s} }

func (s *Store) WithTx(ctx context.Context, fn func(services.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(view{work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

func (s *Store) read(fn func(view) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(view{s.st})
}

func (s *Store) write(fn func(view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(view{s.st})
}

// view implements the repositories over a state without locking.
type view struct {
	st *state
}

func (v view) Categories() services.CategoryRepository      { return v }
func (v view) Transactions() services.TransactionRepository { return v }
func (v view) Goals() services.GoalRepository               { return v }

func (v view) ListCategories(_ context.Context, owner core.UserID) ([]core.Category, error) {
	var out []core.Category
	for k, c := range v.st.categories {
		if k.owner == owner {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v view) FindCategory(_ context.Context, owner core.UserID, name string) (core.Category, error) {
	c, ok := v.st.categories[categoryKey{owner, name}]
	if !ok {
		return core.Category{}, fmt.Errorf("%w: category %q", core.ErrNotFound, name)
	}
	return c, nil
}

func (v view) CountCategories(_ context.Context, owner core.UserID) (int, error) {
	n := 0
	for k := range v.st.categories {
		if k.owner == owner {
			n++
		}
	}
	return n, nil
}

func (v view) InsertCategory(_ context.Context, c core.Category) (core.Category, error) {
	key := categoryKey{c.Owner, c.Name}
	if _, ok := v.st.categories[key]; ok {
		return core.Category{}, fmt.Errorf("%w: category %q", core.ErrDuplicate, c.Name)
	}
	v.st.nextID++
	c.ID = v.st.nextID
	v.st.categories[key] = c
	return c, nil
}

func (v view) DeleteCategory(_ context.Context, owner core.UserID, name string) error {
	key := categoryKey{owner, name}
	if _, ok := v.st.categories[key]; !ok {
		return fmt.Errorf("%w: category %q", core.ErrNotFound, name)
	}
	delete(v.st.categories, key)
	return nil
}

func (v view) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	v.st.nextID++
	t.ID = v.st.nextID
	v.st.transactions[t.ID] = t
	return t, nil
}

func (v view) UpdateTransaction(_ context.Context, t core.Transaction) error {
	cur, ok := v.st.transactions[t.ID]
	if !ok || cur.Owner != t.Owner {
		return fmt.Errorf("%w: transaction %d", core.ErrNotFound, t.ID)
	}
	v.st.transactions[t.ID] = t
	return nil
}

func (v view) DeleteTransaction(_ context.Context, owner core.UserID, id int64) error {
	cur, ok := v.st.transactions[id]
	if !ok || cur.Owner != owner {
		return fmt.Errorf("%w: transaction %d", core.ErrNotFound, id)
	}
	delete(v.st.transactions, id)
	return nil
}

func (v view) FindTransaction(_ context.Context, owner core.UserID, id int64) (core.Transaction, error) {
	t, ok := v.st.transactions[id]
	if !ok || t.Owner != owner {
		return core.Transaction{}, fmt.Errorf("%w: transaction %d", core.ErrNotFound, id)
	}
	return t, nil
}

func (v view) ListTransactions(_ context.Context, owner core.UserID, f core.TransactionFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range v.st.transactions {
		if t.Owner == owner && f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (v view) CountTransactionsByCategory(_ context.Context, owner core.UserID, category string) (int, error) {
	n := 0
	for _, t := range v.st.transactions {
		if t.Owner == owner && t.Category == category {
			n++
		}
	}
	return n, nil
}

func (v view) ListOwners(_ context.Context) ([]core.UserID, error) {
	seen := map[core.UserID]struct{}{}
	for _, t := range v.st.transactions {
		seen[t.Owner] = struct{}{}
	}
	out := slices.Collect(maps.Keys(seen))
	slices.Sort(out)
	return out, nil
}

func (v view) InsertGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	v.st.nextID++
	g.ID = v.st.nextID
	v.st.goals[g.ID] = g
	return g, nil
}

func (v view) UpdateGoal(_ context.Context, g core.SavingsGoal) error {
	cur, ok := v.st.goals[g.ID]
	if !ok || cur.Owner != g.Owner {
		return fmt.Errorf("%w: goal %d", core.ErrNotFound, g.ID)
	}
	v.st.goals[g.ID] = g
	return nil
}

func (v view) DeleteGoal(_ context.Context, owner core.UserID, id int64) error {
	cur, ok := v.st.goals[id]
	if !ok || cur.Owner != owner {
		return fmt.Errorf("%w: goal %d", core.ErrNotFound, id)
	}
	delete(v.st.goals, id)
	return nil
}

func (v view) FindGoal(_ context.Context, owner core.UserID, id int64) (core.SavingsGoal, error) {
	g, ok := v.st.goals[id]
	if !ok || g.Owner != owner {
		return core.SavingsGoal{}, fmt.Errorf("%w: goal %d", core.ErrNotFound, id)
	}
	return g, nil
}

func (v view) ListGoals(_ context.Context, owner core.UserID) ([]core.SavingsGoal, error) {
	var out []core.SavingsGoal
	for _, g := range v.st.goals {
		if g.Owner == owner {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
