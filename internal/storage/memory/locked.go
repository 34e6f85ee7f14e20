package memory

import (
	"context"

	"fintrack/internal/core"
)

// locked serialises single calls made outside WithTx.
type locked struct {
	s *Store
}

func (l locked) ListCategories(ctx context.Context, owner core.UserID) (out []core.Category, err error) {
	err = l.s.read(func(v view) error { out, err = v.ListCategories(ctx, owner); return err })
	return out, err
}

func (l locked) FindCategory(ctx context.Context, owner core.UserID, name string) (out core.Category, err error) {
	err = l.s.read(func(v view) error { out, err = v.FindCategory(ctx, owner, name); return err })
	return out, err
}

func (l locked) CountCategories(ctx context.Context, owner core.UserID) (n int, err error) {
	err = l.s.read(func(v view) error { n, err = v.CountCategories(ctx, owner); return err })
	return n, err
}

func (l locked) InsertCategory(ctx context.Context, c core.Category) (out core.Category, err error) {
	err = l.s.write(func(v view) error { out, err = v.InsertCategory(ctx, c); return err })
	return out, err
}

func (l locked) DeleteCategory(ctx context.Context, owner core.UserID, name string) error {
	return l.s.write(func(v view) error { return v.DeleteCategory(ctx, owner, name) })
}

func (l locked) InsertTransaction(ctx context.Context, t core.Transaction) (out core.Transaction, err error) {
	err = l.s.write(func(v view) error { out, err = v.InsertTransaction(ctx, t); return err })
	return out, err
}

func (l locked) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return l.s.write(func(v view) error { return v.UpdateTransaction(ctx, t) })
}

func (l locked) DeleteTransaction(ctx context.Context, owner core.UserID, id int64) error {
	return l.s.write(func(v view) error { return v.DeleteTransaction(ctx, owner, id) })
}

func (l locked) FindTransaction(ctx context.Context, owner core.UserID, id int64) (out core.Transaction, err error) {
	err = l.s.read(func(v view) error { out, err = v.FindTransaction(ctx, owner, id); return err })
	return out, err
}

func (l locked) ListTransactions(ctx context.Context, owner core.UserID, f core.TransactionFilter) (out []core.Transaction, err error) {
	err = l.s.read(func(v view) error { out, err = v.ListTransactions(ctx, owner, f); return err })
	return out, err
}

func (l locked) CountTransactionsByCategory(ctx context.Context, owner core.UserID, category string) (n int, err error) {
	err = l.s.read(func(v view) error { n, err = v.CountTransactionsByCategory(ctx, owner, category); return err })
	return n, err
}

func (l locked) ListOwners(ctx context.Context) (out []core.UserID, err error) {
	err = l.s.read(func(v view) error { out, err = v.ListOwners(ctx); return err })
	return out, err
}

func (l locked) InsertGoal(ctx context.Context, g core.SavingsGoal) (out core.SavingsGoal, err error) {
	err = l.s.write(func(v view) error { out, err = v.InsertGoal(ctx, g); return err })
	return out, err
}

func (l locked) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	return l.s.write(func(v view) error { return v.UpdateGoal(ctx, g) })
}

func (l locked) DeleteGoal(ctx context.Context, owner core.UserID, id int64) error {
	return l.s.write(func(v view) error { return v.DeleteGoal(ctx, owner, id) })
}

func (l locked) FindGoal(ctx context.Context, owner core.UserID, id int64) (out core.SavingsGoal, err error) {
	err = l.s.read(func(v view) error { out, err = v.FindGoal(ctx, owner, id); return err })
	return out, err
}

func (l locked) ListGoals(ctx context.Context, owner core.UserID) (out []core.SavingsGoal, err error) {
	err = l.s.read(func(v view) error { out, err = v.ListGoals(ctx, owner); return err })
	return out, err
}
