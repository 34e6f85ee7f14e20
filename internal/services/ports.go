package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Storage ports. Every lookup except the default-category scope is owner
// scoped; a record owned by someone else is reported as core.ErrNotFound.
type (
	// CategoryRepository keys categories by (owner, name). The empty owner
	// is the default scope.
	CategoryRepository interface {
		ListCategories(ctx context.Context, owner core.UserID) ([]core.Category, error)
		FindCategory(ctx context.Context, owner core.UserID, name string) (core.Category, error)
		CountCategories(ctx context.Context, owner core.UserID) (int, error)
		// InsertCategory fails with core.ErrDuplicate on a (owner, name) clash.
		InsertCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, owner core.UserID, name string) error
	}

	TransactionRepository interface {
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, owner core.UserID, id int64) error
		FindTransaction(ctx context.Context, owner core.UserID, id int64) (core.Transaction, error)
		// ListTransactions returns matches ordered by date then id, both
		// descending.
		ListTransactions(ctx context.Context, owner core.UserID, f core.TransactionFilter) ([]core.Transaction, error)
		CountTransactionsByCategory(ctx context.Context, owner core.UserID, category string) (int, error)
		ListOwners(ctx context.Context) ([]core.UserID, error)
	}

	GoalRepository interface {
		InsertGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
		UpdateGoal(ctx context.Context, g core.SavingsGoal) error
		DeleteGoal(ctx context.Context, owner core.UserID, id int64) error
		FindGoal(ctx context.Context, owner core.UserID, id int64) (core.SavingsGoal, error)
		ListGoals(ctx context.Context, owner core.UserID) ([]core.SavingsGoal, error)
	}

	Repositories interface {
		Categories() CategoryRepository
		Transactions() TransactionRepository
		Goals() GoalRepository
	}

	// Store is a storage backend. WithTx runs fn inside one atomic
	// transaction: fn's error rolls everything back.
	Store interface {
		Repositories
		WithTx(ctx context.Context, fn func(Repositories) error) error
		Ping(ctx context.Context) error
		Close() error
	}

	// EventPublisher hands ledger events to a broker. A nil publisher
	// disables events.
	EventPublisher interface {
		PublishLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error
	}
)
