package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"

	"github.com/shopspring/decimal"
)

// LedgerService records, lists, updates and deletes a user's income and
// expense entries. The entry type is always derived from its category.
type LedgerService struct {
	instrument
	store      Store
	categories *CategoryService
	publisher  EventPublisher
}

func NewLedgerService(store Store, categories *CategoryService, publisher EventPublisher, logger *log.Logger, collector metrics.Collector) *LedgerService {
	return &LedgerService{
		instrument: newInstrument(log.ComponentLedger, logger, collector),
		store:      store,
		categories: categories,
		publisher:  publisher,
	}
}

// Create validates n, classifies its category and stores it.
func (s *LedgerService) Create(ctx context.Context, user core.UserID, n core.NewTransaction) (created core.Transaction, err error) {
	defer s.observe(ctx, log.OpCreate, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.Transaction{}, err
	}
	n, err = n.Normalize()
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.categories.EnsureDefaultsSeeded(ctx); err != nil {
		return core.Transaction{}, err
	}

	err = s.store.WithTx(ctx, func(r Repositories) error {
		typ, err := classifyIn(ctx, r, user, n.Category)
		if err != nil {
			return err
		}
		created, err = r.Transactions().InsertTransaction(ctx, core.Transaction{
			Amount:      n.Amount,
			Date:        n.Date,
			Category:    n.Category,
			Description: n.Description,
			Type:        typ,
			Owner:       user,
		})
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldUserID, user,
		log.FieldTransactionID, created.ID,
		log.FieldAmount, core.FormatAmount(created.Amount),
		log.FieldCategory, created.Category,
		log.FieldType, created.Type)

	s.publish(ctx, amqp.EventTransactionCreated, created)
	return created, nil
}

// List returns user's entries matching f, newest first.
func (s *LedgerService) List(ctx context.Context, user core.UserID, f core.TransactionFilter) (txs []core.Transaction, err error) {
	defer s.observe(ctx, log.OpList, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return nil, err
	}
	f.Category = strings.TrimSpace(f.Category)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	txs, err = s.store.Transactions().ListTransactions(ctx, user, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) Get(ctx context.Context, user core.UserID, id int64) (tx core.Transaction, err error) {
	defer s.observe(ctx, log.OpRead, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return s.store.Transactions().FindTransaction(ctx, user, id)
}

// Update applies patch to entry id. A new category re-derives the type.
func (s *LedgerService) Update(ctx context.Context, user core.UserID, id int64, patch core.TransactionPatch) (updated core.Transaction, err error) {
	defer s.observe(ctx, log.OpUpdate, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var (
		amount   decimal.Decimal
		category string
	)
	if patch.Amount != nil {
		if amount, err = core.NormalizeAmount(*patch.Amount); err != nil {
			return core.Transaction{}, err
		}
	}
	if patch.Category != nil {
		if category, err = core.NormalizeCategoryName(*patch.Category); err != nil {
			return core.Transaction{}, err
		}
		if err := s.categories.EnsureDefaultsSeeded(ctx); err != nil {
			return core.Transaction{}, err
		}
	}
	if patch.Description != nil {
		if err := core.ValidateDescription(strings.TrimSpace(*patch.Description)); err != nil {
			return core.Transaction{}, err
		}
	}

	err = s.store.WithTx(ctx, func(r Repositories) error {
		t, err := r.Transactions().FindTransaction(ctx, user, id)
		if err != nil {
			return err
		}
		if patch.Amount != nil {
			t.Amount = amount
		}
		if patch.Category != nil {
			typ, err := classifyIn(ctx, r, user, category)
			if err != nil {
				return err
			}
			t.Category, t.Type = category, typ
		}
		if patch.Description != nil {
			t.Description = strings.TrimSpace(*patch.Description)
		}
		if err := r.Transactions().UpdateTransaction(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldUserID, user,
		log.FieldTransactionID, id,
		log.FieldAmount, core.FormatAmount(updated.Amount),
		log.FieldCategory, updated.Category)

	s.publish(ctx, amqp.EventTransactionUpdated, updated)
	return updated, nil
}

func (s *LedgerService) Delete(ctx context.Context, user core.UserID, id int64) (err error) {
	defer s.observe(ctx, log.OpDelete, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return err
	}

	var deleted core.Transaction
	err = s.store.WithTx(ctx, func(r Repositories) error {
		t, err := r.Transactions().FindTransaction(ctx, user, id)
		if err != nil {
			return err
		}
		deleted = t
		return r.Transactions().DeleteTransaction(ctx, user, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldUserID, user, log.FieldTransactionID, id)
	s.publish(ctx, amqp.EventTransactionDeleted, deleted)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, typ amqp.EventType, t core.Transaction) {
	evt := amqp.NewLedgerEvent(typ, string(t.Owner), t.ID)
	evt.Category = t.Category
	publishBestEffort(ctx, s.logger, s.publisher, evt)
}
