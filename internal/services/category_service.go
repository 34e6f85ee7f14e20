package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"

	"golang.org/x/sync/singleflight"
)

const defaultsCacheKey = "defaults"

// CategoryService is the category registry: the shared default set plus
// each user's custom categories, which together form one namespace per
// user.
type CategoryService struct {
	instrument
	store     Store
	publisher EventPublisher

	// Defaults are immutable once seeded, so they are safe to cache.
	defaults *cache.LRUCache[[]core.Category]
	seed     singleflight.Group
	seeded   atomic.Bool
}

type CategoryServiceConfig struct {
	Store       Store
	Publisher   EventPublisher
	Logger      *log.Logger
	Metrics     metrics.Collector
	DefaultsTTL time.Duration
}

func NewCategoryService(cfg CategoryServiceConfig) *CategoryService {
	return &CategoryService{
		instrument: newInstrument(log.ComponentCategories, cfg.Logger, cfg.Metrics),
		store:      cfg.Store,
		publisher:  cfg.Publisher,
		defaults:   cache.NewLRUCache[[]core.Category](1, cfg.DefaultsTTL),
	}
}

// DefaultsCache exposes the defaults cache for periodic expiry sweeps.
func (s *CategoryService) DefaultsCache() cache.Cleaner {
	return s.defaults
}

// EnsureDefaultsSeeded inserts the default set if no ownerless category
// exists. Concurrent callers in this process share one attempt; a seed
// racing in from another process is detected by the (owner, name) unique
// constraint and treated as success.
func (s *CategoryService) EnsureDefaultsSeeded(ctx context.Context) (err error) {
	if s.seeded.Load() {
		return nil
	}
	defer s.observe(ctx, log.OpSeed, time.Now(), &err)

	_, err, _ = s.seed.Do(defaultsCacheKey, func() (any, error) {
		inserted := 0
		err := s.store.WithTx(ctx, func(r Repositories) error {
			n, err := r.Categories().CountCategories(ctx, "")
			if err != nil {
				return err
			}
			if n > 0 {
				return nil
			}
			for _, c := range core.DefaultCategories {
				c.IsCustom = false
				c.Owner = ""
				if _, err := r.Categories().InsertCategory(ctx, c); err != nil {
					return err
				}
				inserted++
			}
			return nil
		})
		if errors.Is(err, core.ErrDuplicate) {
			err = nil
			inserted = 0
		}
		if err != nil {
			return nil, fmt.Errorf("seed default categories: %w", err)
		}
		if inserted > 0 {
			s.logger.InfoContext(ctx, "Default categories seeded", "count", inserted)
		}
		s.seeded.Store(true)
		return nil, nil
	})
	return err
}

// defaultCategories returns the seeded default set, from cache when warm.
func (s *CategoryService) defaultCategories(ctx context.Context) ([]core.Category, error) {
	if cached, ok := s.defaults.Get(defaultsCacheKey); ok {
		s.metrics.RecordCacheLookup("default_categories", true)
		return cached, nil
	}
	s.metrics.RecordCacheLookup("default_categories", false)

	if err := s.EnsureDefaultsSeeded(ctx); err != nil {
		return nil, err
	}
	defaults, err := s.store.Categories().ListCategories(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list default categories: %w", err)
	}
	s.defaults.Set(defaultsCacheKey, defaults)
	return defaults, nil
}

func (s *CategoryService) findDefault(ctx context.Context, name string) (core.Category, bool, error) {
	defaults, err := s.defaultCategories(ctx)
	if err != nil {
		return core.Category{}, false, err
	}
	for _, c := range defaults {
		if c.Name == name {
			return c, true, nil
		}
	}
	return core.Category{}, false, nil
}

// lookup resolves name for user against repos, which may be an open
// transaction. The default scope wins over a same-named custom category.
func lookup(ctx context.Context, repos Repositories, user core.UserID, name string) (core.Category, error) {
	c, err := repos.Categories().FindCategory(ctx, "", name)
	if !errors.Is(err, core.ErrNotFound) {
		return c, err
	}
	return repos.Categories().FindCategory(ctx, user, name)
}

// ListAll returns the defaults followed by user's custom categories.
func (s *CategoryService) ListAll(ctx context.Context, user core.UserID) (out []core.Category, err error) {
	defer s.observe(ctx, log.OpList, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return nil, err
	}
	defaults, err := s.defaultCategories(ctx)
	if err != nil {
		return nil, err
	}
	custom, err := s.store.Categories().ListCategories(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list custom categories: %w", err)
	}

	out = make([]core.Category, 0, len(defaults)+len(custom))
	out = append(out, defaults...)
	return append(out, custom...), nil
}

// Create adds a custom category for user. The name must be free among
// both the defaults and user's own categories.
func (s *CategoryService) Create(ctx context.Context, user core.UserID, name string, typ core.TransactionType) (created core.Category, err error) {
	defer s.observe(ctx, log.OpCreate, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.Category{}, err
	}
	name, err = core.NormalizeCategoryName(name)
	if err != nil {
		return core.Category{}, err
	}
	if !typ.IsValid() {
		return core.Category{}, fmt.Errorf("%w: unknown transaction type %q", core.ErrInvalidInput, typ)
	}

	if _, isDefault, err := s.findDefault(ctx, name); err != nil {
		return core.Category{}, err
	} else if isDefault {
		return core.Category{}, fmt.Errorf("%w: %q is a default category", core.ErrDuplicate, name)
	}

	err = s.store.WithTx(ctx, func(r Repositories) error {
		_, err := r.Categories().FindCategory(ctx, user, name)
		switch {
		case err == nil:
			return fmt.Errorf("%w: category %q already exists", core.ErrDuplicate, name)
		case !errors.Is(err, core.ErrNotFound):
			return err
		}
		created, err = r.Categories().InsertCategory(ctx, core.Category{
			Name:     name,
			Type:     typ,
			IsCustom: true,
			Owner:    user,
		})
		return err
	})
	if err != nil {
		return core.Category{}, err
	}

	s.logger.InfoContext(ctx, "Custom category created",
		log.FieldUserID, user,
		log.FieldCategory, name,
		log.FieldType, typ)

	evt := amqp.NewLedgerEvent(amqp.EventCategoryCreated, string(user), 0)
	evt.Category = name
	publishBestEffort(ctx, s.logger, s.publisher, evt)
	return created, nil
}

// Delete removes one of user's custom categories. Defaults and categories
// still referenced by user's transactions cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, user core.UserID, name string) (err error) {
	defer s.observe(ctx, log.OpDelete, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return err
	}
	name, err = core.NormalizeCategoryName(name)
	if err != nil {
		return err
	}

	if _, isDefault, err := s.findDefault(ctx, name); err != nil {
		return err
	} else if isDefault {
		return fmt.Errorf("%w: default category %q cannot be deleted", core.ErrInvalidOperation, name)
	}

	err = s.store.WithTx(ctx, func(r Repositories) error {
		c, err := r.Categories().FindCategory(ctx, user, name)
		if err != nil {
			return err
		}
		if !c.IsCustom {
			return fmt.Errorf("%w: default category %q cannot be deleted", core.ErrInvalidOperation, name)
		}
		n, err := r.Transactions().CountTransactionsByCategory(ctx, user, name)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: category %q is used by %d transactions", core.ErrInvalidOperation, name, n)
		}
		return r.Categories().DeleteCategory(ctx, user, name)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Custom category deleted", log.FieldUserID, user, log.FieldCategory, name)

	evt := amqp.NewLedgerEvent(amqp.EventCategoryDeleted, string(user), 0)
	evt.Category = name
	publishBestEffort(ctx, s.logger, s.publisher, evt)
	return nil
}

// IsValid reports whether name is a default or one of user's categories.
func (s *CategoryService) IsValid(ctx context.Context, user core.UserID, name string) (bool, error) {
	_, err := s.Classify(ctx, user, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Classify returns the type of the category name as seen by user.
func (s *CategoryService) Classify(ctx context.Context, user core.UserID, name string) (typ core.TransactionType, err error) {
	defer s.observe(ctx, log.OpClassify, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return "", err
	}
	c, ok, err := s.findDefault(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		if c, err = s.store.Categories().FindCategory(ctx, user, name); err != nil {
			return "", err
		}
	}
	return c.Type, nil
}

// classifyIn resolves the type inside an open storage transaction. The
// defaults must already be seeded. An unknown category is reported as
// ErrInvalidInput.
func classifyIn(ctx context.Context, repos Repositories, user core.UserID, name string) (core.TransactionType, error) {
	c, err := lookup(ctx, repos, user, name)
	if errors.Is(err, core.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown category %q", core.ErrInvalidInput, name)
	}
	if err != nil {
		return "", err
	}
	return c.Type, nil
}
