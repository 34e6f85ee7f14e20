package services

import (
	"time"

	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// Services bundles the four domain services over one store.
type Services struct {
	Categories *CategoryService
	Ledger     *LedgerService
	Reports    *ReportService
	Goals      *GoalService
}

type Config struct {
	Store     Store
	Publisher EventPublisher // optional
	Logger    *log.Logger
	Metrics   metrics.Collector
	Now       func() time.Time

	DefaultsCacheTTL time.Duration
}

func New(cfg Config) *Services {
	categories := NewCategoryService(CategoryServiceConfig{
		Store:       cfg.Store,
		Publisher:   cfg.Publisher,
		Logger:      cfg.Logger,
		Metrics:     cfg.Metrics,
		DefaultsTTL: cfg.DefaultsCacheTTL,
	})
	return &Services{
		Categories: categories,
		Ledger:     NewLedgerService(cfg.Store, categories, cfg.Publisher, cfg.Logger, cfg.Metrics),
		Reports:    NewReportService(cfg.Store, cfg.Logger, cfg.Metrics),
		Goals:      NewGoalService(cfg.Store, cfg.Now, cfg.Logger, cfg.Metrics),
	}
}
