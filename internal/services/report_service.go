package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// ReportService summarises a user's ledger over calendar periods.
type ReportService struct {
	instrument
	store Store
}

func NewReportService(store Store, logger *log.Logger, collector metrics.Collector) *ReportService {
	return &ReportService{
		instrument: newInstrument(log.ComponentReports, logger, collector),
		store:      store,
	}
}

func (s *ReportService) Monthly(ctx context.Context, user core.UserID, year, month int) (core.Report, error) {
	start, end, err := core.MonthRange(year, month)
	if err != nil {
		return core.Report{}, err
	}
	r, err := s.Range(ctx, user, start, end)
	if err != nil {
		return core.Report{}, err
	}
	r.Year, r.Month = year, month
	return r, nil
}

func (s *ReportService) Yearly(ctx context.Context, user core.UserID, year int) (core.Report, error) {
	start, end, err := core.YearRange(year)
	if err != nil {
		return core.Report{}, err
	}
	r, err := s.Range(ctx, user, start, end)
	if err != nil {
		return core.Report{}, err
	}
	r.Year = year
	return r, nil
}

// Range reports over the inclusive span [start, end].
func (s *ReportService) Range(ctx context.Context, user core.UserID, start, end core.Date) (r core.Report, err error) {
	defer s.observe(ctx, log.OpReport, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.Report{}, err
	}
	if err := start.Validate(); err != nil {
		return core.Report{}, err
	}
	if err := end.Validate(); err != nil {
		return core.Report{}, err
	}
	f := core.TransactionFilter{Start: start, End: end}
	if err := f.Validate(); err != nil {
		return core.Report{}, err
	}

	txs, err := s.store.Transactions().ListTransactions(ctx, user, f)
	if err != nil {
		return core.Report{}, fmt.Errorf("load transactions for report: %w", err)
	}
	r = core.Aggregate(txs, start, end)
	if start.Year() == end.Year() {
		r.Year = start.Year()
	}

	s.logger.DebugContext(ctx, "Report computed",
		log.FieldUserID, user,
		"start", start,
		"end", end,
		"transactions", len(txs))
	return r, nil
}
