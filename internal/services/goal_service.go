package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// GoalService manages savings goals. Progress is never stored; it is
// derived from the ledger's net flow since each goal's start date.
type GoalService struct {
	instrument
	store Store
	now   func() time.Time
}

// NewGoalService builds the service. now defaults to time.Now.
func NewGoalService(store Store, now func() time.Time, logger *log.Logger, collector metrics.Collector) *GoalService {
	if now == nil {
		now = time.Now
	}
	return &GoalService{
		instrument: newInstrument(log.ComponentGoals, logger, collector),
		store:      store,
		now:        now,
	}
}

func (s *GoalService) today() core.Date {
	return core.Today(s.now())
}

func (s *GoalService) Create(ctx context.Context, user core.UserID, n core.NewGoal) (p core.GoalProgress, err error) {
	defer s.observe(ctx, log.OpCreate, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.GoalProgress{}, err
	}
	today := s.today()
	n, err = n.Normalize(today)
	if err != nil {
		return core.GoalProgress{}, err
	}

	g, err := s.store.Goals().InsertGoal(ctx, core.SavingsGoal{
		Name:         n.Name,
		TargetAmount: n.TargetAmount,
		TargetDate:   n.TargetDate,
		StartDate:    n.StartDate,
		Owner:        user,
	})
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("insert goal: %w", err)
	}

	s.logger.InfoContext(ctx, "Savings goal created",
		log.FieldUserID, user,
		log.FieldGoalID, g.ID,
		log.FieldAmount, core.FormatAmount(g.TargetAmount))

	return s.progress(ctx, g, today)
}

func (s *GoalService) Get(ctx context.Context, user core.UserID, id int64) (p core.GoalProgress, err error) {
	defer s.observe(ctx, log.OpRead, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.GoalProgress{}, err
	}
	g, err := s.store.Goals().FindGoal(ctx, user, id)
	if err != nil {
		return core.GoalProgress{}, err
	}
	return s.progress(ctx, g, s.today())
}

// List returns every goal of user with its current progress.
func (s *GoalService) List(ctx context.Context, user core.UserID) (out []core.GoalProgress, err error) {
	defer s.observe(ctx, log.OpList, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return nil, err
	}
	goals, err := s.store.Goals().ListGoals(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	if len(goals) == 0 {
		return []core.GoalProgress{}, nil
	}

	// One ledger read covers every goal: each only needs the entries since
	// its own start date.
	today := s.today()
	earliest := goals[0].StartDate
	for _, g := range goals[1:] {
		if g.StartDate.Before(earliest) {
			earliest = g.StartDate
		}
	}
	txs, err := s.store.Transactions().ListTransactions(ctx, user, core.TransactionFilter{Start: earliest, End: today})
	if err != nil {
		return nil, fmt.Errorf("load transactions for goals: %w", err)
	}

	out = make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, core.ComputeProgress(g, core.NetFlow(txs, g.StartDate, today)))
	}
	return out, nil
}

// Update changes the target amount and/or target date of goal id.
func (s *GoalService) Update(ctx context.Context, user core.UserID, id int64, patch core.GoalPatch) (p core.GoalProgress, err error) {
	defer s.observe(ctx, log.OpUpdate, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return core.GoalProgress{}, err
	}
	today := s.today()
	if patch.TargetAmount != nil {
		a, err := core.NormalizeAmount(*patch.TargetAmount)
		if err != nil {
			return core.GoalProgress{}, err
		}
		patch.TargetAmount = &a
	}
	if patch.TargetDate != nil {
		if err := core.ValidateTargetDate(*patch.TargetDate, today); err != nil {
			return core.GoalProgress{}, err
		}
	}

	var g core.SavingsGoal
	err = s.store.WithTx(ctx, func(r Repositories) error {
		g, err = r.Goals().FindGoal(ctx, user, id)
		if err != nil {
			return err
		}
		if patch.TargetAmount != nil {
			g.TargetAmount = *patch.TargetAmount
		}
		if patch.TargetDate != nil {
			g.TargetDate = *patch.TargetDate
		}
		return r.Goals().UpdateGoal(ctx, g)
	})
	if err != nil {
		return core.GoalProgress{}, err
	}

	s.logger.InfoContext(ctx, "Savings goal updated",
		log.FieldUserID, user,
		log.FieldGoalID, id,
		log.FieldAmount, core.FormatAmount(g.TargetAmount))

	return s.progress(ctx, g, today)
}

// Delete removes goal id. Ledger entries are not touched.
func (s *GoalService) Delete(ctx context.Context, user core.UserID, id int64) (err error) {
	defer s.observe(ctx, log.OpDelete, time.Now(), &err)

	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.store.Goals().DeleteGoal(ctx, user, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Savings goal deleted", log.FieldUserID, user, log.FieldGoalID, id)
	return nil
}

func (s *GoalService) progress(ctx context.Context, g core.SavingsGoal, today core.Date) (core.GoalProgress, error) {
	txs, err := s.store.Transactions().ListTransactions(ctx, g.Owner, core.TransactionFilter{Start: g.StartDate, End: today})
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("load transactions for goal %d: %w", g.ID, err)
	}
	return core.ComputeProgress(g, core.NetFlow(txs, g.StartDate, today)), nil
}
