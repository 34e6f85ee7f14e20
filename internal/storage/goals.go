package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

const goalColumns = `id, owner, name, target_amount, target_date, start_date`

func scanGoal(row interface{ Scan(...any) error }) (core.SavingsGoal, error) {
	var (
		g                     core.SavingsGoal
		owner, target         string
		targetDate, startDate string
	)
	if err := row.Scan(&g.ID, &owner, &g.Name, &target, &targetDate, &startDate); err != nil {
		return core.SavingsGoal{}, err
	}
	var err error
	if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("parse target amount %q: %w", target, err)
	}
	if g.TargetDate, err = core.ParseDate(targetDate); err != nil {
		return core.SavingsGoal{}, err
	}
	if g.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.SavingsGoal{}, err
	}
	g.Owner = core.UserID(owner)
	return g, nil
}

func (r repo) InsertGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO savings_goals (owner, name, target_amount, target_date, start_date) VALUES (?, ?, ?, ?, ?)`,
		string(g.Owner), g.Name, core.FormatAmount(g.TargetAmount), g.TargetDate.String(), g.StartDate.String())
	if err != nil {
		return core.SavingsGoal{}, mapError(fmt.Errorf("insert goal: %w", err))
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal id: %w", err)
	}
	return g, nil
}

func (r repo) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE savings_goals
		 SET name = ?, target_amount = ?, target_date = ?, start_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner = ?`,
		g.Name, core.FormatAmount(g.TargetAmount), g.TargetDate.String(), g.StartDate.String(), g.ID, string(g.Owner))
	if err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, err)
	}
	return expectOneRow(res, fmt.Sprintf("goal %d", g.ID))
}

func (r repo) DeleteGoal(ctx context.Context, owner core.UserID, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ? AND owner = ?`, id, string(owner))
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	return expectOneRow(res, fmt.Sprintf("goal %d", id))
}

func (r repo) FindGoal(ctx context.Context, owner core.UserID, id int64) (core.SavingsGoal, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND owner = ?`, id, string(owner))
	g, err := scanGoal(row)
	if err != nil {
		return core.SavingsGoal{}, mapError(fmt.Errorf("find goal %d: %w", id, err))
	}
	return g, nil
}

func (r repo) ListGoals(ctx context.Context, owner core.UserID) ([]core.SavingsGoal, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE owner = ? ORDER BY id`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
