package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

const transactionColumns = `id, owner, amount, date, category, description, type`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t                   core.Transaction
		owner, amount, date string
		typ                 string
	)
	if err := row.Scan(&t.ID, &owner, &amount, &date, &t.Category, &t.Description, &typ); err != nil {
		return core.Transaction{}, err
	}
	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.Owner = core.UserID(owner)
	t.Type = core.TransactionType(typ)
	return t, nil
}

func (r repo) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (owner, amount, date, category, description, type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(t.Owner), core.FormatAmount(t.Amount), t.Date.String(), t.Category, t.Description, string(t.Type))
	if err != nil {
		return core.Transaction{}, mapError(fmt.Errorf("insert transaction: %w", err))
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"owner", t.Owner,
		"amount", core.FormatAmount(t.Amount),
		"date", t.Date.String(),
		"category", t.Category)
	return t, nil
}

func (r repo) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, date = ?, category = ?, description = ?, type = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner = ?`,
		core.FormatAmount(t.Amount), t.Date.String(), t.Category, t.Description, string(t.Type), t.ID, string(t.Owner))
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return expectOneRow(res, fmt.Sprintf("transaction %d", t.ID))
}

func (r repo) DeleteTransaction(ctx context.Context, owner core.UserID, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner = ?`, id, string(owner))
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return expectOneRow(res, fmt.Sprintf("transaction %d", id))
}

func (r repo) FindTransaction(ctx context.Context, owner core.UserID, id int64) (core.Transaction, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner = ?`, id, string(owner))
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, mapError(fmt.Errorf("find transaction %d: %w", id, err))
	}
	return t, nil
}

// ListTransactions builds one query whose WHERE clause grows by one
// predicate per present filter field.
func (r repo) ListTransactions(ctx context.Context, owner core.UserID, f core.TransactionFilter) ([]core.Transaction, error) {
	conds := []string{"owner = ?"}
	args := []any{string(owner)}
	if !f.Start.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.Start.String())
	}
	if !f.End.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, f.End.String())
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY date DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r repo) CountTransactionsByCategory(ctx context.Context, owner core.UserID, category string) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE owner = ? AND category = ?`, string(owner), category).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions for category %q: %w", category, err)
	}
	return n, nil
}

func (r repo) ListOwners(ctx context.Context) ([]core.UserID, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT DISTINCT owner FROM transactions ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var out []core.UserID
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		out = append(out, core.UserID(owner))
	}
	return out, rows.Err()
}
