package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

const categoryColumns = `id, owner, name, type, is_custom`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c     core.Category
		owner string
		typ   string
	)
	if err := row.Scan(&c.ID, &owner, &c.Name, &typ, &c.IsCustom); err != nil {
		return core.Category{}, err
	}
	c.Owner = core.UserID(owner)
	c.Type = core.TransactionType(typ)
	return c, nil
}

func (r repo) ListCategories(ctx context.Context, owner core.UserID) ([]core.Category, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner = ? ORDER BY id`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r repo) FindCategory(ctx context.Context, owner core.UserID, name string) (core.Category, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner = ? AND name = ?`, string(owner), name)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, mapError(fmt.Errorf("find category %q: %w", name, err))
	}
	return c, nil
}

func (r repo) CountCategories(ctx context.Context, owner core.UserID) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE owner = ?`, string(owner)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (r repo) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO categories (owner, name, type, is_custom) VALUES (?, ?, ?, ?)`,
		string(c.Owner), c.Name, string(c.Type), c.IsCustom)
	if err != nil {
		return core.Category{}, mapError(fmt.Errorf("insert category %q: %w", c.Name, err))
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}

	slog.DebugContext(ctx, "Category saved to SQLite", "id", c.ID, "name", c.Name, "owner", c.Owner)
	return c, nil
}

func (r repo) DeleteCategory(ctx context.Context, owner core.UserID, name string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM categories WHERE owner = ? AND name = ?`, string(owner), name)
	if err != nil {
		return fmt.Errorf("delete category %q: %w", name, err)
	}
	return expectOneRow(res, fmt.Sprintf("category %q", name))
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, what)
	}
	return nil
}
