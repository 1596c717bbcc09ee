package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensemate/internal/core"
	"expensemate/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectColumns = `SELECT id, owner, amount, category, type, occurred_at, description FROM transactions`

func (r *SQLiteRepository) Create(ctx context.Context, owner string, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	rec := n.Normalize().Record(uuid.NewString(), owner)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner, amount, category, type, occurred_at, occurred_ts, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.Amount, string(rec.Category), string(rec.Type),
		rec.Date.Format(time.RFC3339Nano), rec.Date.UnixMilli(), rec.Description)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite", "id", rec.ID, "type", rec.Type, "amount", rec.Amount)
	return rec, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		selectColumns+` WHERE owner = ? ORDER BY occurred_ts DESC, id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get %s: %w", id, store.ErrNotFound)
	}
	return rec, err
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	n = n.Normalize()

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, category = ?, type = ?, occurred_at = ?, occurred_ts = ?, description = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		n.Amount, string(n.Category), string(n.Type),
		n.Date.Format(time.RFC3339Nano), n.Date.UnixMilli(), n.Description, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return core.Transaction{}, fmt.Errorf("update %s: %w", id, store.ErrNotFound)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, owner string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner = ?`, owner)
	if err != nil {
		return fmt.Errorf("delete owner transactions: %w", err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Owner transactions deleted", "owner", owner, "count", n)
	return nil
}

func (r *SQLiteRepository) MonthlyBudget(ctx context.Context, owner string) (decimal.NullDecimal, error) {
	var raw sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT monthly_budget FROM preferences WHERE owner = ?`, owner).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !raw.Valid) {
		return decimal.NullDecimal{}, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("get monthly budget: %w", err)
	}
	d, err := decimal.NewFromString(raw.String)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse stored budget %q: %w", raw.String, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func (r *SQLiteRepository) SetMonthlyBudget(ctx context.Context, owner string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &core.ValidationError{Field: "budget", Err: core.ErrNegativeAmount}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (owner, monthly_budget) VALUES (?, ?)
		 ON CONFLICT(owner) DO UPDATE SET monthly_budget = excluded.monthly_budget, updated_at = CURRENT_TIMESTAMP`,
		owner, amount.String())
	if err != nil {
		return fmt.Errorf("set monthly budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RemoveMonthlyBudget(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE preferences SET monthly_budget = NULL, updated_at = CURRENT_TIMESTAMP WHERE owner = ?`, owner)
	if err != nil {
		return fmt.Errorf("remove monthly budget: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		rec                core.Transaction
		category, typ, raw string
	)
	if err := row.Scan(&rec.ID, &rec.Owner, &rec.Amount, &category, &typ, &raw, &rec.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	date, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", raw, err)
	}
	rec.Category = core.Category(category)
	rec.Type = core.TxType(typ)
	rec.Date = date
	return rec, nil
}
