package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLRepository is the ledger store over database/sql. Aggregation happens
// in the engine, so both dialects share every query.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	pool    *pgxpool.Pool
	now     func() time.Time
}

var _ ledger.Store = (*SQLRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open(SQLite.driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer connection avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(SQLite, dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: SQLite, now: time.Now}, nil
}

// NewPostgresRepository connects through a pgx pool and exposes it as a
// database/sql handle.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*SQLRepository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 2 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(Postgres, databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{
		db:      stdlib.OpenDBFromPool(pool),
		dialect: Postgres,
		pool:    pool,
		now:     time.Now,
	}, nil
}

func (r *SQLRepository) Close() error {
	var err error
	if r.db != nil {
		err = r.db.Close()
	}
	if r.pool != nil {
		r.pool.Close()
	}
	return err
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Dialect reports which SQL engine backs the repository.
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

func (r *SQLRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a = a.Normalize()
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	q := r.dialect.rebind(`INSERT INTO accounts (name, currency) VALUES (?, ?) RETURNING id`)
	if err := r.db.QueryRowContext(ctx, q, a.Name, a.Currency).Scan(&a.ID); err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved", "id", a.ID, "name", a.Name, "currency", a.Currency)
	return a, nil
}

func (r *SQLRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, currency FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	q := r.dialect.rebind(`INSERT INTO categories (name) VALUES (?) RETURNING id`)
	if err := r.db.QueryRowContext(ctx, q, c.Name).Scan(&c.ID); err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// CreateCategories inserts names in one transaction.
func (r *SQLRepository) CreateCategories(ctx context.Context, names []string) ([]core.Category, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin category batch: %w", err)
	}
	defer tx.Rollback()

	q := r.dialect.rebind(`INSERT INTO categories (name) VALUES (?) RETURNING id`)
	cats := make([]core.Category, 0, len(names))
	for _, name := range names {
		c := core.Category{Name: strings.TrimSpace(name)}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if err := tx.QueryRowContext(ctx, q, c.Name).Scan(&c.ID); err != nil {
			return nil, fmt.Errorf("insert category %q: %w", c.Name, err)
		}
		cats = append(cats, c)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit category batch: %w", err)
	}
	return cats, nil
}

func (r *SQLRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}
	t.CreatedAt = core.Timestamp(t.CreatedAt)

	q := r.dialect.rebind(`INSERT INTO transactions (account_id, amount, note, category_id, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowContext(ctx, q,
		t.AccountID, t.Amount, t.Note, nullableID(t.CategoryID), r.dialect.timeArg(t.CreatedAt),
	).Scan(&t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"account_id", t.AccountID,
		"amount", t.Amount.String(),
		"created_at", t.CreatedAt)
	return t, nil
}

const selectTransaction = `SELECT id, account_id, amount, note, category_id, created_at FROM transactions`

func (r *SQLRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return r.getTransaction(ctx, r.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLRepository) getTransaction(ctx context.Context, q queryer, id int64) (core.Transaction, error) {
	row := q.QueryRowContext(ctx, r.dialect.rebind(selectTransaction+` WHERE id = ?`), id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLRepository) ListTransactions(ctx context.Context, f ledger.TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.AccountID != 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.Period != nil {
		where = append(where, "created_at >= ?", "created_at < ?")
		args = append(args, r.dialect.timeArg(f.Period.Start), r.dialect.timeArg(f.Period.End))
	}
	q := selectTransaction
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(q), args...)
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
	return out, rows.Err()
}

func (r *SQLRepository) UpdateTransaction(ctx context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error) {
	if err := u.Validate(); err != nil {
		return core.Transaction{}, err
	}
	q := r.dialect.rebind(`UPDATE transactions SET amount = ?, note = ?, category_id = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, u.Amount, u.Note, nullableID(u.CategoryID), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id, "amount", u.Amount.String())
	return r.GetTransaction(ctx, id)
}

// DeleteTransaction removes the transaction and returns it as it was.
func (r *SQLRepository) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	t, err := r.getTransaction(ctx, tx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := tx.ExecContext(ctx, r.dialect.rebind(`DELETE FROM transactions WHERE id = ?`), id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "account_id", t.AccountID)
	return t, nil
}

// Entries implements ledger.Reader.
func (r *SQLRepository) Entries(ctx context.Context, f ledger.EntryFilter) ([]core.Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.AccountID != 0 {
		where = append(where, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	if !f.From.IsZero() {
		where = append(where, "t.created_at >= ?")
		args = append(args, r.dialect.timeArg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "t.created_at < ?")
		args = append(args, r.dialect.timeArg(f.To))
	}
	switch f.Sign {
	case ledger.Positive:
		where = append(where, r.dialect.amountExpr+" > 0")
	case ledger.Negative:
		where = append(where, r.dialect.amountExpr+" < 0")
	}

	q := `SELECT t.id, t.account_id, t.amount, COALESCE(c.name, ''), t.created_at
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY t.created_at, t.id"

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("scan entries: %w", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		var (
			e       core.Entry
			created any
		)
		if err := rows.Scan(&e.TransactionID, &e.AccountID, &e.Amount, &e.Category, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.CreatedAt, err = scanTime(created); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.TransactionID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		amount   decimal.Decimal
		category sql.NullInt64
		created  any
	)
	if err := s.Scan(&t.ID, &t.AccountID, &amount, &t.Note, &category, &created); err != nil {
		return core.Transaction{}, err
	}
	t.Amount = amount
	if category.Valid {
		id := category.Int64
		t.CategoryID = &id
	}
	ts, err := scanTime(created)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CreatedAt = ts
	return t, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
