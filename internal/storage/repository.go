package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

// Dialect selects the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

const (
	syncPending = "pending"
	syncDone    = "synced"
	syncError   = "error"
)

const expenseColumns = "id, owner, category, amount_cents, recorded_at, source_text"

// Repository is the SQL ledger store. Timestamps are stored as UTC unix
// microseconds and amounts as integer cents, so one set of statements serves
// both dialects.
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

var (
	_ ledger.Store      = (*Repository)(nil)
	_ ledger.Reader     = (*Repository)(nil)
	_ ledger.Pinger     = (*Repository)(nil)
	_ ledger.SyncSource = (*Repository)(nil)
)

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(DialectSQLite, dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db, dialect: DialectSQLite}, nil
}

func NewPostgresRepository(dsn string) (*Repository, error) {
	if err := RunMigrations(DialectPostgres, dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db, dialect: DialectPostgres}, nil
}

func (r *Repository) Dialect() Dialect { return r.dialect }

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Insert(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.QueryRowContext(ctx, r.rebind(
		`INSERT INTO expenses (owner, category, amount_cents, recorded_at, source_text)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`),
		e.Owner, e.Category, core.ToCents(e.Amount), e.RecordedAt.UTC().UnixMicro(), e.SourceText,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved", "id", id, "dialect", r.dialect)
	return id, nil
}

func (r *Repository) Delete(ctx context.Context, owner string, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(
		`DELETE FROM expenses WHERE id = ? AND owner = ? RETURNING `+expenseColumns), id, owner)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("delete expense %d: %w", id, err)
	}
	return e, nil
}

func (r *Repository) DeleteLatest(ctx context.Context, owner string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(
		`DELETE FROM expenses WHERE id = (
			SELECT id FROM expenses WHERE owner = ? ORDER BY recorded_at DESC, id DESC LIMIT 1
		) RETURNING `+expenseColumns), owner)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("delete latest expense: %w", err)
	}
	return e, nil
}

func (r *Repository) QueryRecent(ctx context.Context, owner string, limit int) ([]core.Expense, error) {
	if limit < 0 {
		limit = math.MaxInt32
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT `+expenseColumns+` FROM expenses WHERE owner = ?
		 ORDER BY recorded_at DESC, id DESC LIMIT ?`), owner, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent expenses: %w", err)
	}
	return scanExpenses(rows)
}

func (r *Repository) QueryRange(ctx context.Context, owner string, dr core.DateRange) ([]core.Expense, error) {
	from, until := dr.Bounds()
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE owner = ? AND recorded_at >= ? AND recorded_at < ?
		 ORDER BY recorded_at, id`), owner, from.UTC().UnixMicro(), until.UTC().UnixMicro())
	if err != nil {
		return nil, fmt.Errorf("query expenses in range: %w", err)
	}
	return scanExpenses(rows)
}

// Get retrieves a single expense by ID
func (r *Repository) Get(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`), id)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// PendingSync returns expenses not yet mirrored downstream, oldest first.
// Records marked with a sync error are retried.
func (r *Repository) PendingSync(ctx context.Context, limit int) ([]core.Expense, error) {
	if limit < 0 {
		limit = math.MaxInt32
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT `+expenseColumns+` FROM expenses WHERE sync_status <> ? ORDER BY id LIMIT ?`), syncDone, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	return scanExpenses(rows)
}

// MarkSynced marks an expense as successfully synced
func (r *Repository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE expenses SET sync_status = ?, synced_at = ? WHERE id = ?`),
		syncDone, time.Now().UTC().UnixMicro(), id)
	if err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}

// MarkSyncError marks an expense as having sync errors
func (r *Repository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`UPDATE expenses SET sync_status = ? WHERE id = ?`), syncError, id)
	if err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}

	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

// rebind rewrites '?' placeholders to '$n' for PostgreSQL.
func (r *Repository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e           core.Expense
		amountCents int64
		recordedAt  int64
	)
	err := row.Scan(&e.ID, &e.Owner, &e.Category, &amountCents, &recordedAt, &e.SourceText)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, err
	}
	e.Amount = core.FromCents(amountCents)
	e.RecordedAt = time.UnixMicro(recordedAt).UTC()
	return e, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
