package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository and runs
// migrations.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}

	if err := repo.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return repo, nil
}

// Migrate runs database migrations.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS valuations (
			user_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			value TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_date ON valuations(date)`,

		`CREATE TABLE IF NOT EXISTS benchmarks (
			name TEXT NOT NULL,
			date DATETIME NOT NULL,
			value TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (name, date)
		)`,

		`CREATE TABLE IF NOT EXISTS alert_thresholds (
			user_id TEXT PRIMARY KEY,
			warning_pct TEXT NOT NULL,
			critical_pct TEXT NOT NULL,
			emergency_pct TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}

	return nil
}

// SaveValuation upserts one daily snapshot for a user.
func (r *SQLiteRepository) SaveValuation(ctx context.Context, userID string, point types.ValuationPoint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO valuations (user_id, date, value)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET value = excluded.value`,
		userID, point.Date.UTC(), point.Value.String(),
	)
	if err != nil {
		return fmt.Errorf("save valuation: %w", err)
	}
	return nil
}

// SaveValuationSeries upserts a whole series in one transaction.
func (r *SQLiteRepository) SaveValuationSeries(ctx context.Context, userID string, series types.ValuationSeries) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO valuations (user_id, date, value)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, point := range series {
		if _, err := stmt.ExecContext(ctx, userID, point.Date.UTC(), point.Value.String()); err != nil {
			return fmt.Errorf("save valuation %s: %w", point.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetValuationSeries returns the user's snapshots ordered by date.
// Zero from/to leave the corresponding bound open. An empty result is
// not an error.
func (r *SQLiteRepository) GetValuationSeries(ctx context.Context, userID string, from, to time.Time) (types.ValuationSeries, error) {
	query := `SELECT date, value FROM valuations WHERE user_id = ?`
	args := []any{userID}

	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.UTC())
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query valuations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSeries(rows)
}

// GetLatestValuation returns the most recent snapshot for a user, or
// ErrSeriesNotFound if none exist.
func (r *SQLiteRepository) GetLatestValuation(ctx context.Context, userID string) (*types.ValuationPoint, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT date, value FROM valuations
		WHERE user_id = ?
		ORDER BY date DESC LIMIT 1`, userID)

	point, err := scanPoint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, types.ErrSeriesNotFound)
		}
		return nil, fmt.Errorf("query latest valuation: %w", err)
	}
	return point, nil
}

// ListUsers returns the distinct user IDs with stored valuations.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM valuations ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// SaveBenchmarkPoint upserts one benchmark observation.
func (r *SQLiteRepository) SaveBenchmarkPoint(ctx context.Context, name string, point types.ValuationPoint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO benchmarks (name, date, value)
		VALUES (?, ?, ?)
		ON CONFLICT(name, date) DO UPDATE SET value = excluded.value`,
		name, point.Date.UTC(), point.Value.String(),
	)
	if err != nil {
		return fmt.Errorf("save benchmark point: %w", err)
	}
	return nil
}

// GetBenchmarkSeries returns a benchmark series ordered by date.
func (r *SQLiteRepository) GetBenchmarkSeries(ctx context.Context, name string, from, to time.Time) (types.ValuationSeries, error) {
	query := `SELECT date, value FROM benchmarks WHERE name = ?`
	args := []any{name}

	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.UTC())
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query benchmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSeries(rows)
}

// SaveThresholds upserts a user's alert tier configuration. The config
// is validated before it is written so a misordered config never
// reaches evaluation.
func (r *SQLiteRepository) SaveThresholds(ctx context.Context, userID string, cfg types.AlertThresholdConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_thresholds (user_id, warning_pct, critical_pct, emergency_pct, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			warning_pct = excluded.warning_pct,
			critical_pct = excluded.critical_pct,
			emergency_pct = excluded.emergency_pct,
			updated_at = CURRENT_TIMESTAMP`,
		userID, cfg.WarningPct.String(), cfg.CriticalPct.String(), cfg.EmergencyPct.String(),
	)
	if err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}
	return nil
}

// GetThresholds returns a user's alert tier configuration, or nil when
// the user has none configured.
func (r *SQLiteRepository) GetThresholds(ctx context.Context, userID string) (*types.AlertThresholdConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT warning_pct, critical_pct, emergency_pct
		FROM alert_thresholds WHERE user_id = ?`, userID)

	var warning, critical, emergency string
	if err := row.Scan(&warning, &critical, &emergency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query thresholds: %w", err)
	}

	cfg := types.AlertThresholdConfig{}
	var err error
	if cfg.WarningPct, err = decimal.NewFromString(warning); err != nil {
		return nil, fmt.Errorf("parse warning threshold: %w", err)
	}
	if cfg.CriticalPct, err = decimal.NewFromString(critical); err != nil {
		return nil, fmt.Errorf("parse critical threshold: %w", err)
	}
	if cfg.EmergencyPct, err = decimal.NewFromString(emergency); err != nil {
		return nil, fmt.Errorf("parse emergency threshold: %w", err)
	}

	return &cfg, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanSeries(rows *sql.Rows) (types.ValuationSeries, error) {
	series := make(types.ValuationSeries, 0)
	for rows.Next() {
		var date time.Time
		var value string
		if err := rows.Scan(&date, &value); err != nil {
			return nil, fmt.Errorf("scan valuation: %w", err)
		}

		dec, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("parse value %q: %w", value, err)
		}

		series = append(series, types.ValuationPoint{Date: date, Value: dec})
	}
	return series, rows.Err()
}

func scanPoint(row *sql.Row) (*types.ValuationPoint, error) {
	var date time.Time
	var value string
	if err := row.Scan(&date, &value); err != nil {
		return nil, err
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse value %q: %w", value, err)
	}

	return &types.ValuationPoint{Date: date, Value: dec}, nil
}
