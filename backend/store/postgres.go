// ABOUTME: Postgres calculation store using sqlx and lib/pq
// ABOUTME: Creates its table on connect and stores input and result as JSONB

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS calculations (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	input      JSONB NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS calculations_kind_created_idx ON calculations (kind, created_at DESC);
`

const selectColumns = `SELECT id, name, kind, input, result, created_at FROM calculations`

// row mirrors the table; JSONB scans into []byte
type row struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Kind      string    `db:"kind"`
	Input     []byte    `db:"input"`
	Result    []byte    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

func (r row) model() models.SavedCalculation {
	return models.SavedCalculation{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      models.CalculationKind(r.Kind),
		Input:     r.Input,
		Result:    r.Result,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to dsn, waiting for the database to accept
// connections, and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	for attempt := 1; attempt <= 10; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database ping: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("database ping timeout: %w", err)
}

func (s *PostgresStore) Save(ctx context.Context, calc models.SavedCalculation) (models.SavedCalculation, error) {
	calc = stamp(calc)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calculations (id, name, kind, input, result, created_at) VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6)`,
		calc.ID, calc.Name, string(calc.Kind), string(calc.Input), string(calc.Result), calc.CreatedAt)
	if err != nil {
		return models.SavedCalculation{}, fmt.Errorf("inserting calculation: %w", err)
	}
	return calc, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.SavedCalculation, error) {
	var r row
	err := s.db.GetContext(ctx, &r, selectColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SavedCalculation{}, ErrNotFound
	}
	if err != nil {
		return models.SavedCalculation{}, fmt.Errorf("fetching calculation %s: %w", id, err)
	}
	return r.model(), nil
}

func (s *PostgresStore) List(ctx context.Context, kind models.CalculationKind) ([]models.SavedCalculation, error) {
	var rows []row
	var err error
	if kind == "" {
		err = s.db.SelectContext(ctx, &rows, selectColumns+` ORDER BY created_at DESC, id`)
	} else {
		err = s.db.SelectContext(ctx, &rows, selectColumns+` WHERE kind = $1 ORDER BY created_at DESC, id`, string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("listing calculations: %w", err)
	}

	calcs := make([]models.SavedCalculation, 0, len(rows))
	for _, r := range rows {
		calcs = append(calcs, r.model())
	}
	return calcs, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calculations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting calculation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting calculation %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
