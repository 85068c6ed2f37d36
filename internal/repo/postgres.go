package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/reactivities/backend/internal/domain"
	"github.com/pkordes/reactivities/backend/migrations"
)

// db is the minimal interface satisfied by *pgxpool.Conn and pgx.Tx.
// Reads run on the session's connection, writes inside the commit
// transaction; both go through the same query code.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the Postgres implementation of Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. Close on the store closes the pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres creates a pool for dsn and verifies the database is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	// New does not open connections; the ping below does.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenPostgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo.OpenPostgres: ping: %w", err)
	}
	return NewPostgresStore(pool), nil
}

// Begin acquires a pooled connection for the lifetime of one unit of work.
func (s *PostgresStore) Begin(ctx context.Context) (*UnitOfWork, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Begin: %w", classify(ctx, err))
	}
	return newUnitOfWork(&pgSession{conn: conn}), nil
}

// Migrate applies the embedded Postgres migrations with goose.
// goose needs database/sql, so the pool is exposed through pgx's stdlib shim.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(s.pool)
	defer sqlDB.Close()

	if _, err := migrations.Up(ctx, sqlDB, goose.DialectPostgres); err != nil {
		return fmt.Errorf("repo.PostgresStore.Migrate: %w", err)
	}
	return nil
}

// Ping verifies a connection can be made.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// pgSession is one acquired connection.
type pgSession struct {
	conn *pgxpool.Conn
}

const activityColumns = `id, title, date, description, category, city, venue, latitude, longitude, is_cancelled`

func (p *pgSession) list(ctx context.Context) ([]domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		ORDER BY seq`

	rows, err := p.conn.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres list: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres list: scan: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres list: rows: %w", err)
	}
	return activities, nil
}

func (p *pgSession) get(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = @id`

	a, err := scanActivity(p.conn.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("postgres get: %w", err)
	}
	return a, nil
}

func (p *pgSession) save(ctx context.Context, inserts, updates []domain.Activity) error {
	return pgx.BeginFunc(ctx, p.conn, func(tx pgx.Tx) error {
		for _, a := range inserts {
			if err := insertActivity(ctx, tx, a); err != nil {
				return err
			}
		}
		for _, a := range updates {
			if err := updateActivity(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *pgSession) release() {
	p.conn.Release()
}

func insertActivity(ctx context.Context, d db, a domain.Activity) error {
	const q = `
		INSERT INTO activities (` + activityColumns + `)
		VALUES (@id, @title, @date, @description, @category, @city, @venue, @latitude, @longitude, @is_cancelled)`

	if _, err := d.Exec(ctx, q, activityArgs(a)); err != nil {
		return fmt.Errorf("postgres insert %s: %w", a.ID, err)
	}
	return nil
}

func updateActivity(ctx context.Context, d db, a domain.Activity) error {
	const q = `
		UPDATE activities
		SET title        = @title,
		    date         = @date,
		    description  = @description,
		    category     = @category,
		    city         = @city,
		    venue        = @venue,
		    latitude     = @latitude,
		    longitude    = @longitude,
		    is_cancelled = @is_cancelled
		WHERE id = @id`

	tag, err := d.Exec(ctx, q, activityArgs(a))
	if err != nil {
		return fmt.Errorf("postgres update %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres update %s: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

func activityArgs(a domain.Activity) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":           a.ID,
		"title":        a.Title,
		"date":         a.Date,
		"description":  a.Description,
		"category":     a.Category,
		"city":         a.City,
		"venue":        a.Venue,
		"latitude":     a.Latitude,
		"longitude":    a.Longitude,
		"is_cancelled": a.IsCancelled,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanActivity
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanActivity maps a single database row into a domain.Activity.
func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a  domain.Activity
		id pgtype.UUID
	)

	err := s.Scan(&id, &a.Title, &a.Date, &a.Description, &a.Category,
		&a.City, &a.Venue, &a.Latitude, &a.Longitude, &a.IsCancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.Date = a.Date.UTC()
	return a, nil
}
