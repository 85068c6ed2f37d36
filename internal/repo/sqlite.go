package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/pkordes/reactivities/backend/internal/domain"
	"github.com/pkordes/reactivities/backend/migrations"
)

const sqliteDriver = "sqlite"

func init() {
	// sqlx does not know the modernc driver name; it takes ? placeholders.
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

// SQLiteStore is the SQLite implementation of Store.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore wraps an existing handle. Tests pass a go-sqlmock handle
// here through sqlx.NewDb.
func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLite opens the database file at path (or ":memory:"), creating it
// if needed, and verifies it can be read.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlx.Open(sqliteDriver, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	if isSQLiteMemory(path) {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	return NewSQLiteStore(db), nil
}

func isSQLiteMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// sqliteDSN adds a busy timeout so concurrent writers wait for the file
// lock instead of failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

// Begin reserves one connection for the lifetime of the unit of work.
func (s *SQLiteStore) Begin(ctx context.Context) (*UnitOfWork, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Begin: %w", classify(ctx, err))
	}
	return newUnitOfWork(&sqliteSession{conn: conn}), nil
}

// Migrate applies the embedded SQLite migrations with goose.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := migrations.Up(ctx, s.db.DB, goose.DialectSQLite3); err != nil {
		return fmt.Errorf("repo.SQLiteStore.Migrate: %w", err)
	}
	return nil
}

// Ping verifies the database can be reached.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqliteRow is the column layout of the activities table. Dates are stored
// as RFC 3339 text in UTC.
type sqliteRow struct {
	ID          uuid.UUID `db:"id"`
	Title       string    `db:"title"`
	Date        string    `db:"date"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	City        string    `db:"city"`
	Venue       string    `db:"venue"`
	Latitude    float64   `db:"latitude"`
	Longitude   float64   `db:"longitude"`
	IsCancelled bool      `db:"is_cancelled"`
}

func toSQLiteRow(a domain.Activity) sqliteRow {
	return sqliteRow{
		ID:          a.ID,
		Title:       a.Title,
		Date:        a.Date.UTC().Format(time.RFC3339Nano),
		Description: a.Description,
		Category:    a.Category,
		City:        a.City,
		Venue:       a.Venue,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		IsCancelled: a.IsCancelled,
	}
}

func (r sqliteRow) activity() (domain.Activity, error) {
	date, err := time.Parse(time.RFC3339Nano, r.Date)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("parse date of %s: %w", r.ID, err)
	}
	return domain.Activity{
		ID:          r.ID,
		Title:       r.Title,
		Date:        date.UTC(),
		Description: r.Description,
		Category:    r.Category,
		City:        r.City,
		Venue:       r.Venue,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		IsCancelled: r.IsCancelled,
	}, nil
}

// sqliteSession is one reserved connection.
type sqliteSession struct {
	conn *sqlx.Conn
}

func (s *sqliteSession) list(ctx context.Context) ([]domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities ORDER BY rowid`

	var rows []sqliteRow
	if err := s.conn.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("sqlite list: %w", err)
	}

	activities := make([]domain.Activity, 0, len(rows))
	for _, r := range rows {
		a, err := r.activity()
		if err != nil {
			return nil, fmt.Errorf("sqlite list: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, nil
}

func (s *sqliteSession) get(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`

	var r sqliteRow
	if err := s.conn.GetContext(ctx, &r, q, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, fmt.Errorf("sqlite get: %w", err)
	}
	return r.activity()
}

func (s *sqliteSession) save(ctx context.Context, inserts, updates []domain.Activity) (err error) {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQ = `
		INSERT INTO activities (` + activityColumns + `)
		VALUES (:id, :title, :date, :description, :category, :city, :venue, :latitude, :longitude, :is_cancelled)`
	for _, a := range inserts {
		if _, err := tx.NamedExecContext(ctx, insertQ, toSQLiteRow(a)); err != nil {
			return fmt.Errorf("sqlite insert %s: %w", a.ID, err)
		}
	}

	const updateQ = `
		UPDATE activities
		SET title = :title, date = :date, description = :description,
		    category = :category, city = :city, venue = :venue,
		    latitude = :latitude, longitude = :longitude, is_cancelled = :is_cancelled
		WHERE id = :id`
	for _, a := range updates {
		res, err := tx.NamedExecContext(ctx, updateQ, toSQLiteRow(a))
		if err != nil {
			return fmt.Errorf("sqlite update %s: %w", a.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite update %s: %w", a.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("sqlite update %s: %w", a.ID, domain.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func (s *sqliteSession) release() {
	_ = s.conn.Close()
}
