package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A single connection serialises the writer with readers, and keeps an
	// in-memory database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStorage opens (or creates) the database at dbPath and applies
// pending migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// newSQLiteStorageFromDB wraps an already opened database without touching
// its schema.
func newSQLiteStorageFromDB(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Schema operations

// CreateSchema drops every table this package knows about and rebuilds the
// schema, discarding all entries and the metadata record. The reset runs in
// one transaction: concurrent readers see either the old tables or the new
// empty ones, never a missing table.
func (s *SQLiteStorage) CreateSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema reset: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := DropAll(ctx, tx); err != nil {
		return fmt.Errorf("failed to reset schema: %w", err)
	}
	if err := ApplyMigrations(ctx, tx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema reset: %w", err)
	}
	return nil
}

// Metadata operations

func (s *SQLiteStorage) PopulateMetadata(ctx context.Context, version int, builtAt time.Time) error {
	stmt := `
		INSERT INTO dictionary_metadata (id, format_version, built_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			format_version = excluded.format_version,
			built_at = excluded.built_at
	`
	_, err := s.db.ExecContext(ctx, stmt, version, builtAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to populate metadata: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Metadata(ctx context.Context) (*types.Metadata, error) {
	var (
		version int
		builtAt string
	)
	err := s.db.QueryRowContext(ctx, "SELECT format_version, built_at FROM dictionary_metadata WHERE id = 1").Scan(&version, &builtAt)
	if errors.Is(err, sql.ErrNoRows) || isMissingTable(err) {
		return nil, types.ErrMetadataUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	built, err := time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return nil, fmt.Errorf("%w: built_at %q: %w", types.ErrMetadataUnavailable, builtAt, err)
	}
	return &types.Metadata{FormatVersion: version, BuiltAt: built}, nil
}

func (s *SQLiteStorage) CurrentDataFormatVersion(ctx context.Context) (int, error) {
	md, err := s.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	return md.FormatVersion, nil
}

// isMissingTable reports the driver error for a schema that was never
// created. Both drivers use SQLite's own message.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// Entry operations

const insertEntrySQL = `INSERT INTO dictionary_entry (traditional, simplified, pinyin, english) VALUES (?, ?, ?, ?)`

func (s *SQLiteStorage) addEntryWithQuerier(ctx context.Context, q querier, entry types.DictionaryEntry) error {
	row, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, insertEntrySQL, row.Traditional, row.Simplified, row.Pinyin, row.Definitions); err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", entry.Simplified, err)
	}
	return nil
}

func (s *SQLiteStorage) AddEntry(ctx context.Context, entry types.DictionaryEntry) error {
	return s.addEntryWithQuerier(ctx, s.db, entry)
}

// Add inserts all entries in one transaction. On any failure the transaction
// is rolled back and nothing from the batch is visible.
func (s *SQLiteStorage) Add(ctx context.Context, entries []types.DictionaryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", types.ErrBulkInsertFailed, err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	for i, entry := range entries {
		if err := s.addEntryWithQuerier(ctx, tx, entry); err != nil {
			return fmt.Errorf("%w: entry %d: %w", types.ErrBulkInsertFailed, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", types.ErrBulkInsertFailed, err)
	}
	return nil
}

func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dictionary_entry").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Search operations

// Search renders the plan as SQL. Both drivers interrupt the running
// statement when ctx is cancelled.
func (s *SQLiteStorage) Search(ctx context.Context, plan *query.Plan) ([]query.Row, error) {
	results := make([]query.Row, 0)
	if plan.Limit() == 0 {
		return results, nil
	}

	rendered := plan.SQL()
	stmt := "SELECT " + query.ColumnID + ", " + query.ColumnTraditional + ", " + query.ColumnSimplified + ", " +
		query.ColumnPinyin + ", " + query.ColumnDefinitions +
		" FROM dictionary_entry WHERE " + rendered.Where +
		" ORDER BY " + rendered.OrderBy +
		" LIMIT ? OFFSET ?"
	args := append(rendered.Args(), plan.Limit(), plan.Offset())

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r query.Row
		if err := rows.Scan(&r.ID, &r.Traditional, &r.Simplified, &r.Pinyin, &r.Definitions); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	return results, nil
}
