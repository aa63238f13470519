package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // Postgres driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver (cgo)
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)
)

// SQLStore keeps every key in a single kv_entries table. It works against
// SQLite (either driver), Postgres and MySQL; only the schema and the upsert
// statement differ between them.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(driver, dataSourceName string) (*SQLStore, error) {
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if isSQLite(driver) {
		// One writer at a time; the repositories already serialize their updates.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, driver: driver}
	if err = s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func isSQLite(driver string) bool {
	return driver == DriverSQLite3 || driver == DriverSQLite
}

func (s *SQLStore) initSchema() error {
	var schema string
	switch s.driver {
	case DriverMySQL:
		schema = `
    CREATE TABLE IF NOT EXISTS kv_entries (
        store_key VARCHAR(191) NOT NULL PRIMARY KEY,
        store_value LONGTEXT NOT NULL,
        updated_at BIGINT NOT NULL
    )`
	default:
		schema = `
    CREATE TABLE IF NOT EXISTS kv_entries (
        store_key TEXT PRIMARY KEY,
        store_value TEXT NOT NULL,
        updated_at BIGINT NOT NULL
    )`
	}
	_, err := s.db.Exec(schema)
	return err
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) upsertStatement() string {
	if s.driver == DriverMySQL {
		return "INSERT INTO kv_entries (store_key, store_value, updated_at) VALUES (?, ?, ?) " +
			"ON DUPLICATE KEY UPDATE store_value = VALUES(store_value), updated_at = VALUES(updated_at)"
	}
	return s.rebind("INSERT INTO kv_entries (store_key, store_value, updated_at) VALUES (?, ?, ?) " +
		"ON CONFLICT (store_key) DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at")
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT store_value FROM kv_entries WHERE store_key = ?"), key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	stmt, err := s.db.PrepareContext(ctx, s.upsertStatement())
	if err != nil {
		return fmt.Errorf("failed to prepare kv upsert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, key, string(value), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to execute kv upsert for %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM kv_entries WHERE store_key = ?"), key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
