package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrKeyNotFound is returned by KV.Get when the key has never been written
// or was deleted.
var ErrKeyNotFound = errors.New("key not found")

// KV is the persistence port every repository is built on. Values are opaque
// JSON documents; each logical table lives under one key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key layout, kept identical to the browser build so exported data lines up.
const (
	KeyAccounts            = "wodo-users"
	KeyThoughts            = "wodo-todaysThoughts"
	KeyRequests            = "wodo-chatRequests"
	sessionKeyPrefix       = "wodo-session:"
	friendsKeyPrefix       = "wodo-friends-"
	conversationsKeyPrefix = "wodo-chats-"
)

func SessionKey(id string) string          { return sessionKeyPrefix + id }
func FriendsKey(owner string) string       { return friendsKeyPrefix + owner }
func ConversationsKey(owner string) string { return conversationsKeyPrefix + owner }

// Drivers accepted by Open.
const (
	DriverSQLite3  = "sqlite3" // mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"  // modernc.org/sqlite (pure Go)
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Open returns the KV backend for driver, connected to dsn.
func Open(ctx context.Context, driver, dsn string) (KV, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite3, "":
		return NewSQLStore(DriverSQLite3, dsn)
	case DriverSQLite, DriverPostgres, DriverMySQL:
		return NewSQLStore(strings.ToLower(driver), dsn)
	case DriverMongo:
		return NewMongoStore(ctx, dsn)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
