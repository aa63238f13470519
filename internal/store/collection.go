package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"wodo.ai/wodo-connect/internal/logging"
)

// ParseError describes a stored value that could not be decoded. Readers log
// it and treat the key as empty rather than failing the request.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// collection is a JSON array persisted under one key. Writers go through
// update, which holds mu for the whole read-modify-write.
type collection[T any] struct {
	kv KV
	mu sync.Mutex
}

func loadList[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "store.loadList %s", key)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logging.Warnf("%v; treating as empty", &ParseError{Key: key, Err: err})
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveList[T any](ctx context.Context, kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "store.saveList marshal %s", key)
	}
	if err := kv.Put(ctx, key, raw); err != nil {
		return errors.Wrapf(err, "store.saveList put %s", key)
	}
	return nil
}

func (c *collection[T]) list(ctx context.Context, key string) ([]T, error) {
	return loadList[T](ctx, c.kv, key)
}

func (c *collection[T]) update(ctx context.Context, key string, fn func([]T) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := loadList[T](ctx, c.kv, key)
	if err != nil {
		return nil, err
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := saveList(ctx, c.kv, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

// exists reports whether key has ever been written.
func exists(ctx context.Context, kv KV, key string) (bool, error) {
	_, err := kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "store.exists %s", key)
	}
	return true, nil
}
