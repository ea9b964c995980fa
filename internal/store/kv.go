package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	kvTable     = "kv_entries"
	kvKey       = "key"
	kvValue     = "value"
	kvUpdatedAt = "updated_at"
)

// UpdateFunc receives the current value for a key (found is false when the
// key is absent) and returns the value to store. Returning a nil slice
// deletes the key.
type UpdateFunc func(old []byte, found bool) ([]byte, error)

// KV is a flat string-keyed store of opaque values. Keys are the same names
// the study data has always been persisted under (test_history_<id>,
// chat_history_<docId>, documentList, ...).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Update performs an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

type sqlKV struct {
	db *sql.DB
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getKey(ctx context.Context, q queryer, key string) ([]byte, bool, error) {
	query, args := builder().Select(kvValue).
		From(entsql.Table(kvTable)).
		Where(entsql.EQ(kvKey, key)).
		Query()
	var value []byte
	err := q.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func setKey(ctx context.Context, q queryer, key string, value []byte) error {
	query, args := builder().Insert(kvTable).
		Columns(kvKey, kvValue, kvUpdatedAt).
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns(kvKey),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func deleteKey(ctx context.Context, q queryer, key string) error {
	query, args := builder().Delete(kvTable).
		Where(entsql.EQ(kvKey, key)).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *sqlKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getKey(ctx, s.db, key)
}

func (s *sqlKV) Set(ctx context.Context, key string, value []byte) error {
	return setKey(ctx, s.db, key, value)
}

func (s *sqlKV) Delete(ctx context.Context, key string) error {
	return deleteKey(ctx, s.db, key)
}

func (s *sqlKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	sel := builder().Select(kvKey).From(entsql.Table(kvTable))
	if prefix != "" {
		sel = sel.Where(entsql.HasPrefix(kvKey, prefix))
	}
	query, args := sel.OrderBy(kvKey).Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *sqlKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	old, found, err := getKey(ctx, tx, key)
	if err != nil {
		return err
	}
	next, err := fn(old, found)
	if err != nil {
		return err
	}
	if next == nil {
		if found {
			if err := deleteKey(ctx, tx, key); err != nil {
				return err
			}
		}
	} else if err := setKey(ctx, tx, key, next); err != nil {
		return err
	}
	return tx.Commit()
}

// GetJSON decodes the value stored at key into a T. A missing key yields the
// zero value and found=false.
func GetJSON[T any](ctx context.Context, kv KV, key string) (T, bool, error) {
	var v T
	raw, found, err := kv.Get(ctx, key)
	if err != nil || !found {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, true, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON[T any](ctx context.Context, kv KV, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}

// UpdateJSON loads the value at key (zero value when missing or unreadable),
// applies fn, and writes the result back atomically. Corrupt stored values
// are treated as absent so a damaged record never blocks new writes.
func UpdateJSON[T any](ctx context.Context, kv KV, key string, fn func(v *T) error) error {
	return kv.Update(ctx, key, func(old []byte, found bool) ([]byte, error) {
		var v T
		if found {
			if err := json.Unmarshal(old, &v); err != nil {
				var zero T
				v = zero
			}
		}
		if err := fn(&v); err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
}

// MemKV is an in-memory KV used in tests and when no database is configured.
type MemKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemKV returns an empty in-memory KV.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

func (m *MemKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemKV) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemKV) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, found := m.data[key]
	next, err := fn(old, found)
	if err != nil {
		return err
	}
	if next == nil {
		delete(m.data, key)
		return nil
	}
	m.data[key] = append([]byte(nil), next...)
	return nil
}
