package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"weekendly/internal/domain/activity"
	"weekendly/internal/repository"
)

// CacheRepository persists the activity catalog cache and the keyed API
// response cache.
type CacheRepository struct {
	db *DB
}

// NewCacheRepository creates a CacheRepository.
func NewCacheRepository(db *DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// CacheActivities bulk-inserts a category's catalog with expiry stamping.
// Existing entries for the same id and category are replaced.
func (r *CacheRepository) CacheActivities(ctx context.Context, acts []activity.Activity, category activity.Category, source activity.Source) error {
	if len(acts) == 0 {
		return nil
	}

	now := time.Now()
	expires := now.Add(activity.TTLForSource(source))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO activity_cache (id, category, source, payload, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, category) DO UPDATE SET
			source = excluded.source,
			payload = excluded.payload,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at
	`
	for _, act := range acts {
		payload, err := json.Marshal(act)
		if err != nil {
			return fmt.Errorf("failed to encode activity: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, act.ID, category, source, string(payload), now, expires); err != nil {
			return fmt.Errorf("failed to cache activity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activity cache: %w", err)
	}
	return nil
}

// CachedActivities returns non-expired cached activities, optionally filtered
// by category (empty category means all).
func (r *CacheRepository) CachedActivities(ctx context.Context, category activity.Category) ([]activity.Activity, error) {
	query := `SELECT payload FROM activity_cache WHERE expires_at > ?`
	args := []any{time.Now()}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY cached_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity cache: %w", err)
	}
	defer rows.Close()

	var acts []activity.Activity
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan cached activity: %w", err)
		}
		var act activity.Activity
		if err := json.Unmarshal([]byte(payload), &act); err != nil {
			return nil, fmt.Errorf("failed to decode cached activity: %w", err)
		}
		acts = append(acts, act)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity cache rows: %w", err)
	}
	return acts, nil
}

// apiCacheKey builds the stable cache key for an endpoint and its params.
func apiCacheKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// CacheAPIResponse stores a raw response for an endpoint+params key. Any
// superseded record for the same key is deleted first, so keys stay unique.
func (r *CacheRepository) CacheAPIResponse(ctx context.Context, endpoint string, params map[string]string, payload []byte, ttl time.Duration) error {
	key := apiCacheKey(endpoint, params)
	now := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM api_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete superseded response: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO api_cache (cache_key, endpoint, payload, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		key, endpoint, string(payload), now, now.Add(ttl)); err != nil {
		return fmt.Errorf("failed to cache API response: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit API cache: %w", err)
	}
	return nil
}

// CachedAPIResponse returns the non-expired payload for an endpoint+params
// key, or repository.ErrNotFound.
func (r *CacheRepository) CachedAPIResponse(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM api_cache WHERE cache_key = ? AND expires_at > ?`,
		apiCacheKey(endpoint, params), time.Now()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read API cache: %w", err)
	}
	return []byte(payload), nil
}

// PerformMaintenance deletes expired rows from both cache tables and returns
// how many were removed.
func (r *CacheRepository) PerformMaintenance(ctx context.Context) (int64, error) {
	now := time.Now()
	var removed int64

	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_cache WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to prune activity cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += n
	}

	res, err = r.db.ExecContext(ctx, `DELETE FROM api_cache WHERE expires_at <= ?`, now)
	if err != nil {
		return removed, fmt.Errorf("failed to prune API cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += n
	}

	return removed, nil
}
