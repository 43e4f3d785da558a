package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// SnapshotKeyPrefix prefixes the JSON snapshot of each mode
	SnapshotKeyPrefix = "rankings:snapshot:"

	// LoadedAtKey holds the time the cached snapshot was fetched
	LoadedAtKey = "rankings:loaded_at"

	// VersionKey tracks the snapshot version for change detection
	VersionKey = "rankings:version"
)

// SnapshotKey returns the cache key of a mode's collection
func SnapshotKey(mode models.Mode) string {
	return SnapshotKeyPrefix + string(mode)
}

// RedisRepository caches the current ranking snapshot so every server
// instance serves the same data
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis repository
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
	}
}

// SaveSnapshot stores both collections and bumps the version in a single
// transaction. It returns the new version.
func (r *RedisRepository) SaveSnapshot(ctx context.Context, snap models.Snapshot) (int64, error) {
	singles, err := json.Marshal(snap.Singles)
	if err != nil {
		return 0, fmt.Errorf("encode singles: %w", err)
	}
	doubles, err := json.Marshal(snap.Doubles)
	if err != nil {
		return 0, fmt.Errorf("encode doubles: %w", err)
	}

	var incr *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SnapshotKey(models.ModeSingles), singles, 0)
		pipe.Set(ctx, SnapshotKey(models.ModeDoubles), doubles, 0)
		pipe.Set(ctx, LoadedAtKey, snap.LoadedAt.UTC().Format(time.RFC3339Nano), 0)
		incr = pipe.Incr(ctx, VersionKey)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// LoadSnapshot reads the cached snapshot. Missing keys yield empty
// collections and version 0.
func (r *RedisRepository) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	vals, err := r.client.MGet(ctx,
		SnapshotKey(models.ModeSingles),
		SnapshotKey(models.ModeDoubles),
		LoadedAtKey,
		VersionKey,
	).Result()
	if err != nil {
		return models.Snapshot{}, err
	}

	var snap models.Snapshot
	if err := decodeCollection(vals[0], &snap.Singles); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode singles: %w", err)
	}
	if err := decodeCollection(vals[1], &snap.Doubles); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode doubles: %w", err)
	}
	if s, ok := vals[2].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			snap.LoadedAt = t
		}
	}
	if s, ok := vals[3].(string); ok {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			snap.Version = v
		}
	}
	return snap, nil
}

func decodeCollection(val interface{}, dst *models.Collection) error {
	s, ok := val.(string)
	if !ok {
		// Key not cached yet
		*dst = models.Collection{}
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

// GetVersion returns the current snapshot version
func (r *RedisRepository) GetVersion(ctx context.Context) (int64, error) {
	version, err := r.client.Get(ctx, VersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil // Version not set yet, return 0
		}
		return 0, err
	}
	return version, nil
}

// Ping checks if Redis is reachable
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
