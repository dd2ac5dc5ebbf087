// Package snapshot holds the point-in-time complaint collection that filtering
// and analytics run against. It is a read-through cache over the store,
// invalidated explicitly after every write.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"civictracker/backend/internal/config"
	"civictracker/backend/internal/metrics"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Snapshot is one consistent read of every complaint, newest first.
type Snapshot struct {
	Complaints []models.Complaint `json:"complaints"`
	FetchedAt  time.Time          `json:"fetched_at"`
}

// Cache serves snapshots from Redis and falls back to the store.
// A nil Redis client disables caching.
type Cache struct {
	store   storage.Storage
	rdb     *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewCache(store storage.Storage, rdb *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = config.DefaultSnapshotTTL
	}
	return &Cache{
		store:   store,
		rdb:     rdb,
		ttl:     ttl,
		metrics: m,
		logger:  logger.With("component", "snapshot"),
		now:     time.Now,
	}
}

// errStale means an invalidation happened while the store was being read.
var errStale = errors.New("snapshot superseded by a newer write")

// Get returns the cached snapshot, or reads the store once and caches the result.
// Redis failures are logged and never fail the call.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	var (
		gen       int64
		cacheable bool
	)
	if c.rdb != nil {
		snap, err := c.load(ctx)
		switch {
		case err == nil:
			c.hit()
			return snap, nil
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("snapshot cache read failed, reading store", "error", err)
		}

		// The generation must be read before the store so that an Invalidate
		// racing with the read below keeps its result out of the cache.
		if gen, err = readGeneration(ctx, c.rdb); err != nil {
			c.logger.Warn("snapshot generation read failed, not caching", "error", err)
		} else {
			cacheable = true
		}
	}
	c.miss()

	complaints, err := c.store.ListComplaints(ctx, storage.ComplaintQuery{})
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Complaints: complaints, FetchedAt: c.now()}

	if cacheable {
		err := c.save(ctx, snap, gen)
		switch {
		case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
			c.logger.Debug("snapshot invalidated during read, not caching")
		case err != nil:
			c.logger.Warn("snapshot cache write failed", "error", err)
		}
	}
	return snap, nil
}

// Invalidate drops the cached snapshot and bumps the generation, so the next
// Get reads the store and reads already in flight are not cached.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, config.SnapshotGenerationKey)
		pipe.Del(ctx, config.SnapshotCacheKey)
		return nil
	})
	return err
}

// Refresh invalidates and immediately rebuilds the snapshot.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	if err := c.Invalidate(ctx); err != nil {
		c.logger.Warn("snapshot invalidation failed", "error", err)
	}
	return c.Get(ctx)
}

func (c *Cache) load(ctx context.Context) (*Snapshot, error) {
	data, err := c.rdb.Get(ctx, config.SnapshotCacheKey).Bytes()
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.Complaints == nil {
		snap.Complaints = []models.Complaint{}
	}
	return &snap, nil
}

// save stores snap only if the generation is still gen.
func (c *Cache) save(ctx context.Context, snap *Snapshot, gen int64) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, config.SnapshotCacheKey, data, c.ttl)
			return nil
		})
		return err
	}, config.SnapshotGenerationKey)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, r stringGetter) (int64, error) {
	gen, err := r.Get(ctx, config.SnapshotGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Cache) hit() {
	if c.metrics != nil {
		c.metrics.SnapshotHits.Inc()
	}
}

func (c *Cache) miss() {
	if c.metrics != nil {
		c.metrics.SnapshotMisses.Inc()
	}
}
