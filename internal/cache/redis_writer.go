package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/repository"
	"github.com/XavierBriggs/fortuna/services/weapons-api/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Key layout
const (
	WeaponIDsKey   = "weapons:ids"
	WeaponStatsKey = "weapons:stats"
	WeaponLoadKey  = "weapons:load"
)

// WeaponKey returns the key holding a single weapon document
func WeaponKey(id string) string {
	return fmt.Sprintf("weapon:%s", id)
}

// RedisWriter mirrors the loaded weapon catalog into Redis so other
// services can read it without touching the data directory.
// Keys carry no TTL; the catalog is replaced on the next load.
type RedisWriter struct {
	client *redis.Client
}

// NewRedisWriter creates a new Redis writer
func NewRedisWriter(client *redis.Client) *RedisWriter {
	return &RedisWriter{
		client: client,
	}
}

// WeaponsLoaded implements repository.LoadListener
func (w *RedisWriter) WeaponsLoaded(ctx context.Context, info repository.LoadInfo, weapons []models.Weapon, stats *models.Stats) error {
	if err := w.WriteCatalog(ctx, weapons); err != nil {
		return err
	}
	if err := w.WriteStats(ctx, stats); err != nil {
		return err
	}
	return w.WriteLoadInfo(ctx, info)
}

// WriteCatalog stores each weapon document and the ordered id list.
// Documents from a previous catalog that are no longer present are removed.
func (w *RedisWriter) WriteCatalog(ctx context.Context, weapons []models.Weapon) error {
	previous, err := w.ReadWeaponIDs(ctx)
	if err != nil {
		return fmt.Errorf("reading previous catalog: %w", err)
	}

	ids := make([]interface{}, 0, len(weapons))

	pipe := w.client.Pipeline()
	for _, id := range staleIDs(previous, weapons) {
		pipe.Del(ctx, WeaponKey(id))
	}
	for i := range weapons {
		data, err := json.Marshal(weapons[i])
		if err != nil {
			return fmt.Errorf("marshaling weapon %s: %w", weapons[i].ID, err)
		}
		pipe.Set(ctx, WeaponKey(weapons[i].ID), data, 0)
		ids = append(ids, weapons[i].ID)
	}

	pipe.Del(ctx, WeaponIDsKey) // Clear old list
	if len(ids) > 0 {
		pipe.RPush(ctx, WeaponIDsKey, ids...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing weapon catalog: %w", err)
	}
	return nil
}

// staleIDs returns the ids in previous that no weapon carries any more
func staleIDs(previous []string, weapons []models.Weapon) []string {
	current := make(map[string]bool, len(weapons))
	for i := range weapons {
		current[weapons[i].ID] = true
	}

	var stale []string
	for _, id := range previous {
		if !current[id] {
			stale = append(stale, id)
		}
	}
	return stale
}

// WriteStats stores the aggregate statistics
func (w *RedisWriter) WriteStats(ctx context.Context, stats *models.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	return w.client.Set(ctx, WeaponStatsKey, data, 0).Err()
}

// WriteLoadInfo stores metadata for the latest load
func (w *RedisWriter) WriteLoadInfo(ctx context.Context, info repository.LoadInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshaling load info: %w", err)
	}
	return w.client.Set(ctx, WeaponLoadKey, data, 0).Err()
}

// ReadWeaponIDs retrieves the ordered list of weapon ids
func (w *RedisWriter) ReadWeaponIDs(ctx context.Context) ([]string, error) {
	return w.client.LRange(ctx, WeaponIDsKey, 0, -1).Result()
}
