package repository

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/loader"
	"github.com/XavierBriggs/fortuna/services/weapons-api/pkg/models"
	"github.com/google/uuid"
)

const listenerTimeout = 5 * time.Second

// WeaponStore defines the read operations served by the weapon repository
type WeaponStore interface {
	GetAll(ctx context.Context) ([]models.Weapon, error)
	GetByName(ctx context.Context, key string) (*models.Weapon, error)
	Search(ctx context.Context, query string) ([]models.Weapon, error)
	GetStats(ctx context.Context) (*models.Stats, error)
	Efficiency(ctx context.Context, key string) (*models.Efficiency, error)
	LoadInfo() LoadInfo
}

// Source produces the weapon set for a load cycle
type Source interface {
	Load(ctx context.Context) (*loader.Result, error)
}

// LoadListener is notified once after a successful load. Notification runs
// in the background; queries never wait for it.
type LoadListener interface {
	WeaponsLoaded(ctx context.Context, info LoadInfo, weapons []models.Weapon, stats *models.Stats) error
}

// LoadInfo describes the current load state
type LoadInfo struct {
	Loaded   bool       `json:"loaded"`
	LoadID   string     `json:"loadId,omitempty"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
	Count    int        `json:"count"`
	Warnings int        `json:"warnings"`
}

// Repository holds the weapon set in memory. The set is loaded on first use
// and retained for the life of the process.
type Repository struct {
	source    Source
	listeners []LoadListener

	mu      sync.RWMutex
	loaded  bool
	weapons []models.Weapon
	info    LoadInfo

	pending sync.WaitGroup
}

// New creates an unloaded repository
func New(source Source, listeners ...LoadListener) *Repository {
	return &Repository{
		source:    source,
		listeners: listeners,
	}
}

// Load loads the weapon set if it has not been loaded yet.
// Concurrent callers wait for the single in-flight load. A failed load
// leaves the repository unloaded so the next call retries.
func (r *Repository) Load(ctx context.Context) error {
	_, err := r.ensureLoaded(ctx)
	return err
}

// Loaded reports whether the weapon set is in memory
func (r *Repository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// LoadInfo returns metadata about the current load
func (r *Repository) LoadInfo() LoadInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// GetAll returns every weapon in load order
func (r *Repository) GetAll(ctx context.Context) ([]models.Weapon, error) {
	return r.ensureLoaded(ctx)
}

// GetByName returns the first weapon whose id or name equals key, ignoring
// case. Returns nil, nil when nothing matches.
func (r *Repository) GetByName(ctx context.Context, key string) (*models.Weapon, error) {
	weapons, err := r.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	for i := range weapons {
		if strings.EqualFold(weapons[i].ID, key) || strings.EqualFold(weapons[i].Name, key) {
			w := weapons[i]
			return &w, nil
		}
	}

	return nil, nil
}

// Search returns every weapon whose id or name contains query, ignoring case
func (r *Repository) Search(ctx context.Context, query string) ([]models.Weapon, error) {
	weapons, err := r.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(query)
	matches := make([]models.Weapon, 0)
	for _, w := range weapons {
		if strings.Contains(strings.ToLower(w.Name), term) || strings.Contains(strings.ToLower(w.ID), term) {
			matches = append(matches, w)
		}
	}

	return matches, nil
}

// GetStats computes aggregate statistics over the weapon set
func (r *Repository) GetStats(ctx context.Context) (*models.Stats, error) {
	weapons, err := r.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(weapons), nil
}

// Efficiency returns the damage efficiency for the weapon matching key.
// Returns nil, nil when the weapon does not exist.
func (r *Repository) Efficiency(ctx context.Context, key string) (*models.Efficiency, error) {
	weapon, err := r.GetByName(ctx, key)
	if err != nil || weapon == nil {
		return nil, err
	}

	eff := &models.Efficiency{
		ID:   weapon.ID,
		Name: weapon.Name,
	}
	if v, ok := weapon.DamageEfficiency(); ok {
		eff.Value = &v
	}

	return eff, nil
}

// ComputeStats aggregates a weapon set in a single pass. Weapons without
// damage.head or recoil.vertical are left out of the respective average.
func ComputeStats(weapons []models.Weapon) *models.Stats {
	stats := &models.Stats{
		Total:      len(weapons),
		Categories: map[string]int{},
	}

	var totalHead, totalVertical float64
	var headCount, verticalCount int

	for i := range weapons {
		if head, ok := weapons[i].HeadDamage(); ok {
			totalHead += head
			headCount++
		}
		if vertical, ok := weapons[i].VerticalRecoil(); ok {
			totalVertical += vertical
			verticalCount++
		}
	}

	if headCount > 0 {
		stats.AverageDamage = int(models.RoundHalfUp(totalHead / float64(headCount)))
	}
	if verticalCount > 0 {
		stats.AverageRecoil = models.RoundTo(totalVertical/float64(verticalCount), 2)
	}

	return stats
}

func (r *Repository) ensureLoaded(ctx context.Context) ([]models.Weapon, error) {
	r.mu.RLock()
	if r.loaded {
		weapons := r.weapons
		r.mu.RUnlock()
		return weapons, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have finished loading while we waited
	if r.loaded {
		return r.weapons, nil
	}

	result, err := r.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weapons: %w", err)
	}

	loadedAt := time.Now().UTC()
	r.weapons = result.Weapons
	r.loaded = true
	r.info = LoadInfo{
		Loaded:   true,
		LoadID:   uuid.New().String(),
		LoadedAt: &loadedAt,
		Count:    len(result.Weapons),
		Warnings: len(result.Warnings),
	}

	r.notify(ctx, r.info, r.weapons)

	return r.weapons, nil
}

// Wait blocks until background load notifications have finished
func (r *Repository) Wait() {
	r.pending.Wait()
}

// notify hands the loaded set to listeners on a separate goroutine. The set
// is never mutated after load, so listeners read it without the lock.
func (r *Repository) notify(ctx context.Context, info LoadInfo, weapons []models.Weapon) {
	if len(r.listeners) == 0 {
		return
	}

	// Listeners outlive the request that triggered the load
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerTimeout)

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer cancel()

		stats := ComputeStats(weapons)
		for _, l := range r.listeners {
			if err := l.WeaponsLoaded(lctx, info, weapons, stats); err != nil {
				log.Printf("⚠️  Load listener failed: %v", err)
			}
		}
	}()
}
