package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/repository"
	"github.com/XavierBriggs/fortuna/services/weapons-api/pkg/models"
	"github.com/redis/go-redis/v9"
)

// DefaultStream is the stream load events are published to
const DefaultStream = "weapons.loaded"

// StreamPublisher publishes catalog load events to a Redis stream
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
	}
}

// Stream returns the target stream name
func (p *StreamPublisher) Stream() string {
	return p.stream
}

// WeaponsLoaded implements repository.LoadListener
func (p *StreamPublisher) WeaponsLoaded(ctx context.Context, info repository.LoadInfo, weapons []models.Weapon, stats *models.Stats) error {
	return p.PublishLoad(ctx, info, stats)
}

// PublishLoad publishes a load event carrying the load metadata and stats
func (p *StreamPublisher) PublishLoad(ctx context.Context, info repository.LoadInfo, stats *models.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}

	loadedAt := time.Now().UTC()
	if info.LoadedAt != nil {
		loadedAt = *info.LoadedAt
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"load_id":   info.LoadID,
			"count":     info.Count,
			"warnings":  info.Warnings,
			"loaded_at": loadedAt.Format(time.RFC3339),
			"stats":     string(data),
		},
	}).Err()
}
