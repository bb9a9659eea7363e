package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fmukanda/travelapp/internal/domain"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

const summaryKeyPrefix = "review_summary:"

// SummaryCache caches per-listing review summaries in Redis so hot listing
// pages do not recompute the aggregate on every read.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a new Redis-backed review summary cache.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached summary for a listing.
func (c *SummaryCache) Get(ctx context.Context, listingID string) (*domain.ReviewSummary, error) {
	key := summaryKeyPrefix + listingID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("review summary", listingID)
		}
		return nil, fmt.Errorf("redis get review summary: %w", err)
	}

	var summary domain.ReviewSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal review summary: %w", err)
	}

	return &summary, nil
}

// Set stores a summary for a listing with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, summary *domain.ReviewSummary) error {
	key := summaryKeyPrefix + summary.ListingID

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal review summary: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set review summary: %w", err)
	}

	return nil
}

// Invalidate drops the cached summary for a listing.
func (c *SummaryCache) Invalidate(ctx context.Context, listingID string) error {
	key := summaryKeyPrefix + listingID

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del review summary: %w", err)
	}

	return nil
}
