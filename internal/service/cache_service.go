package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

// noGeneration tells Save not to write, used when the generation could not be read.
const noGeneration int64 = -1

// SummaryStore persists cached GPA summaries guarded by a per-user generation.
type SummaryStore interface {
	Generation(ctx context.Context, userID string) (int64, error)
	Load(ctx context.Context, userID string) (*models.GradeSummary, error)
	Store(ctx context.Context, userID string, generation int64, summary models.GradeSummary, ttl time.Duration) (bool, error)
	Evict(ctx context.Context, userID string) error
}

// SummaryCache is a read-through cache in front of the GPA aggregation.
// Failures are logged and degrade to a miss.
type SummaryCache struct {
	store   SummaryStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewSummaryCache constructs a SummaryCache.
func NewSummaryCache(store SummaryStore, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *SummaryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryCache{store: store, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (c *SummaryCache) Enabled() bool {
	return c != nil && c.enabled && c.store != nil
}

// Lookup returns the cached summary of userID. On a miss it returns the
// generation that a freshly computed summary must be saved under.
func (c *SummaryCache) Lookup(ctx context.Context, userID string) (*models.GradeSummary, int64) {
	if !c.Enabled() {
		return nil, noGeneration
	}

	generation, err := c.store.Generation(ctx, userID)
	if err != nil {
		c.logger.Warn("summary generation unavailable", zap.String("user_id", userID), zap.Error(err))
		generation = noGeneration
	}

	start := time.Now()
	summary, err := c.store.Load(ctx, userID)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordCacheOperation(false, elapsed)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			c.logger.Warn("summary cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, generation
	}
	c.metrics.RecordCacheOperation(true, elapsed)
	return summary, generation
}

// Save caches summary for userID unless it was invalidated since generation was read.
func (c *SummaryCache) Save(ctx context.Context, userID string, generation int64, summary models.GradeSummary) {
	if !c.Enabled() || generation == noGeneration {
		return
	}
	start := time.Now()
	stored, err := c.store.Store(ctx, userID, generation, summary, c.ttl)
	c.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		c.logger.Warn("summary cache write failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !stored {
		c.logger.Debug("summary invalidated while computing", zap.String("user_id", userID))
	}
}

// Invalidate drops the cached summary of userID.
func (c *SummaryCache) Invalidate(ctx context.Context, userID string) error {
	if !c.Enabled() {
		return nil
	}
	return c.store.Evict(ctx, userID)
}
