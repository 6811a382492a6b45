package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

const (
	summaryKeyPrefix    = "grades:summary:"
	generationKeyPrefix = "grades:summary-gen:"
	generationTTL       = 24 * time.Hour
)

var errStaleGeneration = errors.New("summary generation changed")

// SummaryKey is the Redis key holding the cached GPA summary of userID.
func SummaryKey(userID string) string { return summaryKeyPrefix + userID }

// GenerationKey is the Redis key holding the invalidation counter of userID.
func GenerationKey(userID string) string { return generationKeyPrefix + userID }

type cachedSummary struct {
	Generation int64               `json:"generation"`
	StoredAt   time.Time           `json:"stored_at"`
	Summary    models.GradeSummary `json:"summary"`
}

// SummaryCacheRepository keeps per-user GPA summaries in Redis. Every eviction
// bumps a generation counter and a store only succeeds against the generation
// it was computed under.
type SummaryCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSummaryCacheRepository constructs the repository. A nil client turns every call into a miss.
func NewSummaryCacheRepository(client *redis.Client, logger *zap.Logger) *SummaryCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryCacheRepository{client: client, logger: logger}
}

// Generation returns the current invalidation counter of userID, zero when never evicted.
func (r *SummaryCacheRepository) Generation(ctx context.Context, userID string) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	gen, err := r.client.Get(ctx, GenerationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation for %s: %w", userID, err)
	}
	return gen, nil
}

// Load returns the cached summary of userID or appErrors.ErrCacheMiss.
func (r *SummaryCacheRepository) Load(ctx context.Context, userID string) (*models.GradeSummary, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, SummaryKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, appErrors.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get summary for %s: %w", userID, err)
	}

	var entry cachedSummary
	if err := json.Unmarshal(raw, &entry); err != nil {
		r.logger.Warn("dropping unreadable summary cache entry", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.ErrCacheMiss
	}
	return &entry.Summary, nil
}

// Store writes summary for userID if the generation is still the one it was
// computed under. It reports whether the entry was written.
func (r *SummaryCacheRepository) Store(ctx context.Context, userID string, generation int64, summary models.GradeSummary, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, nil
	}

	payload, err := json.Marshal(cachedSummary{Generation: generation, StoredAt: time.Now().UTC(), Summary: summary})
	if err != nil {
		return false, fmt.Errorf("marshal summary for %s: %w", userID, err)
	}

	genKey := GenerationKey(userID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, SummaryKey(userID), payload, ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("skipped stale summary write", zap.String("user_id", userID), zap.Int64("generation", generation))
		return false, nil
	default:
		return false, fmt.Errorf("redis store summary for %s: %w", userID, err)
	}
}

// Evict drops the cached summary of userID and bumps its generation.
func (r *SummaryCacheRepository) Evict(ctx context.Context, userID string) error {
	if r.client == nil {
		return nil
	}
	genKey := GenerationKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Unlink(ctx, SummaryKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis evict summary for %s: %w", userID, err)
	}
	return nil
}
