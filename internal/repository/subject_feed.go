package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SubjectFeed carries "subjects changed" notifications for a user. Payloads are not
// transported; subscribers re-read the store so every delivery is a full snapshot.
type SubjectFeed interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}

// FeedChannel returns the pub/sub channel name for a user.
func FeedChannel(userID string) string {
	return fmt.Sprintf("subjects:changed:%s", userID)
}

// RedisSubjectFeed fans notifications out through Redis pub/sub so that every API
// replica sees writes made by the others.
type RedisSubjectFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSubjectFeed constructs a Redis backed feed.
func NewRedisSubjectFeed(client *redis.Client, logger *zap.Logger) *RedisSubjectFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSubjectFeed{client: client, logger: logger}
}

// Publish notifies subscribers of userID.
func (f *RedisSubjectFeed) Publish(ctx context.Context, userID string) error {
	if err := f.client.Publish(ctx, FeedChannel(userID), "changed").Err(); err != nil {
		return fmt.Errorf("publish subject change: %w", err)
	}
	return nil
}

// Subscribe opens a subscription. The returned channel is closed after cancel is called
// or ctx is done.
func (f *RedisSubjectFeed) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	pubsub := f.client.Subscribe(ctx, FeedChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe subject changes: %w", err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				f.logger.Debug("close subject subscription", zap.Error(err))
			}
		})
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				notify(out)
			}
		}
	}()

	return out, cancel, nil
}

// LocalSubjectFeed is an in-process feed used when Redis is disabled.
type LocalSubjectFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewLocalSubjectFeed constructs an empty in-process feed.
func NewLocalSubjectFeed() *LocalSubjectFeed {
	return &LocalSubjectFeed{subs: make(map[string]map[chan struct{}]struct{})}
}

// Publish notifies every local subscriber of userID.
func (f *LocalSubjectFeed) Publish(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[userID] {
		notify(ch)
	}
	return nil
}

// Subscribe registers a subscriber for userID.
func (f *LocalSubjectFeed) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	if f.subs[userID] == nil {
		f.subs[userID] = make(map[chan struct{}]struct{})
	}
	f.subs[userID][ch] = struct{}{}
	f.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			f.mu.Lock()
			delete(f.subs[userID], ch)
			if len(f.subs[userID]) == 0 {
				delete(f.subs, userID)
			}
			f.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}

// Subscribers returns the number of live local subscriptions for userID.
func (f *LocalSubjectFeed) Subscribers(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[userID])
}

// notify coalesces bursts: a pending signal already means "re-read".
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
