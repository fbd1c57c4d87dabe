package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acadgrid/timetable-api/internal/models"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
)

const (
	timetableKeyPrefix     = "timetable:"
	timetableChannelPrefix = "timetable:updates:"
)

// TimetableStore persists timetable snapshots in Redis and broadcasts
// change notifications over pub/sub so other instances can invalidate
// their in-memory sessions.
type TimetableStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTimetableStore constructs a timetable store.
func NewTimetableStore(client *redis.Client, logger *zap.Logger) *TimetableStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableStore{client: client, logger: logger}
}

// Load retrieves the stored snapshot for a key. Returns ErrNotFound
// when no timetable has been saved yet.
func (s *TimetableStore) Load(ctx context.Context, key models.TimetableKey) (*models.TimetableSnapshot, error) {
	if s.client == nil {
		return nil, appErrors.ErrNotFound
	}

	raw, err := s.client.Get(ctx, timetableKeyPrefix+key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get timetable %s: %w", key, err)
	}

	var snapshot models.TimetableSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal timetable %s: %w", key, err)
	}
	return &snapshot, nil
}

// Save stores the snapshot and publishes an update notification.
// Last write wins; there is no optimistic locking on the snapshot.
func (s *TimetableStore) Save(ctx context.Context, snapshot *models.TimetableSnapshot) error {
	if s.client == nil {
		return fmt.Errorf("timetable store: no redis client")
	}
	if err := snapshot.Key.Validate(); err != nil {
		return err
	}
	if snapshot.SavedAt.IsZero() {
		snapshot.SavedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal timetable %s: %w", snapshot.Key, err)
	}

	name := snapshot.Key.String()
	if err := s.client.Set(ctx, timetableKeyPrefix+name, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set timetable %s: %w", name, err)
	}

	if err := s.client.Publish(ctx, timetableChannelPrefix+name, payload).Err(); err != nil {
		// Persisted fine; a missed notification only delays invalidation.
		s.logger.Sugar().Warnw("publish timetable update failed", "key", name, "error", err)
	}
	return nil
}

// Delete removes a stored timetable.
func (s *TimetableStore) Delete(ctx context.Context, key models.TimetableKey) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, timetableKeyPrefix+key.String()).Err(); err != nil {
		return fmt.Errorf("redis delete timetable %s: %w", key, err)
	}
	return nil
}

// ListKeys scans stored timetable names, optionally filtered by a
// prefix such as a semester or branch.
func (s *TimetableStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if s.client == nil {
		return nil, nil
	}

	pattern := timetableKeyPrefix + prefix + "*"
	var names []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), timetableKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan timetables: %w", err)
	}
	return names, nil
}

// Subscribe listens for update notifications on one timetable and
// invokes fn with each received snapshot. The returned function stops
// the subscription.
func (s *TimetableStore) Subscribe(ctx context.Context, key models.TimetableKey, fn func(*models.TimetableSnapshot)) (func(), error) {
	if s.client == nil {
		return func() {}, nil
	}

	sub := s.client.Subscribe(ctx, timetableChannelPrefix+key.String())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe timetable %s: %w", key, err)
	}

	go func() {
		for msg := range sub.Channel() {
			var snapshot models.TimetableSnapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snapshot); err != nil {
				s.logger.Sugar().Warnw("malformed timetable notification", "key", key.String(), "error", err)
				continue
			}
			fn(&snapshot)
		}
	}()

	return func() { _ = sub.Close() }, nil
}
