package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/metrics"
	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	sequenceKeyPrefix = "lesson:next:"
	// noNextLesson marks a cached "last lesson" answer
	noNextLesson = "none"
	// noNextLessonTTL bounds how long a "last lesson" answer hides a newly appended lesson
	noNextLessonTTL = 30 * time.Second
)

// SequenceReader is the lookup being cached
type SequenceReader interface {
	GetNext(ctx context.Context, lessonID int) (*models.LessonShortInfo, error)
}

// cachedSequenceRepository caches next-lesson lookups in Redis.
//
// Redis is never authoritative: any Redis failure falls through to the wrapped reader.
type cachedSequenceRepository struct {
	next   SequenceReader
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSequenceRepository wraps a sequence reader with a Redis cache
func NewCachedSequenceRepository(next SequenceReader, client *redis.Client, ttl time.Duration, logger *zap.Logger) *cachedSequenceRepository {
	return &cachedSequenceRepository{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetNext retrieves the next lesson, consulting the cache first
func (r *cachedSequenceRepository) GetNext(ctx context.Context, lessonID int) (*models.LessonShortInfo, error) {
	key := sequenceKey(lessonID)

	cached, err := r.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		next, decodeErr := decodeNext(cached)
		if decodeErr == nil {
			metrics.SequenceCacheHits.Inc()
			return next, nil
		}
		r.logger.Warn("discarding malformed sequence cache entry", zap.String("key", key), zap.Error(decodeErr))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("sequence cache read failed", zap.String("key", key), zap.Error(err))
	}

	metrics.SequenceCacheMisses.Inc()
	next, err := r.next.GetNext(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	value, ttl := noNextLesson, min(r.ttl, noNextLessonTTL)
	if next != nil {
		data, err := json.Marshal(next)
		if err != nil {
			return next, nil
		}
		value, ttl = string(data), r.ttl
	}

	if err := r.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("sequence cache write failed", zap.String("key", key), zap.Error(err))
	}

	return next, nil
}

func sequenceKey(lessonID int) string {
	return fmt.Sprintf("%s%d", sequenceKeyPrefix, lessonID)
}

func decodeNext(value string) (*models.LessonShortInfo, error) {
	if value == noNextLesson {
		return nil, nil
	}
	var next models.LessonShortInfo
	if err := json.Unmarshal([]byte(value), &next); err != nil {
		return nil, err
	}
	return &next, nil
}
