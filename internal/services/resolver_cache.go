package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matelog-ae/course-service/internal/cache"
	"github.com/matelog-ae/course-service/internal/models"
)

// exerciseSetTTL keeps cached sets short-lived so authoring changes show up
// quickly even if an invalidation is missed.
const exerciseSetTTL = 5 * time.Minute

func exerciseSetCacheKey(topicID uint, profile *models.LearnerProfile) string {
	group := "none"
	class := "none"
	if profile != nil {
		group = string(profile.Group)
		class = string(profile.SelfEfficacy)
		if class == "" {
			class = "unclassified"
		}
	}
	return fmt.Sprintf("exset:%d:%s:%s", topicID, group, class)
}

// resolveWithCache returns the learner's exercise set for a topic, serving
// from Redis when possible. The cache only ever stores what the pure resolver
// produced, so a hit and a miss are indistinguishable to callers.
func resolveWithCache(ctx context.Context, c cache.CacheService, logger *slog.Logger, topicID uint, exercises []models.Exercise, profile *models.LearnerProfile) []models.Exercise {
	if c == nil {
		return ResolveExerciseSet(exercises, profile)
	}

	key := exerciseSetCacheKey(topicID, profile)

	var cached []models.Exercise
	err := c.Get(ctx, key, &cached)
	if err == nil {
		return cached
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("exercise set cache read failed", "key", key, "error", err)
	}

	resolved := ResolveExerciseSet(exercises, profile)
	if err := c.Set(ctx, key, resolved, exerciseSetTTL); err != nil {
		logger.Warn("exercise set cache write failed", "key", key, "error", err)
	}
	return resolved
}

func invalidateExerciseSetCache(ctx context.Context, c cache.CacheService, logger *slog.Logger, topicID uint) {
	if c == nil {
		return
	}
	if err := c.DeletePattern(ctx, fmt.Sprintf("exset:%d:*", topicID)); err != nil {
		logger.Warn("exercise set cache invalidation failed", "topic_id", topicID, "error", err)
	}
}
