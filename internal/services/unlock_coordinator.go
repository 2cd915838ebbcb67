package services

import (
	"context"
	"errors"

	"github.com/Sab1tov/dombyra-master-sub000/internal/metrics"
	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"go.uber.org/zap"
)

// SequenceRepository is the interface that wraps the lesson ordering lookup
type SequenceRepository interface {
	// Method GetNext retrieve the lesson with the smallest ID greater than "lessonID".
	//
	// "nil" is returned without an error when "lessonID" is the last lesson.
	GetNext(ctx context.Context, lessonID int) (*models.LessonShortInfo, error)
}

// ProgressRepository is the interface that wraps methods for lesson_progress table data access
type ProgressRepository interface {
	// Method Get retrieve the progress row of a user for a lesson.
	//
	// models.ErrProgressNotFound is returned when the user has no row for the lesson.
	Get(ctx context.Context, userID, lessonID int) (*models.LessonProgress, error)
	// Method Upsert raise the stored progress to "percent" (creating the row when missing) and return the stored value.
	//
	// The stored value never decreases, so the returned value may be higher than "percent".
	Upsert(ctx context.Context, userID, lessonID, percent int) (int, error)
	// Method Exists report whether a progress row exists, which is what grants access to a lesson.
	Exists(ctx context.Context, userID, lessonID int) (bool, error)
	// Method GetByUser retrieve every progress row of a user.
	GetByUser(ctx context.Context, userID int) ([]models.LessonProgress, error)
}

// Fail-closed stages, used as metric labels
const (
	stageNextLookup     = "next_lookup"
	stageProgressLookup = "progress_lookup"
	stageAccessCheck    = "access_check"
	stageProvision      = "provision"
)

type unlockCoordinator struct {
	sequence SequenceRepository
	progress ProgressRepository
	logger   *zap.Logger
}

// NewUnlockCoordinator creates a coordinator that grants access to the next lesson on completion
func NewUnlockCoordinator(sequence SequenceRepository, progress ProgressRepository, logger *zap.Logger) *unlockCoordinator {
	return &unlockCoordinator{
		sequence: sequence,
		progress: progress,
		logger:   logger,
	}
}

// ResolveNext reports the status of the lesson after lessonID for the user, unlocking it when
// the stored progress of lessonID reaches the completion threshold.
//
// A nil result means lessonID is the last lesson. Any store failure yields IsLocked=true.
// Calling it again after the next lesson was unlocked changes nothing.
func (c *unlockCoordinator) ResolveNext(ctx context.Context, userID, lessonID int) *models.NextLessonStatus {
	next, err := c.sequence.GetNext(ctx, lessonID)
	if err != nil {
		c.failClosed(stageNextLookup, userID, lessonID, err)
		return &models.NextLessonStatus{IsLocked: true}
	}
	if next == nil {
		return nil
	}

	locked := &models.NextLessonStatus{Lesson: next, IsLocked: true}

	// completion is judged on the stored value, never on what the client claims
	current, err := c.progress.Get(ctx, userID, lessonID)
	switch {
	case errors.Is(err, models.ErrProgressNotFound):
		return locked
	case err != nil:
		c.failClosed(stageProgressLookup, userID, lessonID, err)
		return locked
	case !models.IsCompleted(current.ProgressPercent):
		return locked
	}

	exists, err := c.progress.Exists(ctx, userID, next.ID)
	if err != nil {
		c.failClosed(stageAccessCheck, userID, next.ID, err)
		return locked
	}
	if exists {
		return &models.NextLessonStatus{Lesson: next}
	}

	if _, err := c.progress.Upsert(ctx, userID, next.ID, 0); err != nil {
		c.failClosed(stageProvision, userID, next.ID, err)
		return locked
	}

	metrics.LessonUnlocks.Inc()
	c.logger.Info("lesson unlocked",
		zap.Int("user_id", userID),
		zap.Int("completed_lesson_id", lessonID),
		zap.Int("unlocked_lesson_id", next.ID),
	)

	return &models.NextLessonStatus{Lesson: next, Unlocked: true}
}

func (c *unlockCoordinator) failClosed(stage string, userID, lessonID int, err error) {
	metrics.UnlockFailClosed.WithLabelValues(stage).Inc()
	c.logger.Warn("unlock check failed, reporting next lesson as locked",
		zap.String("stage", stage),
		zap.Int("user_id", userID),
		zap.Int("lesson_id", lessonID),
		zap.Error(err),
	)
}
