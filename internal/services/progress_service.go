package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sab1tov/dombyra-master-sub000/internal/metrics"
	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"go.uber.org/zap"
)

// LessonRepository is the interface that wraps methods for lessons table data access
type LessonRepository interface {
	// Method GetByID retrieve a lesson by its ID.
	//
	// models.ErrLessonNotFound is returned when no lesson has the ID.
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
	// Method Exists report whether a lesson with the ID exists.
	Exists(ctx context.Context, id int) (bool, error)
	// Method GetAll retrieve all lessons in sequence order.
	GetAll(ctx context.Context) ([]models.Lesson, error)
	// Method GetFirstID retrieve the ID of the first lesson in sequence, or 0 when there are no lessons.
	GetFirstID(ctx context.Context) (int, error)
}

// NextLessonResolver decides whether the lesson after a completed one is open
type NextLessonResolver interface {
	ResolveNext(ctx context.Context, userID, lessonID int) *models.NextLessonStatus
}

type progressService struct {
	lessons  LessonRepository
	sequence SequenceRepository
	progress ProgressRepository
	resolver NextLessonResolver
	logger   *zap.Logger
}

// NewProgressService creates a new lesson progress service
func NewProgressService(
	lessons LessonRepository,
	sequence SequenceRepository,
	progress ProgressRepository,
	resolver NextLessonResolver,
	logger *zap.Logger,
) *progressService {
	return &progressService{
		lessons:  lessons,
		sequence: sequence,
		progress: progress,
		resolver: resolver,
		logger:   logger,
	}
}

// GetProgress retrieves the stored progress of a user for a lesson.
//
// A user without a progress row gets 0.
func (s *progressService) GetProgress(ctx context.Context, userID, lessonID int) (*models.ProgressResponse, error) {
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}

	record, err := s.progress.Get(ctx, userID, lessonID)
	if errors.Is(err, models.ErrProgressNotFound) {
		return models.NewProgressResponse(lessonID, 0), nil
	}
	if err != nil {
		s.logger.Error("failed to get lesson progress", zap.Int("lesson_id", lessonID), zap.Error(err))
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return models.NewProgressResponse(lessonID, record.ProgressPercent), nil
}

// GetLesson retrieves a lesson the user may open, with their progress.
//
// models.ErrLessonLocked is returned for lessons the user cannot open yet.
func (s *progressService) GetLesson(ctx context.Context, userID, lessonID int) (*models.LessonDetail, error) {
	if lessonID <= 0 {
		return nil, models.ErrInvalidLessonID
	}

	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if errors.Is(err, models.ErrLessonNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("failed to get lesson", zap.Int("lesson_id", lessonID), zap.Error(err))
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	percent := 0
	record, err := s.progress.Get(ctx, userID, lessonID)
	switch {
	case err == nil:
		percent = record.ProgressPercent
	case errors.Is(err, models.ErrProgressNotFound):
		open, err := s.isFirst(ctx, lessonID)
		if err != nil {
			s.logger.Error("failed to check lesson access", zap.Int("lesson_id", lessonID), zap.Error(err))
			return nil, fmt.Errorf("failed to check access: %w", err)
		}
		if !open {
			return nil, models.ErrLessonLocked
		}
	default:
		s.logger.Error("failed to get lesson progress", zap.Int("lesson_id", lessonID), zap.Error(err))
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return &models.LessonDetail{
		Lesson:          *lesson,
		ProgressPercent: percent,
		Completed:       models.IsCompleted(percent),
	}, nil
}

// SaveProgress raises the stored progress of a user for a lesson and returns the stored value.
//
// The write only ever raises the stored value. Once the stored value reaches the completion
// threshold the response carries the status of the next lesson, unlocking it if needed.
// Writes to a lesson the user cannot open yet are rejected with models.ErrLessonLocked.
func (s *progressService) SaveProgress(ctx context.Context, userID, lessonID, percent int) (*models.ProgressResponse, error) {
	if percent < 0 || percent > models.MaxProgress {
		return nil, models.ErrInvalidProgress
	}
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}

	open, err := s.canOpen(ctx, userID, lessonID)
	if err != nil {
		s.logger.Error("failed to check lesson access", zap.Int("lesson_id", lessonID), zap.Error(err))
		return nil, fmt.Errorf("failed to check access: %w", err)
	}
	if !open {
		return nil, models.ErrLessonLocked
	}

	stored, err := s.progress.Upsert(ctx, userID, lessonID, percent)
	if err != nil {
		metrics.ProgressWrites.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Error("failed to save lesson progress",
			zap.Int("user_id", userID),
			zap.Int("lesson_id", lessonID),
			zap.Int("percent", percent),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	metrics.ProgressWrites.WithLabelValues(metrics.ResultSuccess).Inc()
	if stored > percent {
		metrics.ProgressWritesAbsorbed.Inc()
	}

	resp := models.NewProgressResponse(lessonID, stored)
	if resp.Completed {
		resp.NextLesson = s.resolver.ResolveNext(ctx, userID, lessonID)
	}

	return resp, nil
}

// UnlockNext runs the unlock decision for the lesson after lessonID.
//
// A nil status means lessonID is the last lesson.
func (s *progressService) UnlockNext(ctx context.Context, userID, lessonID int) (*models.NextLessonStatus, error) {
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}

	return s.resolver.ResolveNext(ctx, userID, lessonID), nil
}

// HasAccess reports whether a progress row exists for the user and lesson
func (s *progressService) HasAccess(ctx context.Context, userID, lessonID int) (bool, error) {
	if lessonID <= 0 {
		return false, models.ErrInvalidLessonID
	}

	exists, err := s.progress.Exists(ctx, userID, lessonID)
	if err != nil {
		s.logger.Error("failed to check lesson access", zap.Int("lesson_id", lessonID), zap.Error(err))
		return false, fmt.Errorf("failed to check access: %w", err)
	}

	return exists, nil
}

// GetNextLesson retrieves the lesson after lessonID in sequence, or nil for the last lesson
func (s *progressService) GetNextLesson(ctx context.Context, lessonID int) (*models.LessonShortInfo, error) {
	if lessonID <= 0 {
		return nil, models.ErrInvalidLessonID
	}

	next, err := s.sequence.GetNext(ctx, lessonID)
	if err != nil {
		s.logger.Error("failed to get next lesson", zap.Int("lesson_id", lessonID), zap.Error(err))
		return nil, fmt.Errorf("failed to get next lesson: %w", err)
	}

	return next, nil
}

// ListLessons retrieves all lessons with the user's progress and lock state.
//
// The first lesson in sequence is always open.
func (s *progressService) ListLessons(ctx context.Context, userID int) ([]models.LessonListItem, error) {
	lessons, err := s.lessons.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get lessons", zap.Error(err))
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	records, err := s.progress.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user progress", zap.Int("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	byLesson := make(map[int]int, len(records))
	for _, record := range records {
		byLesson[record.LessonID] = record.ProgressPercent
	}

	items := make([]models.LessonListItem, 0, len(lessons))
	for i, lesson := range lessons {
		percent, unlocked := byLesson[lesson.ID]
		items = append(items, models.LessonListItem{
			ID:              lesson.ID,
			Title:           lesson.Title,
			DurationSeconds: lesson.DurationSeconds,
			ProgressPercent: percent,
			Completed:       models.IsCompleted(percent),
			IsLocked:        !unlocked && i > 0,
		})
	}

	return items, nil
}

// ensureLesson validates the lesson ID and checks that the lesson exists
func (s *progressService) ensureLesson(ctx context.Context, lessonID int) error {
	if lessonID <= 0 {
		return models.ErrInvalidLessonID
	}

	exists, err := s.lessons.Exists(ctx, lessonID)
	if err != nil {
		s.logger.Error("failed to check lesson existence", zap.Int("lesson_id", lessonID), zap.Error(err))
		return fmt.Errorf("failed to check lesson: %w", err)
	}
	if !exists {
		return models.ErrLessonNotFound
	}

	return nil
}

// canOpen reports whether the user may record progress on the lesson
func (s *progressService) canOpen(ctx context.Context, userID, lessonID int) (bool, error) {
	exists, err := s.progress.Exists(ctx, userID, lessonID)
	if err != nil || exists {
		return exists, err
	}

	return s.isFirst(ctx, lessonID)
}

// isFirst reports whether the lesson opens the sequence
func (s *progressService) isFirst(ctx context.Context, lessonID int) (bool, error) {
	firstID, err := s.lessons.GetFirstID(ctx)
	if err != nil {
		return false, err
	}

	return lessonID == firstID, nil
}
