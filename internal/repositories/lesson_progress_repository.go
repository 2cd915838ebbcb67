package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
)

type lessonProgressRepository struct {
	db *sql.DB
}

// NewLessonProgressRepository creates a new lesson progress repository
func NewLessonProgressRepository(db *sql.DB) *lessonProgressRepository {
	return &lessonProgressRepository{
		db: db,
	}
}

// Get retrieves the progress record for a user and lesson
func (r *lessonProgressRepository) Get(ctx context.Context, userID, lessonID int) (*models.LessonProgress, error) {
	query := `
		SELECT user_id, lesson_id, progress_percent, updated_at
		FROM lesson_progress
		WHERE user_id = ? AND lesson_id = ?
		LIMIT 1
	`

	var progress models.LessonProgress
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(
		&progress.UserID,
		&progress.LessonID,
		&progress.ProgressPercent,
		&progress.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson progress: %w", err)
	}

	progress.Completed = models.IsCompleted(progress.ProgressPercent)
	return &progress, nil
}

// Upsert raises the stored progress to percent and returns the resulting stored value.
//
// The row is created when missing. An existing higher value is never lowered,
// so the write is idempotent and independent of arrival order.
func (r *lessonProgressRepository) Upsert(ctx context.Context, userID, lessonID, percent int) (int, error) {
	query := `
		INSERT INTO lesson_progress (user_id, lesson_id, progress_percent)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			progress_percent = GREATEST(progress_percent, VALUES(progress_percent))
	`

	if _, err := r.db.ExecContext(ctx, query, userID, lessonID, percent); err != nil {
		return 0, fmt.Errorf("failed to upsert lesson progress: %w", err)
	}

	var stored int
	err := r.db.QueryRowContext(ctx,
		`SELECT progress_percent FROM lesson_progress WHERE user_id = ? AND lesson_id = ?`,
		userID, lessonID,
	).Scan(&stored)
	if err != nil {
		return 0, fmt.Errorf("failed to read stored lesson progress: %w", err)
	}

	return stored, nil
}

// Exists checks if a progress record exists for user and lesson
func (r *lessonProgressRepository) Exists(ctx context.Context, userID, lessonID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM lesson_progress WHERE user_id = ? AND lesson_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check progress existence: %w", err)
	}

	return exists, nil
}

// GetByUser retrieves all progress records of a user
func (r *lessonProgressRepository) GetByUser(ctx context.Context, userID int) ([]models.LessonProgress, error) {
	query := `
		SELECT user_id, lesson_id, progress_percent, updated_at
		FROM lesson_progress
		WHERE user_id = ?
		ORDER BY lesson_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	var records []models.LessonProgress
	for rows.Next() {
		var progress models.LessonProgress
		err := rows.Scan(
			&progress.UserID,
			&progress.LessonID,
			&progress.ProgressPercent,
			&progress.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		progress.Completed = models.IsCompleted(progress.ProgressPercent)
		records = append(records, progress)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}
