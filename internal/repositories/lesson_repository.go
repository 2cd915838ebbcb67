package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// GetByID retrieves a lesson by its ID
func (r *lessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	query := `
		SELECT id, title, description, video_url, sheet_music_url, duration_seconds
		FROM lessons
		WHERE id = ?
		LIMIT 1
	`

	var lesson models.Lesson
	var sheetMusicURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.Title,
		&lesson.Description,
		&lesson.VideoURL,
		&sheetMusicURL,
		&lesson.DurationSeconds,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	lesson.SheetMusicURL = sheetMusicURL.String
	return &lesson, nil
}

// Exists checks if a lesson with the given ID exists
func (r *lessonRepository) Exists(ctx context.Context, id int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM lessons WHERE id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lesson existence: %w", err)
	}

	return exists, nil
}

// GetAll retrieves all lessons in sequence order
func (r *lessonRepository) GetAll(ctx context.Context) ([]models.Lesson, error) {
	query := `
		SELECT id, title, description, video_url, sheet_music_url, duration_seconds
		FROM lessons
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		var sheetMusicURL sql.NullString
		err := rows.Scan(
			&lesson.ID,
			&lesson.Title,
			&lesson.Description,
			&lesson.VideoURL,
			&sheetMusicURL,
			&lesson.DurationSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lesson.SheetMusicURL = sheetMusicURL.String
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// GetNext retrieves the lesson with the smallest ID strictly greater than lessonID.
//
// Returns nil without an error when lessonID is the last lesson in sequence.
func (r *lessonRepository) GetNext(ctx context.Context, lessonID int) (*models.LessonShortInfo, error) {
	query := `
		SELECT id, title
		FROM lessons
		WHERE id > ?
		ORDER BY id ASC
		LIMIT 1
	`

	var next models.LessonShortInfo
	err := r.db.QueryRowContext(ctx, query, lessonID).Scan(&next.ID, &next.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next lesson: %w", err)
	}

	return &next, nil
}

// GetFirstID retrieves the ID of the first lesson in sequence, 0 if there are no lessons
func (r *lessonRepository) GetFirstID(ctx context.Context) (int, error) {
	query := `SELECT COALESCE(MIN(id), 0) FROM lessons`

	var id int
	if err := r.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get first lesson id: %w", err)
	}

	return id, nil
}
