package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLessonProgressTestRepository creates a lesson progress repository with a mock database
func setupLessonProgressTestRepository(t *testing.T) (*lessonProgressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewLessonProgressRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewLessonProgressRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewLessonProgressRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestLessonProgressRepository_Get(t *testing.T) {
	updatedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"user_id", "lesson_id", "progress_percent", "updated_at"}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		anyError      bool
		expected      *models.LessonProgress
	}{
		{
			name: "success - completed",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT user_id, lesson_id, progress_percent, updated_at FROM lesson_progress WHERE user_id = \? AND lesson_id = \?`).
					WithArgs(7, 1).
					WillReturnRows(sqlmock.NewRows(columns).AddRow(7, 1, 80, updatedAt))
			},
			expected: &models.LessonProgress{UserID: 7, LessonID: 1, ProgressPercent: 80, Completed: true, UpdatedAt: updatedAt},
		},
		{
			name: "success - not completed",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT user_id, lesson_id, progress_percent, updated_at FROM lesson_progress`).
					WithArgs(7, 1).
					WillReturnRows(sqlmock.NewRows(columns).AddRow(7, 1, 79, updatedAt))
			},
			expected: &models.LessonProgress{UserID: 7, LessonID: 1, ProgressPercent: 79, Completed: false, UpdatedAt: updatedAt},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT user_id, lesson_id, progress_percent, updated_at FROM lesson_progress`).
					WithArgs(7, 1).
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrProgressNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT user_id, lesson_id, progress_percent, updated_at FROM lesson_progress`).
					WithArgs(7, 1).
					WillReturnError(errors.New("database error"))
			},
			anyError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonProgressTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.Get(context.Background(), 7, 1)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			case tt.anyError:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, models.ErrProgressNotFound)
				assert.Nil(t, result)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonProgressRepository_Upsert(t *testing.T) {
	tests := []struct {
		name           string
		percent        int
		setupMock      func(sqlmock.Sqlmock)
		expectedError  bool
		expectedStored int
	}{
		{
			name:    "new row",
			percent: 40,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`(?s)INSERT INTO lesson_progress \(user_id, lesson_id, progress_percent\).*VALUES.*ON DUPLICATE KEY UPDATE.*GREATEST\(progress_percent, VALUES\(progress_percent\)\)`).
					WithArgs(7, 1, 40).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectQuery(`SELECT progress_percent FROM lesson_progress WHERE user_id = \? AND lesson_id = \?`).
					WithArgs(7, 1).
					WillReturnRows(sqlmock.NewRows([]string{"progress_percent"}).AddRow(40))
			},
			expectedStored: 40,
		},
		{
			name:    "lower write keeps higher stored value",
			percent: 30,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`(?s)INSERT INTO lesson_progress.*ON DUPLICATE KEY UPDATE.*GREATEST`).
					WithArgs(7, 1, 30).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT progress_percent FROM lesson_progress WHERE user_id = \? AND lesson_id = \?`).
					WithArgs(7, 1).
					WillReturnRows(sqlmock.NewRows([]string{"progress_percent"}).AddRow(65))
			},
			expectedStored: 65,
		},
		{
			name:    "unlock write with zero",
			percent: 0,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`(?s)INSERT INTO lesson_progress.*ON DUPLICATE KEY UPDATE.*GREATEST`).
					WithArgs(7, 1, 0).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectQuery(`SELECT progress_percent FROM lesson_progress`).
					WithArgs(7, 1).
					WillReturnRows(sqlmock.NewRows([]string{"progress_percent"}).AddRow(0))
			},
			expectedStored: 0,
		},
		{
			name:    "exec error",
			percent: 40,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`(?s)INSERT INTO lesson_progress.*ON DUPLICATE KEY UPDATE`).
					WithArgs(7, 1, 40).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name:    "read back error",
			percent: 40,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`(?s)INSERT INTO lesson_progress.*ON DUPLICATE KEY UPDATE`).
					WithArgs(7, 1, 40).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectQuery(`SELECT progress_percent FROM lesson_progress`).
					WithArgs(7, 1).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonProgressTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			stored, err := repo.Upsert(context.Background(), 7, 1, tt.percent)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, 0, stored)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedStored, stored)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonProgressRepository_Exists(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedValue bool
	}{
		{
			name: "row exists",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM lesson_progress WHERE user_id = \? AND lesson_id = \?\)`).
					WithArgs(7, 2).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expectedValue: true,
		},
		{
			name: "row missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM lesson_progress WHERE user_id = \? AND lesson_id = \?\)`).
					WithArgs(7, 2).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			expectedValue: false,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM lesson_progress`).
					WithArgs(7, 2).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonProgressTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.Exists(context.Background(), 7, 2)

			if tt.expectedError {
				assert.Error(t, err)
				assert.False(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedValue, result)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonProgressRepository_GetByUser(t *testing.T) {
	updatedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"user_id", "lesson_id", "progress_percent", "updated_at"}

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupLessonProgressTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT user_id, lesson_id, progress_percent, updated_at FROM lesson_progress WHERE user_id = \? ORDER BY lesson_id`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(7, 1, 100, updatedAt).
				AddRow(7, 2, 0, updatedAt))

		result, err := repo.GetByUser(context.Background(), 7)

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.True(t, result[0].Completed)
		assert.False(t, result[1].Completed)
		assert.Equal(t, 2, result[1].LessonID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock, cleanup := setupLessonProgressTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT user_id, lesson_id, progress_percent, updated_at FROM lesson_progress`).
			WithArgs(7).
			WillReturnError(errors.New("database error"))

		result, err := repo.GetByUser(context.Background(), 7)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
