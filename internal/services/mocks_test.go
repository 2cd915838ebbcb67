package services

import (
	"context"
	"sort"
	"sync"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
)

// mockLessonRepository serves a fixed ordered lesson list for both lesson and sequence lookups
type mockLessonRepository struct {
	lessons []models.Lesson
	err     error
	nextErr error
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, lesson := range m.lessons {
		if lesson.ID == id {
			l := lesson
			return &l, nil
		}
	}
	return nil, models.ErrLessonNotFound
}

func (m *mockLessonRepository) Exists(ctx context.Context, id int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, lesson := range m.lessons {
		if lesson.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLessonRepository) GetAll(ctx context.Context) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons, nil
}

func (m *mockLessonRepository) GetFirstID(ctx context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.lessons) == 0 {
		return 0, nil
	}
	return m.lessons[0].ID, nil
}

func (m *mockLessonRepository) GetNext(ctx context.Context, lessonID int) (*models.LessonShortInfo, error) {
	if m.nextErr != nil {
		return nil, m.nextErr
	}
	for _, lesson := range m.lessons {
		if lesson.ID > lessonID {
			return &models.LessonShortInfo{ID: lesson.ID, Title: lesson.Title}, nil
		}
	}
	return nil, nil
}

type progressKey struct {
	userID   int
	lessonID int
}

// memoryProgressRepository keeps progress rows in a map and applies the same max-merge as the database
type memoryProgressRepository struct {
	mu          sync.Mutex
	rows        map[progressKey]int
	getErr      error
	upsertErr   error
	existsErr   error
	byUserErr   error
	upsertCalls int
}

func newMemoryProgressRepository() *memoryProgressRepository {
	return &memoryProgressRepository{rows: make(map[progressKey]int)}
}

func (m *memoryProgressRepository) Get(ctx context.Context, userID, lessonID int) (*models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	percent, ok := m.rows[progressKey{userID, lessonID}]
	if !ok {
		return nil, models.ErrProgressNotFound
	}
	return &models.LessonProgress{
		UserID:          userID,
		LessonID:        lessonID,
		ProgressPercent: percent,
		Completed:       models.IsCompleted(percent),
	}, nil
}

func (m *memoryProgressRepository) Upsert(ctx context.Context, userID, lessonID, percent int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	key := progressKey{userID, lessonID}
	if current, ok := m.rows[key]; !ok || percent > current {
		m.rows[key] = percent
	}
	return m.rows[key], nil
}

func (m *memoryProgressRepository) Exists(ctx context.Context, userID, lessonID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.rows[progressKey{userID, lessonID}]
	return ok, nil
}

func (m *memoryProgressRepository) GetByUser(ctx context.Context, userID int) ([]models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byUserErr != nil {
		return nil, m.byUserErr
	}
	var records []models.LessonProgress
	for key, percent := range m.rows {
		if key.userID == userID {
			records = append(records, models.LessonProgress{
				UserID:          userID,
				LessonID:        key.lessonID,
				ProgressPercent: percent,
				Completed:       models.IsCompleted(percent),
			})
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].LessonID < records[j].LessonID })
	return records, nil
}

func (m *memoryProgressRepository) rowCount(userID, lessonID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[progressKey{userID, lessonID}]; ok {
		return 1
	}
	return 0
}

// mockResolver records ResolveNext calls
type mockResolver struct {
	status *models.NextLessonStatus
	calls  int
}

func (m *mockResolver) ResolveNext(ctx context.Context, userID, lessonID int) *models.NextLessonStatus {
	m.calls++
	return m.status
}

func testLessons() []models.Lesson {
	return []models.Lesson{
		{ID: 1, Title: "Holding the dombyra", DurationSeconds: 600},
		{ID: 2, Title: "Tuning", DurationSeconds: 300},
		{ID: 5, Title: "First kuy", DurationSeconds: 900},
	}
}
