package playback

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore applies the server max-merge in memory and unlocks the next lesson at 80
type fakeStore struct {
	mu       sync.Mutex
	stored   int
	writes   []int
	getErr   error
	saveErr  error
	next     *models.LessonShortInfo
	unlocked bool
	unlocks  int
}

func (f *fakeStore) GetProgress(ctx context.Context, lessonID int) (*models.ProgressResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return models.NewProgressResponse(lessonID, f.stored), nil
}

func (f *fakeStore) SaveProgress(ctx context.Context, lessonID, percent int) (*models.ProgressResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, percent)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.stored = max(f.stored, percent)
	return models.NewProgressResponse(lessonID, f.stored), nil
}

func (f *fakeStore) UnlockNext(ctx context.Context, lessonID int) (*models.NextLessonStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks++
	if f.next == nil {
		return nil, nil
	}
	if !models.IsCompleted(f.stored) {
		return &models.NextLessonStatus{Lesson: f.next, IsLocked: true}, nil
	}
	status := &models.NextLessonStatus{Lesson: f.next, Unlocked: !f.unlocked}
	f.unlocked = true
	return status, nil
}

func (f *fakeStore) setSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *fakeStore) writeLog() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.writes...)
}

func (f *fakeStore) unlockCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unlocks
}

type fakeCache struct {
	mu     sync.Mutex
	values map[int]int
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[int]int)}
}

func (c *fakeCache) Get(ctx context.Context, userID, lessonID int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, c.getErr
	}
	return c.values[lessonID], nil
}

func (c *fakeCache) Put(ctx context.Context, userID, lessonID, percent int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[lessonID] = max(c.values[lessonID], percent)
	return nil
}

func (c *fakeCache) value(lessonID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[lessonID]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type playerFixture struct {
	player *Player
	store  *fakeStore
	cache  *fakeCache
	clock  *fakeClock
	errc   chan error
}

func startPlayer(t *testing.T, store *fakeStore, cache *fakeCache, configure func(*Config)) *playerFixture {
	t.Helper()

	clock := newFakeClock()
	cfg := Config{
		UserID:        7,
		LessonID:      1,
		CountdownFrom: 2,
		CountdownTick: 5 * time.Millisecond,
		Now:           clock.Now,
	}
	if configure != nil {
		configure(&cfg)
	}

	p := NewPlayer(cfg, store, cache, zap.NewNop())
	p.Start(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- p.Run(context.Background()) }()

	f := &playerFixture{player: p, store: store, cache: cache, clock: clock, errc: errc}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = p.Close(ctx)
	})
	return f
}

// sample posts a time update at percent of a 100 second video after moving the clock past the sample interval
func (f *playerFixture) sample(t *testing.T, percent float64) {
	t.Helper()
	f.clock.Advance(300 * time.Millisecond)
	require.NoError(t, f.player.TimeUpdate(percent, 100))
}

func (f *playerFixture) stats(t *testing.T) Stats {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := f.player.Stats(ctx)
	require.NoError(t, err)
	return s
}

func (f *playerFixture) eventuallyWrites(t *testing.T, expected []int) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(expected, f.store.writeLog())
	}, 2*time.Second, 5*time.Millisecond, "writes: %v", f.store.writeLog())
}

func TestPlayer_SeedsFromServerAndCache(t *testing.T) {
	cache := newFakeCache()
	cache.values[1] = 45
	f := startPlayer(t, &fakeStore{stored: 30}, cache, nil)

	s := f.stats(t)
	assert.Equal(t, 45, s.MaxProgressSeen)
	assert.Equal(t, 30, s.LastPersisted)

	f.sample(t, 10)
	f.eventuallyWrites(t, []int{45})
	assert.Equal(t, 45, f.stats(t).MaxProgressSeen)
}

func TestPlayer_SeedSourcesFailToZero(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("disk gone")
	f := startPlayer(t, &fakeStore{getErr: errors.New("offline")}, cache, nil)

	s := f.stats(t)

	assert.Equal(t, 0, s.MaxProgressSeen)
	assert.Equal(t, 0, s.LastPersisted)
}

func TestPlayer_SampleDrivenWrites(t *testing.T) {
	f := startPlayer(t, &fakeStore{}, newFakeCache(), nil)

	f.sample(t, 10) // first non-zero
	f.eventuallyWrites(t, []int{10})

	f.sample(t, 12) // too soon after the last write
	f.sample(t, 26) // crosses 25
	f.eventuallyWrites(t, []int{10, 26})

	assert.Equal(t, 26, f.cache.value(1))
}

func TestPlayer_NeverWrites100WithoutEnd(t *testing.T) {
	f := startPlayer(t, &fakeStore{}, newFakeCache(), nil)

	f.sample(t, 100)
	require.NoError(t, f.player.Pause())
	f.eventuallyWrites(t, []int{99})

	assert.Eventually(t, func() bool {
		s := f.stats(t)
		return s.MaxProgressSeen == 100 && s.LastPersisted == 99
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPlayer_InvalidDurationDoesNotSample(t *testing.T) {
	f := startPlayer(t, &fakeStore{}, newFakeCache(), nil)

	require.NoError(t, f.player.LoadedMetadata(math.NaN()))
	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Second)
		require.NoError(t, f.player.TimeUpdate(float64(i*10), 0))
	}

	s := f.stats(t)
	assert.Equal(t, 0, s.MaxProgressSeen)
	assert.Empty(t, f.store.writeLog())
}

func TestPlayer_MediaErrorStopsSampling(t *testing.T) {
	f := startPlayer(t, &fakeStore{}, newFakeCache(), nil)

	require.NoError(t, f.player.MediaError())
	f.sample(t, 40)

	assert.Equal(t, 0, f.stats(t).MaxProgressSeen)
}

func TestPlayer_FailedWriteRetriedOnNextTrigger(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("503")}
	f := startPlayer(t, store, newFakeCache(), nil)

	f.sample(t, 20)
	f.eventuallyWrites(t, []int{20})

	store.setSaveErr(nil)
	f.sample(t, 22)
	require.NoError(t, f.player.Pause())
	f.eventuallyWrites(t, []int{20, 22})

	assert.Eventually(t, func() bool {
		return f.stats(t).LastPersisted == 22
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPlayer_EndedUnlocksAndAdvances(t *testing.T) {
	store := &fakeStore{next: &models.LessonShortInfo{ID: 2, Title: "Tuning"}}
	f := startPlayer(t, store, newFakeCache(), func(cfg *Config) {
		cfg.AutoAdvance = true
	})

	f.sample(t, 90)
	f.eventuallyWrites(t, []int{90})
	require.NoError(t, f.player.Ended())

	select {
	case next := <-f.player.Advanced():
		assert.Equal(t, 2, next.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("player did not advance")
	}

	writes := store.writeLog()
	require.NotEmpty(t, writes)
	assert.Equal(t, 100, writes[len(writes)-1])
	assert.Equal(t, 1, store.unlockCalls())

	s := f.stats(t)
	assert.True(t, s.Ended)
	require.NotNil(t, s.Next)
	assert.False(t, s.Next.IsLocked)
	assert.Equal(t, CountdownNavigated, s.Countdown)
}

func TestPlayer_CancelAdvance(t *testing.T) {
	store := &fakeStore{next: &models.LessonShortInfo{ID: 2, Title: "Tuning"}}
	f := startPlayer(t, store, newFakeCache(), func(cfg *Config) {
		cfg.AutoAdvance = true
		cfg.CountdownTick = time.Hour
	})

	require.NoError(t, f.player.Ended())
	assert.Eventually(t, func() bool {
		return f.stats(t).Countdown == CountdownCounting
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.player.CancelAdvance())

	assert.Equal(t, CountdownCancelled, f.stats(t).Countdown)
	select {
	case <-f.player.Advanced():
		t.Fatal("cancelled countdown navigated")
	default:
	}
}

func TestPlayer_AdvanceNow(t *testing.T) {
	store := &fakeStore{next: &models.LessonShortInfo{ID: 2, Title: "Tuning"}}
	f := startPlayer(t, store, newFakeCache(), func(cfg *Config) {
		cfg.AutoAdvance = true
		cfg.CountdownTick = time.Hour
	})

	require.NoError(t, f.player.Ended())
	assert.Eventually(t, func() bool {
		return f.stats(t).Countdown == CountdownCounting
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.player.AdvanceNow())

	select {
	case next := <-f.player.Advanced():
		assert.Equal(t, 2, next.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("player did not advance")
	}
}

func TestPlayer_EndedWithoutNextLesson(t *testing.T) {
	store := &fakeStore{}
	f := startPlayer(t, store, newFakeCache(), func(cfg *Config) {
		cfg.AutoAdvance = true
	})

	require.NoError(t, f.player.Ended())
	assert.Eventually(t, func() bool {
		return store.unlockCalls() == 1
	}, 2*time.Second, 5*time.Millisecond)

	s := f.stats(t)
	assert.Nil(t, s.Next)
	assert.Equal(t, CountdownIdle, s.Countdown)
}

func TestPlayer_CloseFlushesPendingProgress(t *testing.T) {
	store := &fakeStore{}
	cache := newFakeCache()
	f := startPlayer(t, store, cache, nil)

	f.sample(t, 10)
	f.eventuallyWrites(t, []int{10})
	f.sample(t, 12)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.player.Close(ctx))
	require.NoError(t, <-f.errc)

	assert.Equal(t, []int{10, 12}, store.writeLog())
	assert.Equal(t, 12, cache.value(1))
	assert.ErrorIs(t, f.player.Pause(), ErrPlayerClosed)
}

func TestPlayer_CloseWithNothingToSave(t *testing.T) {
	store := &fakeStore{stored: 50}
	f := startPlayer(t, store, newFakeCache(), nil)

	f.sample(t, 20)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.player.Close(ctx))

	assert.Empty(t, store.writeLog())
}

func TestPlayer_QueuedSamplesKeepTheirTimestamps(t *testing.T) {
	f := startPlayer(t, &fakeStore{}, newFakeCache(), nil)

	f.sample(t, 10)
	f.sample(t, 12)
	f.sample(t, 26)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]int{10, 26}, sorted(f.store.writeLog()))
	}, 2*time.Second, 5*time.Millisecond, "writes: %v", f.store.writeLog())
	assert.Equal(t, 26, f.stats(t).MaxProgressSeen)
}

func TestPlayer_EndedThenCloseWritesCompletion(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := &fakeStore{next: &models.LessonShortInfo{ID: 2, Title: "Tuning"}}
		f := startPlayer(t, store, newFakeCache(), func(cfg *Config) {
			cfg.AutoAdvance = true
		})

		require.NoError(t, f.player.Ended())
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		require.NoError(t, f.player.Close(ctx))
		cancel()
		require.NoError(t, <-f.errc)

		assert.Contains(t, store.writeLog(), 100, "run %d", i)
		assert.Equal(t, 1, store.unlockCalls(), "run %d", i)
		assert.Equal(t, 100, f.cache.value(1), "run %d", i)
	}
}

func TestPlayer_SampleThenCloseIsPersisted(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := &fakeStore{}
		f := startPlayer(t, store, newFakeCache(), nil)

		f.sample(t, 30)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		require.NoError(t, f.player.Close(ctx))
		cancel()

		assert.Equal(t, []int{30}, store.writeLog(), "run %d", i)
	}
}

func TestPlayer_CancelledRunPersistsQueuedEnd(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := &fakeStore{next: &models.LessonShortInfo{ID: 2, Title: "Tuning"}}
		p := NewPlayer(Config{UserID: 7, LessonID: 1}, store, nil, zap.NewNop())
		p.Start(context.Background())

		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- p.Run(ctx) }()

		require.NoError(t, p.Ended())
		cancel()
		assert.ErrorIs(t, <-errc, context.Canceled)

		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
		require.NoError(t, p.Close(waitCtx))
		waitCancel()

		assert.Contains(t, store.writeLog(), 100, "run %d", i)
		assert.Equal(t, 1, store.unlockCalls(), "run %d", i)
	}
}

func sorted(values []int) []int {
	slices.Sort(values)
	return values
}
