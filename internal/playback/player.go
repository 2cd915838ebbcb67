package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultSafetyInterval is how often the player flushes unsaved progress while playing
	DefaultSafetyInterval = 10 * time.Second
	// DefaultWriteTimeout bounds a single store write
	DefaultWriteTimeout = 10 * time.Second
)

// ErrPlayerClosed is returned when posting to a player whose Run loop has exited
var ErrPlayerClosed = errors.New("player is closed")

// ProgressStore is the remote side of the player
type ProgressStore interface {
	GetProgress(ctx context.Context, lessonID int) (*models.ProgressResponse, error)
	SaveProgress(ctx context.Context, lessonID, percent int) (*models.ProgressResponse, error)
	UnlockNext(ctx context.Context, lessonID int) (*models.NextLessonStatus, error)
}

// LocalCache keeps the highest progress seen on this device
type LocalCache interface {
	Get(ctx context.Context, userID, lessonID int) (int, error)
	Put(ctx context.Context, userID, lessonID, percent int) error
}

// Config holds player settings. Zero durations fall back to the package defaults.
type Config struct {
	UserID         int
	LessonID       int
	AutoAdvance    bool
	SampleInterval time.Duration
	SafetyInterval time.Duration
	CountdownFrom  int
	CountdownTick  time.Duration
	WriteTimeout   time.Duration
	// OnCountdown is called from the countdown goroutine on every tick
	OnCountdown func(next models.LessonShortInfo, remaining int)
	Now         func() time.Time
}

// Stats is a snapshot of the player state
type Stats struct {
	LessonID        int
	MaxProgressSeen int
	LastPersisted   int
	Ended           bool
	Next            *models.NextLessonStatus
	Countdown       CountdownState
}

type timeUpdateEvent struct {
	position float64
	duration float64
	at       time.Time
}

type loadedMetadataEvent struct {
	duration float64
}

type (
	pauseEvent         struct{}
	endedEvent         struct{}
	mediaErrorEvent    struct{}
	cancelAdvanceEvent struct{}
	advanceNowEvent    struct{}
)

type statsRequest struct {
	reply chan Stats
}

type writeResult struct {
	value int
	resp  *models.ProgressResponse
	err   error
}

type unlockResult struct {
	status *models.NextLessonStatus
	err    error
}

// Player tracks playback of a single lesson
type Player struct {
	cfg    Config
	store  ProgressStore
	cache  LocalCache
	logger *zap.Logger

	// owned by the Run goroutine
	session         *Session
	sampler         *Sampler
	countdown       *Countdown
	duration        float64
	ended           bool
	unlockRequested bool
	closing         bool
	next            *models.NextLessonStatus
	runCtx          context.Context

	events   chan any
	writes   chan writeResult
	unlocks  chan unlockResult
	advanced chan models.LessonShortInfo

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeCtx  context.Context
	inFlight  sync.WaitGroup
}

// NewPlayer creates a player for cfg.LessonID. cache may be nil.
func NewPlayer(cfg Config, store ProgressStore, cache LocalCache, logger *zap.Logger) *Player {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultSampleInterval
	}
	if cfg.SafetyInterval <= 0 {
		cfg.SafetyInterval = DefaultSafetyInterval
	}
	if cfg.CountdownFrom <= 0 {
		cfg.CountdownFrom = DefaultCountdownFrom
	}
	if cfg.CountdownTick <= 0 {
		cfg.CountdownTick = DefaultCountdownTick
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Player{
		cfg:      cfg,
		store:    store,
		cache:    cache,
		logger:   logger.With(zap.Int("lesson_id", cfg.LessonID)),
		session:  NewSession(),
		sampler:  NewSampler(cfg.SampleInterval),
		events:   make(chan any, 64),
		writes:   make(chan writeResult, 8),
		unlocks:  make(chan unlockResult, 1),
		advanced: make(chan models.LessonShortInfo, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start seeds the session from the store and the local cache. Failures of either
// source count as zero. Start must be called before Run.
func (p *Player) Start(ctx context.Context) {
	server := 0
	resp, err := p.store.GetProgress(ctx, p.cfg.LessonID)
	if err != nil {
		p.logger.Warn("Failed to load server progress", zap.Error(err))
	} else if resp != nil {
		server = resp.ProgressPercent
	}

	local := 0
	if p.cache != nil {
		local, err = p.cache.Get(ctx, p.cfg.UserID, p.cfg.LessonID)
		if err != nil {
			p.logger.Warn("Failed to load cached progress", zap.Error(err))
			local = 0
		}
	}

	p.session.Seed(server, local)
	p.logger.Info("Playback session started",
		zap.Int("server_progress", server),
		zap.Int("local_progress", local),
		zap.Int("progress_percent", p.session.MaxProgressSeen()),
	)
}

// Run processes events until ctx is cancelled or Close is called.
// Both paths end with a final persist of unsaved progress.
func (p *Player) Run(ctx context.Context) error {
	defer close(p.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.runCtx = ctx

	ticker := time.NewTicker(p.cfg.SafetyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.drain()
			teardownCtx, cancelTeardown := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.WriteTimeout)
			p.teardown(teardownCtx)
			cancelTeardown()
			return ctx.Err()
		case <-p.quit:
			ticker.Stop()
			p.drain()
			p.teardown(p.closeCtx)
			return nil
		case ev := <-p.events:
			p.handle(ev)
		case r := <-p.writes:
			p.handleWrite(r)
		case r := <-p.unlocks:
			p.handleUnlock(r)
		case <-ticker.C:
			p.flush("safety_timer")
		}
	}
}

// Close stops the player and waits for its final persist and any writes still in flight
func (p *Player) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closeCtx = ctx
		close(p.quit)
	})

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	writesDone := make(chan struct{})
	go func() {
		p.inFlight.Wait()
		close(writesDone)
	}()

	select {
	case <-writesDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run has returned
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Advanced delivers the next lesson once the auto-advance countdown navigates
func (p *Player) Advanced() <-chan models.LessonShortInfo {
	return p.advanced
}

// TimeUpdate reports the current play position. A zero duration means the last known one.
// The sample is timestamped when it is posted.
func (p *Player) TimeUpdate(position, duration float64) error {
	return p.post(timeUpdateEvent{position: position, duration: duration, at: p.cfg.Now()})
}

// LoadedMetadata reports the media duration
func (p *Player) LoadedMetadata(duration float64) error {
	return p.post(loadedMetadataEvent{duration: duration})
}

// Pause reports that playback paused
func (p *Player) Pause() error {
	return p.post(pauseEvent{})
}

// Ended reports that the video played to its natural end
func (p *Player) Ended() error {
	return p.post(endedEvent{})
}

// MediaError reports that the media source became unavailable
func (p *Player) MediaError() error {
	return p.post(mediaErrorEvent{})
}

// CancelAdvance stops a running auto-advance countdown
func (p *Player) CancelAdvance() error {
	return p.post(cancelAdvanceEvent{})
}

// AdvanceNow skips the rest of a running auto-advance countdown
func (p *Player) AdvanceNow() error {
	return p.post(advanceNowEvent{})
}

// Stats returns a snapshot taken on the Run goroutine after all earlier events
func (p *Player) Stats(ctx context.Context) (Stats, error) {
	req := statsRequest{reply: make(chan Stats, 1)}

	select {
	case p.events <- req:
	case <-p.done:
		return Stats{}, ErrPlayerClosed
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}

	select {
	case s := <-req.reply:
		return s, nil
	case <-p.done:
		return Stats{}, ErrPlayerClosed
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (p *Player) post(ev any) error {
	select {
	case <-p.done:
		return ErrPlayerClosed
	case <-p.quit:
		return ErrPlayerClosed
	default:
	}

	select {
	case p.events <- ev:
		return nil
	case <-p.done:
		return ErrPlayerClosed
	}
}

func (p *Player) handle(ev any) {
	switch e := ev.(type) {
	case timeUpdateEvent:
		p.onTimeUpdate(e)
	case loadedMetadataEvent:
		p.duration = e.duration
		if _, ok := Percent(0, e.duration); !ok {
			p.logger.Debug("Media duration unavailable", zap.Float64("duration", e.duration))
		}
	case pauseEvent:
		p.flush("pause")
	case endedEvent:
		p.onEnded()
	case mediaErrorEvent:
		p.sampler.Stop()
		p.logger.Warn("Media source unavailable, progress sampling stopped")
	case cancelAdvanceEvent:
		if p.countdown != nil && p.countdown.Cancel() {
			p.logger.Info("Auto-advance cancelled")
		}
	case advanceNowEvent:
		if p.countdown != nil {
			p.countdown.GoNow()
		}
	case statsRequest:
		e.reply <- p.stats()
	}
}

func (p *Player) onTimeUpdate(e timeUpdateEvent) {
	duration := e.duration
	if duration == 0 {
		duration = p.duration
	} else {
		p.duration = duration
	}

	percent, ok := p.sampler.Sample(e.position, duration, e.at)
	if !ok {
		return
	}

	p.session.Observe(percent)
	if !p.closing && p.session.ShouldPersist(e.at) {
		p.persist(e.at, false, "sample")
	}
}

func (p *Player) onEnded() {
	if p.ended {
		return
	}
	p.ended = true
	p.session.Observe(models.MaxProgress)
	if p.closing {
		return
	}

	p.unlockRequested = true
	if !p.session.Dirty(true) {
		p.dispatchUnlock()
		return
	}

	value := p.session.PersistValue(true)
	p.session.BeginPersist(value, p.cfg.Now())
	p.logger.Debug("Persisting progress", zap.Int("progress_percent", value), zap.String("trigger", "ended"))
	p.dispatch(value, true)
}

// flush writes unsaved progress regardless of the sample policy
func (p *Player) flush(trigger string) {
	if !p.closing && p.session.Dirty(p.ended) {
		p.persist(p.cfg.Now(), p.ended, trigger)
	}
}

func (p *Player) persist(now time.Time, force100 bool, trigger string) {
	value := p.session.PersistValue(force100)
	p.session.BeginPersist(value, now)
	p.logger.Debug("Persisting progress", zap.Int("progress_percent", value), zap.String("trigger", trigger))
	p.dispatch(value, false)
}

// dispatch writes value in the background and, when unlock is set, asks the store
// to resolve the next lesson once the write has finished.
func (p *Player) dispatch(value int, unlock bool) {
	p.inFlight.Add(1)
	go func() {
		defer p.inFlight.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(p.runCtx), p.cfg.WriteTimeout)
		defer cancel()

		resp, err := p.save(ctx, value)
		select {
		case p.writes <- writeResult{value: value, resp: resp, err: err}:
		case <-p.done:
		}

		if unlock {
			p.resolveNext(ctx)
		}
	}()
}

func (p *Player) dispatchUnlock() {
	p.inFlight.Add(1)
	go func() {
		defer p.inFlight.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(p.runCtx), p.cfg.WriteTimeout)
		defer cancel()

		p.resolveNext(ctx)
	}()
}

func (p *Player) resolveNext(ctx context.Context) {
	status, err := p.store.UnlockNext(ctx, p.cfg.LessonID)
	select {
	case p.unlocks <- unlockResult{status: status, err: err}:
	case <-p.done:
	}
}

func (p *Player) save(ctx context.Context, value int) (*models.ProgressResponse, error) {
	if p.cache != nil {
		if err := p.cache.Put(ctx, p.cfg.UserID, p.cfg.LessonID, value); err != nil {
			p.logger.Warn("Failed to cache progress", zap.Int("progress_percent", value), zap.Error(err))
		}
	}
	return p.store.SaveProgress(ctx, p.cfg.LessonID, value)
}

func (p *Player) handleWrite(r writeResult) {
	if r.err != nil {
		p.session.FailPersist()
		p.logger.Warn("Failed to persist progress", zap.Int("progress_percent", r.value), zap.Error(r.err))
		return
	}

	stored := r.value
	if r.resp != nil {
		stored = r.resp.ProgressPercent
		if r.resp.NextLesson != nil {
			p.next = r.resp.NextLesson
		}
	}
	p.session.CompletePersist(stored)
}

func (p *Player) handleUnlock(r unlockResult) {
	if r.err != nil {
		p.next = &models.NextLessonStatus{IsLocked: true}
		p.logger.Warn("Failed to resolve next lesson", zap.Error(r.err))
		return
	}

	p.next = r.status
	if r.status == nil {
		p.logger.Info("Last lesson finished")
		return
	}
	if r.status.IsLocked || r.status.Lesson == nil {
		p.logger.Info("Next lesson is locked")
		return
	}

	if r.status.Unlocked {
		p.logger.Info("Next lesson unlocked", zap.Int("next_lesson_id", r.status.Lesson.ID))
	}
	if p.cfg.AutoAdvance && p.countdown == nil && !p.closing {
		p.startCountdown(*r.status.Lesson)
	}
}

func (p *Player) startCountdown(next models.LessonShortInfo) {
	var onTick func(int)
	if p.cfg.OnCountdown != nil {
		onTick = func(remaining int) { p.cfg.OnCountdown(next, remaining) }
	}

	p.countdown = NewCountdown(p.cfg.CountdownFrom, p.cfg.CountdownTick, onTick, func() {
		select {
		case p.advanced <- next:
		default:
		}
	})
	if err := p.countdown.Start(p.runCtx); err != nil {
		p.logger.Warn("Failed to start auto-advance", zap.Error(err))
	}
}

// drain handles events posted before the player was stopped. Writes they would
// trigger are left to teardown.
func (p *Player) drain() {
	p.closing = true
	for {
		select {
		case ev := <-p.events:
			p.handle(ev)
		default:
			return
		}
	}
}

func (p *Player) teardown(ctx context.Context) {
	if p.countdown != nil {
		p.countdown.Cancel()
	}

	if p.session.Dirty(p.ended) {
		value := p.session.PersistValue(p.ended)
		p.session.BeginPersist(value, p.cfg.Now())
		resp, err := p.save(ctx, value)
		p.handleWrite(writeResult{value: value, resp: resp, err: err})
	}

	if p.ended && !p.unlockRequested {
		p.unlockRequested = true
		status, err := p.store.UnlockNext(ctx, p.cfg.LessonID)
		p.handleUnlock(unlockResult{status: status, err: err})
	}
}

func (p *Player) stats() Stats {
	s := Stats{
		LessonID:        p.cfg.LessonID,
		MaxProgressSeen: p.session.MaxProgressSeen(),
		LastPersisted:   p.session.LastPersisted(),
		Ended:           p.ended,
		Next:            p.next,
	}
	if p.countdown != nil {
		s.Countdown, _ = p.countdown.State()
	}
	return s
}
