package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"github.com/Sab1tov/dombyra-master-sub000/internal/playback"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// timeupdate spacing in media time
	mediaStep    = 250 * time.Millisecond
	endGrace     = 3 * time.Second
	closeTimeout = 10 * time.Second
)

type watchOptions struct {
	duration      float64
	speed         float64
	start         int
	autoAdvance   bool
	countdownTick time.Duration
}

// mediaSimulator stands in for a media element playing at a fixed step
type mediaSimulator struct {
	duration float64
	position float64
	step     float64
}

func newMediaSimulator(duration float64, startPercent int) *mediaSimulator {
	if startPercent >= models.MaxProgress {
		startPercent = 0
	}
	return &mediaSimulator{
		duration: duration,
		position: duration * float64(models.ClampProgress(startPercent)) / 100,
		step:     mediaStep.Seconds(),
	}
}

// advance moves the play head one step and reports whether the end was reached
func (m *mediaSimulator) advance() (float64, bool) {
	m.position = min(m.position+m.step, m.duration)
	return m.position, m.position >= m.duration
}

// Watch plays lessons one after another until auto-advance stops
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	opts := watchOptions{
		duration:      cmd.Float("duration"),
		speed:         cmd.Float("speed"),
		start:         int(cmd.Int("start")),
		autoAdvance:   !cmd.Bool("no-advance"),
		countdownTick: cmd.Duration("countdown-tick"),
	}
	if opts.speed <= 0 {
		return fmt.Errorf("speed must be positive")
	}

	lessonID := int(cmd.Int("lesson"))
	for {
		next, err := r.watchLesson(ctx, lessonID, opts)
		if err != nil {
			return err
		}
		if next == nil || ctx.Err() != nil {
			return nil
		}

		r.writePlainln("Moving on to lesson %d: %s", next.ID, next.Title)
		lessonID = next.ID
		opts.duration = 0
		opts.start = -1
	}
}

func (r *Runner) watchLesson(ctx context.Context, lessonID int, opts watchOptions) (*models.LessonShortInfo, error) {
	lesson, err := r.client.GetLesson(ctx, lessonID)
	if errors.Is(err, models.ErrLessonLocked) {
		return nil, fmt.Errorf("lesson %d is locked, finish the previous lesson first", lessonID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open lesson %d: %w", lessonID, err)
	}

	duration := opts.duration
	if duration <= 0 {
		duration = float64(lesson.DurationSeconds)
	}
	start := opts.start
	if start < 0 {
		start = lesson.ProgressPercent
	}

	var cache playback.LocalCache
	if r.cache != nil {
		cache = r.cache
	}

	p := playback.NewPlayer(playback.Config{
		UserID:        r.userID,
		LessonID:      lessonID,
		AutoAdvance:   opts.autoAdvance,
		CountdownTick: opts.countdownTick,
		OnCountdown: func(next models.LessonShortInfo, remaining int) {
			r.writePlainln("  next: %s in %d", next.Title, remaining)
		},
	}, r.client, cache, r.logger)
	p.Start(ctx)
	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Warn("Player stopped", zap.Error(err))
		}
	}()

	r.writePlainln("Playing lesson %d: %s (%s) from %d%%", lesson.ID, lesson.Title, formatDuration(int(duration)), start)

	next := r.play(ctx, p, newMediaSimulator(duration, start), opts)

	if stats, err := p.Stats(ctx); err == nil {
		r.printSummary(stats)
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := p.Close(closeCtx); err != nil {
		r.logger.Warn("Failed to close player", zap.Error(err))
	}

	return next, nil
}

// play feeds the simulated media into the player and returns the lesson auto-advance chose
func (r *Runner) play(ctx context.Context, p *playback.Player, media *mediaSimulator, opts watchOptions) *models.LessonShortInfo {
	if err := p.LoadedMetadata(media.duration); err != nil {
		r.logger.Warn("Player closed before playback", zap.Error(err))
		return nil
	}

	ticker := time.NewTicker(time.Duration(float64(mediaStep) / opts.speed))
	defer ticker.Stop()

	for ended := false; !ended; {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var position float64
			position, ended = media.advance()
			if err := p.TimeUpdate(position, media.duration); err != nil {
				r.logger.Warn("Player closed during playback", zap.Error(err))
				return nil
			}
		}
	}

	if err := p.Ended(); err != nil {
		r.logger.Warn("Player closed before the lesson ended", zap.Error(err))
		return nil
	}
	r.writePlainln("Lesson finished")

	grace := endGrace
	if opts.autoAdvance {
		grace += opts.countdownTick * playback.DefaultCountdownFrom
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case next := <-p.Advanced():
		return &next
	case <-timer.C:
		return nil
	case <-ctx.Done():
		_ = p.CancelAdvance()
		return nil
	}
}

func (r *Runner) printSummary(stats playback.Stats) {
	r.writePlainln("Progress: %d%% watched, %d%% saved", stats.MaxProgressSeen, stats.LastPersisted)

	switch {
	case stats.Next == nil:
		if stats.Ended {
			r.writePlainln("That was the last lesson")
		}
	case stats.Next.Lesson == nil:
		r.writePlainln("Next lesson unavailable")
	case stats.Next.IsLocked:
		r.writePlainln("Next lesson %q is locked", stats.Next.Lesson.Title)
	default:
		r.writePlainln("Next lesson %q is open", stats.Next.Lesson.Title)
	}
}
