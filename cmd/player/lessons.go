package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/auth/service"
	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// Progress prints the stored progress of one lesson
func (r *Runner) Progress(ctx context.Context, cmd *cli.Command) error {
	lessonID := int(cmd.Int("lesson"))

	progress, err := r.client.GetProgress(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to get progress: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(progress)
	}

	status := "in progress"
	if progress.Completed {
		status = "completed"
	}
	return r.writePlainln("Lesson %d: %d%% (%s)", progress.LessonID, progress.ProgressPercent, status)
}

// Lessons prints the lesson list
func (r *Runner) Lessons(ctx context.Context, cmd *cli.Command) error {
	lessons, err := r.client.ListLessons(ctx)
	if err != nil {
		return fmt.Errorf("failed to list lessons: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(lessons)
	}

	var local map[int]int
	if r.cache != nil {
		local, err = r.cache.All(ctx, r.userID)
		if err != nil {
			r.logger.Warn("Failed to read local progress", zap.Error(err))
		}
	}

	_, err = fmt.Fprint(r.output, formatLessons(lessons, local))
	return err
}

// Token prints a signed access token for the global user ID
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	if r.userID <= 0 {
		return fmt.Errorf("user-id is required")
	}

	generator := service.NewTokenGenerator(cmd.String("secret"), cmd.Duration("ttl"))
	token, err := generator.GenerateAccessToken(r.userID)
	if err != nil {
		return err
	}
	return r.writePlainln("%s", token)
}

// formatLessons renders one line per lesson. local holds device progress ahead of the server.
func formatLessons(lessons []models.LessonListItem, local map[int]int) string {
	var b strings.Builder
	for _, lesson := range lessons {
		state := "open"
		switch {
		case lesson.IsLocked:
			state = "locked"
		case lesson.Completed:
			state = "completed"
		}

		fmt.Fprintf(&b, "%3d  %-32s %7s  %3d%%  %s", lesson.ID, lesson.Title, formatDuration(lesson.DurationSeconds), lesson.ProgressPercent, state)
		if cached, ok := local[lesson.ID]; ok && cached > lesson.ProgressPercent {
			fmt.Fprintf(&b, "  (local %d%%)", cached)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), seconds%60)
}
