package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"github.com/Sab1tov/dombyra-master-sub000/internal/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStore struct{}

func (stubStore) GetProgress(ctx context.Context, lessonID int) (*models.ProgressResponse, error) {
	return models.NewProgressResponse(lessonID, 0), nil
}

func (stubStore) SaveProgress(ctx context.Context, lessonID, percent int) (*models.ProgressResponse, error) {
	return models.NewProgressResponse(lessonID, percent), nil
}

func (stubStore) UnlockNext(ctx context.Context, lessonID int) (*models.NextLessonStatus, error) {
	return nil, nil
}

func TestRunner_PlayStopsWhenPlayerCloses(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerOpts{Logger: zap.NewNop(), Output: &out})

	p := playback.NewPlayer(playback.Config{UserID: 7, LessonID: 1}, stubStore{}, nil, zap.NewNop())
	p.Start(context.Background())
	go func() { _ = p.Run(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Close(ctx))

	next := r.play(ctx, p, newMediaSimulator(600, 0), watchOptions{speed: 100})

	assert.Nil(t, next)
	assert.NotContains(t, out.String(), "Lesson finished")
	assert.NoError(t, ctx.Err())
}
