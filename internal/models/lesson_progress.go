package models

import (
	"errors"
	"time"
)

const (
	// CompletionThreshold is the percent at and above which a lesson counts as watched
	CompletionThreshold = 80
	// MaxProgress is the upper bound of a progress value
	MaxProgress = 100
)

var (
	// ErrProgressNotFound is returned when no progress row exists for a (user, lesson) pair
	ErrProgressNotFound = errors.New("progress not found")
	// ErrInvalidProgress is returned for progress values outside 0..100
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
)

// LessonProgress represents a user's progress in a lesson.
//
// Completed is never stored, it is derived from ProgressPercent.
type LessonProgress struct {
	UserID          int       `json:"userId"`
	LessonID        int       `json:"lessonId"`
	ProgressPercent int       `json:"progressPercent"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsCompleted reports whether a progress value reaches the completion threshold
func IsCompleted(percent int) bool {
	return percent >= CompletionThreshold
}

// ClampProgress bounds a progress value to 0..100
func ClampProgress(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > MaxProgress {
		return MaxProgress
	}
	return percent
}

// SaveProgressRequest represents a progress write from a client
type SaveProgressRequest struct {
	ProgressPercent *int `json:"progressPercent" validate:"required,min=0,max=100"`
}

// ProgressResponse represents the stored progress for a lesson
type ProgressResponse struct {
	LessonID        int               `json:"lessonId"`
	ProgressPercent int               `json:"progressPercent"`
	Completed       bool              `json:"completed"`
	NextLesson      *NextLessonStatus `json:"nextLesson,omitempty"`
}

// NewProgressResponse builds a response with Completed derived from percent
func NewProgressResponse(lessonID, percent int) *ProgressResponse {
	return &ProgressResponse{
		LessonID:        lessonID,
		ProgressPercent: percent,
		Completed:       IsCompleted(percent),
	}
}
