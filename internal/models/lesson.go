package models

import "errors"

var (
	// ErrLessonNotFound is returned when a lesson with the requested ID does not exist
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrInvalidLessonID is returned for non-positive lesson IDs
	ErrInvalidLessonID = errors.New("invalid lesson id")
	// ErrLessonLocked is returned when a user writes progress to a lesson they cannot open yet
	ErrLessonLocked = errors.New("lesson is locked")
)

// Lesson represents a video lesson with its attached sheet music
type Lesson struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	VideoURL        string `json:"videoUrl"`
	SheetMusicURL   string `json:"sheetMusicUrl,omitempty"`
	DurationSeconds int    `json:"durationSeconds"`
}

// LessonShortInfo represents a lesson with only ID and Title
type LessonShortInfo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// LessonListItem represents a lesson in user list responses
type LessonListItem struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"durationSeconds"`
	ProgressPercent int    `json:"progressPercent"`
	Completed       bool   `json:"completed"`
	IsLocked        bool   `json:"isLocked"`
}

// LessonDetail represents a lesson opened by a user together with their progress
type LessonDetail struct {
	Lesson
	ProgressPercent int  `json:"progressPercent"`
	Completed       bool `json:"completed"`
}

// NextLessonStatus describes the lesson that follows the current one in sequence
// and whether the user may open it.
//
// Lesson is nil when the next lesson could not be determined because the
// sequence lookup failed; IsLocked is always true in that case.
type NextLessonStatus struct {
	Lesson   *LessonShortInfo `json:"lesson,omitempty"`
	IsLocked bool             `json:"isLocked"`
	// Unlocked is true only for the call that created the access record
	Unlocked bool `json:"unlocked,omitempty"`
}

// NextLessonResponse is the body of the unlock-next endpoint
type NextLessonResponse struct {
	NextLesson *NextLessonStatus `json:"nextLesson"`
}

// AccessResponse is the body of the access check endpoint
type AccessResponse struct {
	HasAccess bool `json:"hasAccess"`
}
