// Package client talks to the lesson progress API on behalf of the player
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	apiPrefix = "/api/v1"

	defaultTimeout          = 10 * time.Second
	defaultBreakerTimeout   = 30 * time.Second
	defaultFailureThreshold = 5
)

// ErrUnauthorized is returned when the API rejects the access token
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses to the model sentinel errors
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return models.ErrLessonLocked
	case http.StatusNotFound:
		return models.ErrLessonNotFound
	default:
		return nil
	}
}

// Config holds client settings
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// BreakerTimeout is how long the write breaker stays open before probing again
	BreakerTimeout time.Duration
	// FailureThreshold is the number of consecutive write failures that opens the breaker
	FailureThreshold uint32
}

// Client is an HTTP client for the lesson progress API.
// Writes go through a circuit breaker so a dead store fails fast.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[any]
	logger     *zap.Logger
}

// New creates a new API client
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + apiPrefix,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}

	threshold := cfg.FailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "progress-writes",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Client errors mean the store is up
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// ListLessons returns all lessons with the caller's progress and lock state
func (c *Client) ListLessons(ctx context.Context) ([]models.LessonListItem, error) {
	var lessons []models.LessonListItem
	if err := c.do(ctx, http.MethodGet, "/lessons", nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// GetLesson returns a lesson the caller may open
func (c *Client) GetLesson(ctx context.Context, lessonID int) (*models.LessonDetail, error) {
	var lesson models.LessonDetail
	if err := c.do(ctx, http.MethodGet, lessonPath(lessonID, ""), nil, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetProgress returns the stored progress of a lesson
func (c *Client) GetProgress(ctx context.Context, lessonID int) (*models.ProgressResponse, error) {
	var progress models.ProgressResponse
	if err := c.do(ctx, http.MethodGet, lessonPath(lessonID, "/progress"), nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// SaveProgress writes a progress value and returns the stored one
func (c *Client) SaveProgress(ctx context.Context, lessonID, percent int) (*models.ProgressResponse, error) {
	body := models.SaveProgressRequest{ProgressPercent: &percent}

	return castResult[models.ProgressResponse](c.breaker.Execute(func() (any, error) {
		var progress models.ProgressResponse
		if err := c.do(ctx, http.MethodPut, lessonPath(lessonID, "/progress"), body, &progress); err != nil {
			return nil, err
		}
		return &progress, nil
	}))
}

// GetNextLesson returns the lesson after lessonID, or nil for the last lesson
func (c *Client) GetNextLesson(ctx context.Context, lessonID int) (*models.LessonShortInfo, error) {
	var next *models.LessonShortInfo
	if err := c.do(ctx, http.MethodGet, lessonPath(lessonID, "/next"), nil, &next); err != nil {
		return nil, err
	}
	return next, nil
}

// UnlockNext asks the API to unlock the lesson after lessonID.
// It returns nil when lessonID is the last lesson.
func (c *Client) UnlockNext(ctx context.Context, lessonID int) (*models.NextLessonStatus, error) {
	resp, err := castResult[models.NextLessonResponse](c.breaker.Execute(func() (any, error) {
		var resp models.NextLessonResponse
		if err := c.do(ctx, http.MethodPost, lessonPath(lessonID, "/unlock-next"), nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}))
	if err != nil {
		return nil, err
	}
	return resp.NextLesson, nil
}

// HasAccess reports whether the caller has an access record for the lesson
func (c *Client) HasAccess(ctx context.Context, lessonID int) (bool, error) {
	var resp models.AccessResponse
	if err := c.do(ctx, http.MethodGet, lessonPath(lessonID, "/access"), nil, &resp); err != nil {
		return false, err
	}
	return resp.HasAccess, nil
}

// BreakerState returns the write breaker state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func lessonPath(lessonID int, suffix string) string {
	return fmt.Sprintf("/lessons/%d%s", lessonID, suffix)
}

func castResult[T any](result any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}
