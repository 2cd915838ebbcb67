package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	authMiddleware "github.com/Sab1tov/dombyra-master-sub000/internal/auth/middleware"
	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"github.com/Sab1tov/dombyra-master-sub000/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for lesson progress and unlock operations
type ProgressService interface {
	// ListLessons retrieves all lessons with the user's progress and lock state
	//
	// "userID" is the ID of the user.
	ListLessons(ctx context.Context, userID int) ([]models.LessonListItem, error)
	// GetLesson retrieves a lesson the user may open
	//
	// Returns models.ErrLessonLocked for lessons the user cannot open yet.
	GetLesson(ctx context.Context, userID, lessonID int) (*models.LessonDetail, error)
	// GetProgress retrieves the stored progress, 0 when the user has none
	GetProgress(ctx context.Context, userID, lessonID int) (*models.ProgressResponse, error)
	// SaveProgress raises the stored progress to "percent" and returns the stored value
	//
	// The stored value never decreases, so the returned value may be higher than "percent".
	SaveProgress(ctx context.Context, userID, lessonID, percent int) (*models.ProgressResponse, error)
	// GetNextLesson retrieves the next lesson in sequence, nil for the last lesson
	GetNextLesson(ctx context.Context, lessonID int) (*models.LessonShortInfo, error)
	// UnlockNext unlocks the next lesson when "lessonID" is completed and reports its status
	//
	// A nil status means "lessonID" is the last lesson.
	UnlockNext(ctx context.Context, userID, lessonID int) (*models.NextLessonStatus, error)
	// HasAccess reports whether the user has a progress row for the lesson
	HasAccess(ctx context.Context, userID, lessonID int) (bool, error)
}

// ProgressHandler handles HTTP requests for lesson progress
type ProgressHandler struct {
	BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/lessons", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListLessons)
		r.Get("/{id}", h.GetLesson)
		r.Get("/{id}/progress", h.GetProgress)
		r.Put("/{id}/progress", h.SaveProgress)
		r.Get("/{id}/next", h.GetNextLesson)
		r.Post("/{id}/unlock-next", h.UnlockNext)
		r.Get("/{id}/access", h.HasAccess)
	})
}

// ListLessons handles GET /lessons
// @Summary List lessons
// @Description Get all lessons in sequence order with the user's progress and lock state
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.LessonListItem
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons [get]
func (h *ProgressHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "get lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// GetLesson handles GET /lessons/{id}
// @Summary Get lesson
// @Description Get a lesson with the user's progress. Locked lessons are not returned.
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.LessonDetail
// @Failure 400 {object} map[string]string "Invalid lesson ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Lesson is locked"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{id} [get]
func (h *ProgressHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, ok := h.userAndLesson(w, r)
	if !ok {
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "get lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// GetProgress handles GET /lessons/{id}/progress
// @Summary Get lesson progress
// @Description Get the stored progress of the user for a lesson, 0 when nothing was recorded
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.ProgressResponse
// @Failure 400 {object} map[string]string "Invalid lesson ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{id}/progress [get]
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, ok := h.userAndLesson(w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "get progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// SaveProgress handles PUT /lessons/{id}/progress
// @Summary Save lesson progress
// @Description Raise the stored progress. The stored value never decreases and is returned.
// @Description When the stored value reaches 80 the next lesson status is included.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body models.SaveProgressRequest true "Progress percent (0-100)"
// @Success 200 {object} models.ProgressResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Lesson is locked"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{id}/progress [put]
func (h *ProgressHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, ok := h.userAndLesson(w, r)
	if !ok {
		return
	}

	var req models.SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.service.SaveProgress(r.Context(), userID, lessonID, *req.ProgressPercent)
	if err != nil {
		h.RespondServiceError(w, err, "save progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetNextLesson handles GET /lessons/{id}/next
// @Summary Get next lesson
// @Description Get the lesson that follows in sequence, null for the last lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.LessonShortInfo
// @Failure 400 {object} map[string]string "Invalid lesson ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{id}/next [get]
func (h *ProgressHandler) GetNextLesson(w http.ResponseWriter, r *http.Request) {
	_, lessonID, ok := h.userAndLesson(w, r)
	if !ok {
		return
	}

	next, err := h.service.GetNextLesson(r.Context(), lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "get next lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, next)
}

// UnlockNext handles POST /lessons/{id}/unlock-next
// @Summary Unlock next lesson
// @Description Unlock the next lesson when the stored progress of this lesson is at least 80.
// @Description Store failures report the next lesson as locked.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.NextLessonResponse
// @Failure 400 {object} map[string]string "Invalid lesson ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{id}/unlock-next [post]
func (h *ProgressHandler) UnlockNext(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, ok := h.userAndLesson(w, r)
	if !ok {
		return
	}

	status, err := h.service.UnlockNext(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "unlock next lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.NextLessonResponse{NextLesson: status})
}

// HasAccess handles GET /lessons/{id}/access
// @Summary Check lesson access
// @Description True when the user has a progress record for the lesson
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.AccessResponse
// @Failure 400 {object} map[string]string "Invalid lesson ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{id}/access [get]
func (h *ProgressHandler) HasAccess(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, ok := h.userAndLesson(w, r)
	if !ok {
		return
	}

	hasAccess, err := h.service.HasAccess(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "check access")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.AccessResponse{HasAccess: hasAccess})
}

func (h *ProgressHandler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return 0, false
	}
	return userID, true
}

// userAndLesson extracts the user ID and the {id} path parameter, writing the error response on failure
func (h *ProgressHandler) userAndLesson(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return 0, 0, false
	}

	lessonID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || lessonID <= 0 {
		h.RespondError(w, http.StatusBadRequest, models.ErrInvalidLessonID.Error())
		return 0, 0, false
	}

	return userID, lessonID, true
}
