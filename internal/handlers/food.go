package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/plateful/plateful/internal/database"
	"github.com/plateful/plateful/internal/errs"
	"github.com/plateful/plateful/internal/logger"
	"github.com/plateful/plateful/internal/models"
	"github.com/plateful/plateful/internal/request"
	"github.com/plateful/plateful/internal/services/vision"
	"github.com/plateful/plateful/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FoodHandler handles photo analysis and meal log requests.
type FoodHandler struct {
	entries database.FoodEntryStore
	vision  vision.Provider
	logger  *zap.Logger
}

// NewFoodHandler creates a new food handler.
func NewFoodHandler(entries database.FoodEntryStore, visionProvider vision.Provider, log *zap.Logger) *FoodHandler {
	return &FoodHandler{
		entries: entries,
		vision:  visionProvider,
		logger:  log,
	}
}

// RegisterRoutes registers the food routes on the given router. The router
// must already enforce authentication.
func (h *FoodHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analyze", h.Analyze).Methods("POST")
	r.HandleFunc("/food-entries", h.CreateEntry).Methods("POST")
	r.HandleFunc("/food-entries", h.ListEntries).Methods("GET")
	r.HandleFunc("/food-entries/date/{date}", h.EntriesByDate).Methods("GET")
}

type analyzeRequest struct {
	Image string `json:"image" validate:"required"`
}

// Analyze estimates nutrition for a food photo.
func (h *FoodHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFromError(w, h.logger, err)
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	if h.vision == nil {
		respondError(w, http.StatusServiceUnavailable, "Image analysis is not configured")
		return
	}

	analysis, err := h.vision.AnalyzeFood(r.Context(), req.Image)
	if err != nil {
		h.logger.Error("image analysis failed", zap.String("error", logger.SanitizeError(err)))
		respondError(w, http.StatusInternalServerError, "Failed to analyze image")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

type createEntryRequest struct {
	Name        string                  `json:"name" validate:"required"`
	Calories    float64                 `json:"calories" validate:"gte=0"`
	Ingredients []models.FoodIngredient `json:"ingredients"`
	ImageURL    *string                 `json:"imageUrl"`
}

// CreateEntry saves a meal to the authenticated user's log.
func (h *FoodHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	var req createEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFromError(w, h.logger, err)
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	if req.Ingredients == nil {
		req.Ingredients = []models.FoodIngredient{}
	}

	entry := &models.FoodEntry{
		UserID:      userID,
		Name:        req.Name,
		Calories:    req.Calories,
		Ingredients: req.Ingredients,
		ImageURL:    req.ImageURL,
	}

	if err := h.entries.Create(r.Context(), entry); err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// ListEntries returns all of the authenticated user's meals, newest first.
func (h *FoodHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	entries, err := h.entries.GetByUserID(r.Context(), userID)
	if err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// EntriesByDate returns the authenticated user's meals for one calendar day.
func (h *FoodHandler) EntriesByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	day, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	entries, err := h.entries.GetByUserIDAndDay(r.Context(), userID, day)
	if err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (h *FoodHandler) subjectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	subject := request.SubjectFromContext(r)
	if subject == "" {
		respondFromError(w, h.logger, errs.ErrUnauthorized)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		respondFromError(w, h.logger, errs.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
