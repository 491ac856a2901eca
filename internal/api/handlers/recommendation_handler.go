package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/zatekoja/mindcare/internal/application/services"
	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
	"github.com/zatekoja/mindcare/pkg/validation"
)

// maxRequestBodyBytes caps POST bodies
const maxRequestBodyBytes = 64 << 10

// RecommendationService is the service surface used by the handler
type RecommendationService interface {
	Recommend(ctx context.Context, req services.RecommendationRequest) (*entities.RecommendationResult, error)
	OperatingStatus(ctx context.Context, centerID string) (*entities.CenterOperatingStatus, error)
}

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	service RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
	}
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

type assessmentRequest struct {
	Severity string `json:"severity" validate:"required,severity"`
	Category string `json:"category" validate:"max=64"`
}

type userProfileRequest struct {
	AssessmentResult *assessmentRequest `json:"assessmentResult"`
	Age              *int               `json:"age"`
}

type filtersRequest struct {
	MaxDistance *float64 `json:"maxDistance"`
	Limit       *int     `json:"limit"`
}

// recommendationRequest is the POST /api/recommendations body
type recommendationRequest struct {
	Location    *locationRequest    `json:"location" validate:"required"`
	UserProfile *userProfileRequest `json:"userProfile"`
	Filters     *filtersRequest     `json:"filters"`
}

func (r *recommendationRequest) toServiceRequest() (services.RecommendationRequest, error) {
	if r.Location == nil || r.Location.Latitude == nil || r.Location.Longitude == nil {
		return services.RecommendationRequest{}, apperrors.NewValidationError("location with latitude and longitude is required")
	}

	req := services.RecommendationRequest{
		Location: entities.Location{
			Latitude:  *r.Location.Latitude,
			Longitude: *r.Location.Longitude,
		},
	}

	if r.UserProfile != nil {
		req.Age = r.UserProfile.Age
		if a := r.UserProfile.AssessmentResult; a != nil {
			severity, err := entities.ParseSeverity(a.Severity)
			if err != nil {
				return req, apperrors.NewValidationError(err.Error())
			}
			req.Assessment = &entities.AssessmentResult{Severity: severity, Category: a.Category}
		}
	}

	if r.Filters != nil {
		req.MaxDistanceKm = r.Filters.MaxDistance
		req.Limit = r.Filters.Limit
	}

	return req, nil
}

// GetRecommendations handles GET /api/recommendations?lat=&lng=&maxDistance=&limit=
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, err := parseRequiredFloat(query.Get("lat"), "lat")
	if err != nil {
		h.respondWithAppError(w, r, err)
		return
	}
	lng, err := parseRequiredFloat(query.Get("lng"), "lng")
	if err != nil {
		h.respondWithAppError(w, r, err)
		return
	}

	body := recommendationRequest{
		Location: &locationRequest{Latitude: &lat, Longitude: &lng},
		Filters:  &filtersRequest{},
	}
	if body.Filters.MaxDistance, err = parseOptionalFloat(query.Get("maxDistance"), "maxDistance"); err != nil {
		h.respondWithAppError(w, r, err)
		return
	}
	if body.Filters.Limit, err = parseOptionalInt(query.Get("limit"), "limit"); err != nil {
		h.respondWithAppError(w, r, err)
		return
	}

	h.recommend(w, r, &body)
}

// PostRecommendations handles POST /api/recommendations
func (h *RecommendationHandler) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	var body recommendationRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "request body is required")
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.recommend(w, r, &body)
}

func (h *RecommendationHandler) recommend(w http.ResponseWriter, r *http.Request, body *recommendationRequest) {
	if err := validation.ValidateStruct(body); err != nil {
		h.respondWithAppError(w, r, err)
		return
	}

	req, err := body.toServiceRequest()
	if err != nil {
		h.respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		h.respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetOperatingStatus handles GET /api/centers/{id}/operating-status
func (h *RecommendationHandler) GetOperatingStatus(w http.ResponseWriter, r *http.Request) {
	centerID := r.PathValue("id")
	if centerID == "" {
		respondWithError(w, http.StatusBadRequest, "center ID is required")
		return
	}

	status, err := h.service.OperatingStatus(r.Context(), centerID)
	if err != nil {
		h.respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// respondWithAppError maps AppError types onto status codes. Internal details are logged, never returned.
func (h *RecommendationHandler) respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation, apperrors.ErrorTypeOutOfRange:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		}
	}

	observability.LoggerFromContext(r.Context()).Error().
		Err(err).
		Str("path", r.URL.Path).
		Msg("Recommendation request failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

func parseRequiredFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, apperrors.NewValidationErrorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewValidationErrorf("%s must be a number", name)
	}
	return v, nil
}

func parseOptionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := parseRequiredFloat(raw, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptionalInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationErrorf("%s must be an integer", name)
	}
	return &v, nil
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
