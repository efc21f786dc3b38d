package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/estimator"
	"github.com/jengaest/estimation-api/internal/service"
	"go.uber.org/zap"
)

type AIHandler struct {
	aiService *service.AIService
	logger    *zap.Logger
}

func NewAIHandler(aiService *service.AIService, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		aiService: aiService,
		logger:    logger,
	}
}

// Suggest godoc
// @Summary AI cost suggestion
// @Description Ask the model for a cost analysis of the described project
// @Tags AI
// @Accept json
// @Produce json
// @Param request body domain.AISuggestRequest true "Project description"
// @Success 200 {object} domain.AISuggestionDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/ai-suggest [post]
func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req domain.AISuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	suggestion, err := h.aiService.Suggest(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEstimatorDisabled):
			respondWithError(w, http.StatusServiceUnavailable, "AI suggestions are not enabled")
		case errors.Is(err, estimator.ErrBadResponse):
			respondWithError(w, http.StatusBadGateway, "The model returned an unusable response")
		default:
			h.logger.Error("ai handler error", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}
