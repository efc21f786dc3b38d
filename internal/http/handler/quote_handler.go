package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jengaest/estimation-api/internal/costing"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/service"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// Calculate godoc
// @Summary Calculate cost quote
// @Description Price a project from reference data without persisting anything
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CalculateCostRequest true "Calculation inputs"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/calculate [post]
func (h *QuoteHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculateCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Calculate(r.Context(), &req)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) handleQuoteError(w http.ResponseWriter, err error) {
	var invalid *costing.InvalidInputError
	switch {
	case errors.Is(err, service.ErrProjectTypeNotFound):
		respondWithError(w, http.StatusBadRequest, "Project type not found")
	case errors.Is(err, service.ErrLocationNotFound):
		respondWithError(w, http.StatusBadRequest, "Location not found")
	case errors.As(err, &invalid):
		respondFieldErrors(w, http.StatusBadRequest, "Invalid calculation input", map[string]string{invalid.Field: invalid.Reason})
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("quote handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
