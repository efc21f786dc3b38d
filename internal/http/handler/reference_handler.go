package handler

import (
	"net/http"

	"github.com/jengaest/estimation-api/internal/service"
	"go.uber.org/zap"
)

type ReferenceHandler struct {
	referenceService *service.ReferenceService
	logger           *zap.Logger
}

func NewReferenceHandler(referenceService *service.ReferenceService, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
		logger:           logger,
	}
}

// ListProjectTypes godoc
// @Summary List project types
// @Description Active project types with their base cost per square meter
// @Tags Reference Data
// @Produce json
// @Success 200 {array} domain.ProjectTypeDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /project-types [get]
func (h *ReferenceHandler) ListProjectTypes(w http.ResponseWriter, r *http.Request) {
	projectTypes, err := h.referenceService.ListProjectTypes(r.Context())
	if err != nil {
		h.logger.Error("failed to list project types", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list project types")
		return
	}

	respondJSON(w, http.StatusOK, projectTypes)
}

// ListLocations godoc
// @Summary List locations
// @Description Active locations with their cost multipliers
// @Tags Reference Data
// @Produce json
// @Success 200 {array} domain.LocationDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /locations [get]
func (h *ReferenceHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.referenceService.ListLocations(r.Context())
	if err != nil {
		h.logger.Error("failed to list locations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list locations")
		return
	}

	respondJSON(w, http.StatusOK, locations)
}
